package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/xtding233/pack-sim/internal/catalog"
	"github.com/xtding233/pack-sim/internal/collection"
	"github.com/xtding233/pack-sim/internal/gacha"
	"github.com/xtding233/pack-sim/internal/rarity"
	"github.com/xtding233/pack-sim/internal/rpc"
	"github.com/xtding233/pack-sim/internal/valuation"
)

var asJSON bool

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "List sets, newest first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		sets := catalog.SortedSets(cmd.Context(), a.catalog, a.log)
		if asJSON {
			return printJSON(cmd.OutOrStdout(), sets)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tRELEASED\tCARDS\tNAME")
		for _, s := range sets {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.ID, s.ReleaseDate, s.CardCount.Total, s.Name)
		}
		return tw.Flush()
	},
}

var cardsCmd = &cobra.Command{
	Use:   "cards <set-id>",
	Short: "List the cards of a set with owned counts.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		cards := catalog.SetCards(cmd.Context(), a.catalog, args[0], a.log)
		if asJSON {
			return printJSON(cmd.OutOrStdout(), cards)
		}
		ids := make([]string, len(cards))
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tOWNED\tNAME")
		for i, c := range cards {
			ids[i] = c.ID
			fmt.Fprintf(tw, "%s\t%d\t%s\n", c.ID, a.store.CardCount(c.ID), c.Name)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		p := a.store.Progress(ids)
		fmt.Fprintf(cmd.OutOrStdout(), "\ncollected %d/%d (%d%%)\n", p.Collected, p.Total, p.Percent())
		return nil
	},
}

var (
	openRecord bool
	openRemote string
)

var openCmd = &cobra.Command{
	Use:   "open <set-id>",
	Short: "Open one pack.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		setID := args[0]

		if openRemote != "" {
			conn, err := grpc.NewClient(openRemote, grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				return errors.Wrapf(err, "dial %s", openRemote)
			}
			defer conn.Close()
			client := rpc.NewClient(conn)
			p, err := client.OpenPack(ctx, setID)
			if err != nil {
				return err
			}
			if openRecord {
				if _, err := client.RecordPack(ctx, p.Cards, remoteSetInfo(ctx, client, setID)); err != nil {
					return err
				}
			}
			return printPack(cmd.OutOrStdout(), p)
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.packs.Open(ctx, setID)
		if err != nil {
			return err
		}
		if openRecord {
			info := &collection.SetInfo{}
			if set, err := a.catalog.GetSet(ctx, setID); err == nil {
				info.Name, info.Logo = set.Name, set.Logo
			}
			if _, err := a.store.Record(ctx, p.Cards, info); err != nil {
				return err
			}
		}
		return printPack(cmd.OutOrStdout(), p)
	},
}

// remoteSetInfo looks the set up on the server. Nil records the placeholder name.
func remoteSetInfo(ctx context.Context, client *rpc.Client, setID string) *collection.SetInfo {
	sets, err := client.ListSets(ctx)
	if err != nil {
		return nil
	}
	for _, s := range sets {
		if s.ID == setID {
			return &collection.SetInfo{Name: s.Name, Logo: s.Logo}
		}
	}
	return nil
}

func printPack(w io.Writer, p gacha.Pack) error {
	if asJSON {
		return printJSON(w, p)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tRARITY\tTIER\tPRICE\tNAME")
	for i, c := range p.Cards {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\t%s\n", i+1, c.ID, c.Rarity, rarity.Classify(c.Rarity), c.MarketPrice(), c.Name)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\npack value %s %s\n", valuation.PackTotal(p.Cards), valuation.Currency)
	return err
}

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Show owned cards.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		st := a.store.Snapshot()
		if asJSON {
			return printJSON(cmd.OutOrStdout(), st.Inventory)
		}
		ids := make([]string, 0, len(st.Inventory))
		for id := range st.Inventory {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCOUNT")
		for _, id := range ids {
			fmt.Fprintf(tw, "%s\t%d\n", id, st.Inventory[id])
		}
		return tw.Flush()
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent pack openings.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		entries := a.store.History()
		sum := a.store.HistorySummary()
		if asJSON {
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{"entries": entries, "summary": sum})
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "WHEN\tSET\tCARDS\tVALUE")
		for _, h := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", h.Timestamp, h.SetName, len(h.Cards), h.TotalValue)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "\n%d packs, total %s, average %s, best %s %s\n",
			sum.Packs, sum.Total, sum.Average, sum.Best, sum.Currency)
		return err
	},
}

var raritiesCmd = &cobra.Command{
	Use:   "rarities",
	Short: "List the known rarity labels with their tier and display weight.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		type row struct {
			Label  string `json:"label"`
			Tier   string `json:"tier"`
			Weight int    `json:"weight"`
		}
		labels := rarity.KnownLabels()
		rows := make([]row, 0, len(labels))
		for _, l := range labels {
			rows = append(rows, row{Label: l, Tier: rarity.Classify(l).String(), Weight: rarity.DisplayWeight(l)})
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), rows)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "LABEL\tTIER\tWEIGHT")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", r.Label, r.Tier, r.Weight)
		}
		fmt.Fprintf(tw, "(other)\t%s\t%d\n", rarity.RareOrBetter, rarity.DefaultWeight)
		return tw.Flush()
	},
}

var simTrials int

var simulateCmd = &cobra.Command{
	Use:   "simulate <set-id>",
	Short: "Open many packs from one pool and report statistics.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.packs.Simulate(cmd.Context(), args[0], simTrials)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), res)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "trials            %d\n", res.Trials)
		for _, t := range rarity.AllTiers() {
			st := res.Tiers[t.String()]
			fmt.Fprintf(out, "%-17s mean %.3f  p90 %.0f  max %d\n", t, st.Mean, st.P90, st.Max)
		}
		fmt.Fprintf(out, "unique cards      mean %.2f  min %d\n", res.UniqueCards.Mean, res.UniqueCards.Min)
		fmt.Fprintf(out, "value (cents)     mean %.1f  p50 %.0f  p99 %.0f  max %d\n", res.ValueCents.Mean, res.ValueCents.P50, res.ValueCents.P99, res.ValueCents.Max)
		weights := make([]int, 0, len(res.HitRate))
		for w := range res.HitRate {
			weights = append(weights, w)
		}
		sort.Ints(weights)
		for _, w := range weights {
			fmt.Fprintf(out, "weight %d in pack  %.1f%%\n", w, res.HitRate[w]*100)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print JSON")
	openCmd.Flags().BoolVar(&openRecord, "record", false, "add the pack to the collection")
	openCmd.Flags().StringVar(&openRemote, "remote", "", "open through a running gRPC server at this address")
	simulateCmd.Flags().IntVar(&simTrials, "trials", 1000, "number of packs to simulate")
	rootCmd.AddCommand(setsCmd, cardsCmd, openCmd, collectionCmd, historyCmd, raritiesCmd, simulateCmd)
}
