package catalog

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// detailConcurrency bounds the parallel set detail lookups of SortedSets.
const detailConcurrency = 8

// SortedSets lists the sets that have a logo, newest release first.
// The listing lacks release dates, so each set is resolved to its detail;
// a set whose detail fails keeps its summary and sorts as oldest.
// A listing failure is logged and yields an empty slice.
func SortedSets(ctx context.Context, src Source, log *zap.Logger) []Set {
	if log == nil {
		log = zap.NewNop()
	}
	summaries, err := src.ListSets(ctx)
	if err != nil {
		log.Warn("list sets failed", zap.Error(err))
		return []Set{}
	}

	var withLogo []SetSummary
	for _, s := range summaries {
		if s.Logo != "" {
			withLogo = append(withLogo, s)
		}
	}

	sets := make([]Set, len(withLogo))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailConcurrency)
	for i, s := range withLogo {
		g.Go(func() error {
			detail, err := src.GetSet(gctx, s.ID)
			if err != nil {
				log.Debug("set detail failed, keeping summary", zap.String("set_id", s.ID), zap.Error(err))
				sets[i] = Set{ID: s.ID, Name: s.Name, Logo: s.Logo, Symbol: s.Symbol, CardCount: s.CardCount}
				return nil
			}
			sets[i] = detail
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors

	sortByRelease(sets)
	return sets
}

// sortByRelease orders sets newest first; undated sets go last.
func sortByRelease(sets []Set) {
	sort.SliceStable(sets, func(i, j int) bool {
		ti, oki := sets[i].Released()
		tj, okj := sets[j].Released()
		switch {
		case oki && okj:
			return ti.After(tj)
		case oki:
			return true
		default:
			return false
		}
	})
}

// SetCards returns the full card list of a set, or an empty slice on failure.
func SetCards(ctx context.Context, src Source, setID string, log *zap.Logger) []CardSummary {
	if log == nil {
		log = zap.NewNop()
	}
	set, err := src.GetSet(ctx, setID)
	if err != nil {
		log.Warn("get set cards failed", zap.String("set_id", setID), zap.Error(err))
		return []CardSummary{}
	}
	if set.Cards == nil {
		return []CardSummary{}
	}
	return set.Cards
}
