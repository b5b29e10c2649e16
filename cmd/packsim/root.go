package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xtding233/pack-sim/internal/config"
)

var (
	cfgFile string
	v       = config.New()
)

var rootCmd = &cobra.Command{
	Use:           "packsim",
	Short:         "Booster pack opening simulator.",
	Long:          "Open simulated booster packs from real card sets and keep a collection of the pulls.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./packsim.yaml)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("storage-driver", "", "collection storage: memory, file, sqlite, redis")
	pf.String("storage-path", "", "collection file or sqlite database")
	pf.String("rules-dir", "", "pack rules directory")
	_ = v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = v.BindPFlag("storage.driver", pf.Lookup("storage-driver"))
	_ = v.BindPFlag("storage.path", pf.Lookup("storage-path"))
	_ = v.BindPFlag("rules.dir", pf.Lookup("rules-dir"))
}
