// Package main provides the klinscore CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalOpts{}

	rootCmd := &cobra.Command{
		Use:   "klinscore",
		Short: "Clinical risk score calculator",
		Long: `KlinScore evaluates declarative clinical risk scores (CHA₂DS₂-VA, HAS-BLED,
STOP-BANG, CKD-EPI, KFRE, ...) against patient inputs and explains each result.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Path to config file (default: search for .klinscore/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&g.scoresDir, "scores-dir", "", "Directory of score definitions (default: built-in scores)")

	rootCmd.AddCommand(
		newListCmd(g),
		newShowCmd(g),
		newCalcCmd(g),
		newHistoryCmd(g),
		newMigrateCmd(g),
	)
	return rootCmd
}
