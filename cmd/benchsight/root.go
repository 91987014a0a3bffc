package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benchsight",
		Short: "Benchsight - suite analysis for model-benchmark transcripts",
		Long: `Benchsight aggregates and scores evaluation transcripts from language-model
benchmark runs.

It parses per-challenge, per-epoch score documents, reconciles the analyst
judgments into per-epoch scores, computes suite-level aggregates including
the time-normalized Alignment Rate, and emits machine- and human-readable
reports.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newAnalyzeCommand())
	cmd.AddCommand(newInsightsCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
