package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmercer/benchsight/internal/config"
	"github.com/dmercer/benchsight/internal/insights"
	"github.com/dmercer/benchsight/internal/models"
)

func newInsightsCommand() *cobra.Command {
	var (
		outputDir string
		cfgPath   string
	)

	cmd := &cobra.Command{
		Use:   "insights <analysis.json>...",
		Short: "Extract per-topic analyst commentary from analysis documents",
		Long: `Extract per-topic analyst commentary from one or more structured analysis
documents, preserving per-model and per-epoch attribution. One markdown file
is written per configured topic.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsights(cmd, args, outputDir, cfgPath)
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", "insights", "Directory for the per-topic documents")
	cmd.Flags().StringVar(&cfgPath, "config", "", "Analysis configuration file (YAML)")

	return cmd
}

func runInsights(cmd *cobra.Command, paths []string, outputDir, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	var analyses []*models.SuiteAnalysis
	for _, path := range paths {
		a, err := models.LoadSuiteAnalysis(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		analyses = append(analyses, a)
	}

	docs := insights.Extract(analyses, cfg.Topics)
	if err := insights.WriteAll(docs, outputDir); err != nil {
		return err
	}
	for _, doc := range docs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s/%s\n", outputDir, doc.Topic.Output)
	}
	return nil
}
