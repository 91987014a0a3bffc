package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dmercer/benchsight/internal/aggregate"
	"github.com/dmercer/benchsight/internal/config"
	"github.com/dmercer/benchsight/internal/loader"
	"github.com/dmercer/benchsight/internal/report"
	"github.com/dmercer/benchsight/internal/spinner"
)

func newAnalyzeCommand() *cobra.Command {
	var (
		notesPath string
		outputDir string
		logDir    string
		model     string
		cfgPath   string
	)

	cmd := &cobra.Command{
		Use:   "analyze <results-dir>",
		Short: "Analyze a benchmark results directory",
		Long: `Analyze a benchmark results directory.

Reads score documents from <results-dir>/scores/, optionally joined with a
timing notes file and raw run logs, and writes a structured JSON document
plus a narrative report. Per-epoch problems are recorded in the report and
never abort the analysis.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], analyzeOptions{
				notesPath: notesPath,
				outputDir: outputDir,
				logDir:    logDir,
				model:     model,
				cfgPath:   cfgPath,
			})
		},
	}

	cmd.Flags().StringVar(&notesPath, "notes", "", "Timing notes file ({challenge}_{epoch}: MM:SS lines)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory (default results/<timestamp>_<model>)")
	cmd.Flags().StringVar(&logDir, "log-dir", "", "Directory of raw run logs to merge")
	cmd.Flags().StringVar(&model, "model", "", "Evaluated model name, recorded in the report")
	cmd.Flags().StringVar(&cfgPath, "config", "", "Analysis configuration file (YAML)")

	return cmd
}

type analyzeOptions struct {
	notesPath string
	outputDir string
	logDir    string
	model     string
	cfgPath   string
}

func runAnalyze(cmd *cobra.Command, resultsDir string, opts analyzeOptions) error {
	cfg, err := config.Load(opts.cfgPath)
	if err != nil {
		return err
	}

	// Progress feedback only when a human is watching.
	if f, ok := cmd.OutOrStdout().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		stop := spinner.Start(cmd.OutOrStdout(), "analyzing "+resultsDir)
		defer stop()
	}

	res, err := loader.Load(resultsDir, loader.Options{
		NotesPath: opts.notesPath,
		LogDir:    opts.logDir,
		Workers:   cfg.Workers,
	})
	if err != nil {
		// The loader names whichever path was missing (the results
		// directory itself or its scores/ subdirectory).
		if errors.Is(err, os.ErrNotExist) {
			return &NoDataError{Message: err.Error()}
		}
		return err
	}

	analysis, err := aggregate.Suite(res.Records, cfg, aggregate.Options{
		Model: opts.model,
		Seed:  -1,
	})
	if err != nil {
		var noData *aggregate.NoDataError
		if errors.As(err, &noData) {
			return &NoDataError{Message: noData.Reason}
		}
		return err
	}

	// Suite-level notes (bad timing lines, skipped files) go to stderr.
	for _, note := range res.Notes {
		fmt.Fprintf(cmd.ErrOrStderr(), "note (%s): %s\n", note.Kind, note.Message)
	}

	dir := report.OutputDir(opts.outputDir, opts.model, time.Now())
	paths, err := report.New(analysis).Write(dir)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
