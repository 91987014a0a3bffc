// Package report renders a suite analysis into its two output documents: a
// structured JSON file and a narrative text report. Both come from the same
// SuiteAnalysis value so they cannot disagree.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// JSONFileName is the structured analysis document.
	JSONFileName = "analysis_data.json"
	// TextFileName is the narrative report.
	TextFileName = "analysis_report.txt"
)

// OutputDir resolves where the documents go. An explicit dir wins; otherwise
// a timestamped directory under results/ keyed by model name.
func OutputDir(explicit, model string, now time.Time) string {
	if explicit != "" {
		return explicit
	}
	name := now.Format("20060102_150405")
	if model != "" {
		name += "_" + sanitize(model)
	}
	return filepath.Join("results", name)
}

// sanitize makes a model name safe as a path segment.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, s)
}

// Write renders both documents into dir, creating it if needed, and returns
// the paths written.
func (r *Renderer) Write(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("output directory: %w", err)
	}

	jsonPath := filepath.Join(dir, JSONFileName)
	data, err := r.JSON()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", JSONFileName, err)
	}

	textPath := filepath.Join(dir, TextFileName)
	if err := os.WriteFile(textPath, []byte(r.Text()), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", TextFileName, err)
	}

	return []string{jsonPath, textPath}, nil
}

// JSON serializes the analysis. The encoding is idempotent: unmarshalling
// the output and marshalling again yields identical bytes.
func (r *Renderer) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r.analysis, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding analysis: %w", err)
	}
	return append(data, '\n'), nil
}
