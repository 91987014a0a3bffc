// Package runlog reads machine-written run logs: one JSON document per
// challenge run, with per-epoch working time, turn counts, and the raw
// analyst completion text. Logs may be stored plain, gzip-compressed, or
// zstd-compressed.
package runlog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Epoch is one epoch entry in a run log.
type Epoch struct {
	Index          int      `json:"epoch"`
	WorkingSeconds float64  `json:"working_time_seconds"`
	Turns          int      `json:"turns"`
	Completions    []string `json:"analyst_completions"`
}

// Run is one decoded run-log document.
type Run struct {
	Challenge int     `json:"challenge"`
	Epochs    []Epoch `json:"epochs"`
}

// ReadFile decodes a single run log, transparently decompressing by
// extension: .json, .json.gz, .json.zst.
func ReadFile(path string) (*Run, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	switch {
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		defer gz.Close()
		r = gz
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		defer zr.Close()
		r = zr
	}

	var run Run
	dec := json.NewDecoder(r)
	if err := dec.Decode(&run); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if run.Challenge == 0 {
		return nil, fmt.Errorf("%s: missing challenge number", filepath.Base(path))
	}
	return &run, nil
}

// ReadDir decodes every recognized run log under dir. Unreadable files are
// returned as errors keyed by file name so the caller can record and skip
// them; only a missing directory is fatal.
func ReadDir(dir string) ([]Run, map[string]error, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("run-log directory: %w", err)
	}

	var runs []Run
	failures := map[string]error{}
	for _, e := range entries {
		if e.IsDir() || !recognized(e.Name()) {
			continue
		}
		run, err := ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			failures[e.Name()] = err
			continue
		}
		runs = append(runs, *run)
	}

	// Stable: same-challenge runs keep file-name order, so the caller's
	// first-wins dedupe is deterministic.
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Challenge < runs[j].Challenge })
	return runs, failures, nil
}

func recognized(name string) bool {
	return strings.HasSuffix(name, ".json") ||
		strings.HasSuffix(name, ".json.gz") ||
		strings.HasSuffix(name, ".json.zst")
}
