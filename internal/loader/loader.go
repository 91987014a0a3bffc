// Package loader reads raw evaluation inputs (per-epoch score documents,
// timing notes, and raw run logs) and converts them into the canonical
// EpochRecord shape the rest of the pipeline consumes. Input-format variance
// stops here: downstream components never see where a record came from.
package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/dmercer/benchsight/internal/models"
	"golang.org/x/sync/errgroup"
)

// scoreFilePattern matches score document names: {challenge}_{epoch}_scores.md.
var scoreFilePattern = regexp.MustCompile(`^(\d+)_(\d+)_scores\.md$`)

// Options control a Load invocation.
type Options struct {
	// NotesPath points at the timing notes document; empty means no timing.
	NotesPath string
	// LogDir holds raw run logs to translate alongside the score documents.
	LogDir string
	// Workers bounds parallel score-document parsing. <=0 falls back to 1.
	Workers int
}

// Result is everything a results directory yielded.
type Result struct {
	Records []models.EpochRecord
	// Notes carries suite-level problems not attributable to one epoch
	// (bad timing lines, skipped files).
	Notes []models.RecordNote
}

// Load reads a results directory and produces epoch records ordered by
// (challenge, epoch index). The directory must contain a scores/
// subdirectory; a missing directory is a structural error. Individual
// document failures are recorded and skipped, never fatal.
func Load(resultsDir string, opts Options) (*Result, error) {
	if _, err := os.Stat(resultsDir); err != nil {
		return nil, fmt.Errorf("results directory: %w", err)
	}

	res := &Result{}

	durations := map[TimingKey]time.Duration{}
	if opts.NotesPath != "" {
		parsed, notes, err := ParseTimingNotesFile(opts.NotesPath)
		if err != nil {
			return nil, err
		}
		res.Notes = append(res.Notes, notes...)
		durations = parsed
	}

	records, notes, err := loadScoreDocs(filepath.Join(resultsDir, "scores"), opts.Workers)
	if err != nil {
		return nil, err
	}
	res.Notes = append(res.Notes, notes...)

	if opts.LogDir != "" {
		logRecords, logNotes, err := loadRunLogs(opts.LogDir)
		if err != nil {
			return nil, err
		}
		res.Notes = append(res.Notes, logNotes...)
		merged, mergeNotes := mergeRecords(records, logRecords)
		res.Notes = append(res.Notes, mergeNotes...)
		records = merged
	}

	// Attach timing. Score-document epochs have no intrinsic duration;
	// run-log epochs may already carry one, which the notes override.
	for i := range records {
		key := TimingKey{Challenge: records[i].Challenge.Number(), Epoch: records[i].Index}
		if d, ok := durations[key]; ok {
			records[i].Elapsed = d
			records[i].HasTiming = true
		}
	}

	sortRecords(records)
	res.Records = records
	return res, nil
}

// loadScoreDocs parses every score document under dir in parallel. Results
// join deterministically: each file writes to its own slot, then the joined
// slice is ordered by (challenge, epoch); completion order never matters.
func loadScoreDocs(dir string, workers int) ([]models.EpochRecord, []models.RecordNote, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("scores directory: %w", err)
	}

	type namedFile struct {
		path      string
		challenge int
		epoch     int
	}

	var files []namedFile
	var notes []models.RecordNote
	var notesMu sync.Mutex

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := scoreFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			if filepath.Ext(e.Name()) == ".md" {
				notes = append(notes, models.RecordNote{
					Kind:    models.NoteFormatError,
					Message: fmt.Sprintf("skipping %s: name does not match {challenge}_{epoch}_scores.md", e.Name()),
				})
			}
			continue
		}
		c, _ := strconv.Atoi(m[1])
		ep, _ := strconv.Atoi(m[2])
		files = append(files, namedFile{path: filepath.Join(dir, e.Name()), challenge: c, epoch: ep})
	}

	if workers <= 0 {
		workers = 1
	}

	records := make([]*models.EpochRecord, len(files))
	var g errgroup.Group
	g.SetLimit(workers)

	for i, f := range files {
		g.Go(func() error {
			rec, err := parseScoreDoc(f.path, f.challenge, f.epoch)
			if err != nil {
				notesMu.Lock()
				notes = append(notes, models.RecordNote{
					Kind:    models.NoteFormatError,
					Message: fmt.Sprintf("%s: %v", filepath.Base(f.path), err),
				})
				notesMu.Unlock()
				return nil // per-document failures never abort the suite
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	out := make([]models.EpochRecord, 0, len(records))
	for _, r := range records {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, notes, nil
}

// parseScoreDoc reads one score document into an epoch record. Zero
// parseable JSON blocks yields an unscored record with a format note, not
// an error: the epoch happened, it just has no usable reviews.
func parseScoreDoc(path string, challenge, epoch int) (*models.EpochRecord, error) {
	ch, err := models.ChallengeFromNumber(challenge)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	rec := &models.EpochRecord{Challenge: ch, Index: epoch}

	blocks, bad := extractJSONBlocks(data)
	for _, msg := range bad {
		rec.Note(models.NoteFormatError, fmt.Sprintf("unparseable JSON block: %s", msg))
	}

	if len(blocks) == 0 {
		rec.Note(models.NoteFormatError, "no parseable JSON blocks found")
		slog.Warn("score document has no parseable analyst blocks",
			"file", filepath.Base(path), "challenge", ch, "epoch", epoch)
		return rec, nil
	}

	for _, b := range blocks {
		review, reviewNotes := decodeReview(b.payload, models.SourceScoreDoc)
		for _, msg := range reviewNotes {
			rec.Note(models.NoteValidationError, msg)
		}
		rec.Reviews = append(rec.Reviews, review)
	}
	return rec, nil
}

// mergeRecords unions score-document records with run-log records, keeping
// each (challenge, epoch) key at most once. Score documents win collisions
// silently; a run-log record colliding with an already-merged run-log record
// is an input anomaly and gets a format note.
func mergeRecords(primary, secondary []models.EpochRecord) ([]models.EpochRecord, []models.RecordNote) {
	seen := make(map[TimingKey]bool, len(primary)+len(secondary))
	for _, r := range primary {
		seen[TimingKey{Challenge: r.Challenge.Number(), Epoch: r.Index}] = true
	}
	out := primary
	var notes []models.RecordNote
	fromLog := make(map[TimingKey]bool, len(secondary))
	for _, r := range secondary {
		key := TimingKey{Challenge: r.Challenge.Number(), Epoch: r.Index}
		if seen[key] {
			if fromLog[key] {
				notes = append(notes, models.RecordNote{
					Kind:    models.NoteFormatError,
					Message: fmt.Sprintf("dropping duplicate run-log record for %s epoch %d", r.Challenge, r.Index),
				})
			}
			continue
		}
		seen[key] = true
		fromLog[key] = true
		out = append(out, r)
	}
	return out, notes
}

func sortRecords(records []models.EpochRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Challenge.Number() != records[j].Challenge.Number() {
			return records[i].Challenge.Number() < records[j].Challenge.Number()
		}
		return records[i].Index < records[j].Index
	})
}
