package loader

import (
	"fmt"
	"sort"
	"time"

	"github.com/dmercer/benchsight/internal/models"
	"github.com/dmercer/benchsight/internal/runlog"
)

// loadRunLogs translates raw run logs into canonical epoch records. Analyst
// completions are treated exactly like score-document bodies: fenced JSON
// blocks extracted, schema-checked, decoded; only the provenance differs.
func loadRunLogs(dir string) ([]models.EpochRecord, []models.RecordNote, error) {
	runs, failures, err := runlog.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	names := make([]string, 0, len(failures))
	for name := range failures {
		names = append(names, name)
	}
	sort.Strings(names)

	var notes []models.RecordNote
	for _, name := range names {
		notes = append(notes, models.RecordNote{
			Kind:    models.NoteFormatError,
			Message: fmt.Sprintf("run log %s: %v", name, failures[name]),
		})
	}

	var records []models.EpochRecord
	for _, run := range runs {
		ch, err := models.ChallengeFromNumber(run.Challenge)
		if err != nil {
			notes = append(notes, models.RecordNote{
				Kind:    models.NoteFormatError,
				Message: fmt.Sprintf("run log for challenge %d: %v", run.Challenge, err),
			})
			continue
		}
		for _, ep := range run.Epochs {
			rec := models.EpochRecord{
				Challenge: ch,
				Index:     ep.Index,
				Turns:     ep.Turns,
			}
			if ep.WorkingSeconds > 0 {
				rec.Elapsed = time.Duration(ep.WorkingSeconds * float64(time.Second))
				rec.HasTiming = true
			}
			for _, completion := range ep.Completions {
				blocks, bad := extractJSONBlocks([]byte(completion))
				for _, msg := range bad {
					rec.Note(models.NoteFormatError, fmt.Sprintf("unparseable JSON block: %s", msg))
				}
				for _, b := range blocks {
					review, reviewNotes := decodeReview(b.payload, models.SourceRunLog)
					for _, msg := range reviewNotes {
						rec.Note(models.NoteValidationError, msg)
					}
					rec.Reviews = append(rec.Reviews, review)
				}
			}
			if len(rec.Reviews) == 0 {
				rec.Note(models.NoteFormatError, "no parseable analyst completions")
			}
			records = append(records, rec)
		}
	}
	return records, notes, nil
}
