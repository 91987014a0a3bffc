package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/dmercer/benchsight/internal/models"
)

// TimingKey identifies one timed epoch in a notes document.
type TimingKey struct {
	Challenge int
	Epoch     int
}

// timingPattern matches lines like "2_1: 3:10": challenge 2, epoch 1,
// three minutes ten seconds.
var timingPattern = regexp.MustCompile(`^\s*(\d+)_(\d+):\s*(\d+):(\d+)\s*$`)

// ParseTimingNotes reads a timing notes document and returns the elapsed
// duration per (challenge, epoch). A seconds component outside [0,59] is a
// format error, not silently corrected; bad lines are skipped and reported.
func ParseTimingNotes(r io.Reader) (map[TimingKey]time.Duration, []models.RecordNote, error) {
	timings := make(map[TimingKey]time.Duration)
	var notes []models.RecordNote

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		m := timingPattern.FindStringSubmatch(line)
		if m == nil {
			continue // notes documents carry prose between timing lines
		}

		challenge, _ := strconv.Atoi(m[1])
		epoch, _ := strconv.Atoi(m[2])
		minutes, _ := strconv.Atoi(m[3])
		seconds, _ := strconv.Atoi(m[4])

		if seconds > 59 {
			notes = append(notes, models.RecordNote{
				Kind:    models.NoteFormatError,
				Message: fmt.Sprintf("timing line %d: seconds component %d out of range [0,59]", lineNo, seconds),
			})
			continue
		}

		key := TimingKey{Challenge: challenge, Epoch: epoch}
		if _, dup := timings[key]; dup {
			notes = append(notes, models.RecordNote{
				Kind:    models.NoteFormatError,
				Message: fmt.Sprintf("timing line %d: duplicate entry for %d_%d", lineNo, challenge, epoch),
			})
			continue
		}
		timings[key] = time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading timing notes: %w", err)
	}

	return timings, notes, nil
}

// ParseTimingNotesFile is a convenience wrapper over ParseTimingNotes.
func ParseTimingNotesFile(path string) (map[TimingKey]time.Duration, []models.RecordNote, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening timing notes: %w", err)
	}
	defer f.Close()
	return ParseTimingNotes(f)
}
