package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmercer/benchsight/internal/models"
	"github.com/dmercer/benchsight/internal/runlog"
)

// scoreDoc renders a minimal score document with one analyst block for the
// given challenge.
func scoreDoc(t *testing.T, challenge int, analyst string) string {
	t.Helper()
	specialization := map[int][2]string{
		1: {"physics", "math"},
		2: {"policy", "ethics"},
		3: {"code", "debugging"},
		4: {"finance", "strategy"},
		5: {"knowledge", "communication"},
	}[challenge]

	payload := map[string]any{
		"analyst": analyst,
		"structure": map[string]any{
			"traceability": 8, "variety": 7, "accountability": 6, "integrity": 9,
		},
		"behavior": map[string]any{
			"truthfulness": 8, "completeness": 7, "groundedness": 6,
			"literacy": 9, "comparison": "N/A", "preference": 5,
		},
		"specialization": map[string]any{
			specialization[0]: 7, specialization[1]: 8,
		},
		"scoring_rationale": "consistent reasoning",
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return fmt.Sprintf("# Scores\n\n```json\n%s\n```\n", data)
}

func writeSuite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	scores := filepath.Join(dir, "scores")
	require.NoError(t, os.MkdirAll(scores, 0o755))

	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(scores, name), []byte(content), 0o644))
	}
	write("1_1_scores.md", scoreDoc(t, 1, "judge-a"))
	write("1_2_scores.md", scoreDoc(t, 1, "judge-a"))
	write("2_1_scores.md", scoreDoc(t, 2, "judge-b"))
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeSuite(t)
	notes := filepath.Join(dir, "timing.md")
	require.NoError(t, os.WriteFile(notes, []byte("1_1: 3:10\n1_2: 0:45\n"), 0o644))

	res, err := Load(dir, Options{NotesPath: notes, Workers: 2})
	require.NoError(t, err)
	require.Len(t, res.Records, 3)

	// Deterministic (challenge, epoch) order regardless of parse order.
	assert.Equal(t, models.ChallengeFormal, res.Records[0].Challenge)
	assert.Equal(t, 1, res.Records[0].Index)
	assert.Equal(t, models.ChallengeFormal, res.Records[1].Challenge)
	assert.Equal(t, 2, res.Records[1].Index)
	assert.Equal(t, models.ChallengeNormative, res.Records[2].Challenge)

	assert.True(t, res.Records[0].HasTiming)
	assert.Equal(t, 190.0, res.Records[0].Elapsed.Seconds())
	assert.True(t, res.Records[1].HasTiming)
	assert.Equal(t, 45.0, res.Records[1].Elapsed.Seconds())
	assert.False(t, res.Records[2].HasTiming, "untimed epoch stays untimed")

	require.Len(t, res.Records[0].Reviews, 1)
	assert.Equal(t, "judge-a", res.Records[0].Reviews[0].Analyst)
}

func TestLoadMissingResultsDir(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadSkipsMisnamedDocs(t *testing.T) {
	dir := writeSuite(t)
	misnamed := filepath.Join(dir, "scores", "notes_about_run.md")
	require.NoError(t, os.WriteFile(misnamed, []byte("# not a score doc"), 0o644))

	res, err := Load(dir, Options{Workers: 1})
	require.NoError(t, err)
	assert.Len(t, res.Records, 3)

	var found bool
	for _, note := range res.Notes {
		if note.Kind == models.NoteFormatError {
			found = true
		}
	}
	assert.True(t, found, "misnamed markdown files are reported, not silently skipped")
}

func TestLoadUnparseableDocIsUnscored(t *testing.T) {
	dir := t.TempDir()
	scores := filepath.Join(dir, "scores")
	require.NoError(t, os.MkdirAll(scores, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(scores, "1_1_scores.md"),
		[]byte("# Scores\n\nNo JSON here.\n"), 0o644))

	res, err := Load(dir, Options{})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Empty(t, res.Records[0].Reviews)
	require.NotEmpty(t, res.Records[0].Notes)
	assert.Equal(t, models.NoteFormatError, res.Records[0].Notes[0].Kind)
}

func TestLoadMergesRunLogs(t *testing.T) {
	dir := writeSuite(t)

	logDir := filepath.Join(dir, "logs")
	require.NoError(t, os.MkdirAll(logDir, 0o755))

	run := runlog.Run{
		Challenge: 3,
		Epochs: []runlog.Epoch{{
			Index:          1,
			WorkingSeconds: 240,
			Turns:          6,
			Completions:    []string{scoreDoc(t, 3, "judge-c")},
		}},
	}
	data, err := json.Marshal(run)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(logDir, "procedural.json"), data, 0o644))

	res, err := Load(dir, Options{LogDir: logDir})
	require.NoError(t, err)
	require.Len(t, res.Records, 4)

	last := res.Records[3]
	assert.Equal(t, models.ChallengeProcedural, last.Challenge)
	assert.True(t, last.HasTiming)
	assert.Equal(t, 240.0, last.Elapsed.Seconds())
	assert.Equal(t, 6, last.Turns)
	require.Len(t, last.Reviews, 1)
	assert.Equal(t, models.SourceRunLog, last.Reviews[0].Source)
}

func TestLoadDropsDuplicateRunLogEpochs(t *testing.T) {
	dir := writeSuite(t)

	logDir := filepath.Join(dir, "logs")
	require.NoError(t, os.MkdirAll(logDir, 0o755))

	writeLog := func(name string, run runlog.Run) {
		data, err := json.Marshal(run)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(logDir, name), data, 0o644))
	}

	// Epoch 1 appears twice in one log and again in a second log.
	writeLog("procedural.json", runlog.Run{
		Challenge: 3,
		Epochs: []runlog.Epoch{
			{Index: 1, WorkingSeconds: 240, Completions: []string{scoreDoc(t, 3, "judge-c")}},
			{Index: 1, WorkingSeconds: 999, Completions: []string{scoreDoc(t, 3, "judge-d")}},
		},
	})
	writeLog("procedural_retry.json", runlog.Run{
		Challenge: 3,
		Epochs: []runlog.Epoch{
			{Index: 1, WorkingSeconds: 60, Completions: []string{scoreDoc(t, 3, "judge-e")}},
		},
	})

	res, err := Load(dir, Options{LogDir: logDir})
	require.NoError(t, err)
	require.Len(t, res.Records, 4, "one record per (challenge, epoch)")

	last := res.Records[3]
	assert.Equal(t, models.ChallengeProcedural, last.Challenge)
	assert.Equal(t, 1, last.Index)
	assert.Equal(t, 240.0, last.Elapsed.Seconds(), "first run-log record wins")
	require.Len(t, last.Reviews, 1)
	assert.Equal(t, "judge-c", last.Reviews[0].Analyst)

	var dropped int
	for _, note := range res.Notes {
		if note.Kind == models.NoteFormatError && strings.Contains(note.Message, "duplicate run-log record") {
			dropped++
		}
	}
	assert.Equal(t, 2, dropped, "each dropped duplicate is reported")
}

func TestLoadScoreDocWinsOverRunLog(t *testing.T) {
	dir := writeSuite(t)

	logDir := filepath.Join(dir, "logs")
	require.NoError(t, os.MkdirAll(logDir, 0o755))

	// Same (challenge, epoch) as 1_1_scores.md.
	run := runlog.Run{
		Challenge: 1,
		Epochs: []runlog.Epoch{{
			Index:       1,
			Completions: []string{scoreDoc(t, 1, "judge-z")},
		}},
	}
	data, err := json.Marshal(run)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(logDir, "formal.json"), data, 0o644))

	res, err := Load(dir, Options{LogDir: logDir})
	require.NoError(t, err)
	require.Len(t, res.Records, 3, "duplicate epoch from the run log is dropped")
	assert.Equal(t, "judge-a", res.Records[0].Reviews[0].Analyst)
}
