package loader

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmercer/benchsight/internal/models"
)

func TestParseTimingNotes(t *testing.T) {
	input := `
Session notes, morning run.

1_1: 3:10
1_2: 0:45
2_1: 12:05

Observed the formal challenge stalling around turn 4.
`
	timings, notes, err := ParseTimingNotes(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, notes)

	assert.Equal(t, 3*time.Minute+10*time.Second, timings[TimingKey{Challenge: 1, Epoch: 1}])
	assert.Equal(t, 45*time.Second, timings[TimingKey{Challenge: 1, Epoch: 2}])
	assert.Equal(t, 12*time.Minute+5*time.Second, timings[TimingKey{Challenge: 2, Epoch: 1}])
	assert.Len(t, timings, 3)
}

func TestParseTimingNotesRejectsBadSeconds(t *testing.T) {
	// 3:86 is malformed, not 3 minutes 86 seconds.
	timings, notes, err := ParseTimingNotes(strings.NewReader("1_1: 3:86\n1_2: 2:00\n"))
	require.NoError(t, err)

	require.Len(t, notes, 1)
	assert.Equal(t, models.NoteFormatError, notes[0].Kind)
	assert.Contains(t, notes[0].Message, "seconds component 86")

	_, ok := timings[TimingKey{Challenge: 1, Epoch: 1}]
	assert.False(t, ok, "malformed line must be skipped, not corrected")
	assert.Equal(t, 2*time.Minute, timings[TimingKey{Challenge: 1, Epoch: 2}])
}

func TestParseTimingNotesUnboundedMinutes(t *testing.T) {
	timings, notes, err := ParseTimingNotes(strings.NewReader("3_1: 125:59\n"))
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.Equal(t, 125*time.Minute+59*time.Second, timings[TimingKey{Challenge: 3, Epoch: 1}])
}

func TestParseTimingNotesDuplicate(t *testing.T) {
	timings, notes, err := ParseTimingNotes(strings.NewReader("1_1: 3:10\n1_1: 4:00\n"))
	require.NoError(t, err)

	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, "duplicate")
	// First entry wins.
	assert.Equal(t, 3*time.Minute+10*time.Second, timings[TimingKey{Challenge: 1, Epoch: 1}])
}
