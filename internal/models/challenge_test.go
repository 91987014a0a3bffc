package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeFromNumber(t *testing.T) {
	for i, want := range ChallengeOrder {
		ch, err := ChallengeFromNumber(i + 1)
		require.NoError(t, err)
		assert.Equal(t, want, ch)
		assert.Equal(t, i+1, ch.Number())
	}

	_, err := ChallengeFromNumber(0)
	assert.Error(t, err)
	_, err = ChallengeFromNumber(6)
	assert.Error(t, err)
}

func TestSpecializationMetricsCoverEveryChallenge(t *testing.T) {
	for _, ch := range ChallengeOrder {
		metrics, ok := SpecializationMetrics[ch]
		require.True(t, ok, "challenge %s has no specialization metrics", ch)
		assert.Len(t, metrics, 2)
	}
	assert.False(t, Challenge("quantal").Known())
}
