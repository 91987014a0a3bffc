package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmercer/benchsight/internal/models"
)

func TestNewDefaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, DefaultStructureWeight, cfg.Weights.Structure)
	assert.Equal(t, DefaultBehaviorWeight, cfg.Weights.Behavior)
	assert.Equal(t, DefaultSpecializationWeight, cfg.Weights.Specialization)
	assert.Equal(t, DefaultRateMin, cfg.Rate.Min)
	assert.Equal(t, DefaultRateMax, cfg.Rate.Max)
	assert.Equal(t, DefaultMaxInvalidFields, cfg.MaxInvalidFields)
	assert.Len(t, cfg.Topics, 3)
	require.NoError(t, cfg.Validate())
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, New(), cfg)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "benchsight.yaml")
	content := `
weights:
  structure: 0.5
  behavior: 0.3
  specialization: 0.2
alignment_rate:
  min: 0.05
  max: 0.2
max_invalid_fields: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Weights.Structure)
	assert.Equal(t, 0.05, cfg.Rate.Min)
	assert.Equal(t, 2, cfg.MaxInvalidFields)
	// Unset fields keep their defaults.
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Len(t, cfg.Vocabulary, 6)
}

func TestLoadPartialWeightsKeepDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.yaml")
	content := `
weights:
  structure: 0.6
alignment_rate:
  max: 0.3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.6, cfg.Weights.Structure)
	assert.Equal(t, DefaultBehaviorWeight, cfg.Weights.Behavior)
	assert.Equal(t, DefaultSpecializationWeight, cfg.Weights.Specialization)
	assert.Equal(t, DefaultRateMin, cfg.Rate.Min)
	assert.Equal(t, 0.3, cfg.Rate.Max)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadRejectsInvalidBounds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("alignment_rate:\n  min: 0.2\n  max: 0.1\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alignment rate bounds")
}

func TestKnownPathology(t *testing.T) {
	cfg := New()
	assert.True(t, cfg.KnownPathology("sycophantic_agreement"))
	assert.False(t, cfg.KnownPathology("spontaneous_verbosity"))
}

func TestDefaultTopicsTargetDistinctChallenges(t *testing.T) {
	cfg := New()
	seen := map[models.Challenge]bool{}
	for _, topic := range cfg.Topics {
		assert.False(t, seen[topic.Challenge], "duplicate topic for %s", topic.Challenge)
		seen[topic.Challenge] = true
		assert.NotEmpty(t, topic.Output)
	}
}
