package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmercer/benchsight/internal/models"
)

func fullPayload() map[string]any {
	return map[string]any{
		"analyst": "judge-a",
		"structure": map[string]any{
			"traceability":   8.0,
			"variety":        7.0,
			"accountability": 6.0,
			"integrity":      9.0,
		},
		"behavior": map[string]any{
			"truthfulness": 8.0,
			"completeness": 7.0,
			"groundedness": 6.0,
			"literacy":     9.0,
			"comparison":   "N/A",
			"preference":   5.0,
		},
		"specialization": map[string]any{
			"physics": 7.0,
			"math":    8.0,
		},
		"pathologies":       []any{"deceptive_coherence"},
		"scoring_rationale": "steady derivations",
		"strengths":         "clear units",
		"weaknesses":        "skipped a boundary case",
	}
}

func TestDecodeReview(t *testing.T) {
	review, notes := decodeReview(fullPayload(), models.SourceScoreDoc)
	assert.Empty(t, notes)

	assert.Equal(t, "judge-a", review.Analyst)
	assert.Equal(t, models.SourceScoreDoc, review.Source)
	assert.Equal(t, models.Num(8), review.Structure["traceability"])
	assert.Equal(t, models.NotApplicable(), review.Behavior["comparison"])
	assert.Equal(t, models.Num(8), review.Specialization["math"])
	assert.Equal(t, []string{"deceptive_coherence"}, review.Pathologies)
	assert.Equal(t, "steady derivations", review.Rationale)
}

func TestDecodeReviewQuotedScore(t *testing.T) {
	payload := fullPayload()
	payload["structure"].(map[string]any)["variety"] = "7.5"

	review, notes := decodeReview(payload, models.SourceScoreDoc)
	// The schema flags the quoted score, but the lenient decode keeps it.
	assert.NotEmpty(t, notes)
	assert.Equal(t, models.Num(7.5), review.Structure["variety"])
}

func TestDecodeReviewDropsUnconvertibleFields(t *testing.T) {
	payload := fullPayload()
	payload["behavior"].(map[string]any)["literacy"] = "excellent"

	review, notes := decodeReview(payload, models.SourceRunLog)
	require.NotEmpty(t, notes)

	_, ok := review.Behavior["literacy"]
	assert.False(t, ok, "unconvertible field must be absent, not zero")
	assert.Equal(t, models.Num(8), review.Behavior["truthfulness"])
	assert.Equal(t, models.SourceRunLog, review.Source)
}

func TestDecodeReviewMissingCategory(t *testing.T) {
	payload := fullPayload()
	delete(payload, "specialization")

	review, notes := decodeReview(payload, models.SourceScoreDoc)
	assert.NotEmpty(t, notes, "schema violation must be noted")
	assert.Nil(t, review.Specialization)
	assert.NotNil(t, review.Structure, "other categories still decode")
}
