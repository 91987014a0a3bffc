package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validReview() map[string]any {
	return map[string]any{
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
		"scoring_rationale": "solid derivation throughout",
	}
}

func TestValidateReviewAccepts(t *testing.T) {
	errs := ValidateReview(validReview())
	assert.Empty(t, errs)
}

func TestValidateReviewRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing structure category", func(r map[string]any) {
			delete(r, "structure")
		}},
		{"missing structure metric", func(r map[string]any) {
			delete(r["structure"].(map[string]any), "integrity")
		}},
		{"na in structure", func(r map[string]any) {
			r["structure"].(map[string]any)["variety"] = "N/A"
		}},
		{"score above range", func(r map[string]any) {
			r["behavior"].(map[string]any)["literacy"] = 11.0
		}},
		{"bad na spelling", func(r map[string]any) {
			r["behavior"].(map[string]any)["comparison"] = "NA"
		}},
		{"one specialization metric", func(r map[string]any) {
			r["specialization"] = map[string]any{"physics": 7.0}
		}},
		{"pathologies not strings", func(r map[string]any) {
			r["pathologies"] = []any{42.0}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			review := validReview()
			tt.mutate(review)
			errs := ValidateReview(review)
			require.NotEmpty(t, errs)
		})
	}
}

func TestValidateReviewBytes(t *testing.T) {
	errs := ValidateReviewBytes([]byte(`{"structure": {}}`))
	assert.NotEmpty(t, errs)

	errs = ValidateReviewBytes([]byte(`{not json`))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "JSON parse error")
}
