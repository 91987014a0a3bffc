package loader

import (
	"fmt"
	"sort"

	"github.com/dmercer/benchsight/internal/models"
	"github.com/dmercer/benchsight/internal/validation"
	"github.com/go-viper/mapstructure/v2"
)

// reviewPayload is the lenient decode target for one analyst JSON block.
// Metric maps stay loosely typed so a single bad field cannot sink the
// decode; conversion to MetricValue happens per field below.
type reviewPayload struct {
	Analyst        string         `mapstructure:"analyst"`
	Structure      map[string]any `mapstructure:"structure"`
	Behavior       map[string]any `mapstructure:"behavior"`
	Specialization map[string]any `mapstructure:"specialization"`
	Pathologies    []string       `mapstructure:"pathologies"`
	Rationale      string         `mapstructure:"scoring_rationale"`
	Strengths      string         `mapstructure:"strengths"`
	Weaknesses     string         `mapstructure:"weaknesses"`
	Insights       string         `mapstructure:"insights"`
}

// decodeReview converts a parsed JSON payload into an AnalystReview.
// Schema violations and per-field conversion failures come back as note
// messages; the review is still returned with whatever fields survived.
func decodeReview(payload map[string]any, source models.ReviewSource) (models.AnalystReview, []string) {
	var notes []string

	notes = append(notes, validation.ValidateReview(payload)...)

	var p reviewPayload
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
	})
	if err == nil {
		err = decoder.Decode(payload)
	}
	if err != nil {
		notes = append(notes, fmt.Sprintf("review decode: %v", err))
		return models.AnalystReview{Source: source}, notes
	}

	review := models.AnalystReview{
		Analyst:     p.Analyst,
		Source:      source,
		Rationale:   p.Rationale,
		Strengths:   p.Strengths,
		Weaknesses:  p.Weaknesses,
		Insights:    p.Insights,
		Pathologies: p.Pathologies,
	}
	review.Structure, notes = convertMetrics(p.Structure, "structure", notes)
	review.Behavior, notes = convertMetrics(p.Behavior, "behavior", notes)
	review.Specialization, notes = convertMetrics(p.Specialization, "specialization", notes)

	return review, notes
}

// convertMetrics turns a loose metric map into MetricValues. Unconvertible
// fields are omitted (absent) and noted.
func convertMetrics(raw map[string]any, category string, notes []string) (map[string]models.MetricValue, []string) {
	if len(raw) == 0 {
		return nil, notes
	}
	out := make(map[string]models.MetricValue, len(raw))

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v, err := models.MetricFromAny(raw[k])
		if err != nil {
			notes = append(notes, fmt.Sprintf("%s.%s: %v", category, k, err))
			continue
		}
		if v.State() == models.MetricAbsent {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil, notes
	}
	return out, notes
}
