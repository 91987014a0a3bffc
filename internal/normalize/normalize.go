// Package normalize validates raw analyst reviews and reconciles them into
// one score per epoch. It is the only place review disagreement is resolved;
// everything downstream sees a single ReconciledScore or none at all.
package normalize

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/dmercer/benchsight/internal/config"
	"github.com/dmercer/benchsight/internal/models"
)

// Epoch converts a canonical loader record into an analyzed epoch carrying
// the reconciled score. Reviews with more than cfg.MaxInvalidFields invalid
// required fields are discarded; an epoch with zero surviving reviews is
// unscored (nil Score), never zero-scored.
func Epoch(rec models.EpochRecord, cfg *config.Config) models.Epoch {
	ep := models.Epoch{
		Index:          rec.Index,
		ElapsedSeconds: rec.Elapsed.Seconds(),
		HasTiming:      rec.HasTiming,
		Turns:          rec.Turns,
		Reviews:        rec.Reviews,
		Notes:          rec.Notes,
	}

	var valid []models.AnalystReview
	for i, review := range rec.Reviews {
		cleaned, invalid := validateReview(review, rec.Challenge)
		for _, msg := range invalid {
			ep.Notes = append(ep.Notes, models.RecordNote{
				Kind:    models.NoteValidationError,
				Message: fmt.Sprintf("review %d: %s", i+1, msg),
			})
		}
		if len(invalid) > cfg.MaxInvalidFields {
			ep.Notes = append(ep.Notes, models.RecordNote{
				Kind: models.NoteReviewDiscarded,
				Message: fmt.Sprintf("review %d discarded: %d invalid required fields (limit %d)",
					i+1, len(invalid), cfg.MaxInvalidFields),
			})
			slog.Warn("discarding analyst review",
				"challenge", rec.Challenge, "epoch", rec.Index,
				"review", i+1, "invalid_fields", len(invalid))
			continue
		}
		valid = append(valid, cleaned)
	}

	if len(valid) == 0 {
		return ep
	}

	ep.Score = &models.ReconciledScore{
		Structure:      reconcileCategory(valid, models.StructureMetrics, categoryStructure),
		Behavior:       reconcileCategory(valid, models.BehaviorMetrics, categoryBehavior),
		Specialization: reconcileCategory(valid, models.SpecializationMetrics[rec.Challenge], categorySpecialization),
		ValidReviews:   len(valid),
	}
	return ep
}

type category int

const (
	categoryStructure category = iota
	categoryBehavior
	categorySpecialization
)

func (c category) of(r models.AnalystReview) map[string]models.MetricValue {
	switch c {
	case categoryStructure:
		return r.Structure
	case categoryBehavior:
		return r.Behavior
	default:
		return r.Specialization
	}
}

func (c category) String() string {
	switch c {
	case categoryStructure:
		return "structure"
	case categoryBehavior:
		return "behavior"
	default:
		return "specialization"
	}
}

// validateReview range-checks every required field and strips the ones that
// fail. Structure and specialization metrics must be numeric; behavior
// metrics additionally admit the "N/A" sentinel. The returned list names each
// invalid required field.
func validateReview(r models.AnalystReview, ch models.Challenge) (models.AnalystReview, []string) {
	var invalid []string

	check := func(cat category, metrics []string, allowNA bool) map[string]models.MetricValue {
		src := cat.of(r)
		out := make(map[string]models.MetricValue, len(metrics))
		for _, name := range metrics {
			v, ok := src[name]
			if !ok || v.State() == models.MetricAbsent {
				invalid = append(invalid, fmt.Sprintf("%s.%s missing", cat, name))
				continue
			}
			if v.NA() {
				if allowNA {
					out[name] = v
					continue
				}
				invalid = append(invalid, fmt.Sprintf("%s.%s does not admit N/A", cat, name))
				continue
			}
			score, _ := v.Score()
			if score < config.ScoreMin || score > config.ScoreMax {
				invalid = append(invalid, fmt.Sprintf("%s.%s=%g outside [%g, %g]",
					cat, name, score, config.ScoreMin, config.ScoreMax))
				continue
			}
			out[name] = v
		}
		return out
	}

	cleaned := r
	cleaned.Structure = check(categoryStructure, models.StructureMetrics, false)
	cleaned.Behavior = check(categoryBehavior, models.BehaviorMetrics, true)
	cleaned.Specialization = check(categorySpecialization, models.SpecializationMetrics[ch], false)

	sort.Strings(invalid)
	return cleaned, invalid
}

// reconcileCategory merges one category across the valid reviews: per-field
// mean of the numeric bearers; all bearers "N/A" reconciles to "N/A"; fields
// no review supplied are omitted.
func reconcileCategory(reviews []models.AnalystReview, metrics []string, cat category) map[string]models.MetricValue {
	out := make(map[string]models.MetricValue, len(metrics))
	for _, name := range metrics {
		sum, numeric, na := 0.0, 0, 0
		for _, r := range reviews {
			v, ok := cat.of(r)[name]
			if !ok {
				continue
			}
			if s, present := v.Score(); present {
				sum += s
				numeric++
			} else if v.NA() {
				na++
			}
		}
		switch {
		case numeric > 0:
			out[name] = models.Num(sum / float64(numeric))
		case na > 0:
			out[name] = models.NotApplicable()
		}
	}
	return out
}
