// Package aggregate turns normalized epochs into the suite-level analysis:
// per-challenge statistics, the time-normalized Alignment Rate, bootstrap
// confidence intervals, and the suite summary both reports render from.
package aggregate

import (
	"sort"
	"time"

	"github.com/dmercer/benchsight/internal/config"
	"github.com/dmercer/benchsight/internal/detect"
	"github.com/dmercer/benchsight/internal/models"
	"github.com/dmercer/benchsight/internal/normalize"
)

// NoDataError means no epoch in the whole suite could be parsed. It maps to
// a distinct exit code at the CLI surface.
type NoDataError struct {
	Reason string
}

func (e *NoDataError) Error() string { return e.Reason }

// Options tune one aggregation run.
type Options struct {
	// Model is the evaluated model's name, recorded in suite metadata.
	Model string
	// Seed fixes the bootstrap RNG; negative means non-deterministic.
	Seed int64
}

// Suite runs the full analysis pipeline over canonical epoch records:
// normalize each epoch, detect fallbacks and pathologies, aggregate per
// challenge, then summarize the suite. Records must already be sorted by
// (challenge, epoch index); the loader guarantees that.
func Suite(records []models.EpochRecord, cfg *config.Config, opts Options) (*models.SuiteAnalysis, error) {
	if len(records) == 0 {
		return nil, &NoDataError{Reason: "no epochs parsed from any challenge"}
	}

	byChallenge := map[models.Challenge][]models.Epoch{}
	for _, rec := range records {
		ep := normalize.Epoch(rec, cfg)
		detect.Apply(&ep, cfg)
		if ep.Scored() {
			q := qualityIndex(ep.Score, cfg.Weights)
			ep.QualityIndex = &q
		}
		byChallenge[rec.Challenge] = append(byChallenge[rec.Challenge], ep)
	}

	analysis := &models.SuiteAnalysis{
		Metadata: models.SuiteMetadata{
			Model:       opts.Model,
			Analysts:    analystNames(records),
			Source:      sourceKind(records),
			GeneratedAt: time.Now().UTC(),
		},
	}

	for _, ch := range models.ChallengeOrder {
		epochs, ok := byChallenge[ch]
		if !ok {
			continue
		}
		ca := analyzeChallenge(ch, epochs, cfg, opts.Seed)
		analysis.Challenges = append(analysis.Challenges, ca)
		analysis.Exclusions = append(analysis.Exclusions, challengeExclusions(ca)...)
	}

	analysis.Summary = summarize(analysis.Challenges, cfg)
	return analysis, nil
}

// qualityIndex is the weighted combination of the three category means on a
// 0-1 scale. Weights renormalize over the categories that actually carry a
// mean, so a challenge whose specialization reconciled to all-N/A is not
// penalized for it.
func qualityIndex(score *models.ReconciledScore, w config.Weights) float64 {
	type part struct {
		scores map[string]models.MetricValue
		weight float64
	}
	parts := []part{
		{score.Structure, w.Structure},
		{score.Behavior, w.Behavior},
		{score.Specialization, w.Specialization},
	}

	weighted, total := 0.0, 0.0
	for _, p := range parts {
		if m, ok := models.CategoryMean(p.scores); ok {
			weighted += p.weight * m
			total += p.weight
		}
	}
	if total == 0 {
		return 0
	}
	return weighted / total / config.ScoreMax
}

// rateQuality is the Alignment Rate numerator: structure and behavior only,
// weights renormalized, on a 0-1 scale.
func rateQuality(score *models.ReconciledScore, w config.Weights) (float64, bool) {
	weighted, total := 0.0, 0.0
	if m, ok := models.CategoryMean(score.Structure); ok {
		weighted += w.Structure * m
		total += w.Structure
	}
	if m, ok := models.CategoryMean(score.Behavior); ok {
		weighted += w.Behavior * m
		total += w.Behavior
	}
	if total == 0 {
		return 0, false
	}
	return weighted / total / config.ScoreMax, true
}

func analyzeChallenge(ch models.Challenge, epochs []models.Epoch, cfg *config.Config, seed int64) models.ChallengeAnalysis {
	ca := models.ChallengeAnalysis{Challenge: ch, Epochs: epochs}

	var structure, behavior, specialization, quality, rateQualities []float64
	for _, ep := range epochs {
		if !ep.Scored() {
			continue
		}
		ca.ScoredEpochs++
		if m, ok := models.CategoryMean(ep.Score.Structure); ok {
			structure = append(structure, m)
		}
		if m, ok := models.CategoryMean(ep.Score.Behavior); ok {
			behavior = append(behavior, m)
		}
		if m, ok := models.CategoryMean(ep.Score.Specialization); ok {
			specialization = append(specialization, m)
		}
		if ep.QualityIndex != nil {
			quality = append(quality, *ep.QualityIndex)
		}
		if q, ok := rateQuality(ep.Score, cfg.Weights); ok {
			rateQualities = append(rateQualities, q)
		}
	}

	ca.Structure = Summarize(structure)
	ca.Behavior = Summarize(behavior)
	ca.Specialization = Summarize(specialization)
	ca.Quality = Summarize(quality)
	ca.QualityCI = BootstrapCI(quality, cfg.ConfidenceLevel, seed)
	ca.Rate = alignmentRate(epochs, rateQualities, cfg.Rate)
	ca.Pathologies = pathologyCounts(epochs)
	return ca
}

// alignmentRate divides the mean rate quality by the mean elapsed minutes of
// the validly timed epochs. No timed epoch means no rate at all: an
// undefined rate is excluded from suite aggregates, never reported as zero.
func alignmentRate(epochs []models.Epoch, rateQualities []float64, bounds config.RateBounds) *models.AlignmentRate {
	var minutes []float64
	for _, ep := range epochs {
		if ep.HasTiming && ep.ElapsedSeconds > 0 {
			minutes = append(minutes, ep.ElapsedMinutes())
		}
	}
	if len(minutes) == 0 || len(rateQualities) == 0 {
		return nil
	}

	meanMinutes := Mean(minutes)
	quality := Mean(rateQualities)
	perMinute := quality / meanMinutes
	return &models.AlignmentRate{
		PerMinute:   perMinute,
		Status:      bandRate(perMinute, bounds),
		Quality:     quality,
		MeanMinutes: meanMinutes,
	}
}

func bandRate(perMinute float64, bounds config.RateBounds) models.RateStatus {
	switch {
	case perMinute > bounds.Max:
		return models.RateSuperficial
	case perMinute < bounds.Min:
		return models.RateSlow
	default:
		return models.RateValid
	}
}

// summarize builds the suite-level view. The suite Alignment Rate is the
// median of the defined per-challenge rates; challenges with undefined rates
// simply do not vote.
func summarize(challenges []models.ChallengeAnalysis, cfg *config.Config) models.SuiteSummary {
	var summary models.SuiteSummary
	summary.Pathologies = map[string]int{}

	var rates, rateQualities, rateMinutes, qualities []float64
	for _, ca := range challenges {
		summary.ScoredEpochs += ca.ScoredEpochs
		summary.TotalEpochs += len(ca.Epochs)
		for _, ep := range ca.Epochs {
			if ep.Fallback {
				summary.FallbackEpochs++
			}
			if ep.QualityIndex != nil {
				qualities = append(qualities, *ep.QualityIndex)
			}
		}
		for tag, n := range ca.Pathologies {
			summary.Pathologies[tag] += n
		}
		if ca.Rate != nil {
			rates = append(rates, ca.Rate.PerMinute)
			rateQualities = append(rateQualities, ca.Rate.Quality)
			rateMinutes = append(rateMinutes, ca.Rate.MeanMinutes)
		}
	}

	if len(rates) > 0 {
		perMinute := Median(rates)
		summary.Rate = &models.AlignmentRate{
			PerMinute:   perMinute,
			Status:      bandRate(perMinute, cfg.Rate),
			Quality:     Mean(rateQualities),
			MeanMinutes: Mean(rateMinutes),
		}
	}
	summary.MedianQuality = Median(qualities)
	summary.MeanQuality = Mean(qualities)
	if len(summary.Pathologies) == 0 {
		summary.Pathologies = nil
	}
	return summary
}

func pathologyCounts(epochs []models.Epoch) map[string]int {
	counts := map[string]int{}
	for _, ep := range epochs {
		for _, tag := range ep.Pathologies {
			counts[tag.Name]++
		}
	}
	if len(counts) == 0 {
		return nil
	}
	return counts
}

// challengeExclusions records everything left out of the aggregates so the
// report can list it. Nothing is dropped silently.
func challengeExclusions(ca models.ChallengeAnalysis) []models.Exclusion {
	var out []models.Exclusion
	for _, ep := range ca.Epochs {
		if !ep.Scored() {
			reason := "no valid analyst reviews"
			if ep.FallbackReason != "" {
				reason = ep.FallbackReason
			}
			out = append(out, models.Exclusion{
				Challenge: ca.Challenge,
				Epoch:     ep.Index,
				Reason:    reason,
			})
		}
	}
	if ca.ScoredEpochs == 0 {
		out = append(out, models.Exclusion{
			Challenge: ca.Challenge,
			Reason:    "no scored epochs; excluded from suite aggregates",
		})
	} else if ca.Rate == nil {
		out = append(out, models.Exclusion{
			Challenge: ca.Challenge,
			Reason:    "alignment rate undefined: no epoch with valid timing",
		})
	}
	return out
}

func analystNames(records []models.EpochRecord) []string {
	seen := map[string]bool{}
	for _, rec := range records {
		for _, r := range rec.Reviews {
			if r.Analyst != "" {
				seen[r.Analyst] = true
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sourceKind(records []models.EpochRecord) string {
	seen := map[models.ReviewSource]bool{}
	for _, rec := range records {
		for _, r := range rec.Reviews {
			seen[r.Source] = true
		}
	}
	switch {
	case len(seen) > 1:
		return "mixed"
	case seen[models.SourceRunLog]:
		return string(models.SourceRunLog)
	default:
		return string(models.SourceScoreDoc)
	}
}
