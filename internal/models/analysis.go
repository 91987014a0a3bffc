package models

import (
	"encoding/json"
	"os"
	"time"
)

// PathologyClass tells whether a tag came from the controlled vocabulary,
// was derived from score patterns, or is unrecognized. Unrecognized tags are
// preserved for auditability, never dropped.
type PathologyClass string

const (
	PathologyKnown   PathologyClass = "known"
	PathologyDerived PathologyClass = "derived"
	PathologyUnknown PathologyClass = "unknown"
)

// PathologyTag is one qualitative failure pattern attached to an epoch.
type PathologyTag struct {
	Name  string         `json:"name"`
	Class PathologyClass `json:"class"`
}

// ReconciledScore is the normalizer's output for one epoch: per-field means
// across the valid analyst reviews. Maps contain only fields that reconciled
// to a numeric value or to "N/A"; fields no valid reviewer supplied are
// omitted entirely.
type ReconciledScore struct {
	Structure      map[string]MetricValue `json:"structure"`
	Behavior       map[string]MetricValue `json:"behavior"`
	Specialization map[string]MetricValue `json:"specialization"`
	ValidReviews   int                    `json:"valid_reviews"`
}

// CategoryMean averages the present values in one reconciled category on the
// raw 0-10 scale. "N/A" entries are excluded from both numerator and
// denominator. The second return is false when no field is present.
func CategoryMean(scores map[string]MetricValue) (float64, bool) {
	sum, n := 0.0, 0
	for _, v := range scores {
		if s, ok := v.Score(); ok {
			sum += s
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Epoch is one analyzed attempt at a challenge. Score is nil when no valid
// review existed; such epochs are unscored, never zero-scored.
type Epoch struct {
	Index          int              `json:"index"`
	ElapsedSeconds float64          `json:"elapsed_seconds"`
	HasTiming      bool             `json:"has_timing"`
	Turns          int              `json:"turns,omitempty"`
	Reviews        []AnalystReview  `json:"reviews,omitempty"`
	Score          *ReconciledScore `json:"score,omitempty"`
	QualityIndex   *float64         `json:"quality_index,omitempty"`
	Fallback       bool             `json:"fallback"`
	FallbackReason string           `json:"fallback_reason,omitempty"`
	Pathologies    []PathologyTag   `json:"pathologies,omitempty"`
	Notes          []RecordNote     `json:"notes,omitempty"`
}

// Scored reports whether the epoch carries a reconciled score.
func (e *Epoch) Scored() bool { return e.Score != nil }

// ElapsedMinutes converts the recorded wall time to minutes.
func (e *Epoch) ElapsedMinutes() float64 { return e.ElapsedSeconds / 60 }

// Stat is a five-number summary over per-epoch values.
type Stat struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

// RateStatus bands an Alignment Rate against the configured operational
// bounds.
type RateStatus string

const (
	RateValid       RateStatus = "VALID"
	RateSuperficial RateStatus = "SUPERFICIAL" // finished too quickly for the quality achieved
	RateSlow        RateStatus = "SLOW"
)

// AlignmentRate is the per-challenge quality-over-time metric. A challenge
// with no validly timed epoch has no AlignmentRate at all (nil pointer in
// ChallengeAnalysis), not a zero value.
type AlignmentRate struct {
	PerMinute   float64    `json:"per_minute"`
	Status      RateStatus `json:"status"`
	Quality     float64    `json:"quality"`      // weighted structure+behavior aggregate, 0-1
	MeanMinutes float64    `json:"mean_minutes"` // over epochs with valid timing
}

// ConfidenceInterval is a bootstrap percentile interval over per-epoch
// quality indices.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Mean            float64 `json:"mean"`
	ConfidenceLevel float64 `json:"confidence_level"`
	NumBootstraps   int     `json:"num_bootstraps"`
}

// Exclusion records an epoch or challenge left out of an aggregate and why.
// The narrative report lists every exclusion; nothing is dropped silently.
type Exclusion struct {
	Challenge Challenge `json:"challenge"`
	Epoch     int       `json:"epoch,omitempty"` // 0 = whole challenge
	Reason    string    `json:"reason"`
}

// ChallengeAnalysis aggregates the epochs of one challenge.
type ChallengeAnalysis struct {
	Challenge      Challenge           `json:"challenge"`
	Epochs         []Epoch             `json:"epochs"`
	ScoredEpochs   int                 `json:"scored_epochs"`
	Structure      *Stat               `json:"structure,omitempty"`
	Behavior       *Stat               `json:"behavior,omitempty"`
	Specialization *Stat               `json:"specialization,omitempty"`
	Quality        *Stat               `json:"quality,omitempty"`
	Rate           *AlignmentRate      `json:"alignment_rate,omitempty"`
	QualityCI      *ConfidenceInterval `json:"quality_ci,omitempty"`
	Pathologies    map[string]int      `json:"pathology_counts,omitempty"`
}

// SuiteSummary holds the suite-level aggregates.
type SuiteSummary struct {
	// Rate is the median of defined per-challenge alignment rates; nil when
	// no challenge defines one.
	Rate           *AlignmentRate `json:"alignment_rate,omitempty"`
	MedianQuality  float64        `json:"median_quality"`
	MeanQuality    float64        `json:"mean_quality"`
	TotalEpochs    int            `json:"total_epochs"`
	ScoredEpochs   int            `json:"scored_epochs"`
	FallbackEpochs int            `json:"fallback_epochs"`
	Pathologies    map[string]int `json:"pathology_counts,omitempty"`
}

// SuiteMetadata describes the evaluation session being analyzed.
type SuiteMetadata struct {
	Model       string    `json:"model"`
	Analysts    []string  `json:"analysts,omitempty"`
	Source      string    `json:"source"`
	GeneratedAt time.Time `json:"generated_at"`
}

// SuiteAnalysis is the single in-memory aggregate both output documents are
// rendered from. Challenges appear in canonical suite order.
type SuiteAnalysis struct {
	Metadata   SuiteMetadata       `json:"metadata"`
	Challenges []ChallengeAnalysis `json:"challenges"`
	Summary    SuiteSummary        `json:"summary"`
	Exclusions []Exclusion         `json:"exclusions,omitempty"`
}

// Challenge returns the analysis for one challenge, or nil.
func (s *SuiteAnalysis) Challenge(c Challenge) *ChallengeAnalysis {
	for i := range s.Challenges {
		if s.Challenges[i].Challenge == c {
			return &s.Challenges[i]
		}
	}
	return nil
}

// LoadSuiteAnalysis reads a structured analysis document from disk.
func LoadSuiteAnalysis(path string) (*SuiteAnalysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a SuiteAnalysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
