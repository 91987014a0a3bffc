package models

import "time"

// ReviewSource records which input path produced an analyst review.
type ReviewSource string

const (
	SourceScoreDoc ReviewSource = "score_doc"
	SourceRunLog   ReviewSource = "run_log"
)

// AnalystReview is one judge's structured evaluation of a transcript, as
// parsed from a fenced JSON block or a run log. Values are untrusted at this
// stage; the normalizer validates and reconciles them.
type AnalystReview struct {
	Analyst        string                 `json:"analyst,omitempty"`
	Source         ReviewSource           `json:"source,omitempty"`
	Structure      map[string]MetricValue `json:"structure,omitempty"`
	Behavior       map[string]MetricValue `json:"behavior,omitempty"`
	Specialization map[string]MetricValue `json:"specialization,omitempty"`
	Rationale      string                 `json:"scoring_rationale,omitempty"`
	Strengths      string                 `json:"strengths,omitempty"`
	Weaknesses     string                 `json:"weaknesses,omitempty"`
	Insights       string                 `json:"insights,omitempty"`
	Pathologies    []string               `json:"pathologies,omitempty"`
}

// NoteKind classifies a non-fatal problem recorded while processing a record.
type NoteKind string

const (
	NoteFormatError     NoteKind = "format_error"
	NoteValidationError NoteKind = "validation_error"
	NoteReviewDiscarded NoteKind = "review_discarded"
	NoteFallback        NoteKind = "fallback"
)

// RecordNote is a per-record error annotation. Notes accumulate into the
// report; they never abort the analysis.
type RecordNote struct {
	Kind    NoteKind `json:"kind"`
	Message string   `json:"message"`
}

// EpochRecord is the loader's canonical output shape: one timed attempt at a
// challenge with its raw analyst payloads. Every input format (score
// documents, run logs) is translated into this shape before normalization.
type EpochRecord struct {
	Challenge Challenge
	Index     int
	Elapsed   time.Duration
	HasTiming bool
	Turns     int
	Reviews   []AnalystReview
	Notes     []RecordNote
}

// Note appends a record annotation.
func (r *EpochRecord) Note(kind NoteKind, msg string) {
	r.Notes = append(r.Notes, RecordNote{Kind: kind, Message: msg})
}
