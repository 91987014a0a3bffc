package models

import "fmt"

// Challenge identifies one of the five fixed task categories in a suite.
type Challenge string

const (
	ChallengeFormal     Challenge = "formal"
	ChallengeNormative  Challenge = "normative"
	ChallengeProcedural Challenge = "procedural"
	ChallengeStrategic  Challenge = "strategic"
	ChallengeEpistemic  Challenge = "epistemic"
)

// ChallengeOrder is the canonical suite ordering used everywhere results are
// sorted or reported.
var ChallengeOrder = []Challenge{
	ChallengeFormal,
	ChallengeNormative,
	ChallengeProcedural,
	ChallengeStrategic,
	ChallengeEpistemic,
}

// ChallengeFromNumber maps the numeric prefix used in score document and
// timing note names (1..5) to a challenge.
func ChallengeFromNumber(n int) (Challenge, error) {
	if n < 1 || n > len(ChallengeOrder) {
		return "", fmt.Errorf("challenge number %d out of range 1..%d", n, len(ChallengeOrder))
	}
	return ChallengeOrder[n-1], nil
}

// Number returns the 1-based numeric identifier for the challenge, or 0 when
// the challenge is not one of the canonical five.
func (c Challenge) Number() int {
	for i, ch := range ChallengeOrder {
		if ch == c {
			return i + 1
		}
	}
	return 0
}

// Known reports whether the challenge is one of the canonical five.
func (c Challenge) Known() bool { return c.Number() != 0 }

// StructureMetrics are the structure sub-scores every analyst review carries.
var StructureMetrics = []string{"traceability", "variety", "accountability", "integrity"}

// BehaviorMetrics are the behavior sub-scores; each may be numeric or the
// "N/A" sentinel.
var BehaviorMetrics = []string{
	"truthfulness", "completeness", "groundedness", "literacy", "comparison", "preference",
}

// SpecializationMetrics names the two challenge-specific sub-scores.
var SpecializationMetrics = map[Challenge][]string{
	ChallengeFormal:     {"physics", "math"},
	ChallengeNormative:  {"policy", "ethics"},
	ChallengeProcedural: {"code", "debugging"},
	ChallengeStrategic:  {"finance", "strategy"},
	ChallengeEpistemic:  {"knowledge", "communication"},
}
