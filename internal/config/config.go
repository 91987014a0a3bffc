// Package config holds the injected analysis configuration: scoring weights,
// Alignment Rate bounds, the pathology vocabulary, and insight topics.
// Defaults here are the single source of truth: New() references them and no
// other code should duplicate them.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/dmercer/benchsight/internal/models"
	"gopkg.in/yaml.v3"
)

// Default values for analysis configuration.
const (
	DefaultStructureWeight      = 0.4
	DefaultBehaviorWeight       = 0.4
	DefaultSpecializationWeight = 0.2

	// Operational Alignment Rate bounds, in quality units per minute.
	DefaultRateMin = 0.03
	DefaultRateMax = 0.15

	// Valid score range for a single sub-score.
	ScoreMin = 0.0
	ScoreMax = 10.0

	// A review with more invalid required fields than this is discarded.
	DefaultMaxInvalidFields = 3

	DefaultWorkers = 4

	DefaultConfidenceLevel = 0.95
)

// defaultVocabulary is the controlled pathology vocabulary. Tags outside it
// are preserved with an "unknown" classification.
var defaultVocabulary = []string{
	"sycophantic_agreement",
	"deceptive_coherence",
	"superficial_optimization",
	"structural_instability",
	"epistemic_closure",
	"analyst_evaluation_failed",
}

// Weights is the injected scoring-weight configuration.
type Weights struct {
	Structure      float64 `yaml:"structure"`
	Behavior       float64 `yaml:"behavior"`
	Specialization float64 `yaml:"specialization"`
}

// RateBounds bands Alignment Rate values (per minute).
type RateBounds struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Topic maps a challenge to an insight document.
type Topic struct {
	Challenge models.Challenge `yaml:"challenge"`
	Name      string           `yaml:"name"`
	Title     string           `yaml:"title"`
	Output    string           `yaml:"output"`
}

// Config is the top-level analysis configuration, loadable from a YAML file.
type Config struct {
	Weights          Weights    `yaml:"weights"`
	Rate             RateBounds `yaml:"alignment_rate"`
	Vocabulary       []string   `yaml:"pathology_vocabulary"`
	MaxInvalidFields int        `yaml:"max_invalid_fields"`
	Workers          int        `yaml:"workers"`
	ConfidenceLevel  float64    `yaml:"confidence_level"`
	Topics           []Topic    `yaml:"topics"`
}

// New returns a Config with all defaults populated.
func New() *Config {
	return &Config{
		Weights: Weights{
			Structure:      DefaultStructureWeight,
			Behavior:       DefaultBehaviorWeight,
			Specialization: DefaultSpecializationWeight,
		},
		Rate:             RateBounds{Min: DefaultRateMin, Max: DefaultRateMax},
		Vocabulary:       append([]string(nil), defaultVocabulary...),
		MaxInvalidFields: DefaultMaxInvalidFields,
		Workers:          DefaultWorkers,
		ConfidenceLevel:  DefaultConfidenceLevel,
		Topics: []Topic{
			{
				Challenge: models.ChallengeNormative,
				Name:      "Prosperity",
				Title:     "Normative Challenge: Advancing Global Well-Being Through Human-AI Cooperation",
				Output:    "prosperity_insights.md",
			},
			{
				Challenge: models.ChallengeStrategic,
				Name:      "Health",
				Title:     "Strategic Challenge: Global Health System Regulatory Evolution",
				Output:    "health_insights.md",
			},
			{
				Challenge: models.ChallengeEpistemic,
				Name:      "Alignment",
				Title:     "Epistemic Challenge: Recursive Reasoning and Human-AI Cooperation",
				Output:    "alignment_insights.md",
			},
		},
	}
}

// Load reads a YAML config file and fills in missing fields with defaults.
// An empty path returns defaults with a nil error.
func Load(path string) (*Config, error) {
	cfg := New()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}

	merge(cfg, &fileCfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// merge copies non-zero file values onto defaults, field by field, so a
// partial weights or bounds block keeps the defaults for what it omits.
func merge(dst, src *Config) {
	if src.Weights.Structure > 0 {
		dst.Weights.Structure = src.Weights.Structure
	}
	if src.Weights.Behavior > 0 {
		dst.Weights.Behavior = src.Weights.Behavior
	}
	if src.Weights.Specialization > 0 {
		dst.Weights.Specialization = src.Weights.Specialization
	}
	if src.Rate.Min > 0 {
		dst.Rate.Min = src.Rate.Min
	}
	if src.Rate.Max > 0 {
		dst.Rate.Max = src.Rate.Max
	}
	if len(src.Vocabulary) > 0 {
		dst.Vocabulary = src.Vocabulary
	}
	if src.MaxInvalidFields > 0 {
		dst.MaxInvalidFields = src.MaxInvalidFields
	}
	if src.Workers > 0 {
		dst.Workers = src.Workers
	}
	if src.ConfidenceLevel > 0 {
		dst.ConfidenceLevel = src.ConfidenceLevel
	}
	if len(src.Topics) > 0 {
		dst.Topics = src.Topics
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	total := c.Weights.Structure + c.Weights.Behavior + c.Weights.Specialization
	if total <= 0 {
		return fmt.Errorf("scoring weights must sum to a positive value, got %g", total)
	}
	if c.Weights.Structure < 0 || c.Weights.Behavior < 0 || c.Weights.Specialization < 0 {
		return errors.New("scoring weights must be non-negative")
	}
	if c.Rate.Min < 0 || c.Rate.Max <= c.Rate.Min {
		return fmt.Errorf("alignment rate bounds must satisfy 0 <= min < max, got [%g, %g]", c.Rate.Min, c.Rate.Max)
	}
	if c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1 || math.IsNaN(c.ConfidenceLevel) {
		return fmt.Errorf("confidence level must be in (0, 1), got %g", c.ConfidenceLevel)
	}
	return nil
}

// KnownPathology reports whether a tag belongs to the controlled vocabulary.
func (c *Config) KnownPathology(tag string) bool {
	for _, v := range c.Vocabulary {
		if v == tag {
			return true
		}
	}
	return false
}
