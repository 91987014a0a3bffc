package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MetricState distinguishes the three states a sub-score can be in. A metric
// that an analyst marked "N/A" is a different fact from one the analyst never
// supplied, and neither is ever coerced to zero.
type MetricState int

const (
	MetricAbsent MetricState = iota
	MetricNotApplicable
	MetricPresent
)

// naSentinel is the wire form of the "not applicable" state.
const naSentinel = "N/A"

// MetricValue is a three-state score scalar: a numeric value, the "N/A"
// sentinel, or absent. The zero value is absent.
type MetricValue struct {
	state MetricState
	score float64
}

// Num returns a present MetricValue.
func Num(v float64) MetricValue { return MetricValue{state: MetricPresent, score: v} }

// NotApplicable returns the "N/A" MetricValue.
func NotApplicable() MetricValue { return MetricValue{state: MetricNotApplicable} }

// State returns the value's state.
func (m MetricValue) State() MetricState { return m.state }

// Present reports whether a numeric score is carried.
func (m MetricValue) Present() bool { return m.state == MetricPresent }

// NA reports whether the value is the "N/A" sentinel.
func (m MetricValue) NA() bool { return m.state == MetricNotApplicable }

// Score returns the numeric score and whether one is present.
func (m MetricValue) Score() (float64, bool) {
	return m.score, m.state == MetricPresent
}

func (m MetricValue) String() string {
	switch m.state {
	case MetricPresent:
		return fmt.Sprintf("%g", m.score)
	case MetricNotApplicable:
		return naSentinel
	default:
		return "absent"
	}
}

// MarshalJSON renders a number, the "N/A" string, or null for absent.
func (m MetricValue) MarshalJSON() ([]byte, error) {
	switch m.state {
	case MetricPresent:
		return json.Marshal(m.score)
	case MetricNotApplicable:
		return json.Marshal(naSentinel)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a number, any case of "n/a" (plus "not applicable"),
// or null.
func (m *MetricValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := MetricFromAny(raw)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// MetricFromAny converts a loosely-typed JSON value into a MetricValue.
// Numeric strings are accepted since analysts occasionally quote scores.
func MetricFromAny(raw any) (MetricValue, error) {
	switch v := raw.(type) {
	case nil:
		return MetricValue{}, nil
	case float64:
		return Num(v), nil
	case int:
		return Num(float64(v)), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return MetricValue{}, fmt.Errorf("metric value %q is not numeric", v)
		}
		return Num(f), nil
	case string:
		s := strings.TrimSpace(v)
		if strings.EqualFold(s, naSentinel) || strings.EqualFold(s, "not applicable") {
			return NotApplicable(), nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Num(f), nil
		}
		return MetricValue{}, fmt.Errorf("metric value %q is neither numeric nor %q", s, naSentinel)
	default:
		return MetricValue{}, fmt.Errorf("metric value has unsupported type %T", raw)
	}
}
