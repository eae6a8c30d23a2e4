package rules

import (
	"math"
	"strings"
)

// ContextResult is the outcome of the disambiguation pass over a query that
// tripped a false-positive-prone category.
type ContextResult struct {
	IsEmergency bool     `json:"is_emergency"`
	Confidence  float64  `json:"confidence"`
	Modifiers   []string `json:"modifiers,omitempty"`
	TimeFrame   string   `json:"time_frame"`
}

// HasAggravator reports whether any aggravating modifier fired.
func (c ContextResult) HasAggravator() bool {
	for _, m := range c.Modifiers {
		if strings.HasPrefix(m, "aggravator:") {
			return true
		}
	}
	return false
}

// AnalyzeContext runs the negation/aggravation/mitigation heuristics over a
// normalized query.
//
// Hard negations short-circuit: the result is a non-emergency with zero
// confidence, tagged with the negation that fired. Otherwise aggravators and
// mitigators accumulate a signed score; above the emergency threshold the
// pass reports an emergency, below it a residual uncertainty remains rather
// than a hard zero.
func (r *Registry) AnalyzeContext(normQuery string) ContextResult {
	result := ContextResult{TimeFrame: "unknown"}

	for _, m := range r.modifiers {
		if m.Role == RoleNegation && m.Regex.MatchString(normQuery) {
			result.Modifiers = append(result.Modifiers, "negation:"+m.ID)
			return result
		}
	}

	score := 0.0
	for _, m := range r.modifiers {
		if m.Role == RoleNegation || !m.Regex.MatchString(normQuery) {
			continue
		}
		score += m.Weight
		result.Modifiers = append(result.Modifiers, string(m.Role)+":"+m.ID)
		if m.Historical {
			result.TimeFrame = "historical"
		}
	}

	if score > r.emergencyThreshold {
		result.IsEmergency = true
		result.Confidence = round2(math.Min(score, 1.0))
	} else {
		result.Confidence = round2(math.Max(0.0, score+r.residualConfidence))
	}
	return result
}

// EmergencyThreshold exposes the configured context threshold; the policy
// resolver compares override confidence against the same constant.
func (r *Registry) EmergencyThreshold() float64 { return r.emergencyThreshold }
