package rules

import (
	"math"
	"strings"

	"go.uber.org/zap"
)

// effectiveWeightCap prevents a single pattern from forcing deterministic
// certainty in the noisy-OR combination.
const effectiveWeightCap = 0.99

// MatchResult aggregates every pattern hit for one evaluation.
type MatchResult struct {
	Factors   []Factor
	RiskScore float64
}

// Categories returns the set of categories present among the factors.
func (m MatchResult) Categories() map[Category]bool {
	set := make(map[Category]bool, len(m.Factors))
	for _, f := range m.Factors {
		set[f.Category] = true
	}
	return set
}

// Has reports whether any factor carries the given category.
func (m MatchResult) Has(cat Category) bool {
	for _, f := range m.Factors {
		if f.Category == cat {
			return true
		}
	}
	return false
}

// WithoutCategory returns a copy of the result with every factor of the
// given category removed. Used by the context override; the original result
// is left untouched.
func (m MatchResult) WithoutCategory(cat Category) MatchResult {
	out := MatchResult{RiskScore: m.RiskScore}
	for _, f := range m.Factors {
		if f.Category != cat {
			out.Factors = append(out.Factors, f)
		}
	}
	return out
}

// Match tests every configured pattern against the normalized query and
// response and combines the hits into a scalar risk score via noisy-OR:
//
//	riskScore = 1 - prod(1 - min(weight*multiplier, 0.99))
//
// A fault inside one pattern's evaluation skips that pattern and continues;
// partial detection beats total pipeline failure.
func (r *Registry) Match(normQuery, normResponse string, domain Domain) MatchResult {
	var result MatchResult
	safeProbability := 1.0

	for _, p := range r.patterns {
		factor, matched := r.checkPattern(p, normQuery, normResponse, domain)
		if !matched {
			continue
		}
		result.Factors = append(result.Factors, factor)

		effective := math.Min(p.Weight*r.Multiplier(p.Category, domain), effectiveWeightCap)
		safeProbability *= 1.0 - effective
	}

	result.RiskScore = round3(1.0 - safeProbability)
	return result
}

// checkPattern evaluates a single pattern, recovering from any panic so a
// pathological rule cannot abort the whole evaluation.
func (r *Registry) checkPattern(p *Pattern, normQuery, normResponse string, domain Domain) (factor Factor, matched bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("risk pattern evaluation fault, rule skipped",
				zap.String("rule_id", p.ID), zap.Any("panic", rec))
			matched = false
		}
	}()

	evidence := p.Regex.FindString(normQuery)
	if evidence == "" {
		evidence = p.Regex.FindString(normResponse)
	}
	if evidence == "" {
		return Factor{}, false
	}

	count := len(p.Regex.FindAllString(normQuery, -1)) +
		len(p.Regex.FindAllString(normResponse, -1))

	return Factor{
		RuleID:     p.ID,
		Category:   p.Category,
		Level:      p.Level,
		Confidence: factorConfidence(p, count, domain),
		Evidence:   excerpt(evidence),
		Domain:     p.Domain,
	}, true
}

// factorConfidence grades how much a single match should be trusted: a base
// of 0.8, a small boost per repeated match, scaled by severity, plus a bump
// when the pattern's home domain matches the declared one.
func factorConfidence(p *Pattern, matchCount int, domain Domain) float64 {
	confidence := 0.8
	if matchCount > 1 {
		confidence = math.Min(0.95, confidence+float64(matchCount)*0.05)
	}

	switch p.Level {
	case LevelLow:
		confidence *= 0.7
	case LevelMedium:
		confidence *= 0.8
	case LevelHigh:
		confidence *= 0.9
	case LevelCritical:
		confidence *= 1.0
	}

	if p.Domain == domain {
		confidence = math.Min(1.0, confidence+0.1)
	}
	return round2(confidence)
}

const maxEvidenceLen = 80

// excerpt bounds the evidence stored in audit trails.
func excerpt(s string) string {
	if len(s) > maxEvidenceLen {
		return s[:maxEvidenceLen] + "..."
	}
	return s
}

func containsPhrase(text, phrase string) bool {
	return strings.Contains(text, phrase)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
