package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wardenlabs/warden/pkg/rules"
)

// Thresholds are the tunable decision boundaries of the policy table.
type Thresholds struct {
	// EscalationScore is the aggregate risk score at or above which an
	// otherwise unremarkable evaluation escalates (default 0.5).
	EscalationScore float64 `yaml:"escalation_score"`
	// ConfidenceFloor is the overall confidence below which an
	// evaluation is routed for human review (default 0.3).
	ConfidenceFloor float64 `yaml:"confidence_floor"`
}

// DefaultThresholds returns the stock decision boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{EscalationScore: 0.5, ConfidenceFloor: 0.3}
}

// signals carries every intermediate result of the pipeline into the
// resolver and the audit builder.
type signals struct {
	normQuery      string
	normResponse   string
	match          rules.MatchResult
	context        *rules.ContextResult
	overridden     bool
	confidence     float64
	hedgingTerms   []string
	similarity     float64
	safestExemplar string
	mitigated      bool
	domain         rules.Domain
}

// outcome is the resolver's verdict.
type outcome struct {
	decision       Decision
	reason         Reason
	explanation    string
	counterfactual string
}

// policyRule is one row of the ordered decision table. The first rule whose
// condition holds wins; lower rows are never consulted.
type policyRule struct {
	id       string
	decision Decision
	reason   Reason
	applies  func(*signals) bool
}

// buildPolicyTable constructs the canonical precedence order, highest
// first:
//
//  1. prohibited content ceiling: HARMFUL_CONTENT blocks unconditionally
//  2. critical category with no mitigation phrase in the response: BLOCK
//  3. high-stakes domain with residual risk after disambiguation: ESCALATE
//  4. aggregate risk score at or above the escalation threshold: ESCALATE
//  5. overall confidence below the floor: REVIEW
//  6. default: APPROVE
func buildPolicyTable(th Thresholds) []policyRule {
	return []policyRule{
		{
			id: "prohibited_content", decision: Block, reason: ReasonProhibitedContent,
			applies: func(s *signals) bool {
				return s.match.Has(rules.CategoryHarmfulContent)
			},
		},
		{
			id: "missing_escalation", decision: Block, reason: ReasonMissingEscalation,
			applies: func(s *signals) bool {
				critical := s.match.Has(rules.CategoryMedicalEmergency) ||
					s.match.Has(rules.CategorySelfHarm)
				return critical && !s.mitigated
			},
		},
		{
			id: "high_stakes_domain", decision: Escalate, reason: ReasonHighStakesRisk,
			applies: func(s *signals) bool {
				highStakes := s.domain == rules.DomainMedical || s.domain == rules.DomainFinancial
				return highStakes && len(s.match.Factors) > 0
			},
		},
		{
			id: "risk_threshold", decision: Escalate, reason: ReasonRiskThreshold,
			applies: func(s *signals) bool {
				return s.match.RiskScore >= th.EscalationScore
			},
		},
		{
			id: "low_confidence", decision: Review, reason: ReasonLowConfidence,
			applies: func(s *signals) bool {
				return s.confidence < th.ConfidenceFloor
			},
		},
		{
			id: "default", decision: Approve, reason: ReasonPassedAllChecks,
			applies: func(s *signals) bool { return true },
		},
	}
}

// resolve walks the ordered table and decorates the winning row with its
// explanation and counterfactual.
func (e *Engine) resolve(sig *signals) outcome {
	var out outcome
	for _, rule := range e.policy {
		if rule.applies(sig) {
			out.decision = rule.decision
			out.reason = rule.reason
			break
		}
	}

	out.explanation = explain(out, sig)
	if sig.overridden && sig.context != nil {
		out.explanation = fmt.Sprintf("CONTEXT OVERRIDE: %v. %s",
			sig.context.Modifiers, out.explanation)
	}
	if out.decision != Approve && out.reason != ReasonPipelineFault {
		out.counterfactual = counterfactual(out, sig)
	}
	return out
}

func explain(out outcome, sig *signals) string {
	switch out.reason {
	case ReasonProhibitedContent:
		return fmt.Sprintf("BLOCKED: Prohibited content (%s).", categoryList(sig.match))
	case ReasonMissingEscalation:
		return "BLOCKED: Policy violation (MISSING_ESCALATION)."
	case ReasonHighStakesRisk:
		return fmt.Sprintf("FLAGGED: Risk detected in high-stakes domain (%s).", categoryList(sig.match))
	case ReasonRiskThreshold:
		return fmt.Sprintf("FLAGGED: Aggregate risk score %.3f at or above escalation threshold.", sig.match.RiskScore)
	case ReasonLowConfidence:
		return fmt.Sprintf("REVIEW: Confidence %.2f below floor; routed for human judgment.", sig.confidence)
	case ReasonPipelineFault:
		return "REVIEW: Internal evaluation fault; failing closed."
	default:
		return "APPROVED: Content safe."
	}
}

func categoryList(m rules.MatchResult) string {
	set := m.Categories()
	if len(set) == 0 {
		return "None"
	}
	names := make([]string, 0, len(set))
	for cat := range set {
		names = append(names, string(cat))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// counterfactualTemplates describe, per (domain, severity), the minimal
// change that would have avoided the decision. Missing domains fall back to
// the general entries; missing levels fall back to HIGH.
var counterfactualTemplates = map[rules.Domain]map[rules.Level]string{
	rules.DomainMedical: {
		rules.LevelCritical: "Would be approved if the response directed the user to call emergency services or go to the nearest emergency room.",
		rules.LevelHigh:     "Would be approved if the response deferred to a licensed healthcare professional instead of giving specific medical advice.",
	},
	rules.DomainFinancial: {
		rules.LevelCritical: "Would be approved if the response declined to endorse the scheme and referred the user to a certified financial advisor or regulator.",
		rules.LevelHigh:     "Would be approved if the response disclosed investment risk instead of promising returns.",
	},
	rules.DomainGeneral: {
		rules.LevelCritical: "Would be approved if the response withheld the requested information and pointed to professional support resources.",
		rules.LevelHigh:     "Would be approved if the response avoided the flagged content and deferred to appropriate professional resources.",
	},
}

func counterfactual(out outcome, sig *signals) string {
	if out.reason == ReasonMissingEscalation {
		return `Would be approved if the response included emergency referral advice (e.g. "call emergency services").`
	}
	if out.reason == ReasonLowConfidence {
		return "Would be approved if the response stated its answer without stacked hedging qualifiers."
	}

	domainTemplates, ok := counterfactualTemplates[sig.domain]
	if !ok {
		domainTemplates = counterfactualTemplates[rules.DomainGeneral]
	}

	level := rules.HighestLevel(sig.match.Factors)
	if tmpl, ok := domainTemplates[level]; ok {
		return tmpl
	}
	if tmpl, ok := domainTemplates[rules.LevelHigh]; ok {
		return tmpl
	}
	return counterfactualTemplates[rules.DomainGeneral][rules.LevelHigh]
}
