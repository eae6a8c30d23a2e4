// Package rules provides the weighted, categorized risk-pattern library and
// the context-modifier tables used to disambiguate literal matches. All
// regexes are compiled once when a Registry is built and shared read-only
// across concurrent evaluations.
package rules

import "regexp"

// Category tags the nature of a detected hazard.
type Category string

const (
	CategoryMedicalEmergency Category = "MEDICAL_EMERGENCY"
	CategorySelfHarm         Category = "SELF_HARM"
	CategoryFinancialScam    Category = "FINANCIAL_SCAM"
	CategoryHarmfulContent   Category = "HARMFUL_CONTENT"
	CategoryPrivacyViolation Category = "PRIVACY_VIOLATION"
)

// Level is the severity attached to a pattern.
type Level string

const (
	LevelLow      Level = "LOW"
	LevelMedium   Level = "MEDIUM"
	LevelHigh     Level = "HIGH"
	LevelCritical Level = "CRITICAL"
)

// rank orders levels for comparisons like "highest risk among factors".
func (l Level) rank() int {
	switch l {
	case LevelLow:
		return 0
	case LevelMedium:
		return 1
	case LevelHigh:
		return 2
	case LevelCritical:
		return 3
	}
	return -1
}

// MoreSevere reports whether l outranks other.
func (l Level) MoreSevere(other Level) bool { return l.rank() > other.rank() }

// Domain is the declared application domain of a request.
type Domain string

const (
	DomainMedical   Domain = "medical"
	DomainFinancial Domain = "financial"
	DomainLegal     Domain = "legal"
	DomainEducation Domain = "education"
	DomainGeneral   Domain = "general"
)

// ParseDomain maps a raw string to a supported domain, falling back to
// general for anything unknown. A decision must always be produced, so an
// unrecognized domain is never an error.
func ParseDomain(s string) Domain {
	switch Domain(s) {
	case DomainMedical, DomainFinancial, DomainLegal, DomainEducation, DomainGeneral:
		return Domain(s)
	}
	return DomainGeneral
}

// Pattern holds one compiled risk pattern with its weight and metadata.
// Patterns are immutable after registration.
type Pattern struct {
	ID       string         // stable rule identifier for audit trails
	Regex    *regexp.Regexp // compiled, never nil after registration
	Weight   float64        // contribution in [0,1] before domain scaling
	Category Category
	Level    Level
	Domain   Domain // home domain; boosts factor confidence on affinity
}

// ModifierRole classifies how a context modifier alters an evaluation.
type ModifierRole string

const (
	RoleNegation   ModifierRole = "negation"
	RoleAggravator ModifierRole = "aggravator"
	RoleMitigator  ModifierRole = "mitigator"
)

// Modifier is one negation, aggravation or mitigation heuristic applied
// during the context pass. Weight is signed: aggravators carry positive
// weights, mitigators negative ones, negations short-circuit regardless.
type Modifier struct {
	ID         string
	Regex      *regexp.Regexp
	Weight     float64
	Role       ModifierRole
	Historical bool // mitigator referencing elapsed time ("last week")
}

// Factor is one detected risk, created fresh per evaluation and never
// mutated after construction.
type Factor struct {
	RuleID     string   `json:"rule_id"`
	Category   Category `json:"category"`
	Level      Level    `json:"risk_level"`
	Confidence float64  `json:"confidence"`
	Evidence   string   `json:"evidence"`
	Domain     Domain   `json:"domain"`
}

// HighestLevel returns the most severe level among factors, or LevelHigh
// when the slice is empty (counterfactual templates need a usable key).
func HighestLevel(factors []Factor) Level {
	highest := Level("")
	for _, f := range factors {
		if highest == "" || f.Level.MoreSevere(highest) {
			highest = f.Level
		}
	}
	if highest == "" {
		return LevelHigh
	}
	return highest
}
