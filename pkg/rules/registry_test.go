package rules

import (
	"testing"

	"go.uber.org/zap"
)

func TestDefaultRegistryLoads(t *testing.T) {
	r := Default(zap.NewNop())

	if r.PatternCount() < 15 {
		t.Errorf("expected at least 15 built-in patterns, got %d", r.PatternCount())
	}
	if r.ModifierCount() < 15 {
		t.Errorf("expected at least 15 built-in modifiers, got %d", r.ModifierCount())
	}
}

func TestBuildSkipsMalformedEntries(t *testing.T) {
	cfg := Config{
		Patterns: []PatternSpec{
			{ID: "OK_001", Expr: `\bfine\b`, Weight: 0.5, Category: "HARMFUL_CONTENT", Level: "HIGH", Domain: "general"},
			{ID: "BAD_RE", Expr: `[unclosed`, Weight: 0.5, Category: "HARMFUL_CONTENT", Level: "HIGH", Domain: "general"},
			{ID: "BAD_WEIGHT", Expr: `\bx\b`, Weight: 1.5, Category: "HARMFUL_CONTENT", Level: "HIGH", Domain: "general"},
			{ID: "", Expr: `\bx\b`, Weight: 0.5, Category: "HARMFUL_CONTENT", Level: "HIGH", Domain: "general"},
			{ID: "BAD_LEVEL", Expr: `\bx\b`, Weight: 0.5, Category: "HARMFUL_CONTENT", Level: "SEVERE", Domain: "general"},
		},
		Modifiers: []ModifierSpec{
			{ID: "OK_NEG", Expr: `\bnope\b`, Role: "negation"},
			{ID: "BAD_ROLE", Expr: `\bx\b`, Weight: 0.2, Role: "amplifier"},
			{ID: "BAD_SIGN", Expr: `\bx\b`, Weight: 0.2, Role: "mitigator"},
		},
	}

	r := Build(cfg, zap.NewNop())
	if r.PatternCount() != 1 {
		t.Errorf("expected 1 valid pattern, got %d", r.PatternCount())
	}
	if r.ModifierCount() != 1 {
		t.Errorf("expected 1 valid modifier, got %d", r.ModifierCount())
	}
}

func TestMultiplier(t *testing.T) {
	r := Default(zap.NewNop())

	testCases := []struct {
		cat    Category
		domain Domain
		want   float64
	}{
		{CategoryMedicalEmergency, DomainMedical, 1.2},
		{CategorySelfHarm, DomainMedical, 1.2},
		{CategoryFinancialScam, DomainFinancial, 1.5},
		{CategoryMedicalEmergency, DomainGeneral, 1.0},
		{CategoryFinancialScam, DomainMedical, 1.0},
	}

	for _, tc := range testCases {
		if got := r.Multiplier(tc.cat, tc.domain); got != tc.want {
			t.Errorf("Multiplier(%s, %s) = %v, want %v", tc.cat, tc.domain, got, tc.want)
		}
	}
}

func TestParseDomain(t *testing.T) {
	if d := ParseDomain("medical"); d != DomainMedical {
		t.Errorf("ParseDomain(medical) = %s", d)
	}
	// Unknown domains fall back to general: a decision must always be
	// produced.
	if d := ParseDomain("veterinary"); d != DomainGeneral {
		t.Errorf("ParseDomain(veterinary) = %s, want general", d)
	}
	if d := ParseDomain(""); d != DomainGeneral {
		t.Errorf("ParseDomain(empty) = %s, want general", d)
	}
}

func TestHasMitigation(t *testing.T) {
	r := Default(zap.NewNop())

	if !r.HasMitigation("this could be a heart attack call 911 immediately") {
		t.Error("expected mitigation for call 911")
	}
	if !r.HasMitigation("please go to the emergency room") {
		t.Error("expected mitigation for emergency room")
	}
	if r.HasMitigation("probably just muscle pain take painkillers") {
		t.Error("did not expect mitigation")
	}
}
