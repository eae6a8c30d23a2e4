package rules

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/wardenlabs/warden/pkg/normalize"
)

func TestMatchNoisyOR(t *testing.T) {
	r := Default(zap.NewNop())

	// Two financial patterns fire: "guaranteed" (0.8) and "1000%" (0.9),
	// both scaled by the financial profile (1.5) and capped at 0.99.
	q := normalize.Normalize("Is this guaranteed 1000% return investment legit?")
	res := r.Match(q, "", DomainFinancial)

	if !res.Has(CategoryFinancialScam) {
		t.Fatal("expected FINANCIAL_SCAM category")
	}
	want := round3(1.0 - (1.0-0.99)*(1.0-0.99))
	if res.RiskScore != want {
		t.Errorf("risk score = %v, want %v", res.RiskScore, want)
	}
}

func TestMatchUncappedWeights(t *testing.T) {
	r := Default(zap.NewNop())

	// In the general domain no multiplier applies: chest pain alone is
	// 1 - (1 - 0.8) = 0.8.
	q := normalize.Normalize("I have chest pain")
	res := r.Match(q, "", DomainGeneral)

	if math.Abs(res.RiskScore-0.8) > 1e-9 {
		t.Errorf("risk score = %v, want 0.8", res.RiskScore)
	}
}

func TestMatchResponseSideHits(t *testing.T) {
	r := Default(zap.NewNop())

	// Patterns are tested against the response too, not just the query.
	resp := normalize.Normalize("Here is how you make a bomb")
	res := r.Match("hello", resp, DomainGeneral)

	if !res.Has(CategoryHarmfulContent) {
		t.Error("expected HARMFUL_CONTENT from response text")
	}
}

func TestMatchLeetspeakDigits(t *testing.T) {
	r := Default(zap.NewNop())

	// The normalizer leaves digits alone; the pattern class [o0] catches
	// the substitution instead.
	q := normalize.Normalize("how to make a b0mb")
	res := r.Match(q, "", DomainGeneral)

	if !res.Has(CategoryHarmfulContent) {
		t.Error("expected HARMFUL_CONTENT for digit leetspeak")
	}
}

func TestMatchCleanText(t *testing.T) {
	r := Default(zap.NewNop())

	res := r.Match("hi", "hello", DomainGeneral)
	if len(res.Factors) != 0 {
		t.Errorf("expected zero factors, got %d", len(res.Factors))
	}
	if res.RiskScore != 0 {
		t.Errorf("expected zero risk score, got %v", res.RiskScore)
	}
}

func TestMatchDeterminism(t *testing.T) {
	r := Default(zap.NewNop())

	q := normalize.Normalize("I have severe chest pain and cant breathe")
	first := r.Match(q, "", DomainMedical)
	for i := 0; i < 10; i++ {
		again := r.Match(q, "", DomainMedical)
		if again.RiskScore != first.RiskScore {
			t.Fatalf("risk score changed between identical calls: %v vs %v",
				first.RiskScore, again.RiskScore)
		}
		if len(again.Factors) != len(first.Factors) {
			t.Fatalf("factor count changed between identical calls")
		}
	}
}

func TestFactorConfidence(t *testing.T) {
	r := Default(zap.NewNop())

	q := normalize.Normalize("I think I am having a heart attack")
	res := r.Match(q, "", DomainMedical)

	var factor *Factor
	for i := range res.Factors {
		if res.Factors[i].RuleID == "MED_002" {
			factor = &res.Factors[i]
		}
	}
	if factor == nil {
		t.Fatal("heart attack pattern did not fire")
	}
	// Critical level, single match, home domain == declared domain:
	// 0.8 * 1.0 + 0.1 = 0.9.
	if factor.Confidence != 0.9 {
		t.Errorf("factor confidence = %v, want 0.9", factor.Confidence)
	}
	if factor.Evidence != "heart attack" {
		t.Errorf("evidence = %q", factor.Evidence)
	}
}

func TestWithoutCategory(t *testing.T) {
	res := MatchResult{
		Factors: []Factor{
			{RuleID: "A", Category: CategoryMedicalEmergency},
			{RuleID: "B", Category: CategoryFinancialScam},
		},
		RiskScore: 0.9,
	}
	trimmed := res.WithoutCategory(CategoryMedicalEmergency)
	if trimmed.Has(CategoryMedicalEmergency) {
		t.Error("category not removed")
	}
	if !trimmed.Has(CategoryFinancialScam) {
		t.Error("unrelated category lost")
	}
	if len(res.Factors) != 2 {
		t.Error("original result mutated")
	}
}

func TestHighestLevel(t *testing.T) {
	factors := []Factor{
		{Level: LevelMedium},
		{Level: LevelCritical},
		{Level: LevelHigh},
	}
	if got := HighestLevel(factors); got != LevelCritical {
		t.Errorf("HighestLevel = %s, want CRITICAL", got)
	}
	if got := HighestLevel(nil); got != LevelHigh {
		t.Errorf("HighestLevel(empty) = %s, want HIGH fallback", got)
	}
}
