package rules

import (
	"testing"

	"go.uber.org/zap"

	"github.com/wardenlabs/warden/pkg/normalize"
)

func TestAnalyzeContextHardNegation(t *testing.T) {
	r := Default(zap.NewNop())

	testCases := []string{
		"i have no chest pain just asking",
		"i dont have any symptoms",
		"just curious about heart attacks",
		"hypothetically what would chest pain mean",
	}
	for _, q := range testCases {
		res := r.AnalyzeContext(normalize.Normalize(q))
		if res.IsEmergency {
			t.Errorf("%q: expected no emergency after hard negation", q)
		}
		if res.Confidence != 0 {
			t.Errorf("%q: expected zero confidence, got %v", q, res.Confidence)
		}
		if len(res.Modifiers) != 1 {
			t.Errorf("%q: expected exactly the negation tag, got %v", q, res.Modifiers)
		}
	}
}

func TestAnalyzeContextAggravators(t *testing.T) {
	r := Default(zap.NewNop())

	// severe (0.5) + cant breathe (0.6) = 1.1, capped at 1.0.
	res := r.AnalyzeContext(normalize.Normalize("severe chest pain and I can't breathe"))
	if !res.IsEmergency {
		t.Fatal("expected emergency")
	}
	if res.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", res.Confidence)
	}
	if !res.HasAggravator() {
		t.Error("expected aggravator tag")
	}
}

func TestAnalyzeContextMitigators(t *testing.T) {
	r := Default(zap.NewNop())

	// mild (-0.2) + after eating (-0.5) = -0.7; residual floor at 0.
	res := r.AnalyzeContext(normalize.Normalize("mild chest discomfort after eating"))
	if res.IsEmergency {
		t.Error("expected no emergency")
	}
	if res.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", res.Confidence)
	}
}

func TestAnalyzeContextResidualUncertainty(t *testing.T) {
	r := Default(zap.NewNop())

	// Nothing fires: score 0 keeps the residual 0.1. Absence of
	// aggravation is not proof of safety.
	res := r.AnalyzeContext(normalize.Normalize("I had some chest pain yesterday"))
	if res.IsEmergency {
		t.Error("expected no emergency")
	}
	if res.Confidence != 0.1 {
		t.Errorf("confidence = %v, want residual 0.1", res.Confidence)
	}
}

func TestAnalyzeContextHistoricalTimeFrame(t *testing.T) {
	r := Default(zap.NewNop())

	res := r.AnalyzeContext(normalize.Normalize("I used to have chest pain last year"))
	if res.TimeFrame != "historical" {
		t.Errorf("time frame = %q, want historical", res.TimeFrame)
	}
	if res.IsEmergency {
		t.Error("historical complaint should not be an emergency")
	}
}

func TestAnalyzeContextThresholdBoundary(t *testing.T) {
	r := Default(zap.NewNop())

	// "sweating" alone scores 0.3, which is NOT above the threshold:
	// the comparison is strict.
	res := r.AnalyzeContext(normalize.Normalize("I am sweating"))
	if res.IsEmergency {
		t.Error("score equal to threshold must not report an emergency")
	}
	if res.Confidence != 0.4 {
		t.Errorf("confidence = %v, want 0.3+0.1 residual", res.Confidence)
	}
}
