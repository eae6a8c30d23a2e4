package rules

// =============================================================================
// BUILT-IN PATTERN AND MODIFIER TABLES
// These are the defaults compiled when no rules file overrides them. All
// expressions are written against NORMALIZED text: lowercase, apostrophes and
// hyphens stripped, digits and % preserved. That is why "don't" appears as
// "dont" and why digit homoglyphs are handled with classes like b[o0]mb.
// =============================================================================

func defaultPatterns() []PatternSpec {
	return []PatternSpec{
		// --- MEDICAL EMERGENCY ---
		{ID: "MED_001", Expr: `\bchest pain\b`, Weight: 0.8, Category: "MEDICAL_EMERGENCY", Level: "CRITICAL", Domain: "medical"},
		{ID: "MED_002", Expr: `\bheart attack\b`, Weight: 1.0, Category: "MEDICAL_EMERGENCY", Level: "CRITICAL", Domain: "medical"},
		{ID: "MED_003", Expr: `\bdifficulty breathing\b`, Weight: 0.9, Category: "MEDICAL_EMERGENCY", Level: "CRITICAL", Domain: "medical"},
		{ID: "MED_004", Expr: `\bstroke\b`, Weight: 0.9, Category: "MEDICAL_EMERGENCY", Level: "CRITICAL", Domain: "medical"},
		{ID: "MED_005", Expr: `\bseizure\b`, Weight: 0.85, Category: "MEDICAL_EMERGENCY", Level: "HIGH", Domain: "medical"},
		{ID: "MED_006", Expr: `\bunconscious\b`, Weight: 0.85, Category: "MEDICAL_EMERGENCY", Level: "HIGH", Domain: "medical"},

		// --- SELF HARM ---
		{ID: "HARM_001", Expr: `\bsuicide\b`, Weight: 1.0, Category: "SELF_HARM", Level: "CRITICAL", Domain: "general"},
		{ID: "HARM_002", Expr: `\bkill myself\b`, Weight: 1.0, Category: "SELF_HARM", Level: "CRITICAL", Domain: "general"},
		{ID: "HARM_003", Expr: `\bend my life\b`, Weight: 0.95, Category: "SELF_HARM", Level: "CRITICAL", Domain: "general"},
		{ID: "HARM_004", Expr: `\bself ?harm\b`, Weight: 0.9, Category: "SELF_HARM", Level: "CRITICAL", Domain: "general"},

		// --- FINANCIAL SCAM ---
		// 1000% survives normalization untouched; that is the whole point
		// of keeping digits and % out of the homoglyph map.
		{ID: "FIN_001", Expr: `1000%`, Weight: 0.9, Category: "FINANCIAL_SCAM", Level: "HIGH", Domain: "financial"},
		{ID: "FIN_002", Expr: `\bguaranteed\b`, Weight: 0.8, Category: "FINANCIAL_SCAM", Level: "HIGH", Domain: "financial"},
		{ID: "FIN_003", Expr: `\brisk ?free\b`, Weight: 0.7, Category: "FINANCIAL_SCAM", Level: "HIGH", Domain: "financial"},
		{ID: "FIN_004", Expr: `\bget rich quick\b`, Weight: 0.7, Category: "FINANCIAL_SCAM", Level: "HIGH", Domain: "financial"},
		{ID: "FIN_005", Expr: `\binsider information\b`, Weight: 0.6, Category: "FINANCIAL_SCAM", Level: "MEDIUM", Domain: "financial"},
		{ID: "FIN_006", Expr: `\bponzi\b`, Weight: 0.9, Category: "FINANCIAL_SCAM", Level: "HIGH", Domain: "financial"},

		// --- HARMFUL CONTENT ---
		// Digit leetspeak is matched here via classes because the
		// normalizer never rewrites digits.
		{ID: "PROHIB_001", Expr: `\b(make|build) a b[o0]mb\b`, Weight: 1.0, Category: "HARMFUL_CONTENT", Level: "CRITICAL", Domain: "general"},
		{ID: "PROHIB_002", Expr: `\bpoison\b`, Weight: 0.9, Category: "HARMFUL_CONTENT", Level: "CRITICAL", Domain: "general"},
		{ID: "PROHIB_003", Expr: `\b(make|build|construct) (an? )?(explosive|weapon)\b`, Weight: 0.95, Category: "HARMFUL_CONTENT", Level: "CRITICAL", Domain: "general"},

		// --- PRIVACY ---
		{ID: "PRIV_001", Expr: `\bsocial security number\b`, Weight: 0.7, Category: "PRIVACY_VIOLATION", Level: "HIGH", Domain: "general"},
		{ID: "PRIV_002", Expr: `\bcredit card number\b`, Weight: 0.6, Category: "PRIVACY_VIOLATION", Level: "HIGH", Domain: "financial"},
		{ID: "PRIV_003", Expr: `\b(someones|their) (password|address)\b`, Weight: 0.6, Category: "PRIVACY_VIOLATION", Level: "MEDIUM", Domain: "general"},
	}
}

func defaultModifiers() []ModifierSpec {
	return []ModifierSpec{
		// Hard negations: absolute rule-outs that short-circuit the pass.
		{ID: "NEG_001", Expr: `\bno (chest )?pain\b`, Role: "negation"},
		{ID: "NEG_002", Expr: `\bdont have\b`, Role: "negation"},
		{ID: "NEG_003", Expr: `\bnot (experiencing|feeling)\b`, Role: "negation"},
		{ID: "NEG_004", Expr: `\bjust curious\b`, Role: "negation"},
		{ID: "NEG_005", Expr: `\bhypothetical(ly)?\b`, Role: "negation"},

		// Aggravators: push the accumulated score up.
		{ID: "AGG_001", Expr: `\b(severe|crushing|stabbing|unbearable)\b`, Weight: 0.5, Role: "aggravator"},
		{ID: "AGG_002", Expr: `\bradiating\b`, Weight: 0.4, Role: "aggravator"},
		{ID: "AGG_003", Expr: `\b(jaw|arm|back) pain\b`, Weight: 0.4, Role: "aggravator"},
		{ID: "AGG_004", Expr: `\bsweating\b`, Weight: 0.3, Role: "aggravator"},
		{ID: "AGG_005", Expr: `\bcant breathe\b`, Weight: 0.6, Role: "aggravator"},
		{ID: "AGG_006", Expr: `\bpassed out\b`, Weight: 0.7, Role: "aggravator"},
		{ID: "AGG_007", Expr: `\bright now\b`, Weight: 0.2, Role: "aggravator"},

		// Mitigators: pull the score down; the time-referencing ones also
		// mark the complaint as historical.
		{ID: "MIT_001", Expr: `\bafter (eating|food|meal|dinner)\b`, Weight: -0.5, Role: "mitigator"},
		{ID: "MIT_002", Expr: `\bafter (workout|exercise|gym)\b`, Weight: -0.3, Role: "mitigator"},
		{ID: "MIT_003", Expr: `\bmild\b`, Weight: -0.2, Role: "mitigator"},
		{ID: "MIT_004", Expr: `\bchronic\b`, Weight: -0.4, Role: "mitigator"},
		{ID: "MIT_005", Expr: `\bused to have\b`, Weight: -0.8, Role: "mitigator", Historical: true},
		{ID: "MIT_006", Expr: `\blast (week|month|year)\b`, Weight: -0.6, Role: "mitigator", Historical: true},
	}
}

func defaultConfig() Config {
	return Config{
		Patterns:  defaultPatterns(),
		Modifiers: defaultModifiers(),
		DomainProfiles: map[string]map[string]float64{
			"medical": {
				"MEDICAL_EMERGENCY": 1.2,
				"SELF_HARM":         1.2,
			},
			"financial": {
				"FINANCIAL_SCAM": 1.5,
			},
			"legal": {
				"HARMFUL_CONTENT": 1.2,
			},
		},
		// Phrases are matched against the NORMALIZED response, so "call
		// 911" works because the normalizer leaves digits alone.
		MitigationPhrases: []string{
			"call 911",
			"call emergency services",
			"emergency room",
			"seek immediate medical attention",
			"seek professional help",
			"crisis hotline",
			"consult a doctor",
		},
		EmergencyThreshold: 0.3,
		ResidualConfidence: 0.1,
	}
}
