package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 0.5, cfg.EscalationScore)
	assert.Equal(t, 0.3, cfg.ConfidenceFloor)
	assert.False(t, cfg.IsProduction())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WARDEN_LISTEN_ADDR", ":9999")
	t.Setenv("WARDEN_ESCALATION_SCORE", "0.7")
	t.Setenv("WARDEN_CACHE_TTL_SECONDS", "120")
	t.Setenv("WARDEN_ENV", "production")

	cfg := NewDefaultConfig()
	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, 0.7, cfg.EscalationScore)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.IsProduction())
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero escalation", func(c *Config) { c.EscalationScore = 0 }},
		{"escalation above one", func(c *Config) { c.EscalationScore = 1.5 }},
		{"negative floor", func(c *Config) { c.ConfidenceFloor = -0.1 }},
		{"zero ttl", func(c *Config) { c.CacheTTL = 0 }},
		{"empty addr", func(c *Config) { c.ListenAddr = "" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadRulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	doc := `
rules:
  patterns:
    - id: TST_001
      expr: '\btest danger\b'
      weight: 0.9
      category: HARMFUL_CONTENT
      level: HIGH
      domain: general
hedging_vocabulary: ["might", "perhaps"]
escalation_score: 0.6
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	rf, err := LoadRulesFile(path)
	require.NoError(t, err)
	require.Len(t, rf.Rules.Patterns, 1)
	assert.Equal(t, "TST_001", rf.Rules.Patterns[0].ID)
	assert.Equal(t, 0.9, rf.Rules.Patterns[0].Weight)
	assert.Equal(t, []string{"might", "perhaps"}, rf.HedgingVocabulary)
	assert.Equal(t, 0.6, rf.EscalationScore)
}

func TestLoadRulesFileEmptyPath(t *testing.T) {
	rf, err := LoadRulesFile("")
	require.NoError(t, err)
	assert.Empty(t, rf.Rules.Patterns)
}

func TestLoadRulesFileBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: [not a map"), 0o644))

	_, err := LoadRulesFile(path)
	assert.Error(t, err)
}
