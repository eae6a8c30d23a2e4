// Package config holds gateway settings and the on-disk rules file format.
// Everything is configurable via environment variables; the rules file is
// optional and supplements the built-in pattern tables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wardenlabs/warden/pkg/rules"
)

// Config holds global settings for the Warden gateway.
// All settings can be configured via environment variables or programmatically.
type Config struct {
	// === Core Settings ===
	ListenAddr string // HTTP listen address (default: ":8080")
	Env        string // "development" or "production"
	LogLevel   string // zap level: debug, info, warn, error

	// === Rules ===
	RulesPath string // Optional YAML rules file; empty = built-ins only

	// === Decision Thresholds (0.0 - 1.0) ===
	EscalationScore float64 // Aggregate risk at or above this escalates (default: 0.5)
	ConfidenceFloor float64 // Confidence below this routes to review (default: 0.3)

	// === Audit Sinks ===
	AuditLogPath    string        // JSONL audit log file (default: "audit_events.jsonl")
	PostgresDSN     string        // Optional Postgres sink; empty = disabled
	AuditWebhookURL string        // Optional webhook sink; empty = disabled
	AuditRetention  time.Duration // Postgres retention window (default: 720h)

	// === Result Cache ===
	RedisURL string        // Optional Redis cache; empty = disabled
	CacheTTL time.Duration // Cached decision lifetime (default: 1h)
}

// NewDefaultConfig creates a Config with sensible defaults.
// All settings can be overridden via environment variables.
func NewDefaultConfig() *Config {
	return &Config{
		ListenAddr: GetEnv("WARDEN_LISTEN_ADDR", ":8080"),
		Env:        GetEnv("WARDEN_ENV", "development"),
		LogLevel:   GetEnv("WARDEN_LOG_LEVEL", "info"),

		RulesPath: GetEnv("WARDEN_RULES_PATH", ""),

		EscalationScore: GetEnvFloat("WARDEN_ESCALATION_SCORE", 0.5),
		ConfidenceFloor: GetEnvFloat("WARDEN_CONFIDENCE_FLOOR", 0.3),

		AuditLogPath:    GetEnv("WARDEN_AUDIT_LOG", "audit_events.jsonl"),
		PostgresDSN:     GetEnv("WARDEN_POSTGRES_DSN", ""),
		AuditWebhookURL: GetEnv("WARDEN_AUDIT_WEBHOOK_URL", ""),
		AuditRetention:  time.Duration(GetEnvInt("WARDEN_AUDIT_RETENTION_HOURS", 720)) * time.Hour,

		RedisURL: GetEnv("WARDEN_REDIS_URL", ""),
		CacheTTL: time.Duration(GetEnvInt("WARDEN_CACHE_TTL_SECONDS", 3600)) * time.Second,
	}
}

// IsProduction reports whether the gateway runs in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Env)
	return env == "production" || env == "prod"
}

// Validate checks threshold ranges and sink settings. Misconfigured
// thresholds are a hard error everywhere: a gate with a broken decision
// boundary must not start.
func (c *Config) Validate() error {
	if c.EscalationScore <= 0 || c.EscalationScore > 1 {
		return fmt.Errorf("escalation score %v outside (0, 1]", c.EscalationScore)
	}
	if c.ConfidenceFloor < 0 || c.ConfidenceFloor > 1 {
		return fmt.Errorf("confidence floor %v outside [0, 1]", c.ConfidenceFloor)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %v", c.CacheTTL)
	}
	if c.AuditRetention <= 0 {
		return fmt.Errorf("audit retention must be positive, got %v", c.AuditRetention)
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address is empty")
	}
	return nil
}

// RulesFile is the YAML document accepted at WARDEN_RULES_PATH. Every
// section is optional; omitted sections keep their built-in defaults.
type RulesFile struct {
	Rules             rules.Config `yaml:"rules"`
	HedgingVocabulary []string     `yaml:"hedging_vocabulary"`
	SafeExemplars     []string     `yaml:"safe_exemplars"`
	EscalationScore   float64      `yaml:"escalation_score"`
	ConfidenceFloor   float64      `yaml:"confidence_floor"`
}

// LoadRulesFile reads and parses a YAML rules file. A missing path returns
// an empty document rather than an error so the built-ins apply.
func LoadRulesFile(path string) (*RulesFile, error) {
	if path == "" {
		return &RulesFile{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var rf RulesFile
	if err := yaml.Unmarshal(raw, &rf); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	return &rf, nil
}

// Helper functions for environment variable parsing.

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool returns the boolean value of an environment variable or a default value.
func GetEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

// GetEnvFloat returns the float64 value of an environment variable or a default value.
func GetEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

// GetEnvInt returns the integer value of an environment variable or a default value.
func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return defaultValue
}
