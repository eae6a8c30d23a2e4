package rules

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"
)

// PatternSpec is the serializable form of a risk pattern, as carried in the
// rules configuration file.
type PatternSpec struct {
	ID       string  `yaml:"id" json:"id"`
	Expr     string  `yaml:"expr" json:"expr"`
	Weight   float64 `yaml:"weight" json:"weight"`
	Category string  `yaml:"category" json:"category"`
	Level    string  `yaml:"level" json:"level"`
	Domain   string  `yaml:"domain" json:"domain"`
}

// ModifierSpec is the serializable form of a context modifier.
type ModifierSpec struct {
	ID         string  `yaml:"id" json:"id"`
	Expr       string  `yaml:"expr" json:"expr"`
	Weight     float64 `yaml:"weight" json:"weight"`
	Role       string  `yaml:"role" json:"role"`
	Historical bool    `yaml:"historical" json:"historical"`
}

// Config is the full configuration surface of the pattern library. A zero
// value falls back to the built-in defaults field by field, so a rules file
// may override only the pieces it cares about.
type Config struct {
	Patterns          []PatternSpec                 `yaml:"patterns"`
	Modifiers         []ModifierSpec                `yaml:"context_modifiers"`
	DomainProfiles    map[string]map[string]float64 `yaml:"domain_profiles"`
	MitigationPhrases []string                      `yaml:"mitigation_phrases"`

	// EmergencyThreshold is the context score above which the analyzer
	// reports an emergency (default 0.3). ResidualConfidence is the
	// uncertainty retained when no emergency is found (default 0.1):
	// absence of aggravation is not proof of safety.
	EmergencyThreshold float64 `yaml:"emergency_threshold"`
	ResidualConfidence float64 `yaml:"residual_confidence"`
}

// Registry holds the compiled pattern and modifier tables. It is built once
// at engine construction and shared read-only by every concurrent
// evaluation; nothing in it is mutated after Build returns.
type Registry struct {
	patterns    []*Pattern
	modifiers   []*Modifier
	profiles    map[Domain]map[Category]float64
	mitigations []string

	emergencyThreshold float64
	residualConfidence float64

	logger *zap.Logger
}

// Build compiles a registry from cfg. Malformed entries are excluded from
// the active set and reported as configuration warnings; evaluation proceeds
// with the remaining valid entries. Availability is preferred over crash.
func Build(cfg Config, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := defaultConfig()
	if len(cfg.Patterns) == 0 {
		cfg.Patterns = def.Patterns
	}
	if len(cfg.Modifiers) == 0 {
		cfg.Modifiers = def.Modifiers
	}
	if len(cfg.DomainProfiles) == 0 {
		cfg.DomainProfiles = def.DomainProfiles
	}
	if len(cfg.MitigationPhrases) == 0 {
		cfg.MitigationPhrases = def.MitigationPhrases
	}
	if cfg.EmergencyThreshold == 0 {
		cfg.EmergencyThreshold = def.EmergencyThreshold
	}
	if cfg.ResidualConfidence == 0 {
		cfg.ResidualConfidence = def.ResidualConfidence
	}

	r := &Registry{
		profiles:           make(map[Domain]map[Category]float64, len(cfg.DomainProfiles)),
		mitigations:        cfg.MitigationPhrases,
		emergencyThreshold: cfg.EmergencyThreshold,
		residualConfidence: cfg.ResidualConfidence,
		logger:             logger,
	}

	for _, spec := range cfg.Patterns {
		p, err := compilePattern(spec)
		if err != nil {
			logger.Warn("skipping invalid risk pattern",
				zap.String("id", spec.ID), zap.Error(err))
			continue
		}
		r.patterns = append(r.patterns, p)
	}

	for _, spec := range cfg.Modifiers {
		m, err := compileModifier(spec)
		if err != nil {
			logger.Warn("skipping invalid context modifier",
				zap.String("id", spec.ID), zap.Error(err))
			continue
		}
		r.modifiers = append(r.modifiers, m)
	}

	for domain, profile := range cfg.DomainProfiles {
		scaled := make(map[Category]float64, len(profile))
		for cat, mult := range profile {
			if mult <= 0 {
				logger.Warn("skipping non-positive domain multiplier",
					zap.String("domain", domain), zap.String("category", cat))
				continue
			}
			scaled[Category(cat)] = mult
		}
		r.profiles[ParseDomain(domain)] = scaled
	}

	return r
}

// Default builds a registry from the built-in tables.
func Default(logger *zap.Logger) *Registry {
	return Build(Config{}, logger)
}

func compilePattern(spec PatternSpec) (*Pattern, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("pattern has no id")
	}
	if spec.Weight <= 0 || spec.Weight > 1 {
		return nil, fmt.Errorf("weight %v outside (0,1]", spec.Weight)
	}
	re, err := regexp.Compile(spec.Expr)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", spec.Expr, err)
	}
	level := Level(spec.Level)
	if level.rank() < 0 {
		return nil, fmt.Errorf("unknown level %q", spec.Level)
	}
	return &Pattern{
		ID:       spec.ID,
		Regex:    re,
		Weight:   spec.Weight,
		Category: Category(spec.Category),
		Level:    level,
		Domain:   ParseDomain(spec.Domain),
	}, nil
}

func compileModifier(spec ModifierSpec) (*Modifier, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("modifier has no id")
	}
	role := ModifierRole(spec.Role)
	switch role {
	case RoleNegation, RoleAggravator, RoleMitigator:
	default:
		return nil, fmt.Errorf("unknown role %q", spec.Role)
	}
	if role == RoleAggravator && spec.Weight <= 0 {
		return nil, fmt.Errorf("aggravator weight %v must be positive", spec.Weight)
	}
	if role == RoleMitigator && spec.Weight >= 0 {
		return nil, fmt.Errorf("mitigator weight %v must be negative", spec.Weight)
	}
	re, err := regexp.Compile(spec.Expr)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", spec.Expr, err)
	}
	return &Modifier{
		ID:         spec.ID,
		Regex:      re,
		Weight:     spec.Weight,
		Role:       role,
		Historical: spec.Historical,
	}, nil
}

// Multiplier returns the severity scaling for a category under the given
// domain profile (1.0 when the profile has no entry).
func (r *Registry) Multiplier(cat Category, domain Domain) float64 {
	if profile, ok := r.profiles[domain]; ok {
		if mult, ok := profile[cat]; ok {
			return mult
		}
	}
	return 1.0
}

// HasMitigation reports whether the normalized response contains any of the
// configured mitigation phrases ("call 911", "emergency room", ...).
func (r *Registry) HasMitigation(normResponse string) bool {
	for _, phrase := range r.mitigations {
		if phrase != "" && containsPhrase(normResponse, phrase) {
			return true
		}
	}
	return false
}

// PatternCount returns the number of active risk patterns.
func (r *Registry) PatternCount() int { return len(r.patterns) }

// ModifierCount returns the number of active context modifiers.
func (r *Registry) ModifierCount() int { return len(r.modifiers) }
