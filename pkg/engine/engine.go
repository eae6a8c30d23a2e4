package engine

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/wardenlabs/warden/pkg/normalize"
	"github.com/wardenlabs/warden/pkg/rules"
	"github.com/wardenlabs/warden/pkg/scoring"
)

// Engine is one independently configured decision pipeline. All fields are
// established at construction and never mutated, so a single engine serves
// unbounded concurrent evaluations without locking; multiple engines with
// different configurations can coexist in one process.
type Engine struct {
	registry   *rules.Registry
	confidence *scoring.ConfidenceScorer
	similarity *scoring.SimilarityScorer
	thresholds Thresholds
	policy     []policyRule
	logger     *zap.Logger
}

// Options configures an Engine. Nil fields fall back to defaults.
type Options struct {
	Registry   *rules.Registry
	Confidence *scoring.ConfidenceScorer
	Similarity *scoring.SimilarityScorer
	Thresholds Thresholds
	Logger     *zap.Logger
}

// New constructs an engine from an injected configuration snapshot. The
// snapshot is owned by the engine afterwards and must not be mutated;
// hot-swapping configuration means building a new engine.
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = rules.Default(opts.Logger)
	}
	if opts.Confidence == nil {
		opts.Confidence = scoring.NewConfidenceScorer(nil)
	}
	if opts.Similarity == nil {
		opts.Similarity = scoring.NewSimilarityScorer(nil)
	}
	if opts.Thresholds.EscalationScore == 0 {
		opts.Thresholds.EscalationScore = DefaultThresholds().EscalationScore
	}
	if opts.Thresholds.ConfidenceFloor == 0 {
		opts.Thresholds.ConfidenceFloor = DefaultThresholds().ConfidenceFloor
	}

	return &Engine{
		registry:   opts.Registry,
		confidence: opts.Confidence,
		similarity: opts.Similarity,
		thresholds: opts.Thresholds,
		policy:     buildPolicyTable(opts.Thresholds),
		logger:     opts.Logger,
	}
}

// PatternCount exposes the size of the active pattern set for stats
// endpoints.
func (e *Engine) PatternCount() int { return e.registry.PatternCount() }

// Evaluate runs the full pipeline over one request and returns the decision
// together with its audit trail.
//
// The computation is pure: no I/O, no randomness in the control path, no
// wall-clock influence beyond metadata timestamps. If the pipeline faults
// internally it fails closed, returning REVIEW rather than silently
// approving.
func (e *Engine) Evaluate(req Request) (decision Decision, trail *AuditTrail, err error) {
	if err := req.Validate(); err != nil {
		return Approve, nil, err
	}

	started := time.Now()
	domain := rules.ParseDomain(req.Domain)

	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error("evaluation pipeline fault, failing closed",
				zap.Any("panic", rec))
			out := outcome{
				decision: Review,
				reason:   ReasonPipelineFault,
			}
			out.explanation = explain(out, &signals{})
			trail = newAuditTrail(req, domain, out, signals{domain: domain}, started)
			decision = Review
			err = nil
		}
	}()

	sig := e.gatherSignals(req, domain)
	out := e.resolve(&sig)
	trail = newAuditTrail(req, domain, out, sig, started)

	e.logger.Debug("safety decision",
		zap.String("audit_id", trail.AuditID),
		zap.String("fingerprint", trail.Fingerprint),
		zap.String("decision", out.decision.String()),
		zap.String("reason", string(out.reason)),
		zap.Float64("risk_score", sig.match.RiskScore),
		zap.Float64("confidence", sig.confidence),
		zap.String("domain", string(domain)))

	return out.decision, trail, nil
}

// gatherSignals runs stages 1-4 of the pipeline: normalize, match,
// context-analyze, confidence-score.
func (e *Engine) gatherSignals(req Request, domain rules.Domain) signals {
	sig := signals{
		domain:       domain,
		normQuery:    normalize.Normalize(req.Query),
		normResponse: normalize.Normalize(req.Response),
	}

	sig.match = e.registry.Match(sig.normQuery, sig.normResponse, domain)

	// The context pass disambiguates emergency framing, but never inside
	// the medical domain: there, emergency signals are at maximal
	// severity and must not be downgraded.
	if sig.match.Has(rules.CategoryMedicalEmergency) && domain != rules.DomainMedical {
		ctx := e.registry.AnalyzeContext(sig.normQuery)
		sig.context = &ctx

		if !ctx.IsEmergency && ctx.Confidence < e.registry.EmergencyThreshold() && !ctx.HasAggravator() {
			trimmed := sig.match.WithoutCategory(rules.CategoryMedicalEmergency)
			trimmed.RiskScore = math.Max(0.1, ctx.Confidence)
			sig.match = trimmed
			sig.overridden = true
		}
	}

	sig.confidence, sig.hedgingTerms = e.confidence.Explain(req.Response)
	sig.similarity, sig.safestExemplar = e.similarity.Calculate(req.Response)
	sig.mitigated = e.registry.HasMitigation(sig.normResponse)

	return sig
}
