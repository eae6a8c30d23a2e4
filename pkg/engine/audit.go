package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/wardenlabs/warden/pkg/rules"
)

// AuditTrail is the immutable record of one evaluation. Timestamps and
// latency are metadata only; they never influence the decision.
//
// Redaction invariant: when Decision is BLOCK, Response and
// NormalizedResponse are empty. The original text survives only via
// OriginalResponse, which JSON encoding never emits, so a serialized trail
// (API response, cache entry) can never leak blocked content.
type AuditTrail struct {
	AuditID     string    `json:"audit_id"`
	Fingerprint string    `json:"fingerprint"`
	Timestamp   time.Time `json:"timestamp"`

	Query              string       `json:"query"`
	Response           string       `json:"response"` // cleared on BLOCK
	Domain             rules.Domain `json:"domain"`
	NormalizedQuery    string       `json:"normalized_query"`
	NormalizedResponse string       `json:"normalized_response"`

	Decision       Decision       `json:"decision"`
	Reason         Reason         `json:"reason"`
	RiskScore      float64        `json:"risk_score"`
	RiskFactors    []rules.Factor `json:"risk_factors"`
	Confidence     float64        `json:"confidence"`
	HedgingTerms   []string       `json:"hedging_terms,omitempty"`
	Similarity     float64        `json:"similarity"`
	SafestExemplar string         `json:"safest_exemplar,omitempty"`

	Context        *rules.ContextResult `json:"context,omitempty"`
	Explanation    string               `json:"explanation"`
	Counterfactual string               `json:"counterfactual,omitempty"`

	UserID    string            `json:"user_id,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	LatencyMS float64           `json:"latency_ms"`

	originalResponse string
}

// OriginalResponse returns the unredacted response for internal audit
// sinks. Downstream consumers of the serialized trail never see it.
func (t *AuditTrail) OriginalResponse() string { return t.originalResponse }

// Fingerprint derives the content-based identifier used as the cache and
// correlation key. It depends only on query, response and domain, so
// identical requests collide deliberately.
func Fingerprint(query, response string, domain rules.Domain) string {
	h := sha256.New()
	h.Write([]byte(query))
	h.Write([]byte{0x1f})
	h.Write([]byte(response))
	h.Write([]byte{0x1f})
	h.Write([]byte(domain))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// newAuditTrail assembles the record and enforces the redaction invariant.
func newAuditTrail(req Request, domain rules.Domain, out outcome, sig signals, started time.Time) *AuditTrail {
	trail := &AuditTrail{
		AuditID:     uuid.NewString(),
		Fingerprint: Fingerprint(req.Query, req.Response, domain),
		Timestamp:   started.UTC(),

		Query:              req.Query,
		Response:           req.Response,
		Domain:             domain,
		NormalizedQuery:    sig.normQuery,
		NormalizedResponse: sig.normResponse,

		Decision:       out.decision,
		Reason:         out.reason,
		RiskScore:      sig.match.RiskScore,
		RiskFactors:    sig.match.Factors,
		Confidence:     sig.confidence,
		HedgingTerms:   sig.hedgingTerms,
		Similarity:     sig.similarity,
		SafestExemplar: sig.safestExemplar,

		Context:        sig.context,
		Explanation:    out.explanation,
		Counterfactual: out.counterfactual,

		UserID:    req.UserID,
		SessionID: req.SessionID,
		Metadata:  req.Metadata,
		LatencyMS: float64(time.Since(started).Microseconds()) / 1000.0,

		originalResponse: req.Response,
	}

	if trail.Decision == Block {
		trail.Response = ""
		trail.NormalizedResponse = ""
	}
	return trail
}
