// Package engine implements the decision pipeline: normalize, match,
// disambiguate, score, resolve policy, build the audit record. One
// evaluation is one independent pure computation over shared read-only
// configuration; identical inputs always produce identical decisions.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Decision is the terminal verdict for one evaluation. The values are
// totally ordered by severity: APPROVE < REVIEW < ESCALATE < BLOCK.
type Decision int

const (
	Approve Decision = iota
	Review
	Escalate
	Block
)

var decisionNames = [...]string{"APPROVE", "REVIEW", "ESCALATE", "BLOCK"}

func (d Decision) String() string {
	if d < Approve || d > Block {
		return fmt.Sprintf("Decision(%d)", int(d))
	}
	return decisionNames[d]
}

// AtLeast reports whether d is as severe as other.
func (d Decision) AtLeast(other Decision) bool { return d >= other }

// MarshalJSON encodes the decision by name for audit records and API
// responses.
func (d Decision) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON restores a decision from its name (cache round-trips).
func (d *Decision) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for i, n := range decisionNames {
		if n == name {
			*d = Decision(i)
			return nil
		}
	}
	return fmt.Errorf("unknown decision %q", name)
}

// Reason explains which policy rule produced the decision.
type Reason string

const (
	ReasonProhibitedContent Reason = "PROHIBITED_CONTENT"
	ReasonMissingEscalation Reason = "MISSING_ESCALATION"
	ReasonHighStakesRisk    Reason = "HIGH_STAKES_RISK"
	ReasonRiskThreshold     Reason = "RISK_THRESHOLD"
	ReasonLowConfidence     Reason = "LOW_CONFIDENCE"
	ReasonPassedAllChecks   Reason = "PASSED_ALL_CHECKS"
	ReasonPipelineFault     Reason = "PIPELINE_FAULT"
)

// Input bounds. Anything outside fails validation before pipeline entry.
const (
	MaxQueryLen    = 5000
	MaxResponseLen = 10000
)

// ErrInvalidInput is the base error for requests rejected before the
// pipeline runs.
var ErrInvalidInput = errors.New("invalid input")

// Request is one evaluation request. Domain strings outside the supported
// set fall back to general rather than failing.
type Request struct {
	Query     string            `json:"query"`
	Response  string            `json:"response"`
	Domain    string            `json:"domain"`
	UserID    string            `json:"user_id,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Validate enforces the input contract: both texts present, non-whitespace,
// and within bounds.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return fmt.Errorf("%w: query is empty or whitespace only", ErrInvalidInput)
	}
	if strings.TrimSpace(r.Response) == "" {
		return fmt.Errorf("%w: response is empty or whitespace only", ErrInvalidInput)
	}
	if len(r.Query) > MaxQueryLen {
		return fmt.Errorf("%w: query exceeds %d characters", ErrInvalidInput, MaxQueryLen)
	}
	if len(r.Response) > MaxResponseLen {
		return fmt.Errorf("%w: response exceeds %d characters", ErrInvalidInput, MaxResponseLen)
	}
	return nil
}
