// Package budget provides per-user token metering, the cost ceiling gate the
// pipeline consults before every LLM call, and the audit log.
package budget

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Operation names tag recorded token usage. The vocabulary is fixed;
// call sites must not invent new names.
type Operation string

// Operation constants
const (
	OpJobExtraction       Operation = "job_extraction"
	OpCVExtraction        Operation = "cv_extraction"
	OpGapAnalysis         Operation = "gap_analysis"
	OpQuestionGeneration  Operation = "question_generation"
	OpClassification      Operation = "classification"
	OpExperienceSynthesis Operation = "experience_synthesis"
	OpSkillPrioritization Operation = "skill_prioritization"
	OpSummaryGeneration   Operation = "summary_generation"
)

// ErrBudgetExceeded is returned when a stage is blocked by the cost ceiling.
// It is a deterministic block, not a transient failure.
var ErrBudgetExceeded = errors.New("user budget exceeded")

// Reservation is a hold placed on a user's budget for one in-flight call.
// It is released once the call's actual usage has been recorded, or when
// the call fails.
type Reservation struct {
	ID     uuid.UUID
	UserID string
	Cost   float64
}

// Gate answers whether a user may spend on LLM calls. Reserve places a hold
// against the ceiling atomically with the check, so concurrent calls cannot
// jointly overshoot the limit; each hold is sized by Pricing.ReservedCost.
type Gate interface {
	IsBlocked(ctx context.Context, userID string) (bool, error)
	// Reserve admits a call and holds its estimated cost, or returns
	// ErrBudgetExceeded without placing a hold
	Reserve(ctx context.Context, userID string) (*Reservation, error)
	// Release drops a hold. A nil reservation is a no-op.
	Release(ctx context.Context, r *Reservation) error
}

// Recorder accepts token usage reports after each completed LLM call
type Recorder interface {
	Record(ctx context.Context, userID string, op Operation, inputTokens, outputTokens int) error
}

// Tracker combines gating and recording with usage inspection
type Tracker interface {
	Gate
	Recorder
	// TotalCost returns the accumulated cost for a user in the local currency
	TotalCost(ctx context.Context, userID string) (float64, error)
	// Reset clears a user's accumulated usage
	Reset(ctx context.Context, userID string) error
}

// Pricing converts token counts to a cost in a local currency
type Pricing struct {
	// InputUSDPerMillion is the price per million input tokens
	InputUSDPerMillion float64
	// OutputUSDPerMillion is the price per million output tokens
	OutputUSDPerMillion float64
	// ExchangeRate converts USD to the local currency
	ExchangeRate float64
	// CeilingLocal is the per-user spending limit in the local currency
	CeilingLocal float64
	// ReserveInputTokens and ReserveOutputTokens size the hold placed on the
	// budget while a call is in flight, before its actual usage is known
	ReserveInputTokens  int
	ReserveOutputTokens int
}

// DefaultPricing returns the default cost model
func DefaultPricing() Pricing {
	return Pricing{
		InputUSDPerMillion:  2.0,
		OutputUSDPerMillion: 12.0,
		ExchangeRate:        4200.0,
		CeilingLocal:        1500.0,
		ReserveInputTokens:  8000,
		ReserveOutputTokens: 2000,
	}
}

// ReservedCost is the cost held for an in-flight call before its actual
// usage is known
func (p Pricing) ReservedCost() float64 {
	return p.Cost(p.ReserveInputTokens, p.ReserveOutputTokens)
}

// Cost returns the local-currency cost of a token count pair
func (p Pricing) Cost(inputTokens, outputTokens int) float64 {
	usd := float64(inputTokens)/1_000_000*p.InputUSDPerMillion +
		float64(outputTokens)/1_000_000*p.OutputUSDPerMillion
	return usd * p.ExchangeRate
}
