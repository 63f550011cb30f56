package budget

import (
	"context"
	"errors"
	"fmt"

	"github.com/dddTech2/CV-CREATOR/internal/llm"
)

// MeteredClient wraps an llm.Client for one user and one operation: a budget
// hold is reserved atomically before every call and settled to the actual
// usage after. A blocked user gets ErrBudgetExceeded and no call is issued;
// a failed call releases its hold.
type MeteredClient struct {
	inner    llm.Client
	gate     Gate
	recorder Recorder
	userID   string
	op       Operation
}

// Metered wraps a client so its calls are gated and recorded for one operation.
// A nil inner client yields a nil wrapper, which call sites treat as
// "generation unavailable" and answer with their deterministic fallback.
func Metered(inner llm.Client, gate Gate, recorder Recorder, userID string, op Operation) llm.Client {
	if inner == nil {
		return nil
	}
	return &MeteredClient{
		inner:    inner,
		gate:     gate,
		recorder: recorder,
		userID:   userID,
		op:       op,
	}
}

// GenerateContent reserves budget, delegates, and settles the actual usage
func (m *MeteredClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (*llm.Result, error) {
	reservation, err := m.reserve(ctx)
	if err != nil {
		return nil, err
	}
	result, err := m.inner.GenerateContent(ctx, prompt, tier)
	if err != nil {
		m.release(ctx, reservation)
		return nil, err
	}
	m.settle(ctx, reservation, result)
	return result, nil
}

// GenerateJSON reserves budget, delegates, and settles the actual usage
func (m *MeteredClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (*llm.Result, error) {
	reservation, err := m.reserve(ctx)
	if err != nil {
		return nil, err
	}
	result, err := m.inner.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		m.release(ctx, reservation)
		return nil, err
	}
	m.settle(ctx, reservation, result)
	return result, nil
}

// GetModel returns the wrapped client's model for a tier
func (m *MeteredClient) GetModel(tier llm.ModelTier) string {
	return m.inner.GetModel(tier)
}

// Close closes the wrapped client
func (m *MeteredClient) Close() error {
	return m.inner.Close()
}

// reserve holds the estimated call cost against the ceiling. The check and
// the hold are one atomic step on the gate, so concurrent calls with only one
// call's headroom left cannot all pass.
func (m *MeteredClient) reserve(ctx context.Context) (*Reservation, error) {
	if m.gate == nil {
		return nil, nil
	}
	reservation, err := m.gate.Reserve(ctx, m.userID)
	if errors.Is(err, ErrBudgetExceeded) {
		return nil, fmt.Errorf("%w: user %s, operation %s", ErrBudgetExceeded, m.userID, m.op)
	}
	if err != nil {
		return nil, fmt.Errorf("budget gate check failed: %w", err)
	}
	return reservation, nil
}

func (m *MeteredClient) release(ctx context.Context, reservation *Reservation) {
	if m.gate == nil || reservation == nil {
		return
	}
	_ = m.gate.Release(ctx, reservation)
}

// settle records the actual usage before the hold is dropped, so the budget
// never momentarily undercounts an in-flight call
func (m *MeteredClient) settle(ctx context.Context, reservation *Reservation, result *llm.Result) {
	if m.recorder != nil {
		// Metering must not fail the generation that already succeeded
		_ = m.recorder.Record(ctx, m.userID, m.op, result.Usage.InputTokens, result.Usage.OutputTokens)
	}
	m.release(ctx, reservation)
}
