package budget

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemTracker implements Tracker in memory. One mutex covers settled usage and
// in-flight holds, so Reserve's check-and-increment is atomic against both
// other reserves and settlements.
type MemTracker struct {
	mu      sync.Mutex
	pricing Pricing
	usage   map[string]*userUsage
	pending map[string]float64
}

type userUsage struct {
	inputTokens  int
	outputTokens int
	byOperation  map[Operation]int
}

// NewMemTracker creates an in-memory tracker with the given pricing
func NewMemTracker(pricing Pricing) *MemTracker {
	return &MemTracker{
		pricing: pricing,
		usage:   make(map[string]*userUsage),
		pending: make(map[string]float64),
	}
}

// IsBlocked reports whether the user's accumulated cost has reached the ceiling
func (t *MemTracker) IsBlocked(_ context.Context, userID string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.costLocked(userID) >= t.pricing.CeilingLocal, nil
}

// Reserve admits a call only while settled cost plus in-flight holds stay
// under the ceiling, and places a hold for the estimated call cost
func (t *MemTracker) Reserve(_ context.Context, userID string) (*Reservation, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.costLocked(userID)+t.pending[userID] >= t.pricing.CeilingLocal {
		return nil, ErrBudgetExceeded
	}
	cost := t.pricing.ReservedCost()
	t.pending[userID] += cost
	return &Reservation{ID: uuid.New(), UserID: userID, Cost: cost}, nil
}

// Release drops a hold placed by Reserve
func (t *MemTracker) Release(_ context.Context, r *Reservation) error {
	if r == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pending[r.UserID] -= r.Cost
	if t.pending[r.UserID] <= 0 {
		delete(t.pending, r.UserID)
	}
	return nil
}

// Record debits a completed call's token usage against the user
func (t *MemTracker) Record(_ context.Context, userID string, op Operation, inputTokens, outputTokens int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	u, ok := t.usage[userID]
	if !ok {
		u = &userUsage{byOperation: make(map[Operation]int)}
		t.usage[userID] = u
	}
	u.inputTokens += inputTokens
	u.outputTokens += outputTokens
	u.byOperation[op] += inputTokens + outputTokens
	return nil
}

// TotalCost returns the accumulated cost for a user in the local currency
func (t *MemTracker) TotalCost(_ context.Context, userID string) (float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.costLocked(userID), nil
}

// Reset clears a user's accumulated usage
func (t *MemTracker) Reset(_ context.Context, userID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.usage, userID)
	return nil
}

// UsageByOperation returns total tokens per operation for a user
func (t *MemTracker) UsageByOperation(userID string) map[Operation]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[Operation]int)
	if u, ok := t.usage[userID]; ok {
		for op, tokens := range u.byOperation {
			out[op] = tokens
		}
	}
	return out
}

func (t *MemTracker) costLocked(userID string) float64 {
	u, ok := t.usage[userID]
	if !ok {
		return 0
	}
	return t.pricing.Cost(u.inputTokens, u.outputTokens)
}
