package budget

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dddTech2/CV-CREATOR/internal/llm"
)

type stubClient struct {
	calls int
}

func (s *stubClient) GenerateContent(_ context.Context, _ string, _ llm.ModelTier) (*llm.Result, error) {
	s.calls++
	return &llm.Result{Text: "ok", Usage: llm.Usage{InputTokens: 100, OutputTokens: 40}}, nil
}

func (s *stubClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (*llm.Result, error) {
	return s.GenerateContent(ctx, prompt, tier)
}

func (s *stubClient) GetModel(_ llm.ModelTier) string { return "stub" }
func (s *stubClient) Close() error                    { return nil }

func TestMetered_RecordsUsageAfterCall(t *testing.T) {
	tracker := NewMemTracker(DefaultPricing())
	inner := &stubClient{}
	client := Metered(inner, tracker, tracker, "user-1", OpClassification)

	result, err := client.GenerateJSON(context.Background(), "prompt", llm.TierLite)
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Text)

	usage := tracker.UsageByOperation("user-1")
	assert.Equal(t, 140, usage[OpClassification])
}

func TestMetered_BlockedUserIssuesNoCalls(t *testing.T) {
	pricing := DefaultPricing()
	pricing.CeilingLocal = 1.0
	tracker := NewMemTracker(pricing)
	ctx := context.Background()

	require.NoError(t, tracker.Record(ctx, "user-1", OpClassification, 1_000_000, 1_000_000))

	inner := &stubClient{}
	client := Metered(inner, tracker, tracker, "user-1", OpQuestionGeneration)

	_, err := client.GenerateContent(ctx, "prompt", llm.TierLite)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBudgetExceeded)
	assert.Equal(t, 0, inner.calls, "no LLM call may be issued for a blocked user")
}

func TestMetered_NilInnerYieldsNil(t *testing.T) {
	tracker := NewMemTracker(DefaultPricing())
	client := Metered(nil, tracker, tracker, "user-1", OpClassification)
	assert.Nil(t, client)
}

// heldClient parks inside the call so the test can hold it in flight
type heldClient struct {
	stubClient
	entered chan struct{}
	proceed chan struct{}
}

func (h *heldClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (*llm.Result, error) {
	h.entered <- struct{}{}
	<-h.proceed
	return h.stubClient.GenerateContent(ctx, prompt, tier)
}

func TestMetered_ConcurrentCallsShareOneHeadroom(t *testing.T) {
	pricing := DefaultPricing()
	// Leave headroom for exactly one in-flight hold
	pricing.CeilingLocal = pricing.ReservedCost()
	tracker := NewMemTracker(pricing)
	inner := &heldClient{entered: make(chan struct{}), proceed: make(chan struct{})}
	client := Metered(inner, tracker, tracker, "user-1", OpClassification)
	ctx := context.Background()

	firstDone := make(chan error, 1)
	go func() {
		_, err := client.GenerateContent(ctx, "prompt", llm.TierLite)
		firstDone <- err
	}()
	<-inner.entered // first call passed the gate and is now in flight

	_, err := client.GenerateContent(ctx, "prompt", llm.TierLite)
	assert.ErrorIs(t, err, ErrBudgetExceeded, "second call must not pass while the first holds the headroom")

	close(inner.proceed)
	require.NoError(t, <-firstDone)
	assert.Equal(t, 1, inner.calls, "the blocked call must not reach the model")
}

type failingClient struct {
	stubClient
}

func (f *failingClient) GenerateContent(_ context.Context, _ string, _ llm.ModelTier) (*llm.Result, error) {
	return nil, errors.New("model unavailable")
}

func TestMetered_FailedCallReleasesHold(t *testing.T) {
	pricing := DefaultPricing()
	pricing.CeilingLocal = pricing.ReservedCost()
	tracker := NewMemTracker(pricing)
	ctx := context.Background()

	_, err := Metered(&failingClient{}, tracker, tracker, "user-1", OpClassification).
		GenerateContent(ctx, "prompt", llm.TierLite)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBudgetExceeded)

	// The failed call's hold is gone, so the budget admits the next call
	inner := &stubClient{}
	_, err = Metered(inner, tracker, tracker, "user-1", OpClassification).
		GenerateContent(ctx, "prompt", llm.TierLite)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
}
