package budget

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGTracker implements Tracker on PostgreSQL. Every completed LLM call becomes
// one row in token_usage; in-flight calls hold a row in budget_reservations
// so concurrent calls cannot jointly pass the gate.
type PGTracker struct {
	pool    *pgxpool.Pool
	pricing Pricing
}

// queryTimeout bounds every metering query so a hung database cannot hang
// the session
const queryTimeout = 10 * time.Second

// staleReservationAge is how long a hold survives before it is considered
// abandoned by a crashed run and swept
const staleReservationAge = 10 * time.Minute

func withQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

// NewPGTracker creates a tracker backed by the given pool
func NewPGTracker(pool *pgxpool.Pool, pricing Pricing) *PGTracker {
	return &PGTracker{pool: pool, pricing: pricing}
}

// EnsureSchema creates the metering tables if they do not exist
func (t *PGTracker) EnsureSchema(ctx context.Context) error {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	_, err := t.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS token_usage (
			id            UUID        PRIMARY KEY,
			user_id       TEXT        NOT NULL,
			operation     TEXT        NOT NULL,
			input_tokens  INTEGER     NOT NULL,
			output_tokens INTEGER     NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_token_usage_user ON token_usage (user_id);
		CREATE TABLE IF NOT EXISTS budget_reservations (
			id             UUID             PRIMARY KEY,
			user_id        TEXT             NOT NULL,
			estimated_cost DOUBLE PRECISION NOT NULL,
			created_at     TIMESTAMPTZ      NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_budget_reservations_user ON budget_reservations (user_id);
		CREATE TABLE IF NOT EXISTS audit_log (
			id         UUID        PRIMARY KEY,
			user_id    TEXT        NOT NULL,
			action     TEXT        NOT NULL,
			detail     TEXT        NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create metering tables: %w", err)
	}
	return nil
}

// IsBlocked reports whether the user's accumulated cost has reached the ceiling
func (t *PGTracker) IsBlocked(ctx context.Context, userID string) (bool, error) {
	cost, err := t.TotalCost(ctx, userID)
	if err != nil {
		return false, err
	}
	return cost >= t.pricing.CeilingLocal, nil
}

// Reserve admits a call only while settled cost plus in-flight holds stay
// under the ceiling, and places a hold for the estimated call cost. The check
// and the insert run under a per-user advisory lock so two concurrent calls
// cannot both pass with only one call's headroom left.
func (t *PGTracker) Reserve(ctx context.Context, userID string) (*Reservation, error) {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin budget reservation: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return nil, fmt.Errorf("failed to lock user budget: %w", err)
	}

	// Holds left behind by a crashed run expire rather than blocking forever
	if _, err := tx.Exec(ctx, `
		DELETE FROM budget_reservations
		WHERE user_id = $1 AND created_at < now() - make_interval(secs => $2)
	`, userID, staleReservationAge.Seconds()); err != nil {
		return nil, fmt.Errorf("failed to sweep stale reservations: %w", err)
	}

	var inputTokens, outputTokens int
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0)
		FROM token_usage
		WHERE user_id = $1
	`, userID).Scan(&inputTokens, &outputTokens)
	if err != nil {
		return nil, fmt.Errorf("failed to sum token usage: %w", err)
	}

	var pending float64
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(estimated_cost), 0)
		FROM budget_reservations
		WHERE user_id = $1
	`, userID).Scan(&pending)
	if err != nil {
		return nil, fmt.Errorf("failed to sum budget reservations: %w", err)
	}

	if t.pricing.Cost(inputTokens, outputTokens)+pending >= t.pricing.CeilingLocal {
		return nil, ErrBudgetExceeded
	}

	id := uuid.New()
	cost := t.pricing.ReservedCost()
	if _, err := tx.Exec(ctx, `
		INSERT INTO budget_reservations (id, user_id, estimated_cost)
		VALUES ($1, $2, $3)
	`, id, userID, cost); err != nil {
		return nil, fmt.Errorf("failed to insert budget reservation: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit budget reservation: %w", err)
	}

	return &Reservation{ID: id, UserID: userID, Cost: cost}, nil
}

// Release drops a hold placed by Reserve
func (t *PGTracker) Release(ctx context.Context, r *Reservation) error {
	if r == nil {
		return nil
	}
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	_, err := t.pool.Exec(ctx, `DELETE FROM budget_reservations WHERE id = $1`, r.ID)
	if err != nil {
		return fmt.Errorf("failed to release budget reservation: %w", err)
	}
	return nil
}

// Record inserts one usage row for a completed LLM call
func (t *PGTracker) Record(ctx context.Context, userID string, op Operation, inputTokens, outputTokens int) error {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	_, err := t.pool.Exec(ctx, `
		INSERT INTO token_usage (id, user_id, operation, input_tokens, output_tokens)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New(), userID, string(op), inputTokens, outputTokens)
	if err != nil {
		return fmt.Errorf("failed to record token usage: %w", err)
	}
	return nil
}

// TotalCost returns the accumulated cost for a user in the local currency
func (t *PGTracker) TotalCost(ctx context.Context, userID string) (float64, error) {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	var inputTokens, outputTokens int
	err := t.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0)
		FROM token_usage
		WHERE user_id = $1
	`, userID).Scan(&inputTokens, &outputTokens)
	if err != nil {
		return 0, fmt.Errorf("failed to sum token usage: %w", err)
	}
	return t.pricing.Cost(inputTokens, outputTokens), nil
}

// Reset clears a user's accumulated usage
func (t *PGTracker) Reset(ctx context.Context, userID string) error {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	_, err := t.pool.Exec(ctx, `DELETE FROM token_usage WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to reset token usage: %w", err)
	}
	return nil
}

// UsageSummary is one user's aggregate token usage
type UsageSummary struct {
	UserID       string
	InputTokens  int
	OutputTokens int
	CostLocal    float64
	LastUsedAt   time.Time
}

// AllUsersUsage returns the aggregate usage of every user, costliest first
func (t *PGTracker) AllUsersUsage(ctx context.Context) ([]UsageSummary, error) {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	rows, err := t.pool.Query(ctx, `
		SELECT user_id, COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0), MAX(created_at)
		FROM token_usage
		GROUP BY user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage summaries: %w", err)
	}
	defer rows.Close()

	var summaries []UsageSummary
	for rows.Next() {
		var s UsageSummary
		if err := rows.Scan(&s.UserID, &s.InputTokens, &s.OutputTokens, &s.LastUsedAt); err != nil {
			return nil, fmt.Errorf("failed to scan usage summary: %w", err)
		}
		s.CostLocal = t.pricing.Cost(s.InputTokens, s.OutputTokens)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Costliest first
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CostLocal > summaries[j].CostLocal
	})
	return summaries, nil
}

// LogAction appends an entry to the audit log
func (t *PGTracker) LogAction(ctx context.Context, userID, action, detail string) error {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	_, err := t.pool.Exec(ctx, `
		INSERT INTO audit_log (id, user_id, action, detail)
		VALUES ($1, $2, $3, $4)
	`, uuid.New(), userID, action, detail)
	if err != nil {
		return fmt.Errorf("failed to write audit log entry: %w", err)
	}
	return nil
}
