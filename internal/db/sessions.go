package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Session represents one pipeline run for one user and job posting
type Session struct {
	ID          uuid.UUID  `json:"id"`
	UserID      string     `json:"user_id"`
	Company     string     `json:"company"`
	RoleTitle   string     `json:"role_title"`
	JobURL      string     `json:"job_url,omitempty"`
	State       string     `json:"state"`
	Round       int        `json:"round"`
	MatchScore  *float64   `json:"match_score,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CreateSession creates a new session record and returns its ID
func (db *DB) CreateSession(ctx context.Context, userID, company, roleTitle, jobURL string) (uuid.UUID, error) {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO sessions (user_id, company, role_title, job_url)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		userID, company, roleTitle, jobURL,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create session: %w", err)
	}
	return id, nil
}

// UpdateSessionState records the interview state and round for a session
func (db *DB) UpdateSessionState(ctx context.Context, sessionID uuid.UUID, state string, round int) error {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	_, err := db.pool.Exec(ctx,
		`UPDATE sessions SET state = $1, round = $2 WHERE id = $3`,
		state, round, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session state: %w", err)
	}
	return nil
}

// CompleteSession marks a session finished and stores its final match score
func (db *DB) CompleteSession(ctx context.Context, sessionID uuid.UUID, matchScore float64) error {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	_, err := db.pool.Exec(ctx,
		`UPDATE sessions SET state = 'finished', match_score = $1, completed_at = now() WHERE id = $2`,
		matchScore, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID, or nil when it does not exist
func (db *DB) GetSession(ctx context.Context, sessionID uuid.UUID) (*Session, error) {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	var s Session
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, company, role_title, job_url, state, round, match_score, created_at, completed_at
		 FROM sessions WHERE id = $1`,
		sessionID,
	).Scan(&s.ID, &s.UserID, &s.Company, &s.RoleTitle, &s.JobURL, &s.State, &s.Round, &s.MatchScore, &s.CreatedAt, &s.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

// ListSessions retrieves a user's recent sessions, newest first
func (db *DB) ListSessions(ctx context.Context, userID string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, company, role_title, job_url, state, round, match_score, created_at, completed_at
		 FROM sessions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.Company, &s.RoleTitle, &s.JobURL, &s.State, &s.Round, &s.MatchScore, &s.CreatedAt, &s.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// SaveSnapshot stores a JSON snapshot of a pipeline stage for a session.
// Re-running a stage overwrites its previous snapshot.
func (db *DB) SaveSnapshot(ctx context.Context, sessionID uuid.UUID, stage string, content any) error {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal %s snapshot: %w", stage, err)
	}

	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	_, err = db.pool.Exec(ctx,
		`INSERT INTO session_snapshots (session_id, stage, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (session_id, stage) DO UPDATE SET content = $3, created_at = now()`,
		sessionID, stage, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save %s snapshot: %w", stage, err)
	}
	return nil
}

// GetSnapshot retrieves a stage snapshot for a session, or nil when absent
func (db *DB) GetSnapshot(ctx context.Context, sessionID uuid.UUID, stage string) ([]byte, error) {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM session_snapshots WHERE session_id = $1 AND stage = $2`,
		sessionID, stage,
	).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s snapshot: %w", stage, err)
	}
	return content, nil
}
