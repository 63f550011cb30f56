// Package memory provides the persistent per-user skill memory: previously
// given qualifying answers keyed by (user, normalized skill), reused across
// sessions to pre-fill interview questions.
package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dddTech2/CV-CREATOR/internal/parsing"
)

// Entry is one remembered answer. At most one entry exists per (user, skill).
type Entry struct {
	UserID     string    `json:"user_id"`
	Skill      string    `json:"skill"`
	Answer     string    `json:"answer"`
	UsageCount int       `json:"usage_count"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Store is the skill memory abstraction consumed by the interview stage
type Store interface {
	// Get returns the remembered answer for a skill, or (nil, nil) when absent
	Get(ctx context.Context, userID, skill string) (*Entry, error)
	// Upsert saves an answer, incrementing the usage counter and refreshing
	// the timestamp when the (user, skill) pair already exists
	Upsert(ctx context.Context, userID, skill, answer string) error
	// ListForUser returns all remembered answers for a user, most recent first
	ListForUser(ctx context.Context, userID string) ([]Entry, error)
}

// PGStore implements Store on PostgreSQL
type PGStore struct {
	pool *pgxpool.Pool
}

// queryTimeout bounds every query so a hung database surfaces as a deadline
// error instead of stalling the session
const queryTimeout = 10 * time.Second

func withQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

// NewPGStore creates a skill memory store backed by the given pool
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// EnsureSchema creates the skill_memory table if it does not exist
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS skill_memory (
			user_id     TEXT        NOT NULL,
			skill       TEXT        NOT NULL,
			answer      TEXT        NOT NULL,
			usage_count INTEGER     NOT NULL DEFAULT 1,
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (user_id, skill)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create skill_memory table: %w", err)
	}
	return nil
}

// Get returns the remembered answer for a skill, or (nil, nil) when absent
func (s *PGStore) Get(ctx context.Context, userID, skill string) (*Entry, error) {
	normalized := parsing.NormalizeSkill(skill)
	if normalized == "" {
		return nil, nil
	}

	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	var entry Entry
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, skill, answer, usage_count, updated_at
		FROM skill_memory
		WHERE user_id = $1 AND skill = $2
	`, userID, normalized).Scan(&entry.UserID, &entry.Skill, &entry.Answer, &entry.UsageCount, &entry.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get skill memory entry: %w", err)
	}

	return &entry, nil
}

// Upsert saves an answer for a (user, skill) pair. An existing entry has its
// answer replaced, its counter incremented, and its timestamp refreshed.
func (s *PGStore) Upsert(ctx context.Context, userID, skill, answer string) error {
	normalized := parsing.NormalizeSkill(skill)
	if normalized == "" {
		return fmt.Errorf("skill name is empty after normalization")
	}

	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO skill_memory (user_id, skill, answer, usage_count, updated_at)
		VALUES ($1, $2, $3, 1, now())
		ON CONFLICT (user_id, skill) DO UPDATE SET
			answer = EXCLUDED.answer,
			usage_count = skill_memory.usage_count + 1,
			updated_at = now()
	`, userID, normalized, answer)
	if err != nil {
		return fmt.Errorf("failed to upsert skill memory entry: %w", err)
	}
	return nil
}

// ListForUser returns all remembered answers for a user, most recent first
func (s *PGStore) ListForUser(ctx context.Context, userID string) ([]Entry, error) {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT user_id, skill, answer, usage_count, updated_at
		FROM skill_memory
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list skill memory entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.UserID, &entry.Skill, &entry.Answer, &entry.UsageCount, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan skill memory entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
