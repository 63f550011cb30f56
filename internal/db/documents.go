package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dddTech2/CV-CREATOR/internal/types"
)

// DocumentRecord is a stored document plus its provenance
type DocumentRecord struct {
	ID        uuid.UUID       `json:"id"`
	SessionID uuid.UUID       `json:"session_id"`
	UserID    string          `json:"user_id"`
	Document  *types.Document `json:"document"`
	CreatedAt time.Time       `json:"created_at"`
}

// SaveDocument stores a validated document for a session and returns its ID
func (db *DB) SaveDocument(ctx context.Context, sessionID uuid.UUID, userID string, doc *types.Document) (uuid.UUID, error) {
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO documents (session_id, user_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		sessionID, userID, jsonBytes,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save document: %w", err)
	}
	return id, nil
}

// GetDocument retrieves a stored document by ID, or nil when it does not exist
func (db *DB) GetDocument(ctx context.Context, documentID uuid.UUID) (*DocumentRecord, error) {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	var record DocumentRecord
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, session_id, user_id, content, created_at
		 FROM documents WHERE id = $1`,
		documentID,
	).Scan(&record.ID, &record.SessionID, &record.UserID, &content, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	var doc types.Document
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document %s: %w", documentID, err)
	}
	record.Document = &doc

	return &record, nil
}

// ListDocuments retrieves a user's stored documents, newest first
func (db *DB) ListDocuments(ctx context.Context, userID string, limit int) ([]DocumentRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	rows, err := db.pool.Query(ctx,
		`SELECT id, session_id, user_id, content, created_at
		 FROM documents WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var records []DocumentRecord
	for rows.Next() {
		var record DocumentRecord
		var content []byte
		if err := rows.Scan(&record.ID, &record.SessionID, &record.UserID, &content, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		var doc types.Document
		if err := json.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document %s: %w", record.ID, err)
		}
		record.Document = &doc
		records = append(records, record)
	}
	return records, nil
}
