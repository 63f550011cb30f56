package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dddTech2/CV-CREATOR/internal/parsing"
)

// MemStore implements Store in memory. Used in tests and when running
// without a database; entries do not survive the process.
type MemStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	now     func() time.Time
}

// NewMemStore creates an empty in-memory skill store
func NewMemStore() *MemStore {
	return &MemStore{
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
}

func key(userID, skill string) string {
	return userID + "\x00" + skill
}

// Get returns the remembered answer for a skill, or (nil, nil) when absent
func (s *MemStore) Get(_ context.Context, userID, skill string) (*Entry, error) {
	normalized := parsing.NormalizeSkill(skill)
	if normalized == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key(userID, normalized)]
	if !ok {
		return nil, nil
	}
	copied := *entry
	return &copied, nil
}

// Upsert saves an answer, incrementing the counter on an existing entry
func (s *MemStore) Upsert(_ context.Context, userID, skill, answer string) error {
	normalized := parsing.NormalizeSkill(skill)
	if normalized == "" {
		return fmt.Errorf("skill name is empty after normalization")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(userID, normalized)
	if existing, ok := s.entries[k]; ok {
		existing.Answer = answer
		existing.UsageCount++
		existing.UpdatedAt = s.now()
		return nil
	}
	s.entries[k] = &Entry{
		UserID:     userID,
		Skill:      normalized,
		Answer:     answer,
		UsageCount: 1,
		UpdatedAt:  s.now(),
	}
	return nil
}

// ListForUser returns all remembered answers for a user, most recent first
func (s *MemStore) ListForUser(_ context.Context, userID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []Entry
	for _, entry := range s.entries {
		if entry.UserID == userID {
			entries = append(entries, *entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries, nil
}
