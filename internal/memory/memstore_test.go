package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_GetMissing(t *testing.T) {
	store := NewMemStore()

	entry, err := store.Get(context.Background(), "user-1", "docker")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestMemStore_UpsertThenGet(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "user-1", "Docker", "I ran containers at Initech."))

	entry, err := store.Get(ctx, "user-1", "docker")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "docker", entry.Skill, "key is the normalized skill")
	assert.Equal(t, "I ran containers at Initech.", entry.Answer)
	assert.Equal(t, 1, entry.UsageCount)
}

func TestMemStore_DoubleUpsertIncrementsCounter(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	current := base
	store.now = func() time.Time {
		current = current.Add(time.Minute)
		return current
	}

	require.NoError(t, store.Upsert(ctx, "user-1", "Docker", "first answer"))
	first, err := store.Get(ctx, "user-1", "Docker")
	require.NoError(t, err)

	require.NoError(t, store.Upsert(ctx, "user-1", "  DOCKER ", "second answer"))

	entries, err := store.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 1, "exactly one entry per (user, skill)")

	assert.Equal(t, "second answer", entries[0].Answer, "last write wins")
	assert.Equal(t, 2, entries[0].UsageCount)
	assert.True(t, entries[0].UpdatedAt.After(first.UpdatedAt), "timestamp advances")
}

func TestMemStore_NormalizedVariantsShareEntry(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "user-1", "Golang", "wrote services in Go"))

	entry, err := store.Get(ctx, "user-1", "Go")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "wrote services in Go", entry.Answer)
}

func TestMemStore_UsersAreIsolated(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "user-1", "docker", "answer"))

	entry, err := store.Get(ctx, "user-2", "docker")
	require.NoError(t, err)
	assert.Nil(t, entry)

	entries, err := store.ListForUser(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemStore_RejectsEmptySkill(t *testing.T) {
	store := NewMemStore()
	assert.Error(t, store.Upsert(context.Background(), "user-1", "   ", "answer"))
}

func TestMemStore_ListOrderedMostRecentFirst(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	current := base
	store.now = func() time.Time {
		current = current.Add(time.Hour)
		return current
	}

	require.NoError(t, store.Upsert(ctx, "user-1", "docker", "a"))
	require.NoError(t, store.Upsert(ctx, "user-1", "aws", "b"))
	require.NoError(t, store.Upsert(ctx, "user-1", "kubernetes", "c"))

	entries, err := store.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "kubernetes", entries[0].Skill)
	assert.Equal(t, "docker", entries[2].Skill)
}
