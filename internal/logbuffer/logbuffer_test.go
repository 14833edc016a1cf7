package logbuffer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brgy-sanroque/tanod-patrol/backend/internal/domain"
)

func newTestBuffer(t *testing.T) (*Buffer, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewBuffer(rdb), mr
}

func TestAppendRejectsEmptyText(t *testing.T) {
	b, _ := newTestBuffer(t)

	var valErr *domain.ValidationError
	err := b.Append(context.Background(), 1, 2, "   ", time.Now())
	require.Error(t, err)
	assert.True(t, errors.As(err, &valErr))
}

func TestEntriesSurviveReconnect(t *testing.T) {
	b, mr := newTestBuffer(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, b.Append(ctx, 1, 2, "checked block A gate", now))
	require.NoError(t, b.Append(ctx, 1, 2, "streetlight out on Rizal St", now.Add(time.Minute)))
	require.NoError(t, b.Append(ctx, 1, 2, "all clear", now.Add(2*time.Minute)))

	// a fresh client over the same store stands in for a process restart
	rdb2 := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb2.Close() })
	reloaded := NewBuffer(rdb2)

	entries, err := reloaded.Entries(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "checked block A gate", entries[0].Text)
	assert.Equal(t, "streetlight out on Rizal St", entries[1].Text)
	assert.Equal(t, "all clear", entries[2].Text)
}

func TestRemove(t *testing.T) {
	b, _ := newTestBuffer(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, b.Append(ctx, 1, 2, "first", now))
	require.NoError(t, b.Append(ctx, 1, 2, "second", now))
	require.NoError(t, b.Append(ctx, 1, 2, "third", now))

	require.NoError(t, b.Remove(ctx, 1, 2, 1))

	entries, err := b.Entries(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Text)
	assert.Equal(t, "third", entries[1].Text)

	var valErr *domain.ValidationError
	err = b.Remove(ctx, 1, 2, 5)
	require.Error(t, err)
	assert.True(t, errors.As(err, &valErr))
}

func TestFlushClearsBufferOnlyOnSuccess(t *testing.T) {
	b, _ := newTestBuffer(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, b.Append(ctx, 1, 2, "note", now))

	// failed upload keeps the buffer intact
	err := b.Flush(ctx, 1, 2, func(uuid.UUID, []domain.LogBufferEntry) error {
		return errors.New("backend unreachable")
	})
	var upErr *domain.UploadError
	require.Error(t, err)
	assert.True(t, errors.As(err, &upErr))

	entries, err := b.Entries(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// successful upload drains it
	var saved []domain.LogBufferEntry
	require.NoError(t, b.Flush(ctx, 1, 2, func(_ uuid.UUID, entries []domain.LogBufferEntry) error {
		saved = entries
		return nil
	}))
	assert.Len(t, saved, 1)

	entries, err = b.Entries(ctx, 1, 2)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFlushReusesIDAcrossRetries(t *testing.T) {
	b, _ := newTestBuffer(t)
	ctx := context.Background()

	require.NoError(t, b.Append(ctx, 1, 2, "note", time.Now()))

	var firstID uuid.UUID
	err := b.Flush(ctx, 1, 2, func(id uuid.UUID, _ []domain.LogBufferEntry) error {
		firstID = id
		return errors.New("transient")
	})
	require.Error(t, err)

	var retryID uuid.UUID
	require.NoError(t, b.Flush(ctx, 1, 2, func(id uuid.UUID, _ []domain.LogBufferEntry) error {
		retryID = id
		return nil
	}))

	assert.Equal(t, firstID, retryID)

	// the next flush cycle gets a fresh id
	require.NoError(t, b.Append(ctx, 1, 2, "later note", time.Now()))
	var nextID uuid.UUID
	require.NoError(t, b.Flush(ctx, 1, 2, func(id uuid.UUID, _ []domain.LogBufferEntry) error {
		nextID = id
		return nil
	}))
	assert.NotEqual(t, firstID, nextID)
}

func TestFlushOfEmptyBufferIsNoop(t *testing.T) {
	b, _ := newTestBuffer(t)

	called := false
	require.NoError(t, b.Flush(context.Background(), 1, 2, func(uuid.UUID, []domain.LogBufferEntry) error {
		called = true
		return nil
	}))
	assert.False(t, called)
}
