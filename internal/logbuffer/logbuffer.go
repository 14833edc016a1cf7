// Package logbuffer keeps the patrol notes of a running execution in redis so
// they survive process restarts, and hands them off exactly once when the
// execution ends.
package logbuffer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/brgy-sanroque/tanod-patrol/backend/internal/domain"
)

// tombstone marks an entry removed from the middle of a redis list; LREM
// cleans it up afterwards.
const tombstone = "__removed__"

type Buffer struct {
	rdb *redis.Client
}

func NewBuffer(rdb *redis.Client) *Buffer {
	return &Buffer{rdb: rdb}
}

func entriesKey(scheduleID, tanodID int64) string {
	return fmt.Sprintf("patrol_logs:%d:%d", scheduleID, tanodID)
}

// flushKey holds the idempotency key of an in-flight flush. It is created on
// the first flush attempt and deleted together with the entries once the
// flush succeeds, so a retry after a transient failure resubmits under the
// same id.
func flushKey(scheduleID, tanodID int64) string {
	return fmt.Sprintf("patrol_logs:flush:%d:%d", scheduleID, tanodID)
}

func (b *Buffer) Append(ctx context.Context, scheduleID, tanodID int64, text string, now time.Time) error {
	if strings.TrimSpace(text) == "" {
		return domain.NewValidationError("log text must not be empty")
	}

	entry := domain.LogBufferEntry{Text: text, CapturedAt: now}
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return b.rdb.RPush(ctx, entriesKey(scheduleID, tanodID), payload).Err()
}

func (b *Buffer) Entries(ctx context.Context, scheduleID, tanodID int64) ([]domain.LogBufferEntry, error) {
	raw, err := b.rdb.LRange(ctx, entriesKey(scheduleID, tanodID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LogBufferEntry, 0, len(raw))
	for _, item := range raw {
		if item == tombstone {
			continue
		}
		var entry domain.LogBufferEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Remove deletes the index-th not-yet-flushed entry.
func (b *Buffer) Remove(ctx context.Context, scheduleID, tanodID int64, index int) error {
	key := entriesKey(scheduleID, tanodID)

	length, err := b.rdb.LLen(ctx, key).Result()
	if err != nil {
		return err
	}
	if index < 0 || int64(index) >= length {
		return domain.NewValidationError("log entry %d does not exist", index)
	}

	if err := b.rdb.LSet(ctx, key, int64(index), tombstone).Err(); err != nil {
		return err
	}
	return b.rdb.LRem(ctx, key, 1, tombstone).Err()
}

// Flush submits the full ordered buffer through save and clears it only after
// save succeeds. The flush id is pinned in redis before the first attempt, so
// retried flushes resubmit the same entries under the same id and the sink
// can drop duplicates. A save failure is wrapped in UploadError and leaves
// the buffer untouched.
func (b *Buffer) Flush(ctx context.Context, scheduleID, tanodID int64, save func(flushID uuid.UUID, entries []domain.LogBufferEntry) error) error {
	entries, err := b.Entries(ctx, scheduleID, tanodID)
	if err != nil {
		return &domain.UploadError{Err: err}
	}

	if len(entries) > 0 {
		flushID, err := b.pinFlushID(ctx, scheduleID, tanodID)
		if err != nil {
			return &domain.UploadError{Err: err}
		}

		if err := save(flushID, entries); err != nil {
			return &domain.UploadError{Err: err}
		}
	}

	return b.rdb.Del(ctx, entriesKey(scheduleID, tanodID), flushKey(scheduleID, tanodID)).Err()
}

func (b *Buffer) pinFlushID(ctx context.Context, scheduleID, tanodID int64) (uuid.UUID, error) {
	key := flushKey(scheduleID, tanodID)

	if err := b.rdb.SetNX(ctx, key, uuid.NewString(), 0).Err(); err != nil {
		return uuid.Nil, err
	}

	value, err := b.rdb.Get(ctx, key).Result()
	if err != nil {
		return uuid.Nil, err
	}

	return uuid.Parse(value)
}
