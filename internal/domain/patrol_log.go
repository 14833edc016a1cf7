package domain

import "time"

// LogBufferEntry is a free-text patrol note held in the durable buffer until
// the owning execution ends.
type LogBufferEntry struct {
	Text       string    `json:"text"`
	CapturedAt time.Time `json:"capturedAt"`
}

// PatrolLog is a flushed, persisted log entry. FlushID groups the entries of
// one buffer flush; together with Seq it makes re-submission of the same
// buffer a no-op.
type PatrolLog struct {
	ID         int64     `json:"id"`
	ScheduleID int64     `json:"scheduleID"`
	TanodID    int64     `json:"tanodID"`
	FlushID    string    `json:"-"`
	Seq        int32     `json:"-"`
	Entry      string    `json:"entry"`
	CapturedAt time.Time `json:"capturedAt"`
	CreatedAt  time.Time `json:"createdAt"`
}
