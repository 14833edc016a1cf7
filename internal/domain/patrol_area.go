package domain

import "time"

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PatrolArea is a named polygon zone. Coordinates form an ordered ring of at
// least three points; the ring is implicitly closed. Schedules reference areas
// by id only, so the record stays serializable without any map runtime.
type PatrolArea struct {
	ID          int64        `json:"id"`
	Legend      string       `json:"legend"`
	Color       string       `json:"color"`
	Coordinates []Coordinate `json:"coordinates"`
	CreatedAt   time.Time    `json:"createdAt"`
	Version     int32        `json:"-"`
}
