package domain

import "time"

// EventMessage is the envelope published to the patrol_events queue and
// consumed by the notifier worker.
type EventMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

const (
	EventPatrolStarted  = "patrol_started"
	EventPatrolEnded    = "patrol_ended"
	EventPatrolOverdue  = "patrol_overdue"
	EventAccountCreated = "account_created"
)

type PatrolEventData struct {
	ScheduleID int64     `json:"scheduleID"`
	Unit       string    `json:"unit"`
	TanodName  string    `json:"tanodName"`
	AreaLegend string    `json:"areaLegend"`
	At         time.Time `json:"at"`
}

type OverdueEventData struct {
	ScheduleID int64     `json:"scheduleID"`
	Unit       string    `json:"unit"`
	TanodNames []string  `json:"tanodNames"`
	EndedAt    time.Time `json:"endedAt"`
}

type AccountCreatedData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}
