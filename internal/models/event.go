package models

import "time"

// Event is a special date attached to a member, e.g. "Anniversary" or
// "Death Anniversary". Events are append-only.
type Event struct {
	ID          int64     `json:"id" db:"id"`
	MemberID    int64     `json:"member_id" db:"member_id"`
	EventType   string    `json:"event_type" db:"event_type"`
	EventDate   time.Time `json:"event_date" db:"event_date"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
