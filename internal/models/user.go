package models

import "time"

// User represents a contact that has messaged the bot. The phone number is
// the normalized identity key: the transport prefix (e.g. "whatsapp:") is
// stripped before a user is looked up or created.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
