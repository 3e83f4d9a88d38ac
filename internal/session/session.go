// Package session persists per-user conversation state between messages.
// Each user has at most one Session: the name of the state the conversation
// is parked in, plus the draft for whichever flow is in progress. Drafts are
// typed per flow instead of one free-form key/value map, so a state can only
// ever see the fields that belong to its flow.
package session

import (
	"context"
	"time"

	"famtreebot/internal/models"
)

// State names the conversation state a user is parked in. The empty string
// and StateMainMenu both mean "at the menu".
type State string

const (
	StateMainMenu State = "MAIN_MENU"

	StateAddMemberName         State = "ADD_MEMBER_NAME"
	StateAddMemberDOB          State = "ADD_MEMBER_DOB"
	StateAddMemberGender       State = "ADD_MEMBER_GENDER"
	StateAddMemberPhone        State = "ADD_MEMBER_PHONE"
	StateAddMemberRelation     State = "ADD_MEMBER_RELATION"
	StateAddMemberRelationType State = "ADD_MEMBER_RELATION_TYPE"

	StateEditSelectMember State = "EDIT_SELECT_MEMBER"
	StateEditSelectField  State = "EDIT_SELECT_FIELD"
	StateEditEnterValue   State = "EDIT_ENTER_VALUE"

	StateShareEnterPhone    State = "SHARE_ENTER_PHONE"
	StateTransferEnterPhone State = "TRANSFER_ENTER_PHONE"
	StateDeleteConfirm      State = "DELETE_CONFIRM"

	StateEventSelectMember State = "EVENT_SELECT_MEMBER"
	StateEventAction       State = "EVENT_ACTION"
	StateEventType         State = "EVENT_TYPE"
	StateEventDate         State = "EVENT_DATE"
)

// AddMemberDraft accumulates answers across the add-member flow.
type AddMemberDraft struct {
	Name       string        `json:"name,omitempty"`
	DOB        *time.Time    `json:"dob,omitempty"`
	Gender     models.Gender `json:"gender,omitempty"`
	Phone      string        `json:"phone,omitempty"`
	RelativeID int64         `json:"relative_id,omitempty"`
}

// EditDraft accumulates answers across the edit-member flow. MemberID also
// records which member the caller holds the edit lock on, so "reset" can
// release it.
type EditDraft struct {
	MemberID int64 `json:"member_id"`
	Field    int   `json:"field,omitempty"`
}

// EventDraft accumulates answers across the manage-events flow.
type EventDraft struct {
	MemberID  int64  `json:"member_id"`
	EventType string `json:"event_type,omitempty"`
}

// Session is the persisted conversation state for one user.
type Session struct {
	State     State           `json:"state,omitempty"`
	AddMember *AddMemberDraft `json:"add_member,omitempty"`
	Edit      *EditDraft      `json:"edit,omitempty"`
	Event     *EventDraft     `json:"event,omitempty"`
}

// Reset returns the session to the main menu and discards all drafts.
func (s *Session) Reset() {
	s.State = StateMainMenu
	s.AddMember = nil
	s.Edit = nil
	s.Event = nil
}

// Store persists sessions keyed by normalized user identity. Get returns an
// empty session when the user has none yet.
type Store interface {
	Get(ctx context.Context, key string) (*Session, error)
	Save(ctx context.Context, key string, sess *Session) error
	Delete(ctx context.Context, key string) error
}
