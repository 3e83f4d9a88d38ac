package models

import "time"

// Tree represents a family tree. A tree is created lazily the first time a
// user without one starts the add-member flow, together with its OWNER grant.
type Tree struct {
	ID          int64     `json:"id" db:"id"`
	CreatedByID int64     `json:"created_by_id" db:"created_by_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Role is the permission tier a user holds on a tree.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"
	RoleNone   Role = ""
)

// CanEdit reports whether the role allows mutating tree contents.
func (r Role) CanEdit() bool {
	return r == RoleOwner || r == RoleEditor
}

// AccessGrant links a user to a tree with a role. A tree has exactly one
// OWNER grant at any time; ownership transfer swaps the two grants in a
// single transaction.
type AccessGrant struct {
	ID        int64     `json:"id" db:"id"`
	TreeID    int64     `json:"tree_id" db:"tree_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
