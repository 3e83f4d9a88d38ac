package models

import (
	"strings"
	"time"
)

// Gender of a family member.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Initial returns the single-letter marker used when rendering the tree.
// The "female" check must run before "male" since the latter is a substring.
func (g Gender) Initial() string {
	label := strings.ToLower(string(g))
	switch {
	case strings.Contains(label, "female"):
		return "F"
	case strings.Contains(label, "male"):
		return "M"
	default:
		return "O"
	}
}

// Member is one person in a family tree. GenerationLevel is a signed rank
// relative to the tree's first member (root = 1); parents of the root go to 0
// and below. LockedBy is the advisory edit lock: while set, only that user
// may run the edit flow on this member.
type Member struct {
	ID              int64      `json:"id" db:"id"`
	TreeID          int64      `json:"tree_id" db:"tree_id"`
	Name            string     `json:"name" db:"name"`
	DOB             *time.Time `json:"dob" db:"dob"`
	Gender          Gender     `json:"gender" db:"gender"`
	GenerationLevel int        `json:"generation_level" db:"generation_level"`
	Phone           string     `json:"phone" db:"phone"`
	LockedBy        *int64     `json:"locked_by" db:"locked_by"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// Relationship is a directed parent→child edge between two members of the
// same tree. Spouse links create no edge; only generation placement is shared.
type Relationship struct {
	ID        int64     `json:"id" db:"id"`
	TreeID    int64     `json:"tree_id" db:"tree_id"`
	ParentID  int64     `json:"parent_id" db:"parent_id"`
	ChildID   int64     `json:"child_id" db:"child_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
