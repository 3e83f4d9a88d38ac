package service

import "errors"

// Sentinel errors the conversation engine branches on with errors.Is.
var (
	// ErrNotFound is returned when a referenced tree, member or relative
	// does not exist (or belongs to a different tree).
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied is returned when the caller's role on the tree is
	// insufficient for the requested action.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrMemberLocked is returned when the edit lock on a member is held by
	// another user.
	ErrMemberLocked = errors.New("member locked by another user")
)
