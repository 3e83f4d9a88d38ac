package repository

import (
	"context"

	"famtreebot/internal/models"
)

// UserRepository defines the interface for user data operations.
// Lookups return (nil, nil) when no row matches.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
}

// TreeRepository defines the interface for tree and access-grant operations.
type TreeRepository interface {
	Create(ctx context.Context, tree *models.Tree) (*models.Tree, error)
	GetByID(ctx context.Context, id int64) (*models.Tree, error)
	// Delete removes the tree and cascades to its members, relationships,
	// events and access grants.
	Delete(ctx context.Context, id int64) error
	// GrantAccess inserts or updates the grant for (treeID, userID).
	GrantAccess(ctx context.Context, treeID, userID int64, role models.Role) error
	GetGrant(ctx context.Context, treeID, userID int64) (*models.AccessGrant, error)
	// GrantsForUser returns the user's grants in insertion order.
	GrantsForUser(ctx context.Context, userID int64) ([]*models.AccessGrant, error)
	// TransferOwnership demotes the current OWNER to EDITOR and makes
	// toUserID the OWNER, as a single atomic operation.
	TransferOwnership(ctx context.Context, treeID, toUserID int64) error
}

// MemberRepository defines the interface for member and relationship
// operations, including the advisory edit lock.
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) (*models.Member, error)
	GetByID(ctx context.Context, id int64) (*models.Member, error)
	// GetByTree returns the tree's members ordered by id ascending.
	GetByTree(ctx context.Context, treeID int64) ([]*models.Member, error)
	Update(ctx context.Context, member *models.Member) (*models.Member, error)
	// TryLock attempts to set locked_by in one compare-and-set: it succeeds
	// iff the member is unlocked or already locked by userID.
	TryLock(ctx context.Context, memberID, userID int64) (bool, error)
	// Unlock clears the lock if held by userID; otherwise it is a no-op.
	Unlock(ctx context.Context, memberID, userID int64) error
	AddRelationship(ctx context.Context, treeID, parentID, childID int64) error
	RelationshipsByTree(ctx context.Context, treeID int64) ([]*models.Relationship, error)
}

// EventRepository defines the interface for member event operations.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	// GetByMember returns the member's events in insertion order.
	GetByMember(ctx context.Context, memberID int64) ([]*models.Event, error)
}
