package service

import (
	"context"
	"fmt"
	"time"

	"famtreebot/internal/models"
	"famtreebot/internal/repository"

	"github.com/sirupsen/logrus"
)

// FamilyService composes the repositories into the graph operations the
// conversation engine calls. Generation levels are supplied by the caller;
// the service does not derive them.
type FamilyService struct {
	users   repository.UserRepository
	trees   repository.TreeRepository
	members repository.MemberRepository
	events  repository.EventRepository
	logger  *logrus.Logger
}

// NewFamilyService creates a new family graph service.
func NewFamilyService(
	users repository.UserRepository,
	trees repository.TreeRepository,
	members repository.MemberRepository,
	events repository.EventRepository,
	logger *logrus.Logger,
) *FamilyService {
	return &FamilyService{
		users:   users,
		trees:   trees,
		members: members,
		events:  events,
		logger:  logger,
	}
}

// EnsureUser retrieves the user with the given normalized phone identity, or
// creates one on first contact.
func (s *FamilyService) EnsureUser(ctx context.Context, phone string) (*models.User, error) {
	user, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup user %s: %w", phone, err)
	}
	if user != nil {
		return user, nil
	}

	user, err = s.users.Create(ctx, &models.User{Phone: phone})
	if err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", phone, err)
	}

	s.logger.WithField("user_id", user.ID).Info("Created new user")
	return user, nil
}

// CreateTree creates a tree with the given user as OWNER.
func (s *FamilyService) CreateTree(ctx context.Context, owner *models.User) (*models.Tree, error) {
	tree, err := s.trees.Create(ctx, &models.Tree{CreatedByID: owner.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to create tree: %w", err)
	}

	if err := s.trees.GrantAccess(ctx, tree.ID, owner.ID, models.RoleOwner); err != nil {
		return nil, fmt.Errorf("failed to grant ownership of tree %d: %w", tree.ID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"tree_id": tree.ID,
		"user_id": owner.ID,
	}).Info("Created new tree")

	return tree, nil
}

// CreateMember adds a member to its tree.
func (s *FamilyService) CreateMember(ctx context.Context, member *models.Member) (*models.Member, error) {
	member, err := s.members.Create(ctx, member)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tree_id":    member.TreeID,
		"member_id":  member.ID,
		"generation": member.GenerationLevel,
	}).Info("Created member")

	return member, nil
}

// GetMember returns the member or ErrNotFound.
func (s *FamilyService) GetMember(ctx context.Context, id int64) (*models.Member, error) {
	member, err := s.members.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotFound
	}
	return member, nil
}

// AddRelationship records a directed parent→child edge. Both members must
// belong to treeID.
func (s *FamilyService) AddRelationship(ctx context.Context, treeID, parentID, childID int64) error {
	for _, id := range []int64{parentID, childID} {
		member, err := s.members.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if member == nil || member.TreeID != treeID {
			return ErrNotFound
		}
	}

	return s.members.AddRelationship(ctx, treeID, parentID, childID)
}

// MembersOf returns the tree's members ordered by id ascending.
func (s *FamilyService) MembersOf(ctx context.Context, treeID int64) ([]*models.Member, error) {
	return s.members.GetByTree(ctx, treeID)
}

// RelationshipsOf returns the tree's parent→child edges.
func (s *FamilyService) RelationshipsOf(ctx context.Context, treeID int64) ([]*models.Relationship, error) {
	return s.members.RelationshipsByTree(ctx, treeID)
}

// UpdateMember writes the member's mutable fields.
func (s *FamilyService) UpdateMember(ctx context.Context, member *models.Member) (*models.Member, error) {
	return s.members.Update(ctx, member)
}

// DeleteTree removes the tree and everything under it: members,
// relationships, events and access grants. Irreversible.
func (s *FamilyService) DeleteTree(ctx context.Context, treeID int64) error {
	if err := s.trees.Delete(ctx, treeID); err != nil {
		return err
	}

	s.logger.WithField("tree_id", treeID).Info("Deleted tree")
	return nil
}

// AddEvent records a special date for a member.
func (s *FamilyService) AddEvent(ctx context.Context, memberID int64, eventType string, eventDate time.Time) (*models.Event, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotFound
	}

	return s.events.Create(ctx, &models.Event{
		MemberID:  memberID,
		EventType: eventType,
		EventDate: eventDate,
	})
}

// EventsOf returns the member's events in insertion order.
func (s *FamilyService) EventsOf(ctx context.Context, memberID int64) ([]*models.Event, error) {
	return s.events.GetByMember(ctx, memberID)
}
