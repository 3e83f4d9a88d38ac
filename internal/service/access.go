package service

import (
	"context"
	"fmt"

	"famtreebot/internal/models"
	"famtreebot/internal/repository"

	"github.com/sirupsen/logrus"
)

// AccessService computes a user's role on a tree and performs grant
// mutations. Roles are always read fresh from the grant table: ownership can
// move between two messages, so nothing here is cached.
type AccessService struct {
	trees  repository.TreeRepository
	logger *logrus.Logger
}

// NewAccessService creates a new access service.
func NewAccessService(trees repository.TreeRepository, logger *logrus.Logger) *AccessService {
	return &AccessService{trees: trees, logger: logger}
}

// RoleFor returns the user's role on the tree, or RoleNone without error when
// no grant exists.
func (s *AccessService) RoleFor(ctx context.Context, userID, treeID int64) (models.Role, error) {
	grant, err := s.trees.GetGrant(ctx, treeID, userID)
	if err != nil {
		return models.RoleNone, fmt.Errorf("failed to resolve role for user %d on tree %d: %w", userID, treeID, err)
	}
	if grant == nil {
		return models.RoleNone, nil
	}
	return grant.Role, nil
}

// ActiveTree returns the tree the user works on — the first tree the user
// was granted access to — together with the user's role on it. Both are zero
// when the user has no tree yet.
func (s *AccessService) ActiveTree(ctx context.Context, userID int64) (*models.Tree, models.Role, error) {
	grants, err := s.trees.GrantsForUser(ctx, userID)
	if err != nil {
		return nil, models.RoleNone, fmt.Errorf("failed to list grants for user %d: %w", userID, err)
	}
	if len(grants) == 0 {
		return nil, models.RoleNone, nil
	}

	grant := grants[0]
	tree, err := s.trees.GetByID(ctx, grant.TreeID)
	if err != nil {
		return nil, models.RoleNone, fmt.Errorf("failed to load tree %d: %w", grant.TreeID, err)
	}
	if tree == nil {
		return nil, models.RoleNone, nil
	}

	return tree, grant.Role, nil
}

// GrantViewer gives the target user VIEWER access to the tree.
func (s *AccessService) GrantViewer(ctx context.Context, treeID, userID int64) error {
	if err := s.trees.GrantAccess(ctx, treeID, userID, models.RoleViewer); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"tree_id": treeID,
		"user_id": userID,
	}).Info("Granted viewer access")

	return nil
}

// TransferOwnership makes toUserID the OWNER of the tree and demotes the
// caller to EDITOR. The caller must currently be the OWNER.
func (s *AccessService) TransferOwnership(ctx context.Context, treeID, fromUserID, toUserID int64) error {
	role, err := s.RoleFor(ctx, fromUserID, treeID)
	if err != nil {
		return err
	}
	if role != models.RoleOwner {
		return ErrPermissionDenied
	}

	if err := s.trees.TransferOwnership(ctx, treeID, toUserID); err != nil {
		return fmt.Errorf("failed to transfer ownership of tree %d: %w", treeID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"tree_id":   treeID,
		"from_user": fromUserID,
		"to_user":   toUserID,
	}).Info("Transferred tree ownership")

	return nil
}
