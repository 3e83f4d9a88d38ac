package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"famtreebot/internal/models"
)

type treeRepository struct {
	s *Store
}

func (r *treeRepository) Create(ctx context.Context, tree *models.Tree) (*models.Tree, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextTreeID++
	tree.ID = r.s.nextTreeID
	tree.CreatedAt = time.Now()
	r.s.trees[tree.ID] = copyTree(tree)

	return tree, nil
}

func (r *treeRepository) GetByID(ctx context.Context, id int64) (*models.Tree, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tree, ok := r.s.trees[id]
	if !ok {
		return nil, nil
	}
	return copyTree(tree), nil
}

// Delete removes the tree and cascades to members, relationships, events and
// access grants, mirroring the ON DELETE CASCADE behaviour of the SQL schema.
func (r *treeRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.trees[id]; !ok {
		return fmt.Errorf("tree with ID %d not found", id)
	}

	delete(r.s.trees, id)

	for memberID, member := range r.s.members {
		if member.TreeID != id {
			continue
		}
		for eventID, event := range r.s.events {
			if event.MemberID == memberID {
				delete(r.s.events, eventID)
			}
		}
		delete(r.s.members, memberID)
	}
	for relID, rel := range r.s.relationships {
		if rel.TreeID == id {
			delete(r.s.relationships, relID)
		}
	}
	for grantID, grant := range r.s.grants {
		if grant.TreeID == id {
			delete(r.s.grants, grantID)
		}
	}

	return nil
}

func (r *treeRepository) GrantAccess(ctx context.Context, treeID, userID int64, role models.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, grant := range r.s.grants {
		if grant.TreeID == treeID && grant.UserID == userID {
			grant.Role = role
			return nil
		}
	}

	r.s.nextGrantID++
	r.s.grants[r.s.nextGrantID] = &models.AccessGrant{
		ID:        r.s.nextGrantID,
		TreeID:    treeID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now(),
	}

	return nil
}

func (r *treeRepository) GetGrant(ctx context.Context, treeID, userID int64) (*models.AccessGrant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, grant := range r.s.grants {
		if grant.TreeID == treeID && grant.UserID == userID {
			return copyGrant(grant), nil
		}
	}
	return nil, nil
}

func (r *treeRepository) GrantsForUser(ctx context.Context, userID int64) ([]*models.AccessGrant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var grants []*models.AccessGrant
	for _, grant := range r.s.grants {
		if grant.UserID == userID {
			grants = append(grants, copyGrant(grant))
		}
	}
	sort.Slice(grants, func(i, j int) bool { return grants[i].ID < grants[j].ID })

	return grants, nil
}

func (r *treeRepository) TransferOwnership(ctx context.Context, treeID, toUserID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var target *models.AccessGrant
	for _, grant := range r.s.grants {
		if grant.TreeID != treeID {
			continue
		}
		if grant.Role == models.RoleOwner {
			grant.Role = models.RoleEditor
		}
		if grant.UserID == toUserID {
			target = grant
		}
	}

	if target != nil {
		target.Role = models.RoleOwner
		return nil
	}

	r.s.nextGrantID++
	r.s.grants[r.s.nextGrantID] = &models.AccessGrant{
		ID:        r.s.nextGrantID,
		TreeID:    treeID,
		UserID:    toUserID,
		Role:      models.RoleOwner,
		CreatedAt: time.Now(),
	}

	return nil
}
