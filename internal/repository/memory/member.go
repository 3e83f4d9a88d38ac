package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"famtreebot/internal/models"
)

type memberRepository struct {
	s *Store
}

func (r *memberRepository) Create(ctx context.Context, member *models.Member) (*models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextMemberID++
	member.ID = r.s.nextMemberID
	now := time.Now()
	member.CreatedAt = now
	member.UpdatedAt = now
	r.s.members[member.ID] = copyMember(member)

	return member, nil
}

func (r *memberRepository) GetByID(ctx context.Context, id int64) (*models.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	member, ok := r.s.members[id]
	if !ok {
		return nil, nil
	}
	return copyMember(member), nil
}

func (r *memberRepository) GetByTree(ctx context.Context, treeID int64) ([]*models.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var members []*models.Member
	for _, member := range r.s.members {
		if member.TreeID == treeID {
			members = append(members, copyMember(member))
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })

	return members, nil
}

func (r *memberRepository) Update(ctx context.Context, member *models.Member) (*models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.members[member.ID]
	if !ok {
		return nil, fmt.Errorf("member with ID %d not found", member.ID)
	}

	stored.Name = member.Name
	stored.Gender = member.Gender
	stored.Phone = member.Phone
	if member.DOB != nil {
		dob := *member.DOB
		stored.DOB = &dob
	} else {
		stored.DOB = nil
	}
	stored.UpdatedAt = time.Now()
	member.UpdatedAt = stored.UpdatedAt

	return member, nil
}

// TryLock performs the compare-and-set under the store lock: it succeeds iff
// the member is unlocked or already held by userID.
func (r *memberRepository) TryLock(ctx context.Context, memberID, userID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	member, ok := r.s.members[memberID]
	if !ok {
		return false, nil
	}
	if member.LockedBy != nil && *member.LockedBy != userID {
		return false, nil
	}

	member.LockedBy = &userID
	member.UpdatedAt = time.Now()
	return true, nil
}

func (r *memberRepository) Unlock(ctx context.Context, memberID, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	member, ok := r.s.members[memberID]
	if !ok {
		return nil
	}
	if member.LockedBy != nil && *member.LockedBy == userID {
		member.LockedBy = nil
		member.UpdatedAt = time.Now()
	}

	return nil
}

func (r *memberRepository) AddRelationship(ctx context.Context, treeID, parentID, childID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextRelationshipID++
	r.s.relationships[r.s.nextRelationshipID] = &models.Relationship{
		ID:        r.s.nextRelationshipID,
		TreeID:    treeID,
		ParentID:  parentID,
		ChildID:   childID,
		CreatedAt: time.Now(),
	}

	return nil
}

func (r *memberRepository) RelationshipsByTree(ctx context.Context, treeID int64) ([]*models.Relationship, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var relationships []*models.Relationship
	for _, rel := range r.s.relationships {
		if rel.TreeID == treeID {
			relationships = append(relationships, copyRelationship(rel))
		}
	}
	sort.Slice(relationships, func(i, j int) bool { return relationships[i].ID < relationships[j].ID })

	return relationships, nil
}
