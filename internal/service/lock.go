package service

import (
	"context"
	"fmt"

	"famtreebot/internal/repository"

	"github.com/sirupsen/logrus"
)

// LockManager mediates the advisory per-member edit lock. The lock is a
// nullable holder column on the member row; acquisition is a single
// compare-and-set in the repository, so there is no window between reading
// the current holder and claiming the lock.
type LockManager struct {
	members repository.MemberRepository
	logger  *logrus.Logger
}

// NewLockManager creates a new lock manager.
func NewLockManager(members repository.MemberRepository, logger *logrus.Logger) *LockManager {
	return &LockManager{members: members, logger: logger}
}

// Acquire claims the edit lock on the member for userID. Re-acquiring a lock
// already held by the same user succeeds. Returns ErrMemberLocked when
// another user holds it, ErrNotFound when the member does not exist.
func (m *LockManager) Acquire(ctx context.Context, memberID, userID int64) error {
	ok, err := m.members.TryLock(ctx, memberID, userID)
	if err != nil {
		return fmt.Errorf("failed to acquire lock on member %d: %w", memberID, err)
	}
	if ok {
		m.logger.WithFields(logrus.Fields{
			"member_id": memberID,
			"user_id":   userID,
		}).Debug("Acquired member edit lock")
		return nil
	}

	member, err := m.members.GetByID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("failed to load member %d: %w", memberID, err)
	}
	if member == nil {
		return ErrNotFound
	}

	return ErrMemberLocked
}

// Release frees the lock if userID holds it. Releasing a lock that is not
// held, or held by someone else, is a no-op.
func (m *LockManager) Release(ctx context.Context, memberID, userID int64) error {
	if err := m.members.Unlock(ctx, memberID, userID); err != nil {
		return fmt.Errorf("failed to release lock on member %d: %w", memberID, err)
	}

	m.logger.WithFields(logrus.Fields{
		"member_id": memberID,
		"user_id":   userID,
	}).Debug("Released member edit lock")

	return nil
}

// HolderOf reports the current lock holder, if any.
func (m *LockManager) HolderOf(ctx context.Context, memberID int64) (*int64, error) {
	member, err := m.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to load member %d: %w", memberID, err)
	}
	if member == nil {
		return nil, ErrNotFound
	}
	return member.LockedBy, nil
}
