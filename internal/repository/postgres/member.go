package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"famtreebot/internal/models"
	"famtreebot/internal/repository"
)

type memberRepository struct {
	db *sql.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *sql.DB) repository.MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *models.Member) (*models.Member, error) {
	query := `
		INSERT INTO members (tree_id, name, dob, gender, generation_level, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	member.CreatedAt = now
	member.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		member.TreeID,
		member.Name,
		member.DOB,
		member.Gender,
		member.GenerationLevel,
		member.Phone,
		member.CreatedAt,
		member.UpdatedAt,
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	return member, nil
}

func (r *memberRepository) GetByID(ctx context.Context, id int64) (*models.Member, error) {
	query := `
		SELECT id, tree_id, name, dob, gender, generation_level, phone, locked_by, created_at, updated_at
		FROM members
		WHERE id = $1`

	member := &models.Member{}
	var phone sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&member.ID,
		&member.TreeID,
		&member.Name,
		&member.DOB,
		&member.Gender,
		&member.GenerationLevel,
		&phone,
		&member.LockedBy,
		&member.CreatedAt,
		&member.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member by ID: %w", err)
	}

	member.Phone = phone.String
	return member, nil
}

func (r *memberRepository) GetByTree(ctx context.Context, treeID int64) ([]*models.Member, error) {
	query := `
		SELECT id, tree_id, name, dob, gender, generation_level, phone, locked_by, created_at, updated_at
		FROM members
		WHERE tree_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, treeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member := &models.Member{}
		var phone sql.NullString
		if err := rows.Scan(
			&member.ID,
			&member.TreeID,
			&member.Name,
			&member.DOB,
			&member.Gender,
			&member.GenerationLevel,
			&phone,
			&member.LockedBy,
			&member.CreatedAt,
			&member.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		member.Phone = phone.String
		members = append(members, member)
	}

	return members, rows.Err()
}

func (r *memberRepository) Update(ctx context.Context, member *models.Member) (*models.Member, error) {
	query := `
		UPDATE members
		SET name = $2, dob = $3, gender = $4, phone = $5, updated_at = $6
		WHERE id = $1
		RETURNING updated_at`

	member.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		member.ID,
		member.Name,
		member.DOB,
		member.Gender,
		member.Phone,
		member.UpdatedAt,
	).Scan(&member.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	return member, nil
}

// TryLock sets locked_by in a single conditional UPDATE so the read of the
// current holder and the write are one atomic compare-and-set.
func (r *memberRepository) TryLock(ctx context.Context, memberID, userID int64) (bool, error) {
	query := `
		UPDATE members
		SET locked_by = $2, updated_at = $3
		WHERE id = $1 AND (locked_by IS NULL OR locked_by = $2)`

	result, err := r.db.ExecContext(ctx, query, memberID, userID, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to lock member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// Unlock clears the lock only when held by userID. Releasing a lock that is
// not held is not an error.
func (r *memberRepository) Unlock(ctx context.Context, memberID, userID int64) error {
	query := `
		UPDATE members
		SET locked_by = NULL, updated_at = $3
		WHERE id = $1 AND locked_by = $2`

	if _, err := r.db.ExecContext(ctx, query, memberID, userID, time.Now()); err != nil {
		return fmt.Errorf("failed to unlock member: %w", err)
	}

	return nil
}

func (r *memberRepository) AddRelationship(ctx context.Context, treeID, parentID, childID int64) error {
	query := `
		INSERT INTO relationships (tree_id, parent_id, child_id, created_at)
		VALUES ($1, $2, $3, $4)`

	if _, err := r.db.ExecContext(ctx, query, treeID, parentID, childID, time.Now()); err != nil {
		return fmt.Errorf("failed to add relationship: %w", err)
	}

	return nil
}

func (r *memberRepository) RelationshipsByTree(ctx context.Context, treeID int64) ([]*models.Relationship, error) {
	query := `
		SELECT id, tree_id, parent_id, child_id, created_at
		FROM relationships
		WHERE tree_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, treeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	defer rows.Close()

	var relationships []*models.Relationship
	for rows.Next() {
		rel := &models.Relationship{}
		if err := rows.Scan(
			&rel.ID,
			&rel.TreeID,
			&rel.ParentID,
			&rel.ChildID,
			&rel.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		relationships = append(relationships, rel)
	}

	return relationships, rows.Err()
}
