package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"famtreebot/internal/models"
	"famtreebot/internal/repository"
)

type treeRepository struct {
	db *sql.DB
}

// NewTreeRepository creates a new tree repository
func NewTreeRepository(db *sql.DB) repository.TreeRepository {
	return &treeRepository{db: db}
}

func (r *treeRepository) Create(ctx context.Context, tree *models.Tree) (*models.Tree, error) {
	query := `
		INSERT INTO trees (created_by_id, created_at)
		VALUES ($1, $2)
		RETURNING id, created_at`

	tree.CreatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		tree.CreatedByID,
		tree.CreatedAt,
	).Scan(&tree.ID, &tree.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create tree: %w", err)
	}

	return tree, nil
}

func (r *treeRepository) GetByID(ctx context.Context, id int64) (*models.Tree, error) {
	query := `
		SELECT id, created_by_id, created_at
		FROM trees
		WHERE id = $1`

	tree := &models.Tree{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tree.ID,
		&tree.CreatedByID,
		&tree.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tree by ID: %w", err)
	}

	return tree, nil
}

// Delete removes the tree row; members, relationships, events and access
// grants go with it via ON DELETE CASCADE.
func (r *treeRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM trees WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete tree: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("tree with ID %d not found", id)
	}

	return nil
}

func (r *treeRepository) GrantAccess(ctx context.Context, treeID, userID int64, role models.Role) error {
	query := `
		INSERT INTO access_grants (tree_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tree_id, user_id) DO UPDATE SET role = $3`

	_, err := r.db.ExecContext(ctx, query, treeID, userID, role, time.Now())
	if err != nil {
		return fmt.Errorf("failed to grant access: %w", err)
	}

	return nil
}

func (r *treeRepository) GetGrant(ctx context.Context, treeID, userID int64) (*models.AccessGrant, error) {
	query := `
		SELECT id, tree_id, user_id, role, created_at
		FROM access_grants
		WHERE tree_id = $1 AND user_id = $2`

	grant := &models.AccessGrant{}
	err := r.db.QueryRowContext(ctx, query, treeID, userID).Scan(
		&grant.ID,
		&grant.TreeID,
		&grant.UserID,
		&grant.Role,
		&grant.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get access grant: %w", err)
	}

	return grant, nil
}

func (r *treeRepository) GrantsForUser(ctx context.Context, userID int64) ([]*models.AccessGrant, error) {
	query := `
		SELECT id, tree_id, user_id, role, created_at
		FROM access_grants
		WHERE user_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query access grants: %w", err)
	}
	defer rows.Close()

	var grants []*models.AccessGrant
	for rows.Next() {
		grant := &models.AccessGrant{}
		if err := rows.Scan(
			&grant.ID,
			&grant.TreeID,
			&grant.UserID,
			&grant.Role,
			&grant.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan access grant: %w", err)
		}
		grants = append(grants, grant)
	}

	return grants, rows.Err()
}

// TransferOwnership swaps the OWNER grant inside one transaction: the
// current owner becomes an EDITOR and the target user becomes the OWNER.
func (r *treeRepository) TransferOwnership(ctx context.Context, treeID, toUserID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transfer transaction: %w", err)
	}
	defer tx.Rollback()

	demote := `
		UPDATE access_grants
		SET role = $2
		WHERE tree_id = $1 AND role = $3`

	if _, err := tx.ExecContext(ctx, demote, treeID, models.RoleEditor, models.RoleOwner); err != nil {
		return fmt.Errorf("failed to demote current owner: %w", err)
	}

	promote := `
		INSERT INTO access_grants (tree_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tree_id, user_id) DO UPDATE SET role = $3`

	if _, err := tx.ExecContext(ctx, promote, treeID, toUserID, models.RoleOwner, time.Now()); err != nil {
		return fmt.Errorf("failed to promote new owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ownership transfer: %w", err)
	}

	return nil
}
