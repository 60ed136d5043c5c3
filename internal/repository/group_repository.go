package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/crata-labs/crata-api/internal/models"
)

// GroupRepository reads group hierarchy data.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository creates a new instance of GroupRepository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// FindByID loads one group with its assigned ticket count. Returns
// sql.ErrNoRows when the group does not exist.
func (r *GroupRepository) FindByID(ctx context.Context, groupID int64) (*models.Group, error) {
	const query = `SELECT
			g.group_id, g.group_name, g.parent_group_id, g.created_at,
			(SELECT COUNT(*) FROM tickets t WHERE t.group_id = g.group_id) AS ticket_count
		FROM groups g
		WHERE g.group_id = $1 LIMIT 1`
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, groupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find group by id: %w", err)
	}
	return &group, nil
}

// ListChildren returns the direct sub-groups of a parent, oldest first.
func (r *GroupRepository) ListChildren(ctx context.Context, parentID int64) ([]models.Group, error) {
	const query = `SELECT
			g.group_id, g.group_name, g.parent_group_id, g.created_at,
			(SELECT COUNT(*) FROM tickets t WHERE t.group_id = g.group_id) AS ticket_count
		FROM groups g
		WHERE g.parent_group_id = $1
		ORDER BY g.created_at ASC`
	var groups []models.Group
	if err := r.db.SelectContext(ctx, &groups, query, parentID); err != nil {
		return nil, fmt.Errorf("list child groups: %w", err)
	}
	return groups, nil
}
