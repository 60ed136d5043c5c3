package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/crata-labs/crata-api/internal/models"
)

// TicketRepository manages assessment tickets.
type TicketRepository struct {
	db *sqlx.DB
}

// NewTicketRepository creates a new instance of TicketRepository.
func NewTicketRepository(db *sqlx.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// FindByCode loads a ticket by its redemption code. Returns sql.ErrNoRows
// when no such code exists.
func (r *TicketRepository) FindByCode(ctx context.Context, code string) (*models.Ticket, error) {
	const query = `SELECT ticket_id, code, status, group_id, client_name, is_completed, used_at, created_at
		FROM tickets WHERE code = $1 LIMIT 1`
	var ticket models.Ticket
	if err := r.db.GetContext(ctx, &ticket, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find ticket by code: %w", err)
	}
	return &ticket, nil
}

// MarkUsed consumes a ticket: flips it to USED and records completion. Only
// an AVAILABLE ticket can be consumed; a zero row count reports the conflict.
func (r *TicketRepository) MarkUsed(ctx context.Context, ticketID string, usedAt time.Time) error {
	const query = `UPDATE tickets
		SET status = $2, is_completed = TRUE, used_at = $3
		WHERE ticket_id = $1 AND status = $4`
	res, err := r.db.ExecContext(ctx, query, ticketID, models.TicketUsed, usedAt, models.TicketAvailable)
	if err != nil {
		return fmt.Errorf("mark ticket used: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark ticket used rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByGroup returns how many tickets are assigned to the group. Completion
// is counted off stored results, not ticket flags, so it is not reported here.
func (r *TicketRepository) CountByGroup(ctx context.Context, groupID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM tickets WHERE group_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, groupID); err != nil {
		return 0, fmt.Errorf("count group tickets: %w", err)
	}
	return total, nil
}
