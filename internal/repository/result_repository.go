package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/crata-labs/crata-api/internal/models"
)

// ResultRepository persists and reads assessment submissions.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new instance of ResultRepository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Insert stores one submission and fills in the generated identifier.
func (r *ResultRepository) Insert(ctx context.Context, result *models.TestResult) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO test_results
		(id, test_id, version_id, ticket_id, group_id, result_version, user_meta, answers, result_snapshot, created_at)
		VALUES (:id, :test_id, :version_id, :ticket_id, :group_id, :result_version, :user_meta, :answers, :result_snapshot, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("insert test result: %w", err)
	}
	return nil
}

// FindByID loads one stored submission.
func (r *ResultRepository) FindByID(ctx context.Context, id string) (*models.TestResult, error) {
	const query = `SELECT id, test_id, version_id, ticket_id, group_id, result_version, user_meta, answers, result_snapshot, created_at
		FROM test_results WHERE id = $1 LIMIT 1`
	var result models.TestResult
	if err := r.db.GetContext(ctx, &result, query, id); err != nil {
		return nil, fmt.Errorf("find test result by id: %w", err)
	}
	return &result, nil
}

// ListByGroup returns every completed submission of a group, joined with the
// ticket that was consumed for it, newest first.
func (r *ResultRepository) ListByGroup(ctx context.Context, groupID int64) ([]models.GroupResult, error) {
	const query = `SELECT
			tr.id, tr.test_id, tr.version_id, tr.ticket_id, tr.group_id, tr.result_version,
			tr.user_meta, tr.answers, tr.result_snapshot, tr.created_at,
			t.client_name, t.used_at AS ticket_used_at
		FROM test_results tr
		JOIN tickets t ON t.ticket_id = tr.ticket_id
		WHERE t.group_id = $1 AND t.is_completed = TRUE
		ORDER BY tr.created_at DESC`
	var results []models.GroupResult
	if err := r.db.SelectContext(ctx, &results, query, groupID); err != nil {
		return nil, fmt.Errorf("list group results: %w", err)
	}
	return results, nil
}
