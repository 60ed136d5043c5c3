package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/crata-labs/crata-api/internal/models"
)

// VersionRepository reads published test versions and their question sets.
type VersionRepository struct {
	db *sqlx.DB
}

// NewVersionRepository creates a new instance of VersionRepository.
func NewVersionRepository(db *sqlx.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

// FindActiveBySlug loads the currently active version of a test. Returns
// sql.ErrNoRows when the slug is unknown or has no active version.
func (r *VersionRepository) FindActiveBySlug(ctx context.Context, slug string) (*models.TestVersion, error) {
	const query = `SELECT
			v.id, v.test_id, t.slug AS test_slug, t.name AS test_name,
			COALESCE(t.description, '') AS description,
			v.version_code, v.status, v.published_at
		FROM test_versions v
		JOIN tests t ON t.id = v.test_id
		WHERE t.slug = $1 AND v.status = 'ACTIVE'
		ORDER BY v.published_at DESC
		LIMIT 1`
	var version models.TestVersion
	if err := r.db.GetContext(ctx, &version, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find active version by slug: %w", err)
	}
	return &version, nil
}

// ListQuestions returns the flattened question rows of one version with
// category and option-set headers joined in.
func (r *VersionRepository) ListQuestions(ctx context.Context, versionID string) ([]models.VersionQuestion, error) {
	const query = `SELECT
			q.id AS question_id, q.display_order, q.text,
			c.id AS category_id, c.code AS category_code, c.name AS category_name, c.parent_id,
			os.id AS option_set_id, os.name AS option_set_name, os.description AS option_set_description
		FROM version_questions q
		LEFT JOIN categories c ON c.id = q.category_id
		LEFT JOIN option_sets os ON os.id = q.option_set_id
		WHERE q.version_id = $1`
	var questions []models.VersionQuestion
	if err := r.db.SelectContext(ctx, &questions, query, versionID); err != nil {
		return nil, fmt.Errorf("list version questions: %w", err)
	}
	return questions, nil
}

// ListOptions returns all options belonging to the given option sets.
func (r *VersionRepository) ListOptions(ctx context.Context, optionSetIDs []string) ([]models.VersionOption, error) {
	if len(optionSetIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT id AS option_id, option_set_id, label, value_code, score
		FROM options WHERE option_set_id IN (?)`, optionSetIDs)
	if err != nil {
		return nil, fmt.Errorf("build options query: %w", err)
	}
	query = r.db.Rebind(query)

	var options []models.VersionOption
	if err := r.db.SelectContext(ctx, &options, query, args...); err != nil {
		return nil, fmt.Errorf("list version options: %w", err)
	}
	return options, nil
}
