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

const manseColumns = `solar_date::text AS solar_date, lunar_date::text AS lunar_date, season, season_start_time, leap_month, year_sky, year_ground, month_sky, month_ground, day_sky, day_ground, created_at, updated_at`

// ManseRepository reads the pre-seeded calendrical reference table.
type ManseRepository struct {
	db *sqlx.DB
}

// NewManseRepository instantiates the repository.
func NewManseRepository(db *sqlx.DB) *ManseRepository {
	return &ManseRepository{db: db}
}

// FindBySolarDate loads the row for one solar date. Returns nil when the
// table has no entry for the date.
func (r *ManseRepository) FindBySolarDate(ctx context.Context, date string) (*models.ManseRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM manses WHERE solar_date = $1::date`, manseColumns)
	var rec models.ManseRecord
	if err := r.db.GetContext(ctx, &rec, query, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find manse by solar date: %w", err)
	}
	return &rec, nil
}

// FindByLunarDate loads the earliest row matching one lunar date. Lunar
// dates can repeat across leap months; the first solar occurrence wins.
func (r *ManseRepository) FindByLunarDate(ctx context.Context, date string) (*models.ManseRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM manses WHERE lunar_date = $1::date ORDER BY solar_date ASC LIMIT 1`, manseColumns)
	var rec models.ManseRecord
	if err := r.db.GetContext(ctx, &rec, query, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find manse by lunar date: %w", err)
	}
	return &rec, nil
}

// FindSeasonAfter returns the earliest row whose solar-term start is at or
// after the given instant.
func (r *ManseRepository) FindSeasonAfter(ctx context.Context, at time.Time) (*models.ManseRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM manses WHERE season_start_time >= $1 ORDER BY season_start_time ASC LIMIT 1`, manseColumns)
	var rec models.ManseRecord
	if err := r.db.GetContext(ctx, &rec, query, at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find season after: %w", err)
	}
	return &rec, nil
}

// FindSeasonBefore returns the latest row whose solar-term start is at or
// before the given instant.
func (r *ManseRepository) FindSeasonBefore(ctx context.Context, at time.Time) (*models.ManseRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM manses WHERE season_start_time <= $1 ORDER BY season_start_time DESC LIMIT 1`, manseColumns)
	var rec models.ManseRecord
	if err := r.db.GetContext(ctx, &rec, query, at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find season before: %w", err)
	}
	return &rec, nil
}

// BulkInsert writes a batch of seed rows inside one transaction, skipping
// dates that are already present.
func (r *ManseRepository) BulkInsert(ctx context.Context, records []models.ManseRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin manse seed tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const stmt = `INSERT INTO manses
		(solar_date, lunar_date, season, season_start_time, leap_month,
		 year_sky, year_ground, month_sky, month_ground, day_sky, day_ground,
		 created_at, updated_at)
		VALUES ($1::date, $2::date, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (solar_date) DO NOTHING`

	inserted := 0
	for _, rec := range records {
		res, err := tx.ExecContext(ctx, stmt,
			rec.SolarDate, rec.LunarDate, rec.Season, rec.SeasonStartTime, rec.LeapMonth,
			rec.YearSky, rec.YearGround, rec.MonthSky, rec.MonthGround, rec.DaySky, rec.DayGround,
		)
		if err != nil {
			return 0, fmt.Errorf("insert manse row %s: %w", rec.SolarDate, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit manse seed tx: %w", err)
	}
	return inserted, nil
}
