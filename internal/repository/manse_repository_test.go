package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crata-labs/crata-api/internal/models"
)

func newManseRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var manseRowColumns = []string{
	"solar_date", "lunar_date", "season", "season_start_time", "leap_month",
	"year_sky", "year_ground", "month_sky", "month_ground", "day_sky", "day_ground",
	"created_at", "updated_at",
}

func TestManseRepositoryFindBySolarDate(t *testing.T) {
	db, mock, cleanup := newManseRepoMock(t)
	defer cleanup()
	repo := NewManseRepository(db)

	rows := sqlmock.NewRows(manseRowColumns).
		AddRow("1990-03-15", "1990-02-19", nil, nil, 0, "경", "오", "기", "묘", "갑", "자", time.Now(), time.Now())
	mock.ExpectQuery("SELECT .+ FROM manses WHERE solar_date =").
		WithArgs("1990-03-15").
		WillReturnRows(rows)

	rec, err := repo.FindBySolarDate(context.Background(), "1990-03-15")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "갑", rec.DaySky)
	assert.Equal(t, "자", rec.DayGround)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManseRepositoryFindBySolarDateMissing(t *testing.T) {
	db, mock, cleanup := newManseRepoMock(t)
	defer cleanup()
	repo := NewManseRepository(db)

	mock.ExpectQuery("SELECT .+ FROM manses WHERE solar_date =").
		WithArgs("1800-01-01").
		WillReturnRows(sqlmock.NewRows(manseRowColumns))

	rec, err := repo.FindBySolarDate(context.Background(), "1800-01-01")
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManseRepositoryFindByLunarDatePicksEarliestSolar(t *testing.T) {
	db, mock, cleanup := newManseRepoMock(t)
	defer cleanup()
	repo := NewManseRepository(db)

	rows := sqlmock.NewRows(manseRowColumns).
		AddRow("1990-03-15", "1990-02-19", nil, nil, 0, "경", "오", "기", "묘", "갑", "자", time.Now(), time.Now())
	mock.ExpectQuery("SELECT .+ FROM manses WHERE lunar_date = .+ ORDER BY solar_date ASC LIMIT 1").
		WithArgs("1990-02-19").
		WillReturnRows(rows)

	rec, err := repo.FindByLunarDate(context.Background(), "1990-02-19")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "1990-03-15", rec.SolarDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManseRepositoryFindSeasonBefore(t *testing.T) {
	db, mock, cleanup := newManseRepoMock(t)
	defer cleanup()
	repo := NewManseRepository(db)

	at := time.Date(1990, 3, 15, 9, 30, 0, 0, time.UTC)
	start := time.Date(1990, 3, 6, 1, 19, 0, 0, time.UTC)
	rows := sqlmock.NewRows(manseRowColumns).
		AddRow("1990-03-06", "1990-02-10", "경칩", start, 0, "경", "오", "기", "묘", "을", "묘", time.Now(), time.Now())
	mock.ExpectQuery("SELECT .+ FROM manses WHERE season_start_time <= .+ ORDER BY season_start_time DESC LIMIT 1").
		WithArgs(at).
		WillReturnRows(rows)

	rec, err := repo.FindSeasonBefore(context.Background(), at)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.NotNil(t, rec.Season)
	assert.Equal(t, "경칩", *rec.Season)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManseRepositoryBulkInsertSkipsConflicts(t *testing.T) {
	db, mock, cleanup := newManseRepoMock(t)
	defer cleanup()
	repo := NewManseRepository(db)

	records := []models.ManseRecord{
		{SolarDate: "1990-03-15", LunarDate: "1990-02-19", YearSky: "경", YearGround: "오", MonthSky: "기", MonthGround: "묘", DaySky: "갑", DayGround: "자"},
		{SolarDate: "1990-03-16", LunarDate: "1990-02-20", YearSky: "경", YearGround: "오", MonthSky: "기", MonthGround: "묘", DaySky: "을", DayGround: "축"},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO manses").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Second row hits ON CONFLICT DO NOTHING.
	mock.ExpectExec("INSERT INTO manses").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	inserted, err := repo.BulkInsert(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManseRepositoryBulkInsertEmptyBatch(t *testing.T) {
	db, mock, cleanup := newManseRepoMock(t)
	defer cleanup()
	repo := NewManseRepository(db)

	inserted, err := repo.BulkInsert(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
