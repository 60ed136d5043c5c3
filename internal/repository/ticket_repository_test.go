package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crata-labs/crata-api/internal/models"
)

func newTicketRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTicketRepositoryFindByCode(t *testing.T) {
	db, mock, cleanup := newTicketRepoMock(t)
	defer cleanup()
	repo := NewTicketRepository(db)

	groupID := int64(7)
	rows := sqlmock.NewRows([]string{"ticket_id", "code", "status", "group_id", "client_name", "is_completed", "used_at", "created_at"}).
		AddRow("tk-1", "CODE-1", models.TicketAvailable, groupID, "Kim", false, nil, time.Now())
	mock.ExpectQuery("SELECT .+ FROM tickets WHERE code = .+ LIMIT 1").
		WithArgs("CODE-1").
		WillReturnRows(rows)

	ticket, err := repo.FindByCode(context.Background(), "CODE-1")
	require.NoError(t, err)
	assert.Equal(t, "tk-1", ticket.TicketID)
	assert.Equal(t, models.TicketAvailable, ticket.Status)
	require.NotNil(t, ticket.GroupID)
	assert.Equal(t, groupID, *ticket.GroupID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepositoryFindByCodeMissing(t *testing.T) {
	db, mock, cleanup := newTicketRepoMock(t)
	defer cleanup()
	repo := NewTicketRepository(db)

	mock.ExpectQuery("SELECT .+ FROM tickets WHERE code = .+ LIMIT 1").
		WithArgs("NOPE").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByCode(context.Background(), "NOPE")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepositoryMarkUsed(t *testing.T) {
	db, mock, cleanup := newTicketRepoMock(t)
	defer cleanup()
	repo := NewTicketRepository(db)

	usedAt := time.Now().UTC()
	mock.ExpectExec("UPDATE tickets").
		WithArgs("tk-1", models.TicketUsed, usedAt, models.TicketAvailable).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkUsed(context.Background(), "tk-1", usedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepositoryMarkUsedAlreadyConsumed(t *testing.T) {
	db, mock, cleanup := newTicketRepoMock(t)
	defer cleanup()
	repo := NewTicketRepository(db)

	usedAt := time.Now().UTC()
	mock.ExpectExec("UPDATE tickets").
		WithArgs("tk-1", models.TicketUsed, usedAt, models.TicketAvailable).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkUsed(context.Background(), "tk-1", usedAt)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepositoryCountByGroup(t *testing.T) {
	db, mock, cleanup := newTicketRepoMock(t)
	defer cleanup()
	repo := NewTicketRepository(db)

	rows := sqlmock.NewRows([]string{"count"}).AddRow(10)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tickets WHERE group_id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	total, err := repo.CountByGroup(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
