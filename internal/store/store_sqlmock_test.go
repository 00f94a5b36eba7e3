package store

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// A helper function to create a mock database connection.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}

func TestFindVisitorByEmailSQL(t *testing.T) {
	gormDB, mock := newMockDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "visitors" WHERE email = $1`)).
		WithArgs("jean@example.cd", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email", "phone_number"}).
			AddRow(7, "Jean Mukendi", "jean@example.cd", "0812345678"))

	visitor, err := s.FindVisitorByEmail(context.Background(), "jean@example.cd")
	require.NoError(t, err)
	assert.Equal(t, int64(7), visitor.ID)
	assert.Equal(t, "Jean Mukendi", visitor.FullName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckOutAllVisitsSQL(t *testing.T) {
	gormDB, mock := newMockDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "visits" SET`)).
		WithArgs(false, Any{}, Any{}, true).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	count, err := s.CheckOutAllVisits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSystemLogsOrdering(t *testing.T) {
	gormDB, mock := newMockDB(t)
	s := NewGormStore(gormDB)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "system_logs" ORDER BY created_at DESC LIMIT $1`)).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "action", "affected_count", "created_at"}).
			AddRow(2, "scheduled_checkout", 5, now).
			AddRow(1, "manual_checkout", 1, now.Add(-time.Hour)))

	logs, err := s.ListSystemLogs(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "scheduled_checkout", logs[0].Action)

	assert.NoError(t, mock.ExpectationsWereMet())
}
