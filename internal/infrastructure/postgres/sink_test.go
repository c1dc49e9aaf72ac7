package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/domain"
)

func testRow() domain.SubmissionRow {
	return domain.SubmissionRow{
		ID:             "9f2c7a1e-1b1a-4c1e-9d1e-2b7c3f4a5d6e",
		CatalogKey:     "marketing",
		SubmittedAt:    time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC),
		Name:           "Ada",
		Email:          "ada@example.com",
		CompanyName:    "Acme",
		Industry:       "Retail",
		Employees:      "11-50",
		Role:           "CMO",
		Score:          12,
		Recommendation: "rec",
		FollowUp:       "follow",
	}
}

func TestSink_AppendRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sink, err := New(db, "submissions")
	require.NoError(t, err)

	row := testRow()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "submissions"`)).
		WithArgs(row.ID, row.CatalogKey, row.SubmittedAt, "Ada", "ada@example.com", "Acme", "Retail", "11-50", "CMO", 12, "rec", "follow").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, sink.AppendRow(context.Background(), row))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSink_AppendRow_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sink, err := New(db, "submissions")
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "submissions"`)).
		WillReturnError(errors.New("connection reset"))

	err = sink.AppendRow(context.Background(), testRow())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert submission")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSink_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sink, err := New(db, `weird"name`)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "weird""name"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, sink.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSink_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	sink, err := New(db, "submissions")
	require.NoError(t, err)

	mock.ExpectPing().WillReturnError(errors.New("down"))
	err = sink.Ping(context.Background())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNew_EmptyTable(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = New(db, "  ")
	assert.Error(t, err)
}
