package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classtrack-api/internal/models"
)

func newViolationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestViolationRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newViolationRepoMock(t)
	defer cleanup()
	repo := NewViolationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO violation_logs")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	violation := &models.ViolationLog{
		WeekID:          "week-1",
		ClassID:         "class-1",
		StudentID:       "student-1",
		ViolationTypeID: "type-1",
		Date:            time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(context.Background(), violation))
	require.NotEmpty(t, violation.ID)
	require.Equal(t, models.ViolationPending, violation.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestViolationRepositoryFindApprovedDuplicate(t *testing.T) {
	db, mock, cleanup := newViolationRepoMock(t)
	defer cleanup()
	repo := NewViolationRepository(db)

	date := time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "week_id", "class_id", "student_id", "violation_type_id", "date", "description", "status", "is_duplicate", "duplicate_of", "recorded_by", "approved_by", "approved_at", "rejected_by", "rejected_at", "reject_reason", "created_at", "updated_at"}).
		AddRow("violation-1", "week-1", "class-1", "student-1", "type-1", date, "late", "Approved", false, nil, nil, "actor-1", time.Now(), nil, nil, nil, time.Now(), time.Now())
	mock.ExpectQuery("SELECT .* FROM violation_logs").
		WithArgs("student-1", "type-1", date, models.ViolationApproved).
		WillReturnRows(rows)

	found, err := repo.FindApprovedDuplicate(context.Background(), "student-1", "type-1", date)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, "violation-1", found.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestViolationRepositoryFindApprovedDuplicateNone(t *testing.T) {
	db, mock, cleanup := newViolationRepoMock(t)
	defer cleanup()
	repo := NewViolationRepository(db)

	date := time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT .* FROM violation_logs").
		WithArgs("student-1", "type-1", date, models.ViolationApproved).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	found, err := repo.FindApprovedDuplicate(context.Background(), "student-1", "type-1", date)
	require.NoError(t, err)
	require.Nil(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}
