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

func newWeekRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestWeekRepositoryBulkCreate(t *testing.T) {
	db, mock, cleanup := newWeekRepoMock(t)
	defer cleanup()
	repo := NewWeekRepository(db)

	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	weeks := []models.Week{
		{SchoolYearID: "year-1", WeekNumber: 1, StartDate: start, EndDate: start.AddDate(0, 0, 6)},
		{SchoolYearID: "year-1", WeekNumber: 2, StartDate: start.AddDate(0, 0, 7), EndDate: start.AddDate(0, 0, 13)},
	}

	mock.ExpectBegin()
	for range weeks {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO weeks")).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.BulkCreate(context.Background(), weeks))
	require.Equal(t, models.StatusDraft, weeks[0].Status)
	require.NotEmpty(t, weeks[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWeekRepositoryCascadeStatus(t *testing.T) {
	db, mock, cleanup := newWeekRepoMock(t)
	defer cleanup()
	repo := NewWeekRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE discipline_gradings SET status = $1, updated_at = $2 WHERE week_id = $3")).
		WithArgs(models.StatusApproved, sqlmock.AnyArg(), "week-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE class_academic_gradings SET status = $1, updated_at = $2 WHERE week_id = $3")).
		WithArgs(models.StatusApproved, sqlmock.AnyArg(), "week-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE weekly_summaries SET status = $1, updated_at = $2 WHERE week_id = $3")).
		WithArgs(models.StatusApproved, sqlmock.AnyArg(), "week-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.CascadeStatus(context.Background(), "week-1", models.StatusApproved, []models.CascadeEntity{
		models.CascadeDisciplineGradings,
		models.CascadeAcademicGradings,
		models.CascadeWeeklySummaries,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWeekRepositoryDeletePreview(t *testing.T) {
	db, mock, cleanup := newWeekRepoMock(t)
	defer cleanup()
	repo := NewWeekRepository(db)

	rows := sqlmock.NewRows([]string{"discipline_gradings", "academic_gradings", "daily_conduct_scores", "daily_academic_scores", "violations", "weekly_summaries"}).
		AddRow(2, 2, 10, 10, 5, 2)
	mock.ExpectQuery("SELECT").WithArgs("week-1").WillReturnRows(rows)

	preview, err := repo.DeletePreview(context.Background(), "week-1")
	require.NoError(t, err)
	require.Equal(t, "week-1", preview.WeekID)
	require.Equal(t, 31, preview.Total())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWeekRepositoryDeleteCascades(t *testing.T) {
	db, mock, cleanup := newWeekRepoMock(t)
	defer cleanup()
	repo := NewWeekRepository(db)

	mock.ExpectBegin()
	for _, table := range []string{"discipline_gradings", "class_academic_gradings", "daily_conduct_scores", "daily_academic_scores", "violation_logs", "weekly_summaries"} {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM "+table+" WHERE week_id = $1")).
			WithArgs("week-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM weeks WHERE id = $1")).
		WithArgs("week-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "week-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
