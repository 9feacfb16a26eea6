package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/classtrack-api/internal/models"
	appErrors "github.com/noah-isme/classtrack-api/pkg/errors"
)

type mockSchoolYearRepo struct {
	years map[string]*models.SchoolYear
	names map[string]bool
}

func (m *mockSchoolYearRepo) List(ctx context.Context, filter models.SchoolYearFilter) ([]models.SchoolYear, int, error) {
	return nil, 0, nil
}

func (m *mockSchoolYearRepo) FindByID(ctx context.Context, id string) (*models.SchoolYear, error) {
	if year, ok := m.years[id]; ok {
		return year, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSchoolYearRepo) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	return m.names[name], nil
}

func (m *mockSchoolYearRepo) Create(ctx context.Context, year *models.SchoolYear) error {
	if m.years == nil {
		m.years = make(map[string]*models.SchoolYear)
	}
	year.ID = "sy1"
	m.years[year.ID] = year
	return nil
}

func (m *mockSchoolYearRepo) Update(ctx context.Context, year *models.SchoolYear) error {
	m.years[year.ID] = year
	return nil
}

func (m *mockSchoolYearRepo) Delete(ctx context.Context, id string) error {
	delete(m.years, id)
	return nil
}

type mockWeekGenerator struct {
	count   int
	created []models.Week
}

func (m *mockWeekGenerator) CountBySchoolYear(ctx context.Context, schoolYearID string) (int, error) {
	return m.count, nil
}

func (m *mockWeekGenerator) BulkCreate(ctx context.Context, weeks []models.Week) error {
	m.created = weeks
	return nil
}

func (m *mockWeekGenerator) ListBySchoolYear(ctx context.Context, schoolYearID string) ([]models.Week, error) {
	return m.created, nil
}

func mustDate(t *testing.T, raw string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", raw)
	require.NoError(t, err)
	return parsed
}

func TestSchoolYearServiceCreateRejectsInvertedRange(t *testing.T) {
	svc := NewSchoolYearService(&mockSchoolYearRepo{}, &mockWeekGenerator{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateSchoolYearRequest{
		Name:      "2026-2027",
		StartDate: "2027-06-30",
		EndDate:   "2026-09-01",
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestSchoolYearServiceCreateDefaultsScoring(t *testing.T) {
	repo := &mockSchoolYearRepo{}
	svc := NewSchoolYearService(repo, &mockWeekGenerator{}, validator.New(), zap.NewNop())

	year, err := svc.Create(context.Background(), CreateSchoolYearRequest{
		Name:      "2026-2027",
		StartDate: "2026-09-01",
		EndDate:   "2027-06-30",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultScoringConfig(), year.Scoring)
}

func TestSchoolYearServiceGenerateWeeks(t *testing.T) {
	// 2026-09-01 is a Tuesday; the first week starts Monday 2026-09-07.
	repo := &mockSchoolYearRepo{years: map[string]*models.SchoolYear{"sy1": {
		ID:        "sy1",
		Name:      "2026-2027",
		StartDate: mustDate(t, "2026-09-01"),
		EndDate:   mustDate(t, "2026-10-20"),
		Scoring:   models.DefaultScoringConfig(),
	}}}
	gen := &mockWeekGenerator{}
	svc := NewSchoolYearService(repo, gen, validator.New(), zap.NewNop())

	weeks, err := svc.GenerateWeeks(context.Background(), "sy1")
	require.NoError(t, err)
	require.Len(t, weeks, 7)

	assert.Equal(t, mustDate(t, "2026-09-07"), weeks[0].StartDate)
	assert.Equal(t, mustDate(t, "2026-09-13"), weeks[0].EndDate)
	assert.Equal(t, 1, weeks[0].WeekNumber)
	assert.Equal(t, models.StatusDraft, weeks[0].Status)

	// Last week starts 2026-10-19 and is clamped to the year end.
	last := weeks[len(weeks)-1]
	assert.Equal(t, mustDate(t, "2026-10-19"), last.StartDate)
	assert.Equal(t, mustDate(t, "2026-10-20"), last.EndDate)
	assert.Equal(t, 7, last.WeekNumber)

	for i := 1; i < len(weeks); i++ {
		assert.True(t, weeks[i].StartDate.After(weeks[i-1].EndDate), "weeks must not overlap")
	}
	assert.Equal(t, weeks, gen.created)
}

func TestSchoolYearServiceGenerateWeeksRefusesSecondRun(t *testing.T) {
	repo := &mockSchoolYearRepo{years: map[string]*models.SchoolYear{"sy1": {
		ID:        "sy1",
		StartDate: mustDate(t, "2026-09-01"),
		EndDate:   mustDate(t, "2027-06-30"),
	}}}
	svc := NewSchoolYearService(repo, &mockWeekGenerator{count: 42}, validator.New(), zap.NewNop())

	_, err := svc.GenerateWeeks(context.Background(), "sy1")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
}

func TestSchoolYearServiceDeleteRefusesWithWeeks(t *testing.T) {
	repo := &mockSchoolYearRepo{years: map[string]*models.SchoolYear{"sy1": {ID: "sy1"}}}
	svc := NewSchoolYearService(repo, &mockWeekGenerator{count: 3}, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "sy1")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
}
