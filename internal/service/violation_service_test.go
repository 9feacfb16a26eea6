package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/classtrack-api/internal/models"
	appErrors "github.com/noah-isme/classtrack-api/pkg/errors"
)

type mockViolationRepo struct {
	violations map[string]*models.ViolationLog
	approved   []*models.ViolationLog
	nextID     int
	deleted    []string
}

func (m *mockViolationRepo) Create(ctx context.Context, violation *models.ViolationLog) error {
	if m.violations == nil {
		m.violations = make(map[string]*models.ViolationLog)
	}
	m.nextID++
	violation.ID = fmt.Sprintf("v%d", m.nextID)
	m.violations[violation.ID] = violation
	return nil
}

func (m *mockViolationRepo) FindByID(ctx context.Context, id string) (*models.ViolationLog, error) {
	if v, ok := m.violations[id]; ok {
		return v, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockViolationRepo) FindApprovedDuplicate(ctx context.Context, studentID, violationTypeID string, date time.Time) (*models.ViolationLog, error) {
	for _, v := range m.approved {
		if v.StudentID == studentID && v.ViolationTypeID == violationTypeID && v.Date.Equal(date) {
			return v, nil
		}
	}
	return nil, nil
}

func (m *mockViolationRepo) List(ctx context.Context, filter models.ViolationFilter) ([]models.ViolationDetail, int, error) {
	return nil, 0, nil
}

func (m *mockViolationRepo) UpdateStatus(ctx context.Context, violation *models.ViolationLog) error {
	m.violations[violation.ID] = violation
	return nil
}

func (m *mockViolationRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.violations, id)
	return nil
}

type mockViolationTypeReader struct {
	types map[string]*models.ViolationType
}

func (m *mockViolationTypeReader) FindByID(ctx context.Context, id string) (*models.ViolationType, error) {
	if vt, ok := m.types[id]; ok {
		return vt, nil
	}
	return nil, sql.ErrNoRows
}

type mockSummaryRefresher struct {
	refreshed int
}

func (m *mockSummaryRefresher) Regenerate(ctx context.Context, weekID, classID, actor string) (*models.WeeklySummary, error) {
	m.refreshed++
	return &models.WeeklySummary{WeekID: weekID, ClassID: classID}, nil
}

func violationFixtures(t *testing.T) (*mockViolationRepo, *mockViolationTypeReader, *mockWeekRepo, *mockSummaryRefresher) {
	t.Helper()
	weeks := &mockWeekRepo{weeks: map[string]*models.Week{"w1": {
		ID:        "w1",
		Status:    models.StatusApproved,
		StartDate: mustDate(t, "2026-09-07"),
		EndDate:   mustDate(t, "2026-09-13"),
	}}}
	types := &mockViolationTypeReader{types: map[string]*models.ViolationType{"vt1": {
		ID: "vt1", Name: "Late arrival", Severity: models.SeverityMinor, DefaultPenalty: 5,
	}}}
	return &mockViolationRepo{}, types, weeks, &mockSummaryRefresher{}
}

func TestViolationServiceLog(t *testing.T) {
	repo, types, weeks, refresher := violationFixtures(t)
	svc := NewViolationService(repo, types, weeks, refresher, validator.New(), zap.NewNop())

	result, err := svc.Log(context.Background(), LogViolationRequest{
		WeekID:          "w1",
		ClassID:         "c1",
		StudentID:       "s1",
		ViolationTypeID: "vt1",
		Date:            "2026-09-08",
	}, "teacher")
	require.NoError(t, err)
	assert.False(t, result.IsDuplicate)
	assert.Equal(t, models.ViolationPending, result.Record.Status)
	require.NotNil(t, result.Record.RecordedBy)
	assert.Equal(t, "teacher", *result.Record.RecordedBy)
}

func TestViolationServiceLogFlagsDuplicate(t *testing.T) {
	repo, types, weeks, refresher := violationFixtures(t)
	original := &models.ViolationLog{
		ID: "orig", StudentID: "s1", ViolationTypeID: "vt1",
		Date: mustDate(t, "2026-09-08"), Status: models.ViolationApproved,
	}
	repo.approved = []*models.ViolationLog{original}
	svc := NewViolationService(repo, types, weeks, refresher, validator.New(), zap.NewNop())

	result, err := svc.Log(context.Background(), LogViolationRequest{
		WeekID:          "w1",
		ClassID:         "c1",
		StudentID:       "s1",
		ViolationTypeID: "vt1",
		Date:            "2026-09-08",
	}, "teacher")
	require.NoError(t, err)
	assert.True(t, result.IsDuplicate)
	require.NotNil(t, result.Record.DuplicateOf)
	assert.Equal(t, "orig", *result.Record.DuplicateOf)
	// The duplicate is still persisted for explicit review.
	assert.Len(t, repo.violations, 1)
}

func TestViolationServiceLogRejectsDateOutsideWeek(t *testing.T) {
	repo, types, weeks, refresher := violationFixtures(t)
	svc := NewViolationService(repo, types, weeks, refresher, validator.New(), zap.NewNop())

	_, err := svc.Log(context.Background(), LogViolationRequest{
		WeekID:          "w1",
		ClassID:         "c1",
		StudentID:       "s1",
		ViolationTypeID: "vt1",
		Date:            "2026-09-20",
	}, "teacher")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestViolationServiceLogRejectsLockedWeek(t *testing.T) {
	repo, types, weeks, refresher := violationFixtures(t)
	weeks.weeks["w1"].Status = models.StatusLocked
	svc := NewViolationService(repo, types, weeks, refresher, validator.New(), zap.NewNop())

	_, err := svc.Log(context.Background(), LogViolationRequest{
		WeekID:          "w1",
		ClassID:         "c1",
		StudentID:       "s1",
		ViolationTypeID: "vt1",
		Date:            "2026-09-08",
	}, "teacher")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrLocked))
}

func TestViolationServiceApprove(t *testing.T) {
	repo, types, weeks, refresher := violationFixtures(t)
	repo.violations = map[string]*models.ViolationLog{"v1": {
		ID: "v1", WeekID: "w1", ClassID: "c1", Status: models.ViolationPending,
	}}
	svc := NewViolationService(repo, types, weeks, refresher, validator.New(), zap.NewNop())

	violation, err := svc.Approve(context.Background(), "v1", "admin")
	require.NoError(t, err)
	assert.Equal(t, models.ViolationApproved, violation.Status)
	require.NotNil(t, violation.ApprovedBy)
	assert.Equal(t, "admin", *violation.ApprovedBy)
	assert.Equal(t, 1, refresher.refreshed)
}

func TestViolationServiceApproveRequiresPending(t *testing.T) {
	repo, types, weeks, refresher := violationFixtures(t)
	repo.violations = map[string]*models.ViolationLog{"v1": {
		ID: "v1", WeekID: "w1", ClassID: "c1", Status: models.ViolationRejected,
	}}
	svc := NewViolationService(repo, types, weeks, refresher, validator.New(), zap.NewNop())

	_, err := svc.Approve(context.Background(), "v1", "admin")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidState))
}

func TestViolationServiceRejectRequiresReason(t *testing.T) {
	repo, types, weeks, refresher := violationFixtures(t)
	repo.violations = map[string]*models.ViolationLog{"v1": {
		ID: "v1", WeekID: "w1", ClassID: "c1", Status: models.ViolationPending,
	}}
	svc := NewViolationService(repo, types, weeks, refresher, validator.New(), zap.NewNop())

	_, err := svc.Reject(context.Background(), "v1", "admin", RejectViolationRequest{Reason: "   "})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	violation, err := svc.Reject(context.Background(), "v1", "admin", RejectViolationRequest{Reason: "logged twice"})
	require.NoError(t, err)
	assert.Equal(t, models.ViolationRejected, violation.Status)
	require.NotNil(t, violation.RejectReason)
	assert.Equal(t, "logged twice", *violation.RejectReason)
}

func TestViolationServiceDeleteApprovedRefused(t *testing.T) {
	repo, types, weeks, refresher := violationFixtures(t)
	repo.violations = map[string]*models.ViolationLog{"v1": {
		ID: "v1", WeekID: "w1", ClassID: "c1", Status: models.ViolationApproved,
	}}
	svc := NewViolationService(repo, types, weeks, refresher, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "v1", "admin")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidState))
	assert.Empty(t, repo.deleted)
}
