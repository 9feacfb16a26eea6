package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/classtrack-api/internal/models"
	appErrors "github.com/noah-isme/classtrack-api/pkg/errors"
)

type mockWeekRepo struct {
	weeks          map[string]*models.Week
	cascadeStatus  models.RecordStatus
	cascadeTargets []models.CascadeEntity
	preview        models.WeekDeletePreview
	deleted        []string
}

func (m *mockWeekRepo) List(ctx context.Context, filter models.WeekFilter) ([]models.Week, int, error) {
	return nil, 0, nil
}

func (m *mockWeekRepo) FindByID(ctx context.Context, id string) (*models.Week, error) {
	if week, ok := m.weeks[id]; ok {
		return week, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockWeekRepo) UpdateStatus(ctx context.Context, week *models.Week) error {
	m.weeks[week.ID] = week
	return nil
}

func (m *mockWeekRepo) CascadeStatus(ctx context.Context, weekID string, status models.RecordStatus, targets []models.CascadeEntity) error {
	m.cascadeStatus = status
	m.cascadeTargets = targets
	return nil
}

func (m *mockWeekRepo) DeletePreview(ctx context.Context, weekID string) (*models.WeekDeletePreview, error) {
	preview := m.preview
	preview.WeekID = weekID
	return &preview, nil
}

func (m *mockWeekRepo) Delete(ctx context.Context, weekID string) error {
	m.deleted = append(m.deleted, weekID)
	delete(m.weeks, weekID)
	return nil
}

type mockInvalidator struct {
	invalidated []string
}

func (m *mockInvalidator) InvalidateWeek(ctx context.Context, weekID string) {
	m.invalidated = append(m.invalidated, weekID)
}

func TestWeekServiceApprove(t *testing.T) {
	repo := &mockWeekRepo{weeks: map[string]*models.Week{"w1": {ID: "w1", Status: models.StatusDraft}}}
	svc := NewWeekService(repo, &mockInvalidator{}, zap.NewNop())

	week, err := svc.Approve(context.Background(), "w1", "admin")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, week.Status)
	require.NotNil(t, week.ApprovedBy)
	assert.Equal(t, "admin", *week.ApprovedBy)
	assert.NotNil(t, week.ApprovedAt)
	assert.Empty(t, repo.cascadeTargets)
}

func TestWeekServiceLockRequiresApproved(t *testing.T) {
	repo := &mockWeekRepo{weeks: map[string]*models.Week{"w1": {ID: "w1", Status: models.StatusDraft}}}
	svc := NewWeekService(repo, &mockInvalidator{}, zap.NewNop())

	_, err := svc.Lock(context.Background(), "w1", "admin")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidState))
}

func TestWeekServiceUnlockCascades(t *testing.T) {
	admin := "admin"
	repo := &mockWeekRepo{weeks: map[string]*models.Week{"w1": {ID: "w1", Status: models.StatusLocked, LockedBy: &admin}}}
	cache := &mockInvalidator{}
	svc := NewWeekService(repo, cache, zap.NewNop())

	week, err := svc.Unlock(context.Background(), "w1", "admin")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, week.Status)
	assert.Nil(t, week.LockedBy)
	assert.Nil(t, week.LockedAt)

	assert.Equal(t, models.StatusApproved, repo.cascadeStatus)
	assert.ElementsMatch(t, []models.CascadeEntity{
		models.CascadeDisciplineGradings,
		models.CascadeAcademicGradings,
		models.CascadeWeeklySummaries,
	}, repo.cascadeTargets)
	assert.Equal(t, []string{"w1"}, cache.invalidated)
}

func TestWeekServiceDeleteLocked(t *testing.T) {
	repo := &mockWeekRepo{weeks: map[string]*models.Week{"w1": {ID: "w1", Status: models.StatusLocked}}}
	svc := NewWeekService(repo, &mockInvalidator{}, zap.NewNop())

	_, err := svc.Delete(context.Background(), "w1")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrLocked))
	assert.Empty(t, repo.deleted)
}

func TestWeekServiceDeleteReturnsPreview(t *testing.T) {
	repo := &mockWeekRepo{
		weeks:   map[string]*models.Week{"w1": {ID: "w1", Status: models.StatusDraft}},
		preview: models.WeekDeletePreview{DisciplineGradings: 4, Violations: 9, WeeklySummaries: 4},
	}
	cache := &mockInvalidator{}
	svc := NewWeekService(repo, cache, zap.NewNop())

	preview, err := svc.Delete(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, 17, preview.Total())
	assert.Equal(t, []string{"w1"}, repo.deleted)
	assert.Equal(t, []string{"w1"}, cache.invalidated)
}
