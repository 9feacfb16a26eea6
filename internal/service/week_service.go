package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/classtrack-api/internal/models"
	appErrors "github.com/noah-isme/classtrack-api/pkg/errors"
)

type weekRepo interface {
	List(ctx context.Context, filter models.WeekFilter) ([]models.Week, int, error)
	FindByID(ctx context.Context, id string) (*models.Week, error)
	UpdateStatus(ctx context.Context, week *models.Week) error
	CascadeStatus(ctx context.Context, weekID string, status models.RecordStatus, targets []models.CascadeEntity) error
	DeletePreview(ctx context.Context, weekID string) (*models.WeekDeletePreview, error)
	Delete(ctx context.Context, weekID string) error
}

type summaryInvalidator interface {
	InvalidateWeek(ctx context.Context, weekID string)
}

// WeekService drives the week lifecycle and cascading deletes.
type WeekService struct {
	weeks  weekRepo
	cache  summaryInvalidator
	logger *zap.Logger
}

// NewWeekService constructs WeekService.
func NewWeekService(weeks weekRepo, cache summaryInvalidator, logger *zap.Logger) *WeekService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeekService{weeks: weeks, cache: cache, logger: logger}
}

// List returns weeks with pagination metadata.
func (s *WeekService) List(ctx context.Context, filter models.WeekFilter) ([]models.Week, *models.Pagination, error) {
	weeks, total, err := s.weeks.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list weeks")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 60
	}
	return weeks, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one week.
func (s *WeekService) Get(ctx context.Context, id string) (*models.Week, error) {
	week, err := s.weeks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "week not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load week")
	}
	return week, nil
}

// Approve moves a Draft week to Approved.
func (s *WeekService) Approve(ctx context.Context, id, actor string) (*models.Week, error) {
	return s.transition(ctx, id, actor, models.ActionApprove)
}

// Lock moves an Approved week to Locked, freezing every write beneath it.
func (s *WeekService) Lock(ctx context.Context, id, actor string) (*models.Week, error) {
	return s.transition(ctx, id, actor, models.ActionLock)
}

// Unlock moves a Locked week back to Approved and re-opens every grading and
// summary of the week alongside it.
func (s *WeekService) Unlock(ctx context.Context, id, actor string) (*models.Week, error) {
	return s.transition(ctx, id, actor, models.ActionUnlock)
}

func (s *WeekService) transition(ctx context.Context, id, actor string, action models.LifecycleAction) (*models.Week, error) {
	week, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	result, ok := models.Transition(week.Status, action)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "cannot "+string(action)+" week from status "+string(week.Status))
	}

	now := time.Now().UTC()
	week.Status = result.Next
	switch action {
	case models.ActionApprove:
		week.ApprovedBy = &actor
		week.ApprovedAt = &now
	case models.ActionLock:
		week.LockedBy = &actor
		week.LockedAt = &now
	case models.ActionUnlock:
		week.LockedBy = nil
		week.LockedAt = nil
	}

	if err := s.weeks.UpdateStatus(ctx, week); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update week status")
	}
	if len(result.Cascade) > 0 {
		if err := s.weeks.CascadeStatus(ctx, week.ID, result.Next, result.Cascade); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cascade week status")
		}
	}
	if s.cache != nil {
		s.cache.InvalidateWeek(ctx, week.ID)
	}

	s.logger.Info("week lifecycle transition",
		zap.String("week_id", week.ID),
		zap.String("action", string(action)),
		zap.String("status", string(week.Status)),
		zap.String("actor", actor),
	)
	return week, nil
}

// DeletePreview reports the dependent record counts a delete would remove.
func (s *WeekService) DeletePreview(ctx context.Context, id string) (*models.WeekDeletePreview, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	preview, err := s.weeks.DeletePreview(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to preview week delete")
	}
	return preview, nil
}

// Delete removes a week and all of its dependent records. Locked weeks must
// be unlocked first.
func (s *WeekService) Delete(ctx context.Context, id string) (*models.WeekDeletePreview, error) {
	week, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if week.Status == models.StatusLocked {
		return nil, appErrors.Clone(appErrors.ErrLocked, "week is locked")
	}

	preview, err := s.weeks.DeletePreview(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to preview week delete")
	}
	if err := s.weeks.Delete(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete week")
	}
	if s.cache != nil {
		s.cache.InvalidateWeek(ctx, id)
	}

	s.logger.Info("week deleted",
		zap.String("week_id", id),
		zap.Int("removed_records", preview.Total()),
	)
	return preview, nil
}
