package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/classtrack-api/internal/models"
	appErrors "github.com/noah-isme/classtrack-api/pkg/errors"
)

type violationRepo interface {
	Create(ctx context.Context, violation *models.ViolationLog) error
	FindByID(ctx context.Context, id string) (*models.ViolationLog, error)
	FindApprovedDuplicate(ctx context.Context, studentID, violationTypeID string, date time.Time) (*models.ViolationLog, error)
	List(ctx context.Context, filter models.ViolationFilter) ([]models.ViolationDetail, int, error)
	UpdateStatus(ctx context.Context, violation *models.ViolationLog) error
	Delete(ctx context.Context, id string) error
}

type violationTypeReader interface {
	FindByID(ctx context.Context, id string) (*models.ViolationType, error)
}

// LogViolationRequest records one student violation.
type LogViolationRequest struct {
	WeekID          string `json:"week_id" validate:"required"`
	ClassID         string `json:"class_id" validate:"required"`
	StudentID       string `json:"student_id" validate:"required"`
	ViolationTypeID string `json:"violation_type_id" validate:"required"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	Description     string `json:"description"`
}

// RejectViolationRequest carries the mandatory rejection reason.
type RejectViolationRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// ViolationService maintains the violation ledger and its review workflow.
type ViolationService struct {
	violations violationRepo
	types      violationTypeReader
	weeks      weekReader
	summaries  summaryRefresher
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewViolationService constructs ViolationService.
func NewViolationService(violations violationRepo, types violationTypeReader, weeks weekReader, summaries summaryRefresher, validate *validator.Validate, logger *zap.Logger) *ViolationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViolationService{violations: violations, types: types, weeks: weeks, summaries: summaries, validator: validate, logger: logger}
}

// List returns violation details with pagination metadata.
func (s *ViolationService) List(ctx context.Context, filter models.ViolationFilter) ([]models.ViolationDetail, *models.Pagination, error) {
	violations, total, err := s.violations.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list violations")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return violations, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one violation record.
func (s *ViolationService) Get(ctx context.Context, id string) (*models.ViolationLog, error) {
	violation, err := s.violations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "violation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load violation")
	}
	return violation, nil
}

// Log records a violation. An approved record with the same (student, type,
// calendar date) marks the new record as a duplicate, but it is persisted
// regardless so reviewers can merge or reject it explicitly.
func (s *ViolationService) Log(ctx context.Context, req LogViolationRequest, actor string) (*models.LogViolationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}

	week, err := s.weeks.FindByID(ctx, req.WeekID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "week not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load week")
	}
	if week.Status == models.StatusLocked {
		return nil, appErrors.Clone(appErrors.ErrLocked, "week is locked")
	}
	if !week.ContainsDate(date) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date falls outside the week's range")
	}

	if _, err := s.types.FindByID(ctx, req.ViolationTypeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "violation type not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load violation type")
	}

	original, err := s.violations.FindApprovedDuplicate(ctx, req.StudentID, req.ViolationTypeID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check for duplicates")
	}

	violation := &models.ViolationLog{
		WeekID:          req.WeekID,
		ClassID:         req.ClassID,
		StudentID:       req.StudentID,
		ViolationTypeID: req.ViolationTypeID,
		Date:            date,
		Description:     strings.TrimSpace(req.Description),
		Status:          models.ViolationPending,
		RecordedBy:      &actor,
	}
	if original != nil {
		violation.IsDuplicate = true
		violation.DuplicateOf = &original.ID
	}

	if err := s.violations.Create(ctx, violation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store violation")
	}
	if violation.IsDuplicate {
		s.logger.Info("duplicate violation recorded",
			zap.String("violation_id", violation.ID),
			zap.String("duplicate_of", *violation.DuplicateOf),
		)
	}
	return &models.LogViolationResult{Record: *violation, IsDuplicate: violation.IsDuplicate}, nil
}

// Approve moves a pending violation to Approved and refreshes the week's
// summary so the penalty lands.
func (s *ViolationService) Approve(ctx context.Context, id, actor string) (*models.ViolationLog, error) {
	violation, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if violation.Status != models.ViolationPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "only pending violations can be approved")
	}

	now := time.Now().UTC()
	violation.Status = models.ViolationApproved
	violation.ApprovedBy = &actor
	violation.ApprovedAt = &now

	if err := s.violations.UpdateStatus(ctx, violation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve violation")
	}
	s.refreshSummary(ctx, violation.WeekID, violation.ClassID, actor)
	return violation, nil
}

// Reject moves a pending violation to Rejected with a mandatory reason.
func (s *ViolationService) Reject(ctx context.Context, id, actor string, req RejectViolationRequest) (*models.ViolationLog, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "rejection reason is required")
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required")
	}

	violation, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if violation.Status != models.ViolationPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "only pending violations can be rejected")
	}

	now := time.Now().UTC()
	violation.Status = models.ViolationRejected
	violation.RejectedBy = &actor
	violation.RejectedAt = &now
	violation.RejectReason = &reason

	if err := s.violations.UpdateStatus(ctx, violation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject violation")
	}
	s.refreshSummary(ctx, violation.WeekID, violation.ClassID, actor)
	return violation, nil
}

// Delete removes a violation that is still Pending or was Rejected. Approved
// records are part of the scoring history and stay.
func (s *ViolationService) Delete(ctx context.Context, id, actor string) error {
	violation, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if violation.Status != models.ViolationPending && violation.Status != models.ViolationRejected {
		return appErrors.Clone(appErrors.ErrInvalidState, "only pending or rejected violations can be deleted")
	}
	if err := s.violations.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete violation")
	}
	s.refreshSummary(ctx, violation.WeekID, violation.ClassID, actor)
	return nil
}

func (s *ViolationService) refreshSummary(ctx context.Context, weekID, classID, actor string) {
	if s.summaries == nil {
		return
	}
	if _, err := s.summaries.Regenerate(ctx, weekID, classID, actor); err != nil {
		s.logger.Warn("weekly summary refresh failed",
			zap.String("week_id", weekID),
			zap.String("class_id", classID),
			zap.Error(err),
		)
	}
}
