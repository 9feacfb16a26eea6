package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classtrack-api/internal/models"
	"github.com/noah-isme/classtrack-api/internal/service"
	appErrors "github.com/noah-isme/classtrack-api/pkg/errors"
	"github.com/noah-isme/classtrack-api/pkg/response"
)

// ViolationHandler exposes the violation ledger and its review workflow.
type ViolationHandler struct {
	service *service.ViolationService
}

// NewViolationHandler constructs a violation handler.
func NewViolationHandler(svc *service.ViolationService) *ViolationHandler {
	return &ViolationHandler{service: svc}
}

// List godoc
// @Summary List violations
// @Tags Violations
// @Produce json
// @Param weekId query string false "Filter by week"
// @Param classId query string false "Filter by class"
// @Param studentId query string false "Filter by student"
// @Param violationTypeId query string false "Filter by violation type"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /violations [get]
func (h *ViolationHandler) List(c *gin.Context) {
	var filter models.ViolationFilter
	filter.WeekID = c.Query("weekId")
	filter.ClassID = c.Query("classId")
	filter.StudentID = c.Query("studentId")
	filter.ViolationTypeID = c.Query("violationTypeId")
	if raw := c.Query("status"); raw != "" {
		status := models.ViolationStatus(raw)
		filter.Status = &status
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	violations, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, violations, pagination)
}

// Get godoc
// @Summary Get violation detail
// @Tags Violations
// @Produce json
// @Param id path string true "Violation ID"
// @Success 200 {object} response.Envelope
// @Router /violations/{id} [get]
func (h *ViolationHandler) Get(c *gin.Context) {
	violation, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, violation, nil)
}

// Log godoc
// @Summary Log a violation
// @Tags Violations
// @Accept json
// @Produce json
// @Param payload body service.LogViolationRequest true "Violation payload"
// @Success 201 {object} response.Envelope
// @Router /violations [post]
func (h *ViolationHandler) Log(c *gin.Context) {
	var req service.LogViolationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Log(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Approve godoc
// @Summary Approve a pending violation
// @Tags Violations
// @Produce json
// @Param id path string true "Violation ID"
// @Success 200 {object} response.Envelope
// @Router /violations/{id}/approve [post]
func (h *ViolationHandler) Approve(c *gin.Context) {
	violation, err := h.service.Approve(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, violation, nil)
}

// Reject godoc
// @Summary Reject a pending violation with a reason
// @Tags Violations
// @Accept json
// @Produce json
// @Param id path string true "Violation ID"
// @Param payload body service.RejectViolationRequest true "Rejection reason"
// @Success 200 {object} response.Envelope
// @Router /violations/{id}/reject [post]
func (h *ViolationHandler) Reject(c *gin.Context) {
	var req service.RejectViolationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	violation, err := h.service.Reject(c.Request.Context(), c.Param("id"), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, violation, nil)
}

// Delete godoc
// @Summary Delete a violation
// @Tags Violations
// @Produce json
// @Param id path string true "Violation ID"
// @Success 204
// @Router /violations/{id} [delete]
func (h *ViolationHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
