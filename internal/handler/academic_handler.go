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

// AcademicHandler exposes weekly academic grading endpoints.
type AcademicHandler struct {
	service *service.AcademicService
}

// NewAcademicHandler constructs an academic handler.
func NewAcademicHandler(svc *service.AcademicService) *AcademicHandler {
	return &AcademicHandler{service: svc}
}

// List godoc
// @Summary List academic gradings
// @Tags Academic
// @Produce json
// @Param weekId query string false "Filter by week"
// @Param classId query string false "Filter by class"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /academic-gradings [get]
func (h *AcademicHandler) List(c *gin.Context) {
	var filter models.AcademicGradingFilter
	filter.WeekID = c.Query("weekId")
	filter.ClassID = c.Query("classId")
	if raw := c.Query("status"); raw != "" {
		status := models.RecordStatus(raw)
		filter.Status = &status
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	gradings, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gradings, pagination)
}

// Get godoc
// @Summary Get academic grading detail
// @Tags Academic
// @Produce json
// @Param id path string true "Grading ID"
// @Success 200 {object} response.Envelope
// @Router /academic-gradings/{id} [get]
func (h *AcademicHandler) Get(c *gin.Context) {
	grading, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grading, nil)
}

// Upsert godoc
// @Summary Create or replace a week's academic grading for a class
// @Tags Academic
// @Accept json
// @Produce json
// @Param payload body service.UpsertAcademicGradingRequest true "Grading payload"
// @Success 200 {object} response.Envelope
// @Router /academic-gradings [post]
func (h *AcademicHandler) Upsert(c *gin.Context) {
	var req service.UpsertAcademicGradingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grading, err := h.service.Upsert(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grading, nil)
}

// Recompute godoc
// @Summary Recompute an academic grading from its stored days
// @Tags Academic
// @Produce json
// @Param id path string true "Grading ID"
// @Success 200 {object} response.Envelope
// @Router /academic-gradings/{id}/recompute [post]
func (h *AcademicHandler) Recompute(c *gin.Context) {
	grading, err := h.service.Recompute(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grading, nil)
}

// Delete godoc
// @Summary Delete academic grading
// @Tags Academic
// @Produce json
// @Param id path string true "Grading ID"
// @Success 204
// @Router /academic-gradings/{id} [delete]
func (h *AcademicHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
