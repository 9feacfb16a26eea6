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

// DisciplineHandler exposes weekly discipline grading endpoints.
type DisciplineHandler struct {
	service *service.DisciplineService
}

// NewDisciplineHandler constructs a discipline handler.
func NewDisciplineHandler(svc *service.DisciplineService) *DisciplineHandler {
	return &DisciplineHandler{service: svc}
}

// List godoc
// @Summary List discipline gradings
// @Tags Discipline
// @Produce json
// @Param weekId query string false "Filter by week"
// @Param classId query string false "Filter by class"
// @Param status query string false "Filter by status"
// @Param flag query string false "Filter by flag"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /discipline-gradings [get]
func (h *DisciplineHandler) List(c *gin.Context) {
	var filter models.DisciplineGradingFilter
	filter.WeekID = c.Query("weekId")
	filter.ClassID = c.Query("classId")
	if raw := c.Query("status"); raw != "" {
		status := models.RecordStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("flag"); raw != "" {
		flag := models.Flag(raw)
		filter.Flag = &flag
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
// @Summary Get discipline grading detail
// @Tags Discipline
// @Produce json
// @Param id path string true "Grading ID"
// @Success 200 {object} response.Envelope
// @Router /discipline-gradings/{id} [get]
func (h *DisciplineHandler) Get(c *gin.Context) {
	grading, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grading, nil)
}

// Upsert godoc
// @Summary Create or replace a week's discipline grading for a class
// @Tags Discipline
// @Accept json
// @Produce json
// @Param payload body service.UpsertDisciplineGradingRequest true "Grading payload"
// @Success 200 {object} response.Envelope
// @Router /discipline-gradings [post]
func (h *DisciplineHandler) Upsert(c *gin.Context) {
	var req service.UpsertDisciplineGradingRequest
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
// @Summary Recompute a discipline grading from its stored items
// @Tags Discipline
// @Produce json
// @Param id path string true "Grading ID"
// @Success 200 {object} response.Envelope
// @Router /discipline-gradings/{id}/recompute [post]
func (h *DisciplineHandler) Recompute(c *gin.Context) {
	grading, err := h.service.Recompute(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grading, nil)
}

// Delete godoc
// @Summary Delete discipline grading
// @Tags Discipline
// @Produce json
// @Param id path string true "Grading ID"
// @Success 204
// @Router /discipline-gradings/{id} [delete]
func (h *DisciplineHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
