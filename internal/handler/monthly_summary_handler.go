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

// MonthlySummaryHandler exposes monthly summary read and regeneration endpoints.
type MonthlySummaryHandler struct {
	service *service.MonthlySummaryService
}

// NewMonthlySummaryHandler constructs a monthly summary handler.
func NewMonthlySummaryHandler(svc *service.MonthlySummaryService) *MonthlySummaryHandler {
	return &MonthlySummaryHandler{service: svc}
}

// List godoc
// @Summary List monthly summaries
// @Tags MonthlySummaries
// @Produce json
// @Param schoolYearId query string false "Filter by school year"
// @Param classId query string false "Filter by class"
// @Param month query int false "Calendar month (1-12)"
// @Param year query int false "Calendar year"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /monthly-summaries [get]
func (h *MonthlySummaryHandler) List(c *gin.Context) {
	var filter models.MonthlySummaryFilter
	filter.SchoolYearID = c.Query("schoolYearId")
	filter.ClassID = c.Query("classId")
	if month, err := strconv.Atoi(c.Query("month")); err == nil {
		filter.Month = month
	}
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		filter.Year = year
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	summaries, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, pagination)
}

// Get godoc
// @Summary Get monthly summary detail
// @Tags MonthlySummaries
// @Produce json
// @Param id path string true "Monthly summary ID"
// @Success 200 {object} response.Envelope
// @Router /monthly-summaries/{id} [get]
func (h *MonthlySummaryHandler) Get(c *gin.Context) {
	summary, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Regenerate godoc
// @Summary Rebuild a class's monthly summary
// @Tags MonthlySummaries
// @Produce json
// @Param schoolYearId query string true "School year ID"
// @Param classId query string true "Class ID"
// @Param month query int true "Calendar month (1-12)"
// @Param year query int true "Calendar year"
// @Success 200 {object} response.Envelope
// @Router /monthly-summaries/regenerate [post]
func (h *MonthlySummaryHandler) Regenerate(c *gin.Context) {
	schoolYearID := c.Query("schoolYearId")
	classID := c.Query("classId")
	if schoolYearID == "" || classID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "schoolYearId and classId are required"))
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month must be an integer"))
		return
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be an integer"))
		return
	}

	summary, err := h.service.Regenerate(c.Request.Context(), schoolYearID, month, year, classID, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
