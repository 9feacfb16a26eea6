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

// WeeklySummaryHandler exposes weekly summary read and regeneration endpoints.
type WeeklySummaryHandler struct {
	service *service.WeeklySummaryService
}

// NewWeeklySummaryHandler constructs a weekly summary handler.
func NewWeeklySummaryHandler(svc *service.WeeklySummaryService) *WeeklySummaryHandler {
	return &WeeklySummaryHandler{service: svc}
}

// List godoc
// @Summary List weekly summaries
// @Tags WeeklySummaries
// @Produce json
// @Param weekId query string false "Filter by week"
// @Param classId query string false "Filter by class"
// @Param flag query string false "Filter by flag"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /weekly-summaries [get]
func (h *WeeklySummaryHandler) List(c *gin.Context) {
	var filter models.WeeklySummaryFilter
	filter.WeekID = c.Query("weekId")
	filter.ClassID = c.Query("classId")
	if raw := c.Query("flag"); raw != "" {
		flag := models.Flag(raw)
		filter.Flag = &flag
	}
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

	summaries, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, pagination)
}

// Get godoc
// @Summary Get the weekly summary of a week and class
// @Tags WeeklySummaries
// @Produce json
// @Param weekId query string true "Week ID"
// @Param classId query string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /weekly-summaries/detail [get]
func (h *WeeklySummaryHandler) Get(c *gin.Context) {
	weekID := c.Query("weekId")
	classID := c.Query("classId")
	if weekID == "" || classID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "weekId and classId are required"))
		return
	}
	summary, err := h.service.Get(c.Request.Context(), weekID, classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Regenerate godoc
// @Summary Rebuild the weekly summary of a week and class
// @Tags WeeklySummaries
// @Produce json
// @Param weekId query string true "Week ID"
// @Param classId query string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /weekly-summaries/regenerate [post]
func (h *WeeklySummaryHandler) Regenerate(c *gin.Context) {
	weekID := c.Query("weekId")
	classID := c.Query("classId")
	if weekID == "" || classID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "weekId and classId are required"))
		return
	}
	summary, err := h.service.Regenerate(c.Request.Context(), weekID, classID, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
