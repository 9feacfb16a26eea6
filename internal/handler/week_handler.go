package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classtrack-api/internal/models"
	"github.com/noah-isme/classtrack-api/internal/service"
	"github.com/noah-isme/classtrack-api/pkg/response"
)

// WeekHandler exposes week lifecycle endpoints.
type WeekHandler struct {
	service *service.WeekService
}

// NewWeekHandler constructs a week handler.
func NewWeekHandler(svc *service.WeekService) *WeekHandler {
	return &WeekHandler{service: svc}
}

// List godoc
// @Summary List weeks
// @Tags Weeks
// @Produce json
// @Param schoolYearId query string false "Filter by school year"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /weeks [get]
func (h *WeekHandler) List(c *gin.Context) {
	var filter models.WeekFilter
	filter.SchoolYearID = c.Query("schoolYearId")
	if raw := c.Query("status"); raw != "" {
		status := models.RecordStatus(raw)
		filter.Status = &status
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "60")); err == nil {
		filter.PageSize = size
	}

	weeks, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, weeks, pagination)
}

// Get godoc
// @Summary Get week detail
// @Tags Weeks
// @Produce json
// @Param id path string true "Week ID"
// @Success 200 {object} response.Envelope
// @Router /weeks/{id} [get]
func (h *WeekHandler) Get(c *gin.Context) {
	week, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, week, nil)
}

// Approve godoc
// @Summary Approve a draft week
// @Tags Weeks
// @Produce json
// @Param id path string true "Week ID"
// @Success 200 {object} response.Envelope
// @Router /weeks/{id}/approve [post]
func (h *WeekHandler) Approve(c *gin.Context) {
	week, err := h.service.Approve(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, week, nil)
}

// Lock godoc
// @Summary Lock an approved week
// @Tags Weeks
// @Produce json
// @Param id path string true "Week ID"
// @Success 200 {object} response.Envelope
// @Router /weeks/{id}/lock [post]
func (h *WeekHandler) Lock(c *gin.Context) {
	week, err := h.service.Lock(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, week, nil)
}

// Unlock godoc
// @Summary Unlock a locked week and re-open its records
// @Tags Weeks
// @Produce json
// @Param id path string true "Week ID"
// @Success 200 {object} response.Envelope
// @Router /weeks/{id}/unlock [post]
func (h *WeekHandler) Unlock(c *gin.Context) {
	week, err := h.service.Unlock(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, week, nil)
}

// DeletePreview godoc
// @Summary Preview the dependent records a week delete would remove
// @Tags Weeks
// @Produce json
// @Param id path string true "Week ID"
// @Success 200 {object} response.Envelope
// @Router /weeks/{id}/delete-preview [get]
func (h *WeekHandler) DeletePreview(c *gin.Context) {
	preview, err := h.service.DeletePreview(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, nil)
}

// Delete godoc
// @Summary Delete a week and its dependent records
// @Tags Weeks
// @Produce json
// @Param id path string true "Week ID"
// @Success 200 {object} response.Envelope
// @Router /weeks/{id} [delete]
func (h *WeekHandler) Delete(c *gin.Context) {
	preview, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, nil)
}
