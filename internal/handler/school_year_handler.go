package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classtrack-api/internal/models"
	"github.com/noah-isme/classtrack-api/internal/service"
	appErrors "github.com/noah-isme/classtrack-api/pkg/errors"
	"github.com/noah-isme/classtrack-api/pkg/response"
)

// SchoolYearHandler exposes school year and week registry endpoints.
type SchoolYearHandler struct {
	service *service.SchoolYearService
}

// NewSchoolYearHandler constructs a school year handler.
func NewSchoolYearHandler(svc *service.SchoolYearService) *SchoolYearHandler {
	return &SchoolYearHandler{service: svc}
}

// List godoc
// @Summary List school years
// @Tags SchoolYears
// @Produce json
// @Param active query bool false "Filter by active"
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /school-years [get]
func (h *SchoolYearHandler) List(c *gin.Context) {
	var filter models.SchoolYearFilter
	if raw := c.Query("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	years, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, years, pagination)
}

// Get godoc
// @Summary Get school year detail
// @Tags SchoolYears
// @Produce json
// @Param id path string true "School year ID"
// @Success 200 {object} response.Envelope
// @Router /school-years/{id} [get]
func (h *SchoolYearHandler) Get(c *gin.Context) {
	year, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Create godoc
// @Summary Create school year
// @Tags SchoolYears
// @Accept json
// @Produce json
// @Param payload body service.CreateSchoolYearRequest true "School year payload"
// @Success 201 {object} response.Envelope
// @Router /school-years [post]
func (h *SchoolYearHandler) Create(c *gin.Context) {
	var req service.CreateSchoolYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	year, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, year)
}

// Update godoc
// @Summary Update school year
// @Tags SchoolYears
// @Accept json
// @Produce json
// @Param id path string true "School year ID"
// @Param payload body service.UpdateSchoolYearRequest true "School year payload"
// @Success 200 {object} response.Envelope
// @Router /school-years/{id} [put]
func (h *SchoolYearHandler) Update(c *gin.Context) {
	var req service.UpdateSchoolYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	year, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Delete godoc
// @Summary Delete school year
// @Tags SchoolYears
// @Produce json
// @Param id path string true "School year ID"
// @Success 204
// @Router /school-years/{id} [delete]
func (h *SchoolYearHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GenerateWeeks godoc
// @Summary Generate the week registry for a school year
// @Tags SchoolYears
// @Produce json
// @Param id path string true "School year ID"
// @Success 201 {object} response.Envelope
// @Router /school-years/{id}/weeks/generate [post]
func (h *SchoolYearHandler) GenerateWeeks(c *gin.Context) {
	weeks, err := h.service.GenerateWeeks(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, weeks)
}

// ListWeeks godoc
// @Summary List the weeks of a school year
// @Tags SchoolYears
// @Produce json
// @Param id path string true "School year ID"
// @Success 200 {object} response.Envelope
// @Router /school-years/{id}/weeks [get]
func (h *SchoolYearHandler) ListWeeks(c *gin.Context) {
	weeks, err := h.service.ListWeeks(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, weeks, nil)
}
