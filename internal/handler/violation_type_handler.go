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

// ViolationTypeHandler exposes the violation type catalog.
type ViolationTypeHandler struct {
	service *service.ViolationTypeService
}

// NewViolationTypeHandler constructs a violation type handler.
func NewViolationTypeHandler(svc *service.ViolationTypeService) *ViolationTypeHandler {
	return &ViolationTypeHandler{service: svc}
}

// List godoc
// @Summary List violation types
// @Tags ViolationTypes
// @Produce json
// @Param category query string false "Filter by category"
// @Param severity query string false "Filter by severity"
// @Param active query bool false "Filter by active"
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /violation-types [get]
func (h *ViolationTypeHandler) List(c *gin.Context) {
	var filter models.ViolationTypeFilter
	filter.Category = c.Query("category")
	if raw := c.Query("severity"); raw != "" {
		severity := models.ViolationSeverity(raw)
		filter.Severity = &severity
	}
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

	types, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, types, pagination)
}

// Get godoc
// @Summary Get violation type detail
// @Tags ViolationTypes
// @Produce json
// @Param id path string true "Violation type ID"
// @Success 200 {object} response.Envelope
// @Router /violation-types/{id} [get]
func (h *ViolationTypeHandler) Get(c *gin.Context) {
	vt, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, vt, nil)
}

// Create godoc
// @Summary Create violation type
// @Tags ViolationTypes
// @Accept json
// @Produce json
// @Param payload body service.CreateViolationTypeRequest true "Violation type payload"
// @Success 201 {object} response.Envelope
// @Router /violation-types [post]
func (h *ViolationTypeHandler) Create(c *gin.Context) {
	var req service.CreateViolationTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	vt, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, vt)
}

// Update godoc
// @Summary Update violation type
// @Tags ViolationTypes
// @Accept json
// @Produce json
// @Param id path string true "Violation type ID"
// @Param payload body service.UpdateViolationTypeRequest true "Violation type payload"
// @Success 200 {object} response.Envelope
// @Router /violation-types/{id} [put]
func (h *ViolationTypeHandler) Update(c *gin.Context) {
	var req service.UpdateViolationTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	vt, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, vt, nil)
}

// Delete godoc
// @Summary Delete violation type
// @Tags ViolationTypes
// @Produce json
// @Param id path string true "Violation type ID"
// @Success 204
// @Router /violation-types/{id} [delete]
func (h *ViolationTypeHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
