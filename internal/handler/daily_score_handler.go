package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classtrack-api/internal/models"
	"github.com/noah-isme/classtrack-api/internal/service"
	appErrors "github.com/noah-isme/classtrack-api/pkg/errors"
	"github.com/noah-isme/classtrack-api/pkg/response"
)

// DailyScoreHandler exposes per-day conduct and academic scoring endpoints.
type DailyScoreHandler struct {
	service *service.DailyScoreService
}

// NewDailyScoreHandler constructs a daily score handler.
func NewDailyScoreHandler(svc *service.DailyScoreService) *DailyScoreHandler {
	return &DailyScoreHandler{service: svc}
}

// ComputeConduct godoc
// @Summary Compute and store a daily conduct score
// @Tags DailyScores
// @Accept json
// @Produce json
// @Param payload body service.ComputeConductScoreRequest true "Conduct items"
// @Success 201 {object} response.Envelope
// @Router /daily-scores/conduct [post]
func (h *DailyScoreHandler) ComputeConduct(c *gin.Context) {
	var req service.ComputeConductScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	score, err := h.service.ComputeConduct(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, score)
}

// ComputeAcademic godoc
// @Summary Compute and store a daily academic score
// @Tags DailyScores
// @Accept json
// @Produce json
// @Param payload body service.ComputeAcademicScoreRequest true "Lesson tier counts"
// @Success 201 {object} response.Envelope
// @Router /daily-scores/academic [post]
func (h *DailyScoreHandler) ComputeAcademic(c *gin.Context) {
	var req service.ComputeAcademicScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	score, err := h.service.ComputeAcademic(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, score)
}

// ListConduct godoc
// @Summary List daily conduct scores
// @Tags DailyScores
// @Produce json
// @Param weekId query string false "Filter by week"
// @Param classId query string false "Filter by class"
// @Success 200 {object} response.Envelope
// @Router /daily-scores/conduct [get]
func (h *DailyScoreHandler) ListConduct(c *gin.Context) {
	filter := models.DailyScoreFilter{
		WeekID:  c.Query("weekId"),
		ClassID: c.Query("classId"),
	}
	scores, err := h.service.ListConduct(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scores, nil)
}

// ListAcademic godoc
// @Summary List daily academic scores
// @Tags DailyScores
// @Produce json
// @Param weekId query string false "Filter by week"
// @Param classId query string false "Filter by class"
// @Success 200 {object} response.Envelope
// @Router /daily-scores/academic [get]
func (h *DailyScoreHandler) ListAcademic(c *gin.Context) {
	filter := models.DailyScoreFilter{
		WeekID:  c.Query("weekId"),
		ClassID: c.Query("classId"),
	}
	scores, err := h.service.ListAcademic(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scores, nil)
}
