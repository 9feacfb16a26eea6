package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/classtrack-api/internal/middleware"
	"github.com/noah-isme/classtrack-api/internal/models"
	"github.com/noah-isme/classtrack-api/internal/service"
)

type stubWeekRepo struct {
	weeks map[string]*models.Week
}

func (s *stubWeekRepo) List(ctx context.Context, filter models.WeekFilter) ([]models.Week, int, error) {
	var out []models.Week
	for _, w := range s.weeks {
		out = append(out, *w)
	}
	return out, len(out), nil
}

func (s *stubWeekRepo) FindByID(ctx context.Context, id string) (*models.Week, error) {
	if w, ok := s.weeks[id]; ok {
		return w, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubWeekRepo) UpdateStatus(ctx context.Context, week *models.Week) error {
	s.weeks[week.ID] = week
	return nil
}

func (s *stubWeekRepo) CascadeStatus(ctx context.Context, weekID string, status models.RecordStatus, targets []models.CascadeEntity) error {
	return nil
}

func (s *stubWeekRepo) DeletePreview(ctx context.Context, weekID string) (*models.WeekDeletePreview, error) {
	return &models.WeekDeletePreview{WeekID: weekID, Violations: 2}, nil
}

func (s *stubWeekRepo) Delete(ctx context.Context, weekID string) error {
	delete(s.weeks, weekID)
	return nil
}

func buildWeekRouter(repo *stubWeekRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextActorKey, "tester")
		c.Next()
	})

	h := NewWeekHandler(service.NewWeekService(repo, nil, zap.NewNop()))
	router.GET("/weeks/:id", h.Get)
	router.POST("/weeks/:id/approve", h.Approve)
	router.POST("/weeks/:id/lock", h.Lock)
	router.GET("/weeks/:id/delete-preview", h.DeletePreview)
	router.DELETE("/weeks/:id", h.Delete)
	return router
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestWeekHandlerApprove(t *testing.T) {
	repo := &stubWeekRepo{weeks: map[string]*models.Week{"w1": {ID: "w1", Status: models.StatusDraft}}}
	router := buildWeekRouter(repo)

	req, _ := http.NewRequest(http.MethodPost, "/weeks/w1/approve", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"status":"Approved"`)
	require.Contains(t, resp.Body.String(), `"tester"`)
}

func TestWeekHandlerLockRequiresApproved(t *testing.T) {
	repo := &stubWeekRepo{weeks: map[string]*models.Week{"w1": {ID: "w1", Status: models.StatusDraft}}}
	router := buildWeekRouter(repo)

	req, _ := http.NewRequest(http.MethodPost, "/weeks/w1/lock", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusConflict, resp.Code)
}

func TestWeekHandlerGetNotFound(t *testing.T) {
	router := buildWeekRouter(&stubWeekRepo{weeks: map[string]*models.Week{}})

	req, _ := http.NewRequest(http.MethodGet, "/weeks/missing", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestWeekHandlerDeleteLocked(t *testing.T) {
	repo := &stubWeekRepo{weeks: map[string]*models.Week{"w1": {ID: "w1", Status: models.StatusLocked}}}
	router := buildWeekRouter(repo)

	req, _ := http.NewRequest(http.MethodDelete, "/weeks/w1", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusConflict, resp.Code)
}

func TestWeekHandlerDeleteReturnsPreview(t *testing.T) {
	repo := &stubWeekRepo{weeks: map[string]*models.Week{"w1": {ID: "w1", Status: models.StatusDraft}}}
	router := buildWeekRouter(repo)

	req, _ := http.NewRequest(http.MethodDelete, "/weeks/w1", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"violations":2`)
	require.NotContains(t, repo.weeks, "w1")
}
