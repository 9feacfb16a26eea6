package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classtrack-api/internal/middleware"
)

// Handlers bundles every route handler for registration.
type Handlers struct {
	SchoolYears      *SchoolYearHandler
	Weeks            *WeekHandler
	Classes          *ClassHandler
	Students         *StudentHandler
	ViolationTypes   *ViolationTypeHandler
	DailyScores      *DailyScoreHandler
	Discipline       *DisciplineHandler
	Academic         *AcademicHandler
	Violations       *ViolationHandler
	WeeklySummaries  *WeeklySummaryHandler
	MonthlySummaries *MonthlySummaryHandler
	Reports          *ReportHandler
}

// RegisterRoutes mounts every handler under the API prefix. All routes except
// the signed download require a bearer token.
func RegisterRoutes(r *gin.Engine, prefix, jwtSecret string, h Handlers) {
	api := r.Group(prefix)

	// Signed tokens carry their own authentication.
	if h.Reports != nil {
		api.GET("/export/:token", h.Reports.Download)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(jwtSecret))

	years := authed.Group("/school-years")
	{
		years.GET("", h.SchoolYears.List)
		years.POST("", h.SchoolYears.Create)
		years.GET("/:id", h.SchoolYears.Get)
		years.PUT("/:id", h.SchoolYears.Update)
		years.DELETE("/:id", h.SchoolYears.Delete)
		years.GET("/:id/weeks", h.SchoolYears.ListWeeks)
		years.POST("/:id/weeks/generate", h.SchoolYears.GenerateWeeks)
	}

	weeks := authed.Group("/weeks")
	{
		weeks.GET("", h.Weeks.List)
		weeks.GET("/:id", h.Weeks.Get)
		weeks.POST("/:id/approve", h.Weeks.Approve)
		weeks.POST("/:id/lock", h.Weeks.Lock)
		weeks.POST("/:id/unlock", h.Weeks.Unlock)
		weeks.GET("/:id/delete-preview", h.Weeks.DeletePreview)
		weeks.DELETE("/:id", h.Weeks.Delete)
	}

	classes := authed.Group("/classes")
	{
		classes.GET("", h.Classes.List)
		classes.POST("", h.Classes.Create)
		classes.GET("/:id", h.Classes.Get)
		classes.PUT("/:id", h.Classes.Update)
		classes.DELETE("/:id", h.Classes.Delete)
	}

	students := authed.Group("/students")
	{
		students.GET("", h.Students.List)
		students.POST("", h.Students.Create)
		students.GET("/:id", h.Students.Get)
		students.PUT("/:id", h.Students.Update)
		students.DELETE("/:id", h.Students.Delete)
	}

	violationTypes := authed.Group("/violation-types")
	{
		violationTypes.GET("", h.ViolationTypes.List)
		violationTypes.POST("", h.ViolationTypes.Create)
		violationTypes.GET("/:id", h.ViolationTypes.Get)
		violationTypes.PUT("/:id", h.ViolationTypes.Update)
		violationTypes.DELETE("/:id", h.ViolationTypes.Delete)
	}

	dailyScores := authed.Group("/daily-scores")
	{
		dailyScores.GET("/conduct", h.DailyScores.ListConduct)
		dailyScores.POST("/conduct", h.DailyScores.ComputeConduct)
		dailyScores.GET("/academic", h.DailyScores.ListAcademic)
		dailyScores.POST("/academic", h.DailyScores.ComputeAcademic)
	}

	discipline := authed.Group("/discipline-gradings")
	{
		discipline.GET("", h.Discipline.List)
		discipline.POST("", h.Discipline.Upsert)
		discipline.GET("/:id", h.Discipline.Get)
		discipline.POST("/:id/recompute", h.Discipline.Recompute)
		discipline.DELETE("/:id", h.Discipline.Delete)
	}

	academic := authed.Group("/academic-gradings")
	{
		academic.GET("", h.Academic.List)
		academic.POST("", h.Academic.Upsert)
		academic.GET("/:id", h.Academic.Get)
		academic.POST("/:id/recompute", h.Academic.Recompute)
		academic.DELETE("/:id", h.Academic.Delete)
	}

	violations := authed.Group("/violations")
	{
		violations.GET("", h.Violations.List)
		violations.POST("", h.Violations.Log)
		violations.GET("/:id", h.Violations.Get)
		violations.POST("/:id/approve", h.Violations.Approve)
		violations.POST("/:id/reject", h.Violations.Reject)
		violations.DELETE("/:id", h.Violations.Delete)
	}

	weeklySummaries := authed.Group("/weekly-summaries")
	{
		weeklySummaries.GET("", h.WeeklySummaries.List)
		weeklySummaries.GET("/detail", h.WeeklySummaries.Get)
		weeklySummaries.POST("/regenerate", h.WeeklySummaries.Regenerate)
	}

	monthlySummaries := authed.Group("/monthly-summaries")
	{
		monthlySummaries.GET("", h.MonthlySummaries.List)
		monthlySummaries.GET("/:id", h.MonthlySummaries.Get)
		monthlySummaries.POST("/regenerate", h.MonthlySummaries.Regenerate)
	}

	if h.Reports != nil {
		reports := authed.Group("/reports")
		reports.POST("", h.Reports.Create)
		reports.GET("/:id", h.Reports.Status)
	}
}
