package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/hirevox/hirevox/internal/api/handlers"
	"github.com/hirevox/hirevox/internal/api/middleware"
	"github.com/hirevox/hirevox/internal/settings"
)

type Deps struct {
	Settings  *handlers.SettingsHandler
	Vacancy   *handlers.VacancyHandler
	Candidate *handlers.CandidateHandler
	Interview *handlers.InterviewHandler
	Webhook   *handlers.WebhookHandler
	WS        *handlers.InterviewWSHandler
	Store     *settings.Store
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Live interview socket; the session handles its own protocol errors.
	r.GET("/ws/interview", d.WS.Interview)

	// Webhook task submission (shared-secret auth)
	hooks := r.Group("/webhook")
	hooks.Use(middleware.WebhookAuth(d.Store))
	hooks.POST("/tasks", d.Webhook.Submit)

	// Recruiter dashboard (JWT)
	auth := r.Group("/api")
	auth.Use(middleware.JWTAuth())

	auth.GET("/settings/llm", d.Settings.GetLLM)
	auth.PUT("/settings/llm", d.Settings.UpdateLLM)
	auth.POST("/settings/llm/test", d.Settings.TestLLM)
	auth.GET("/settings/stt", d.Settings.GetSTT)
	auth.PUT("/settings/stt", d.Settings.UpdateSTT)
	auth.POST("/settings/stt/test", d.Settings.TestSTT)

	auth.POST("/vacancies", d.Vacancy.Create)
	auth.GET("/vacancies", d.Vacancy.List)
	auth.GET("/vacancies/:vacancy_id", d.Vacancy.Get)
	auth.POST("/vacancies/build", d.Vacancy.Build)
	auth.POST("/vacancies/:vacancy_id/questions", d.Vacancy.GenerateQuestions)
	auth.POST("/vacancies/:vacancy_id/tags", d.Vacancy.GenerateTags)

	auth.POST("/vacancies/:vacancy_id/candidates", d.Candidate.Upload)
	auth.POST("/vacancies/:vacancy_id/rank", d.Candidate.Rank)

	auth.GET("/vacancies/:vacancy_id/interviews", d.Interview.ListByVacancy)
	auth.GET("/interviews/:interview_id", d.Interview.Get)
	auth.GET("/interviews/:interview_id/transcript", d.Interview.Transcript)
	auth.POST("/interviews/:interview_id/analyze", d.Interview.Analyze)
}
