package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mongorepo "github.com/hirevox/hirevox/internal/repositories/mongo"
	pgrepo "github.com/hirevox/hirevox/internal/repositories/postgres"
	"github.com/hirevox/hirevox/internal/services"
)

// InterviewHandler reads finished interviews: rows, transcripts, reports.
type InterviewHandler struct {
	interviews  pgrepo.InterviewRepository
	transcripts mongorepo.TranscriptRepository
	analysis    services.AnalysisService
}

func NewInterviewHandler(interviews pgrepo.InterviewRepository, transcripts mongorepo.TranscriptRepository, analysis services.AnalysisService) *InterviewHandler {
	return &InterviewHandler{interviews: interviews, transcripts: transcripts, analysis: analysis}
}

func (h *InterviewHandler) Get(c *gin.Context) {
	row, err := h.interviews.GetByID(c.Request.Context(), c.Param("interview_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *InterviewHandler) ListByVacancy(c *gin.Context) {
	rows, err := h.interviews.ListByVacancy(c.Request.Context(), c.Param("vacancy_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interviews": rows})
}

func (h *InterviewHandler) Transcript(c *gin.Context) {
	t, err := h.transcripts.GetBySessionID(c.Request.Context(), c.Param("interview_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Analyze builds (or rebuilds) the analyst report for a finished interview.
func (h *InterviewHandler) Analyze(c *gin.Context) {
	report, err := h.analysis.AnalyzeInterview(c.Request.Context(), c.Param("interview_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
