package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirevox/hirevox/internal/services"
	"github.com/hirevox/hirevox/internal/utils"
)

const maxResumeBytes = 10 << 20

type CandidateHandler struct {
	ranking services.RankingService
}

func NewCandidateHandler(ranking services.RankingService) *CandidateHandler {
	return &CandidateHandler{ranking: ranking}
}

// Upload accepts one resume file as multipart form data and creates the
// candidate under the vacancy.
func (h *CandidateHandler) Upload(c *gin.Context) {
	const op = "CandidateHandler.Upload"

	vacancyID := c.Param("vacancy_id")
	file, header, err := c.Request.FormFile("resume")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "resume file is required", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxResumeBytes+1))
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to read upload", err))
		return
	}
	if len(data) > maxResumeBytes {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "resume file too large", nil))
		return
	}

	row, err := h.ranking.AddCandidate(
		c.Request.Context(),
		vacancyID,
		c.PostForm("name"),
		header.Filename,
		header.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

// Rank scores every candidate of the vacancy synchronously and returns the
// ranked list.
func (h *CandidateHandler) Rank(c *gin.Context) {
	results, err := h.ranking.RankVacancy(c.Request.Context(), c.Param("vacancy_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
