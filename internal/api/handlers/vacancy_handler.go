package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/hirevox/hirevox/internal/services"
	"github.com/hirevox/hirevox/internal/utils"
)

type VacancyHandler struct {
	svc services.VacancyService
}

func NewVacancyHandler(svc services.VacancyService) *VacancyHandler {
	return &VacancyHandler{svc: svc}
}

type createVacancyReq struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	CriteriaWeights json.RawMessage `json:"criteria_weights"`
}

func (h *VacancyHandler) Create(c *gin.Context) {
	var req createVacancyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "VacancyHandler.Create", "invalid json body", err))
		return
	}

	row, err := h.svc.Create(c.Request.Context(), req.Title, req.Description, datatypes.JSON(req.CriteriaWeights))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (h *VacancyHandler) Get(c *gin.Context) {
	row, err := h.svc.Get(c.Request.Context(), c.Param("vacancy_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *VacancyHandler) List(c *gin.Context) {
	rows, err := h.svc.List(c.Request.Context(), 0)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vacancies": rows})
}

type buildVacancyReq struct {
	Draft           string          `json:"draft"`
	CriteriaWeights json.RawMessage `json:"criteria_weights"`
}

func (h *VacancyHandler) Build(c *gin.Context) {
	var req buildVacancyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "VacancyHandler.Build", "invalid json body", err))
		return
	}

	text, err := h.svc.BuildDescription(c.Request.Context(), req.Draft, datatypes.JSON(req.CriteriaWeights))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": text})
}

func (h *VacancyHandler) GenerateQuestions(c *gin.Context) {
	questions, err := h.svc.GenerateQuestions(c.Request.Context(), c.Param("vacancy_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

func (h *VacancyHandler) GenerateTags(c *gin.Context) {
	tags, err := h.svc.GenerateTags(c.Request.Context(), c.Param("vacancy_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}
