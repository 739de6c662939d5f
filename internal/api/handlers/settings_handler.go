package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirevox/hirevox/internal/services"
	"github.com/hirevox/hirevox/internal/settings"
	"github.com/hirevox/hirevox/internal/utils"
)

// SettingsHandler exposes runtime provider configuration: current values,
// updates, and transactional test-connection probes.
type SettingsHandler struct {
	svc services.SettingsService
}

func NewSettingsHandler(svc services.SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

type llmSettingsReq struct {
	Provider          string `json:"provider"`
	OllamaBaseURL     string `json:"ollama_base_url"`
	OpenAIAPIKey      string `json:"openai_api_key"`
	OpenAIBaseURL     string `json:"openai_base_url"`
	YandexGPTAPIKey   string `json:"yandexgpt_api_key"`
	YandexGPTFolderID string `json:"yandexgpt_folder_id"`
	GigaChatAPIKey    string `json:"gigachat_api_key"`
	VertexProjectID   string `json:"vertex_project_id"`
	VertexLocation    string `json:"vertex_location"`
	InterviewerModel  string `json:"interviewer_model"`
	CandidateModel    string `json:"candidate_model"`
	AnalystModel      string `json:"analyst_model"`
	QuestionGenModel  string `json:"question_gen_model"`
}

func (r llmSettingsReq) apply(s *settings.Snapshot) {
	setIf := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setIf(&s.LLMProvider, r.Provider)
	setIf(&s.OllamaBaseURL, r.OllamaBaseURL)
	setIf(&s.OpenAIAPIKey, r.OpenAIAPIKey)
	setIf(&s.OpenAIBaseURL, r.OpenAIBaseURL)
	setIf(&s.YandexGPTAPIKey, r.YandexGPTAPIKey)
	setIf(&s.YandexGPTFolderID, r.YandexGPTFolderID)
	setIf(&s.GigaChatAPIKey, r.GigaChatAPIKey)
	setIf(&s.VertexProjectID, r.VertexProjectID)
	setIf(&s.VertexLocation, r.VertexLocation)
	setIf(&s.InterviewerModel, r.InterviewerModel)
	setIf(&s.CandidateModel, r.CandidateModel)
	setIf(&s.AnalystModel, r.AnalystModel)
	setIf(&s.QuestionGenModel, r.QuestionGenModel)
}

type sttSettingsReq struct {
	Provider              string `json:"provider"`
	VoskServerURL         string `json:"vosk_server_url"`
	YandexSpeechKitAPIKey string `json:"yandex_speechkit_api_key"`
}

func (r sttSettingsReq) apply(s *settings.Snapshot) {
	if r.Provider != "" {
		s.STTProvider = r.Provider
	}
	if r.VoskServerURL != "" {
		s.VoskServerURL = r.VoskServerURL
	}
	if r.YandexSpeechKitAPIKey != "" {
		s.YandexSpeechKitAPIKey = r.YandexSpeechKitAPIKey
	}
}

func (h *SettingsHandler) GetLLM(c *gin.Context) {
	snap := h.svc.Current()
	c.JSON(http.StatusOK, gin.H{
		"provider":  snap.LLMProvider,
		"providers": h.svc.LLMProviders(),
		"models": gin.H{
			"interviewer":  snap.InterviewerModel,
			"candidate":    snap.CandidateModel,
			"analyst":      snap.AnalystModel,
			"question_gen": snap.QuestionGenModel,
		},
	})
}

func (h *SettingsHandler) UpdateLLM(c *gin.Context) {
	var req llmSettingsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SettingsHandler.UpdateLLM", "invalid json body", err))
		return
	}

	snap, err := h.svc.UpdateLLM(c.Request.Context(), req.apply)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider": snap.LLMProvider})
}

// TestLLM probes the candidate configuration and always restores the current
// one, whatever the probe outcome.
func (h *SettingsHandler) TestLLM(c *gin.Context) {
	var req llmSettingsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SettingsHandler.TestLLM", "invalid json body", err))
		return
	}

	ok := h.svc.TestLLM(c.Request.Context(), req.apply)
	c.JSON(http.StatusOK, gin.H{"ok": ok})
}

func (h *SettingsHandler) GetSTT(c *gin.Context) {
	snap := h.svc.Current()
	c.JSON(http.StatusOK, gin.H{
		"provider":  snap.STTProvider,
		"providers": h.svc.STTProviders(),
	})
}

func (h *SettingsHandler) UpdateSTT(c *gin.Context) {
	var req sttSettingsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SettingsHandler.UpdateSTT", "invalid json body", err))
		return
	}

	snap, err := h.svc.UpdateSTT(c.Request.Context(), req.apply)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider": snap.STTProvider})
}

func (h *SettingsHandler) TestSTT(c *gin.Context) {
	var req sttSettingsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SettingsHandler.TestSTT", "invalid json body", err))
		return
	}

	ok := h.svc.TestSTT(c.Request.Context(), req.apply)
	c.JSON(http.StatusOK, gin.H{"ok": ok})
}
