package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hirevox/hirevox/internal/settings"
	"github.com/hirevox/hirevox/internal/utils"
)

// Ollama talks to a local Ollama server over its JSON HTTP API.
type Ollama struct {
	baseURL string
	http    *http.Client
	log     *logrus.Logger
}

func NewOllama(snap settings.Snapshot, log *logrus.Logger) *Ollama {
	return &Ollama{
		baseURL: snap.OllamaBaseURL,
		http:    &http.Client{Timeout: 120 * time.Second},
		log:     log,
	}
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) SupportedModels() []string {
	return []string{"gemma3:4b", "qwen2.5-coder:3b"}
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

func (o *Ollama) GenerateText(ctx context.Context, prompt, model string, temperature float64) (Result, error) {
	const op = "Ollama.GenerateText"

	if o.baseURL == "" {
		return Result{}, utils.E(utils.CodeProviderConfig, op, "ollama base URL is not configured", nil)
	}

	model, substituted := normalizeModel(o.log, o.Name(), model, o.SupportedModels())

	body, _ := json.Marshal(ollamaGenerateRequest{
		Model:   model,
		Prompt:  prompt,
		Stream:  false,
		Options: map[string]any{"temperature": temperature},
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return Result{}, utils.E(utils.CodeProviderFailed, op, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.http.Do(req)
	if err != nil {
		return Result{}, utils.E(utils.CodeProviderFailed, op, "ollama request failed", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if resp.StatusCode != http.StatusOK {
		return Result{}, utils.E(utils.CodeProviderFailed, op,
			fmt.Sprintf("ollama returned status %d", resp.StatusCode), fmt.Errorf("%s", raw))
	}

	var out ollamaGenerateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Result{}, utils.E(utils.CodeParseFailed, op, "failed to decode ollama response", err)
	}
	if out.Error != "" {
		return Result{}, utils.E(utils.CodeProviderFailed, op, out.Error, nil)
	}

	return Result{Text: out.Response, SubstitutedModel: substituted}, nil
}

func (o *Ollama) TestConnection(ctx context.Context) bool {
	res, err := o.GenerateText(ctx, "Hello", o.SupportedModels()[0], 0.1)
	if err != nil {
		o.log.WithError(err).Error("ollama connection test failed")
		return false
	}
	return res.Text != ""
}
