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

// OpenAI talks to the OpenAI chat completions API.
type OpenAI struct {
	apiKey  string
	baseURL string
	http    *http.Client
	log     *logrus.Logger
}

func NewOpenAI(snap settings.Snapshot, log *logrus.Logger) *OpenAI {
	return &OpenAI{
		apiKey:  snap.OpenAIAPIKey,
		baseURL: snap.OpenAIBaseURL,
		http:    &http.Client{Timeout: 120 * time.Second},
		log:     log,
	}
}

func (p *OpenAI) Name() string { return "openai" }

func (p *OpenAI) SupportedModels() []string {
	return []string{"gpt-3.5-turbo", "gpt-4", "gpt-4o"}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *OpenAI) GenerateText(ctx context.Context, prompt, model string, temperature float64) (Result, error) {
	const op = "OpenAI.GenerateText"

	if p.apiKey == "" {
		return Result{}, utils.E(utils.CodeProviderConfig, op, "OpenAI API key is not configured", nil)
	}

	model, substituted := normalizeModel(p.log, p.Name(), model, p.SupportedModels())

	body, _ := json.Marshal(chatCompletionRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Result{}, utils.E(utils.CodeProviderFailed, op, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.http.Do(req)
	if err != nil {
		return Result{}, utils.E(utils.CodeProviderFailed, op, "openai request failed", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))

	var out chatCompletionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Result{}, utils.E(utils.CodeParseFailed, op, "failed to decode openai response", err)
	}
	if out.Error != nil {
		return Result{}, utils.E(utils.CodeProviderFailed, op, out.Error.Message, nil)
	}
	if resp.StatusCode != http.StatusOK || len(out.Choices) == 0 {
		return Result{}, utils.E(utils.CodeProviderFailed, op,
			fmt.Sprintf("openai returned status %d with no choices", resp.StatusCode), nil)
	}

	return Result{Text: out.Choices[0].Message.Content, SubstitutedModel: substituted}, nil
}

func (p *OpenAI) TestConnection(ctx context.Context) bool {
	res, err := p.GenerateText(ctx, "Hello", p.SupportedModels()[0], 0.1)
	if err != nil {
		p.log.WithError(err).Error("openai connection test failed")
		return false
	}
	return res.Text != ""
}
