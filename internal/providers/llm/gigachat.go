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

const gigaChatCompletionURL = "https://gigachat.devices.sberbank.ru/api/v1/chat/completions"

// GigaChat talks to the Sber GigaChat chat completions API. The configured key
// is used as the bearer access token; OAuth token rotation is the operator's
// responsibility.
type GigaChat struct {
	apiKey string
	http   *http.Client
	log    *logrus.Logger
}

func NewGigaChat(snap settings.Snapshot, log *logrus.Logger) *GigaChat {
	return &GigaChat{
		apiKey: snap.GigaChatAPIKey,
		http:   &http.Client{Timeout: 120 * time.Second},
		log:    log,
	}
}

func (p *GigaChat) Name() string { return "sber_gigachat" }

func (p *GigaChat) SupportedModels() []string {
	return []string{"GigaChat", "GigaChat-Pro"}
}

func (p *GigaChat) GenerateText(ctx context.Context, prompt, model string, temperature float64) (Result, error) {
	const op = "GigaChat.GenerateText"

	if p.apiKey == "" {
		return Result{}, utils.E(utils.CodeProviderConfig, op, "Sber GigaChat API key is not configured", nil)
	}

	model, substituted := normalizeModel(p.log, p.Name(), model, p.SupportedModels())

	body, _ := json.Marshal(chatCompletionRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, gigaChatCompletionURL, bytes.NewReader(body))
	if err != nil {
		return Result{}, utils.E(utils.CodeProviderFailed, op, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.http.Do(req)
	if err != nil {
		return Result{}, utils.E(utils.CodeProviderFailed, op, "gigachat request failed", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))

	var out chatCompletionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Result{}, utils.E(utils.CodeParseFailed, op, "failed to decode gigachat response", err)
	}
	if out.Error != nil {
		return Result{}, utils.E(utils.CodeProviderFailed, op, out.Error.Message, nil)
	}
	if resp.StatusCode != http.StatusOK || len(out.Choices) == 0 {
		return Result{}, utils.E(utils.CodeProviderFailed, op,
			fmt.Sprintf("gigachat returned status %d with no choices", resp.StatusCode), nil)
	}

	return Result{Text: out.Choices[0].Message.Content, SubstitutedModel: substituted}, nil
}

func (p *GigaChat) TestConnection(ctx context.Context) bool {
	res, err := p.GenerateText(ctx, "Hello", p.SupportedModels()[0], 0.1)
	if err != nil {
		p.log.WithError(err).Error("gigachat connection test failed")
		return false
	}
	return res.Text != ""
}
