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

const yandexCompletionURL = "https://llm.api.cloud.yandex.net/foundationModels/v1/completion"

// YandexGPT talks to the Yandex Foundation Models completion API.
type YandexGPT struct {
	apiKey   string
	folderID string
	http     *http.Client
	log      *logrus.Logger
}

func NewYandexGPT(snap settings.Snapshot, log *logrus.Logger) *YandexGPT {
	return &YandexGPT{
		apiKey:   snap.YandexGPTAPIKey,
		folderID: snap.YandexGPTFolderID,
		http:     &http.Client{Timeout: 120 * time.Second},
		log:      log,
	}
}

func (p *YandexGPT) Name() string { return "yandexgpt" }

func (p *YandexGPT) SupportedModels() []string {
	return []string{"yandexgpt-lite", "yandexgpt-pro"}
}

type yandexCompletionRequest struct {
	ModelURI          string `json:"modelUri"`
	CompletionOptions struct {
		Temperature float64 `json:"temperature"`
	} `json:"completionOptions"`
	Messages []struct {
		Role string `json:"role"`
		Text string `json:"text"`
	} `json:"messages"`
}

type yandexCompletionResponse struct {
	Result struct {
		Alternatives []struct {
			Message struct {
				Text string `json:"text"`
			} `json:"message"`
		} `json:"alternatives"`
	} `json:"result"`
}

func (p *YandexGPT) GenerateText(ctx context.Context, prompt, model string, temperature float64) (Result, error) {
	const op = "YandexGPT.GenerateText"

	if p.apiKey == "" || p.folderID == "" {
		return Result{}, utils.E(utils.CodeProviderConfig, op, "YandexGPT API key or folder ID is not configured", nil)
	}

	model, substituted := normalizeModel(p.log, p.Name(), model, p.SupportedModels())

	reqBody := yandexCompletionRequest{
		ModelURI: fmt.Sprintf("gpt://%s/%s", p.folderID, model),
	}
	reqBody.CompletionOptions.Temperature = temperature
	reqBody.Messages = []struct {
		Role string `json:"role"`
		Text string `json:"text"`
	}{{Role: "user", Text: prompt}}

	body, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, yandexCompletionURL, bytes.NewReader(body))
	if err != nil {
		return Result{}, utils.E(utils.CodeProviderFailed, op, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Api-Key "+p.apiKey)

	resp, err := p.http.Do(req)
	if err != nil {
		return Result{}, utils.E(utils.CodeProviderFailed, op, "yandexgpt request failed", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if resp.StatusCode != http.StatusOK {
		return Result{}, utils.E(utils.CodeProviderFailed, op,
			fmt.Sprintf("yandexgpt returned status %d", resp.StatusCode), fmt.Errorf("%s", raw))
	}

	var out yandexCompletionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Result{}, utils.E(utils.CodeParseFailed, op, "failed to decode yandexgpt response", err)
	}
	if len(out.Result.Alternatives) == 0 {
		return Result{}, utils.E(utils.CodeProviderFailed, op, "yandexgpt returned no alternatives", nil)
	}

	return Result{Text: out.Result.Alternatives[0].Message.Text, SubstitutedModel: substituted}, nil
}

func (p *YandexGPT) TestConnection(ctx context.Context) bool {
	res, err := p.GenerateText(ctx, "Hello", p.SupportedModels()[0], 0.1)
	if err != nil {
		p.log.WithError(err).Error("yandexgpt connection test failed")
		return false
	}
	return res.Text != ""
}
