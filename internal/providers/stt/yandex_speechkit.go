package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hirevox/hirevox/internal/settings"
	"github.com/hirevox/hirevox/internal/utils"
)

const yandexRecognizeURL = "https://stt.api.cloud.yandex.net/speech/v1/stt:recognize"

// YandexSpeechKit is a non-streaming backend adapted to the streaming
// recognizer contract: chunks are buffered and one recognize call runs at
// finalize. No partial results are produced.
type YandexSpeechKit struct {
	apiKey string
	http   *http.Client
	log    *logrus.Logger
}

func NewYandexSpeechKit(snap settings.Snapshot, log *logrus.Logger) *YandexSpeechKit {
	return &YandexSpeechKit{
		apiKey: snap.YandexSpeechKitAPIKey,
		http:   &http.Client{Timeout: 60 * time.Second},
		log:    log,
	}
}

func (y *YandexSpeechKit) Name() string { return "yandex_speechkit" }

func (y *YandexSpeechKit) SupportedLanguages() []string {
	return []string{"ru-RU", "en-US", "tr-TR", "kk-KK"}
}

func (y *YandexSpeechKit) CreateRecognizer(ctx context.Context, language string) (Recognizer, error) {
	const op = "YandexSpeechKit.CreateRecognizer"

	if y.apiKey == "" {
		return nil, utils.E(utils.CodeProviderConfig, op, "Yandex SpeechKit API key is not configured", nil)
	}
	if language == "" {
		language = "ru-RU"
	}
	supported := false
	for _, l := range y.SupportedLanguages() {
		if l == language {
			supported = true
			break
		}
	}
	if !supported {
		return nil, utils.E(utils.CodeUnsupportedLanguage, op,
			fmt.Sprintf("yandex speechkit does not support language %q", language), nil)
	}

	return &yandexRecognizer{provider: y, language: language}, nil
}

func (y *YandexSpeechKit) TestConnection(ctx context.Context) bool {
	// Submitting an empty body still exercises auth: 401/403 means a bad key.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.recognizeURL("ru-RU"), bytes.NewReader(nil))
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Api-Key "+y.apiKey)
	resp, err := y.http.Do(req)
	if err != nil {
		y.log.WithError(err).Error("yandex speechkit connection test failed")
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden
}

func (y *YandexSpeechKit) recognizeURL(language string) string {
	q := url.Values{}
	q.Set("lang", language)
	q.Set("format", "lpcm")
	q.Set("sampleRateHertz", fmt.Sprint(SampleRate))
	return yandexRecognizeURL + "?" + q.Encode()
}

type yandexRecognizer struct {
	provider *YandexSpeechKit
	language string
	buf      bytes.Buffer
	done     bool
}

func (r *yandexRecognizer) FeedChunk(_ context.Context, chunk []byte) (string, error) {
	if len(chunk) == 0 || r.done {
		return "", nil
	}
	r.buf.Write(chunk)
	return "", nil
}

func (r *yandexRecognizer) FinalResult(ctx context.Context) (string, error) {
	const op = "yandexRecognizer.FinalResult"

	if r.done || r.buf.Len() == 0 {
		return "", nil
	}
	r.done = true

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.provider.recognizeURL(r.language), bytes.NewReader(r.buf.Bytes()))
	if err != nil {
		return "", utils.E(utils.CodeProviderFailed, op, "failed to build recognize request", err)
	}
	req.Header.Set("Authorization", "Api-Key "+r.provider.apiKey)

	resp, err := r.provider.http.Do(req)
	if err != nil {
		return "", utils.E(utils.CodeProviderFailed, op, "speechkit request failed", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return "", utils.E(utils.CodeProviderFailed, op,
			fmt.Sprintf("speechkit returned status %d", resp.StatusCode), fmt.Errorf("%s", raw))
	}

	var out struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", utils.E(utils.CodeParseFailed, op, "invalid speechkit response payload", err)
	}
	return out.Result, nil
}

func (r *yandexRecognizer) Close() error {
	r.buf.Reset()
	r.done = true
	return nil
}
