package tts

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

// SileroHTTP calls a local Silero-compatible TTS server that accepts
// {"text","speaker"} and responds with WAV bytes.
type SileroHTTP struct {
	baseURL string
	speaker string
	http    *http.Client
	log     *logrus.Logger
}

func NewSileroHTTP(snap settings.Snapshot, log *logrus.Logger) *SileroHTTP {
	return &SileroHTTP{
		baseURL: snap.TTSServerURL,
		speaker: "baya",
		http:    &http.Client{Timeout: 60 * time.Second},
		log:     log,
	}
}

func (s *SileroHTTP) Synthesize(ctx context.Context, text string) ([]byte, error) {
	const op = "SileroHTTP.Synthesize"

	if text == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "text to synthesize is empty", nil)
	}
	if s.baseURL == "" {
		return nil, utils.E(utils.CodeProviderConfig, op, "TTS server URL is not configured", nil)
	}

	body, _ := json.Marshal(map[string]string{"text": text, "speaker": s.speaker})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, utils.E(utils.CodeProviderFailed, op, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, utils.E(utils.CodeProviderFailed, op, "tts request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, utils.E(utils.CodeProviderFailed, op, fmt.Sprintf("tts server returned status %d", resp.StatusCode), nil)
	}

	const maxBytes = 20 << 20
	wav, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, utils.E(utils.CodeProviderFailed, op, "failed to read audio body", err)
	}
	if len(wav) == 0 {
		return nil, utils.E(utils.CodeProviderFailed, op, "tts server returned empty audio", nil)
	}
	return wav, nil
}
