package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/hirevox/hirevox/internal/settings"
	"github.com/hirevox/hirevox/internal/utils"
)

// Vosk streams audio to a local vosk-server over its JSON WebSocket protocol.
// One server instance serves one language model; servers are addressed as
// <base>/<language>. Verified endpoints are cached per language so repeated
// session starts skip the handshake; concurrent first loads for the same
// language are coalesced.
type Vosk struct {
	baseURL string
	log     *logrus.Logger
}

type voskModel struct {
	url string
}

// Verified endpoints are process-wide: providers are re-resolved from settings
// snapshots per session, but model loads must survive across resolutions.
var (
	voskMu      sync.RWMutex
	voskModels  = map[string]*voskModel{}
	voskLoading singleflight.Group
)

func NewVosk(snap settings.Snapshot, log *logrus.Logger) *Vosk {
	return &Vosk{
		baseURL: snap.VoskServerURL,
		log:     log,
	}
}

func (v *Vosk) Name() string { return "vosk" }

func (v *Vosk) SupportedLanguages() []string {
	return []string{"ru", "en-us", "de", "fr", "es", "pt", "zh", "it", "nl", "uk", "tr", "hi"}
}

func (v *Vosk) supportsLanguage(code string) bool {
	for _, l := range v.SupportedLanguages() {
		if l == code {
			return true
		}
	}
	return false
}

// loadModel resolves and verifies the per-language endpoint, caching the
// result. First loader wins; concurrent callers for the same language await it.
func (v *Vosk) loadModel(ctx context.Context, language string) (*voskModel, error) {
	key := strings.TrimRight(v.baseURL, "/") + "/" + language

	voskMu.RLock()
	m, ok := voskModels[key]
	voskMu.RUnlock()
	if ok {
		return m, nil
	}

	res, err, _ := voskLoading.Do(key, func() (any, error) {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, key, nil)
		if err != nil {
			return nil, fmt.Errorf("dial vosk server at %s: %w", key, err)
		}
		defer conn.Close()

		cfg := fmt.Sprintf(`{"config": {"sample_rate": %d}}`, SampleRate)
		if err := conn.WriteMessage(websocket.TextMessage, []byte(cfg)); err != nil {
			return nil, fmt.Errorf("vosk config handshake: %w", err)
		}

		loaded := &voskModel{url: key}
		voskMu.Lock()
		voskModels[key] = loaded
		voskMu.Unlock()

		v.log.WithField("language", language).Info("vosk model endpoint verified and cached")
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*voskModel), nil
}

func (v *Vosk) CreateRecognizer(ctx context.Context, language string) (Recognizer, error) {
	const op = "Vosk.CreateRecognizer"

	switch language {
	case "":
		language = "ru"
	case "en":
		language = "en-us"
	}
	if !v.supportsLanguage(language) {
		return nil, utils.E(utils.CodeUnsupportedLanguage, op,
			fmt.Sprintf("no vosk model for language %q", language), nil)
	}

	model, err := v.loadModel(ctx, language)
	if err != nil {
		return nil, utils.E(utils.CodeUnsupportedLanguage, op,
			fmt.Sprintf("vosk model for language %q is not available", language), err)
	}

	return &voskRecognizer{url: model.url, log: v.log}, nil
}

func (v *Vosk) TestConnection(ctx context.Context) bool {
	_, err := v.loadModel(ctx, "ru")
	if err != nil {
		v.log.WithError(err).Error("vosk connection test failed")
		return false
	}
	return true
}

// voskRecognizer dials lazily on the first non-empty chunk, so a recognizer
// that never receives audio yields an empty final result without touching the
// network.
type voskRecognizer struct {
	url  string
	log  *logrus.Logger
	conn *websocket.Conn

	segments []string // finalized segments within the utterance
	closed   bool
}

type voskResult struct {
	Partial string `json:"partial"`
	Text    string `json:"text"`
}

func (r *voskRecognizer) dial(ctx context.Context) error {
	if r.conn != nil {
		return nil
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, r.url, nil)
	if err != nil {
		return err
	}
	cfg := fmt.Sprintf(`{"config": {"sample_rate": %d}}`, SampleRate)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(cfg)); err != nil {
		conn.Close()
		return err
	}
	r.conn = conn
	return nil
}

func (r *voskRecognizer) FeedChunk(ctx context.Context, chunk []byte) (string, error) {
	const op = "voskRecognizer.FeedChunk"

	if len(chunk) == 0 {
		// End-of-utterance signal; the caller moves on to FinalResult.
		return "", nil
	}
	if err := r.dial(ctx); err != nil {
		return "", utils.E(utils.CodeProviderFailed, op, "failed to connect to vosk server", err)
	}

	if err := r.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
		return "", utils.E(utils.CodeProviderFailed, op, "failed to send audio chunk", err)
	}

	r.conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, data, err := r.conn.ReadMessage()
	if err != nil {
		return "", utils.E(utils.CodeProviderFailed, op, "failed to read recognition result", err)
	}

	var res voskResult
	if err := json.Unmarshal(data, &res); err != nil {
		return "", utils.E(utils.CodeParseFailed, op, "invalid vosk result payload", err)
	}

	// A "text" field means the server committed a segment mid-utterance.
	if res.Text != "" {
		r.segments = append(r.segments, res.Text)
		return "", nil
	}
	return res.Partial, nil
}

func (r *voskRecognizer) FinalResult(ctx context.Context) (string, error) {
	const op = "voskRecognizer.FinalResult"

	if r.conn == nil {
		// No audio was ever fed.
		return strings.Join(r.segments, " "), nil
	}

	if err := r.conn.WriteMessage(websocket.TextMessage, []byte(`{"eof" : 1}`)); err != nil {
		return "", utils.E(utils.CodeProviderFailed, op, "failed to send eof", err)
	}

	r.conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, data, err := r.conn.ReadMessage()
	if err != nil {
		return "", utils.E(utils.CodeProviderFailed, op, "failed to read final result", err)
	}

	var res voskResult
	if err := json.Unmarshal(data, &res); err != nil {
		return "", utils.E(utils.CodeParseFailed, op, "invalid vosk final payload", err)
	}
	if res.Text != "" {
		r.segments = append(r.segments, res.Text)
	}

	final := strings.Join(r.segments, " ")
	r.segments = nil
	return final, nil
}

func (r *voskRecognizer) Close() error {
	if r.closed || r.conn == nil {
		r.closed = true
		return nil
	}
	r.closed = true
	return r.conn.Close()
}
