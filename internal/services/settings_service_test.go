package services

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirevox/hirevox/internal/providers/llm"
	"github.com/hirevox/hirevox/internal/providers/stt"
	"github.com/hirevox/hirevox/internal/settings"
)

type probeLLM struct {
	seen *settings.Snapshot
	ok   bool
}

func (p probeLLM) Name() string                  { return "probe" }
func (p probeLLM) SupportedModels() []string     { return []string{"m"} }
func (p probeLLM) TestConnection(ctx context.Context) bool { return p.ok }
func (p probeLLM) GenerateText(ctx context.Context, prompt, model string, temperature float64) (llm.Result, error) {
	return llm.Result{Text: "ok"}, nil
}

func newTestSettingsService(store *settings.Store, probeOK bool, seen *settings.Snapshot) *settingsService {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return &settingsService{
		store: store,
		log:   log,
		resolveLLM: func(snap settings.Snapshot, _ *logrus.Logger) llm.Provider {
			if seen != nil {
				*seen = snap
			}
			return probeLLM{ok: probeOK}
		},
		resolveSTT: stt.Resolve,
	}
}

func TestTestLLMRestoresSettingsOnSuccessAndFailure(t *testing.T) {
	for _, probeOK := range []bool{true, false} {
		store := settings.NewStore(settings.Snapshot{LLMProvider: "ollama", OllamaBaseURL: "http://original"})
		before := store.Snapshot()

		var seen settings.Snapshot
		svc := newTestSettingsService(store, probeOK, &seen)

		got := svc.TestLLM(context.Background(), func(s *settings.Snapshot) {
			s.LLMProvider = "openai"
			s.OpenAIAPIKey = "candidate-key"
		})
		assert.Equal(t, probeOK, got)

		// The probe saw the candidate configuration...
		assert.Equal(t, "openai", seen.LLMProvider)
		assert.Equal(t, "candidate-key", seen.OpenAIAPIKey)

		// ...but the store is back to its pre-probe state.
		assert.Equal(t, before, store.Snapshot())
	}
}

func TestUpdateLLMRejectsUnknownProvider(t *testing.T) {
	store := settings.NewStore(settings.Snapshot{LLMProvider: "ollama"})
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	svc := NewSettingsService(store, log)

	_, err := svc.UpdateLLM(context.Background(), func(s *settings.Snapshot) {
		s.LLMProvider = "does-not-exist"
	})
	require.Error(t, err)
	assert.Equal(t, "ollama", store.Snapshot().LLMProvider)
}

func TestUpdateLLMPublishesSnapshot(t *testing.T) {
	store := settings.NewStore(settings.Snapshot{LLMProvider: "ollama"})
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	svc := NewSettingsService(store, log)

	held := store.Snapshot() // a session holding a snapshot keeps what it has

	next, err := svc.UpdateLLM(context.Background(), func(s *settings.Snapshot) {
		s.LLMProvider = "openai"
		s.OpenAIAPIKey = "k"
	})
	require.NoError(t, err)
	assert.Equal(t, "openai", next.LLMProvider)
	assert.Equal(t, "openai", store.Snapshot().LLMProvider)
	assert.Equal(t, "ollama", held.LLMProvider)
}
