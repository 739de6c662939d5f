package llm

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirevox/hirevox/internal/settings"
	"github.com/hirevox/hirevox/internal/utils"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestResolveKnownProviders(t *testing.T) {
	log := quietLogger()
	for _, id := range Providers() {
		p := Resolve(settings.Snapshot{LLMProvider: id}, log)
		require.NotNil(t, p)
		assert.Equal(t, id, p.Name())
	}
}

func TestResolveUnknownFallsBackToDefault(t *testing.T) {
	p := Resolve(settings.Snapshot{LLMProvider: "no-such-provider"}, quietLogger())
	require.NotNil(t, p)
	assert.Equal(t, DefaultProvider, p.Name())
}

func TestProvidersSorted(t *testing.T) {
	ids := Providers()
	require.NotEmpty(t, ids)
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i])
	}
	assert.Contains(t, ids, "ollama")
	assert.Contains(t, ids, "sber_gigachat")
}

func TestUnconfiguredProviderYieldsConfigError(t *testing.T) {
	log := quietLogger()
	cases := []Provider{
		NewOllama(settings.Snapshot{}, log),
		NewOpenAI(settings.Snapshot{}, log),
		NewYandexGPT(settings.Snapshot{}, log),
		NewGigaChat(settings.Snapshot{}, log),
		NewVertexGemini(settings.Snapshot{}, log),
	}
	for _, p := range cases {
		_, err := p.GenerateText(context.Background(), "hello", "", 0.1)
		require.Error(t, err, p.Name())
		assert.Equal(t, utils.CodeProviderConfig, utils.ErrCode(err), p.Name())
	}
}

func TestNormalizeModelSubstitutesUnsupported(t *testing.T) {
	log := quietLogger()
	supported := []string{"alpha", "beta"}

	model, sub := normalizeModel(log, "p", "alpha", supported)
	assert.Equal(t, "alpha", model)
	assert.Empty(t, sub)

	model, sub = normalizeModel(log, "p", "unknown-model", supported)
	assert.Equal(t, "alpha", model)
	assert.Equal(t, "alpha", sub)

	model, sub = normalizeModel(log, "p", "", supported)
	assert.Equal(t, "alpha", model)
	assert.Empty(t, sub)
}
