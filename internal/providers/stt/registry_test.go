package stt

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
		p := Resolve(settings.Snapshot{STTProvider: id}, log)
		require.NotNil(t, p)
		assert.Equal(t, id, p.Name())
	}
}

func TestResolveUnknownFallsBackToDefault(t *testing.T) {
	p := Resolve(settings.Snapshot{STTProvider: "no-such-provider"}, quietLogger())
	require.NotNil(t, p)
	assert.Equal(t, DefaultProvider, p.Name())
}

func TestVoskRejectsUnsupportedLanguage(t *testing.T) {
	v := NewVosk(settings.Snapshot{VoskServerURL: "ws://localhost:2700"}, quietLogger())
	_, err := v.CreateRecognizer(context.Background(), "xx-not-a-language")
	require.Error(t, err)
	assert.Equal(t, utils.CodeUnsupportedLanguage, utils.ErrCode(err))
}

func TestVoskRecognizerZeroChunkUtterance(t *testing.T) {
	// A recognizer that never receives audio must yield an empty final result
	// without touching the network.
	r := &voskRecognizer{url: "ws://localhost:2700/en-us", log: quietLogger()}

	partial, err := r.FeedChunk(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, partial)

	final, err := r.FinalResult(context.Background())
	require.NoError(t, err)
	assert.Empty(t, final)

	require.NoError(t, r.Close())
}

func TestYandexSpeechKitRequiresAPIKey(t *testing.T) {
	p := NewYandexSpeechKit(settings.Snapshot{}, quietLogger())
	_, err := p.CreateRecognizer(context.Background(), "ru-RU")
	require.Error(t, err)
	assert.Equal(t, utils.CodeProviderConfig, utils.ErrCode(err))
}
