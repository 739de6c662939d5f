package stt

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/hirevox/hirevox/internal/settings"
)

// DefaultProvider is the fallback for unknown identifiers in settings.
const DefaultProvider = "vosk"

type Factory func(snap settings.Snapshot, log *logrus.Logger) Provider

var factories = map[string]Factory{
	"vosk":             func(s settings.Snapshot, l *logrus.Logger) Provider { return NewVosk(s, l) },
	"google_cloud":     func(s settings.Snapshot, l *logrus.Logger) Provider { return NewGoogleSpeech(s, l) },
	"yandex_speechkit": func(s settings.Snapshot, l *logrus.Logger) Provider { return NewYandexSpeechKit(s, l) },
}

// Resolve returns the provider bound to the snapshot's configured identifier,
// logging and falling back to the default when the identifier is unknown.
func Resolve(snap settings.Snapshot, log *logrus.Logger) Provider {
	f, ok := factories[snap.STTProvider]
	if !ok {
		log.WithField("provider", snap.STTProvider).Error("unknown STT provider in settings, using default")
		f = factories[DefaultProvider]
	}
	return f(snap, log)
}

func Providers() []string {
	out := make([]string, 0, len(factories))
	for name := range factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
