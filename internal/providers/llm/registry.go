package llm

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/hirevox/hirevox/internal/settings"
)

// DefaultProvider is used when the configured identifier is unknown. An unknown
// identifier is a configuration error, never fatal to the process.
const DefaultProvider = "ollama"

type Factory func(snap settings.Snapshot, log *logrus.Logger) Provider

var factories = map[string]Factory{
	"ollama":        func(s settings.Snapshot, l *logrus.Logger) Provider { return NewOllama(s, l) },
	"openai":        func(s settings.Snapshot, l *logrus.Logger) Provider { return NewOpenAI(s, l) },
	"yandexgpt":     func(s settings.Snapshot, l *logrus.Logger) Provider { return NewYandexGPT(s, l) },
	"sber_gigachat": func(s settings.Snapshot, l *logrus.Logger) Provider { return NewGigaChat(s, l) },
	"vertex_gemini": func(s settings.Snapshot, l *logrus.Logger) Provider { return NewVertexGemini(s, l) },
}

// Resolve returns the provider bound to the snapshot's configured identifier,
// falling back to the default on unknown identifiers. Purely a lookup: safe to
// call concurrently because the snapshot is a value copy.
func Resolve(snap settings.Snapshot, log *logrus.Logger) Provider {
	f, ok := factories[snap.LLMProvider]
	if !ok {
		log.WithField("provider", snap.LLMProvider).Error("unknown LLM provider in settings, using default")
		f = factories[DefaultProvider]
	}
	return f(snap, log)
}

// Providers lists the registered identifiers, sorted.
func Providers() []string {
	out := make([]string, 0, len(factories))
	for name := range factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
