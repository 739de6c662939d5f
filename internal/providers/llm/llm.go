package llm

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Result carries generated text plus the substitution note for observability:
// when the requested model is not in the provider's supported list, the first
// supported model is used instead and SubstitutedModel names it.
type Result struct {
	Text             string
	SubstitutedModel string
}

type Provider interface {
	Name() string

	// GenerateText performs one generation round-trip. Missing credentials yield
	// a PROVIDER_CONFIG error; transport/vendor failures yield PROVIDER_FAILED.
	GenerateText(ctx context.Context, prompt, model string, temperature float64) (Result, error)

	// SupportedModels is static per provider.
	SupportedModels() []string

	// TestConnection performs a minimal real generation call.
	TestConnection(ctx context.Context) bool
}

// normalizeModel substitutes an unsupported model with the provider's first
// supported one. Returns the model to use and the substitute ("" if none).
func normalizeModel(log *logrus.Logger, provider, requested string, supported []string) (string, string) {
	if requested == "" {
		return supported[0], ""
	}
	for _, m := range supported {
		if m == requested {
			return requested, ""
		}
	}
	log.WithFields(logrus.Fields{
		"provider":  provider,
		"requested": requested,
		"using":     supported[0],
	}).Warn("model not supported, substituting first supported model")
	return supported[0], supported[0]
}
