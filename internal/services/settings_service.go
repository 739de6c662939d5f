package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/hirevox/hirevox/internal/providers/llm"
	"github.com/hirevox/hirevox/internal/providers/stt"
	"github.com/hirevox/hirevox/internal/settings"
	"github.com/hirevox/hirevox/internal/utils"
)

// SettingsService publishes provider configuration updates and probes
// candidate configurations without persisting them.
type SettingsService interface {
	Current() settings.Snapshot
	UpdateLLM(ctx context.Context, apply func(*settings.Snapshot)) (settings.Snapshot, error)
	UpdateSTT(ctx context.Context, apply func(*settings.Snapshot)) (settings.Snapshot, error)

	// TestLLM applies the candidate configuration, probes the resolved provider
	// with one minimal generation call, and restores the previous configuration
	// unconditionally.
	TestLLM(ctx context.Context, apply func(*settings.Snapshot)) bool
	TestSTT(ctx context.Context, apply func(*settings.Snapshot)) bool

	LLMProviders() []string
	STTProviders() []string
}

type settingsService struct {
	store *settings.Store
	log   *logrus.Logger

	// Overridable for tests; default to the registry resolvers.
	resolveLLM func(settings.Snapshot, *logrus.Logger) llm.Provider
	resolveSTT func(settings.Snapshot, *logrus.Logger) stt.Provider
}

func NewSettingsService(store *settings.Store, log *logrus.Logger) SettingsService {
	return &settingsService{
		store:      store,
		log:        log,
		resolveLLM: llm.Resolve,
		resolveSTT: stt.Resolve,
	}
}

func (s *settingsService) Current() settings.Snapshot { return s.store.Snapshot() }

func (s *settingsService) UpdateLLM(ctx context.Context, apply func(*settings.Snapshot)) (settings.Snapshot, error) {
	const op = "SettingsService.UpdateLLM"

	candidate := s.store.Snapshot()
	apply(&candidate)
	if !known(llm.Providers(), candidate.LLMProvider) {
		return settings.Snapshot{}, utils.E(utils.CodeProviderConfig, op,
			fmt.Sprintf("unknown LLM provider %q", candidate.LLMProvider), nil)
	}

	s.store.Replace(candidate)
	s.log.WithField("provider", candidate.LLMProvider).Info("LLM settings updated")
	return candidate, nil
}

func (s *settingsService) UpdateSTT(ctx context.Context, apply func(*settings.Snapshot)) (settings.Snapshot, error) {
	const op = "SettingsService.UpdateSTT"

	candidate := s.store.Snapshot()
	apply(&candidate)
	if !known(stt.Providers(), candidate.STTProvider) {
		return settings.Snapshot{}, utils.E(utils.CodeProviderConfig, op,
			fmt.Sprintf("unknown STT provider %q", candidate.STTProvider), nil)
	}

	s.store.Replace(candidate)
	s.log.WithField("provider", candidate.STTProvider).Info("STT settings updated")
	return candidate, nil
}

func (s *settingsService) TestLLM(ctx context.Context, apply func(*settings.Snapshot)) bool {
	original := s.store.Snapshot()
	defer s.store.Replace(original)

	candidate := s.store.Update(apply)
	return s.resolveLLM(candidate, s.log).TestConnection(ctx)
}

func (s *settingsService) TestSTT(ctx context.Context, apply func(*settings.Snapshot)) bool {
	original := s.store.Snapshot()
	defer s.store.Replace(original)

	candidate := s.store.Update(apply)
	return s.resolveSTT(candidate, s.log).TestConnection(ctx)
}

func (s *settingsService) LLMProviders() []string { return llm.Providers() }
func (s *settingsService) STTProviders() []string { return stt.Providers() }

func known(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
