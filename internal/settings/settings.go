package settings

import (
	"os"
	"sync"
)

// Snapshot is an immutable copy of the runtime provider configuration. Sessions and
// pipelines receive a Snapshot at creation time and never observe later updates.
type Snapshot struct {
	LLMProvider string // "ollama" | "openai" | "yandexgpt" | "sber_gigachat" | "vertex_gemini"
	STTProvider string // "vosk" | "google_cloud" | "yandex_speechkit"

	// LLM credentials/endpoints. Empty means "not configured" and fails at first use.
	OllamaBaseURL     string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	YandexGPTAPIKey   string
	YandexGPTFolderID string
	GigaChatAPIKey    string
	VertexProjectID   string
	VertexLocation    string

	// STT credentials/endpoints.
	VoskServerURL         string
	YandexSpeechKitAPIKey string

	// TTS endpoint (opaque synthesizer collaborator).
	TTSServerURL string

	// Default models per role.
	InterviewerModel string
	CandidateModel   string
	AnalystModel     string
	QuestionGenModel string

	WebhookSecret string
}

// Store holds the current Snapshot and publishes replacements atomically.
// Readers always get value copies, never live references.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewStore(initial Snapshot) *Store {
	return &Store{snap: initial}
}

// FromEnv seeds the initial snapshot from the environment (godotenv is loaded in main).
func FromEnv() Snapshot {
	get := func(key, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return def
	}
	return Snapshot{
		LLMProvider:           get("LLM_PROVIDER", "ollama"),
		STTProvider:           get("STT_PROVIDER", "vosk"),
		OllamaBaseURL:         get("OLLAMA_BASE_URL", "http://localhost:11434"),
		OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:         get("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		YandexGPTAPIKey:       os.Getenv("YANDEX_GPT_API_KEY"),
		YandexGPTFolderID:     os.Getenv("YANDEX_GPT_FOLDER_ID"),
		GigaChatAPIKey:        os.Getenv("SBER_GIGACHAT_API_KEY"),
		VertexProjectID:       os.Getenv("VERTEX_PROJECT_ID"),
		VertexLocation:        get("VERTEX_LOCATION", "us-central1"),
		VoskServerURL:         get("VOSK_SERVER_URL", "ws://localhost:2700"),
		YandexSpeechKitAPIKey: os.Getenv("YANDEX_SPEECHKIT_API_KEY"),
		TTSServerURL:          get("TTS_SERVER_URL", "http://localhost:8920"),
		InterviewerModel:      get("LLM_INTERVIEWER_MODEL", "gemma3:4b"),
		CandidateModel:        get("LLM_CANDIDATE_MODEL", "qwen2.5-coder:3b"),
		AnalystModel:          get("LLM_ANALYST_MODEL", "gemma3:4b"),
		QuestionGenModel:      get("LLM_QUESTION_GEN_MODEL", "gemma3:4b"),
		WebhookSecret:         get("WEBHOOK_SECRET_TOKEN", "change-me-in-dot-env-file"),
	}
}

// Snapshot returns a value copy of the current configuration.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Update applies a mutation to a copy of the current snapshot and publishes the
// result atomically. In-flight readers keep the snapshot they already hold.
func (s *Store) Update(apply func(*Snapshot)) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.snap
	apply(&next)
	s.snap = next
	return next
}

// Replace swaps the whole snapshot. Used by the transactional test-connection
// flow to restore the pre-probe state.
func (s *Store) Replace(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}
