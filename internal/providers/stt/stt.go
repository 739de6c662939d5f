package stt

import "context"

// SampleRate is the fixed input rate for all recognizers: raw PCM 16-bit mono.
const SampleRate = 16000

// Recognizer is a per-session stateful transcription handle. Partial results
// are revisable: each one supersedes the previous partial for the utterance.
// The final result is retrieved once per utterance, on the end-of-utterance
// signal (an empty chunk).
type Recognizer interface {
	// FeedChunk accepts one chunk of PCM audio and returns an intermediate
	// transcription guess, or "" when the backend has no update. An empty
	// chunk is the end-of-utterance signal and is never an error.
	FeedChunk(ctx context.Context, chunk []byte) (partial string, err error)

	// FinalResult returns the committed transcription for the utterance.
	// With no prior audio it returns "" without error.
	FinalResult(ctx context.Context) (string, error)

	Close() error
}

type Provider interface {
	Name() string

	// CreateRecognizer fails with UNSUPPORTED_LANGUAGE when no model/backend
	// exists for the language code.
	CreateRecognizer(ctx context.Context, language string) (Recognizer, error)

	SupportedLanguages() []string

	// TestConnection validates the provider's configuration with a minimal
	// real round-trip (model availability or credential probe).
	TestConnection(ctx context.Context) bool
}
