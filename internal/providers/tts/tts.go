package tts

import "context"

// Synthesizer converts interviewer text to speech audio. Synthesis failure is
// non-fatal to a session turn: callers send an empty audio event and continue.
type Synthesizer interface {
	// Synthesize returns WAV audio bytes for the given text.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
