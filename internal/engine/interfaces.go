package engine

import "context"

// ModelClient abstracts language model calls. Implementations wrap Groq,
// Gemini, or a deterministic stub.
type ModelClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Audio is one encoded voice payload.
type Audio struct {
	Data   []byte
	Format string // e.g. "mp3"
}

// SpeechClient abstracts text-to-speech synthesis of a full narration
// script into a single playable payload.
type SpeechClient interface {
	Synthesize(ctx context.Context, text, voice string) (*Audio, error)
}
