// Package config provides centralized configuration for the Query-Stream
// server. All configurable values are loaded from environment variables with
// sensible defaults.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all server configuration values.
type Config struct {
	// Port is the HTTP server listen port.
	Port string

	// DBPath is the path to the SQLite database file.
	DBPath string

	// LLMProvider selects which language model backend to use:
	// "groq" or "gemini".
	LLMProvider string

	// GroqKey is the API key for the Groq service.
	GroqKey string

	// GroqModel is the model identifier for Groq completions.
	GroqModel string

	// GeminiKey is the API key for the Google Gemini service.
	GeminiKey string

	// GeminiModel is the model identifier for Gemini completions.
	GeminiModel string

	// SpeechHost is the base URL of the speech synthesis endpoint.
	SpeechHost string

	// JWTSecret signs the session tokens whose `user.id` claim identifies
	// the caller. Session issuance itself lives outside this service.
	JWTSecret string

	// HTTPTimeout is the timeout for outgoing HTTP requests
	// (extraction, generation, synthesis).
	HTTPTimeout time.Duration

	// SummaryContextChars is the character budget for summary prompts.
	SummaryContextChars int

	// AnswerContextChars is the character budget for Q&A document context.
	AnswerContextChars int

	// ScriptContextChars is the character budget for narration script prompts.
	ScriptContextChars int

	// SpeechSegmentChars is the maximum characters per synthesis request.
	SpeechSegmentChars int

	// MaxUploadBytes caps the size of an inbound multipart request body.
	MaxUploadBytes int64

	// CORSOrigin is the allowed CORS origin. Defaults to "*".
	CORSOrigin string
}

// Load reads configuration from environment variables, applying defaults.
func Load() Config {
	return Config{
		Port:                envOr("PORT", "8080"),
		DBPath:              envOr("DB_PATH", "querystream.db"),
		LLMProvider:         envOr("LLM_PROVIDER", "groq"),
		GroqKey:             os.Getenv("GROQ_API_KEY"),
		GroqModel:           envOr("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GeminiKey:           os.Getenv("GEMINI_API_KEY"),
		GeminiModel:         envOr("GEMINI_MODEL", "gemini-2.0-flash"),
		SpeechHost:          envOr("SPEECH_HOST", "https://translate.google.com"),
		JWTSecret:           envOr("JWT_SECRET", ""),
		HTTPTimeout:         envDuration("HTTP_TIMEOUT", 60*time.Second),
		SummaryContextChars: envInt("SUMMARY_CONTEXT_CHARS", 25000),
		AnswerContextChars:  envInt("ANSWER_CONTEXT_CHARS", 30000),
		ScriptContextChars:  envInt("SCRIPT_CONTEXT_CHARS", 30000),
		SpeechSegmentChars:  envInt("SPEECH_SEGMENT_CHARS", 200),
		MaxUploadBytes:      envInt64("MAX_UPLOAD_BYTES", 10<<20),
		CORSOrigin:          envOr("CORS_ORIGIN", "*"),
	}
}

// UseStubs returns true when no API key is configured for the selected
// provider. The server then runs with deterministic stub clients.
func (c Config) UseStubs() bool {
	switch c.LLMProvider {
	case "gemini":
		return c.GeminiKey == ""
	default:
		return c.GroqKey == ""
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
