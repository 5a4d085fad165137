package model

import "errors"

// Pipeline and repository error taxonomy. Every failure surfaced to a
// caller wraps exactly one of these sentinels; the API layer maps them to
// HTTP statuses and short client-safe messages.
var (
	// ErrNoContent means there was nothing to process after normalization.
	ErrNoContent = errors.New("no content to process")

	// ErrExtractionFailed means the uploaded payload could not be parsed.
	ErrExtractionFailed = errors.New("document could not be parsed")

	// ErrEmptyDocument means the payload parsed but yielded no text.
	ErrEmptyDocument = errors.New("document contains no text")

	// ErrGenerationFailed means the language model call failed or timed out.
	ErrGenerationFailed = errors.New("text generation failed")

	// ErrRateLimited means the language model explicitly rate-limited us.
	ErrRateLimited = errors.New("generation service rate limited")

	// ErrSynthesisFailed means a speech synthesis request failed.
	ErrSynthesisFailed = errors.New("speech synthesis failed")

	// ErrNotFound means no artifact with the given id exists.
	ErrNotFound = errors.New("artifact not found")

	// ErrNotAuthorized means the artifact exists but the caller does not
	// own it. Kept distinct from ErrNotFound internally; the HTTP layer
	// masks both identically so ownership checks never reveal that a
	// differently-owned artifact exists.
	ErrNotAuthorized = errors.New("artifact not owned by caller")
)
