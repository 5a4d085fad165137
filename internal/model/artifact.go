package model

import (
	"time"
)

// Artifact kind constants
const (
	KindDocument = "document"
	KindPodcast  = "podcast"
)

// Duration bucket labels for podcasts, derived from the length selector
// rather than measured from the audio.
const (
	DurationShort  = "< 2 mins"
	DurationMedium = "2-5 mins"
	DurationLong   = "5+ mins"
)

// Artifact is a persisted, immutable result of one pipeline run: a
// summarized document or a narrated podcast. Artifacts are never updated
// after creation; they are created, listed, read and deleted.
type Artifact struct {
	ID            string `json:"id"`
	OwnerID       string `json:"owner_id"`
	Kind          string `json:"kind"`
	Label         string `json:"label"`
	SourceText    string `json:"source_text,omitempty"`
	GeneratedText string `json:"generated_text"`
	AudioURL      string `json:"audio_url,omitempty"`
	Duration      string `json:"duration,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// ArtifactSummary is the reduced projection returned by listings. Large
// fields (source text, generated text, audio) are omitted to keep list
// responses small; callers that need full content use get-by-id.
type ArtifactSummary struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Label     string `json:"label"`
	Duration  string `json:"duration,omitempty"`
	CreatedAt string `json:"created_at"`
}

// NewDocumentArtifact creates a document artifact. It rejects artifacts
// that would violate creation invariants: an owner is required and the
// generated summary must be non-empty.
func NewDocumentArtifact(id, ownerID, label, sourceText, summary string) (Artifact, error) {
	if err := validate(ownerID, summary); err != nil {
		return Artifact{}, err
	}
	return Artifact{
		ID:            id,
		OwnerID:       ownerID,
		Kind:          KindDocument,
		Label:         label,
		SourceText:    sourceText,
		GeneratedText: summary,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// NewPodcastArtifact creates a podcast artifact. In addition to the shared
// invariants the audio payload must be present.
func NewPodcastArtifact(id, ownerID, label, sourceText, transcript, audioURL, duration string) (Artifact, error) {
	if err := validate(ownerID, transcript); err != nil {
		return Artifact{}, err
	}
	if audioURL == "" {
		return Artifact{}, ErrSynthesisFailed
	}
	return Artifact{
		ID:            id,
		OwnerID:       ownerID,
		Kind:          KindPodcast,
		Label:         label,
		SourceText:    sourceText,
		GeneratedText: transcript,
		AudioURL:      audioURL,
		Duration:      duration,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func validate(ownerID, generated string) error {
	if ownerID == "" {
		return ErrNotAuthorized
	}
	if generated == "" {
		return ErrGenerationFailed
	}
	return nil
}

// Summary returns the listing projection of a.
func (a Artifact) Summary() ArtifactSummary {
	return ArtifactSummary{
		ID:        a.ID,
		Kind:      a.Kind,
		Label:     a.Label,
		Duration:  a.Duration,
		CreatedAt: a.CreatedAt,
	}
}

// DurationBucket maps a podcast length selector to its coarse duration label.
func DurationBucket(length string) string {
	switch length {
	case "Short":
		return DurationShort
	case "Long":
		return DurationLong
	default:
		return DurationMedium
	}
}
