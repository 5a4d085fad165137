package store

import (
	"context"

	"github.com/narayana-thota/Query-Stream/internal/model"
)

// ArtifactReader provides owner-gated read access to artifacts.
type ArtifactReader interface {
	GetOwnedArtifact(ctx context.Context, id, ownerID string) (*model.Artifact, error)
	ListByOwner(ctx context.Context, ownerID, kind string) ([]model.ArtifactSummary, error)
}

// ArtifactWriter provides write access to artifacts.
type ArtifactWriter interface {
	CreateArtifact(ctx context.Context, a model.Artifact) error
	DeleteOwnedArtifact(ctx context.Context, id, ownerID string) error
}

// ArtifactRepository combines all artifact operations for the API layer.
type ArtifactRepository interface {
	ArtifactReader
	ArtifactWriter
}
