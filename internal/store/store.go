package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/narayana-thota/Query-Stream/internal/model"
)

// Verify at compile time that Store implements all interfaces.
var (
	_ ArtifactReader = (*Store)(nil)
	_ ArtifactWriter = (*Store)(nil)
)

// Store persists derived artifacts in SQLite. Records are immutable after
// create, so ownership filtering is the only isolation mechanism needed
// for concurrent requests.
type Store struct {
	db *sql.DB
}

// New creates a new Store and initialises the schema.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// currentSchemaVersion is bumped whenever the schema changes.
// Add a new migration function in the migrations slice below.
const currentSchemaVersion = 2

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		// Fresh database: initialize to version 0.
		if _, err := s.db.Exec(`INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return fmt.Errorf("init schema version: %w", err)
		}
		version = 0
	} else if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	// migrations is an ordered list of migration functions.
	// Index 0 = migration from v0 to v1, etc.
	migrations := []func() error{
		s.migrateV1, // v0 → v1: initial artifacts schema
		s.migrateV2, // v1 → v2: add duration column for podcast buckets
	}

	for i := version; i < len(migrations); i++ {
		if err := migrations[i](); err != nil {
			return fmt.Errorf("migration v%d→v%d: %w", i, i+1, err)
		}
		if _, err := s.db.Exec(`UPDATE schema_version SET version = ?`, i+1); err != nil {
			return fmt.Errorf("update schema version to %d: %w", i+1, err)
		}
	}

	return nil
}

// migrateV1 creates the initial schema (v0 → v1).
func (s *Store) migrateV1() error {
	schema := `
	CREATE TABLE IF NOT EXISTS artifacts (
		id             TEXT PRIMARY KEY,
		owner_id       TEXT NOT NULL,
		kind           TEXT NOT NULL,
		label          TEXT NOT NULL,
		source_text    TEXT,
		generated_text TEXT NOT NULL,
		audio_url      TEXT,
		created_at     TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_artifacts_owner ON artifacts(owner_id, kind, created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// migrateV2 adds the duration column (v1 → v2).
func (s *Store) migrateV2() error {
	_, err := s.db.Exec(`ALTER TABLE artifacts ADD COLUMN duration TEXT NOT NULL DEFAULT ''`)
	return err
}

const artifactColumns = `id, owner_id, kind, label, source_text, generated_text, audio_url, duration, created_at`

// CreateArtifact inserts a fully formed artifact. Partial artifacts never
// reach this call: construction happens through the model constructors
// after the whole pipeline has succeeded.
func (s *Store) CreateArtifact(ctx context.Context, a model.Artifact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts (`+artifactColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.OwnerID, a.Kind, a.Label, a.SourceText, a.GeneratedText,
		a.AudioURL, a.Duration, a.CreatedAt,
	)
	return err
}

// GetOwnedArtifact returns the artifact with the given id if ownerID owns
// it. A missing row yields model.ErrNotFound; a row owned by someone else
// yields model.ErrNotAuthorized so callers can keep the distinction
// internal while masking it at the transport.
func (s *Store) GetOwnedArtifact(ctx context.Context, id, ownerID string) (*model.Artifact, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+artifactColumns+` FROM artifacts WHERE id = ?`, id)
	a, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(a.OwnerID, ownerID); err != nil {
		return nil, err
	}
	return a, nil
}

// ListByOwner returns the caller's artifacts of the given kind, newest
// first, projected to the reduced listing shape. kind may be empty to list
// every kind.
func (s *Store) ListByOwner(ctx context.Context, ownerID, kind string) ([]model.ArtifactSummary, error) {
	query := `SELECT id, kind, label, duration, created_at FROM artifacts WHERE owner_id = ?`
	args := []interface{}{ownerID}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ArtifactSummary
	for rows.Next() {
		var a model.ArtifactSummary
		if err := rows.Scan(&a.ID, &a.Kind, &a.Label, &a.Duration, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteOwnedArtifact permanently removes an artifact the caller owns.
// Deny never deletes: a foreign-owned artifact is left untouched and the
// caller gets model.ErrNotAuthorized.
func (s *Store) DeleteOwnedArtifact(ctx context.Context, id, ownerID string) error {
	a, err := s.GetOwnedArtifact(ctx, id, ownerID)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM artifacts WHERE id = ?`, a.ID)
	return err
}

// authorizeOwner is the access decision: allow only when the requester is
// the recorded owner.
func authorizeOwner(ownerID, requesterID string) error {
	if requesterID == "" || ownerID != requesterID {
		return model.ErrNotAuthorized
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArtifact(row rowScanner) (*model.Artifact, error) {
	var a model.Artifact
	var sourceText, audioURL sql.NullString
	err := row.Scan(&a.ID, &a.OwnerID, &a.Kind, &a.Label, &sourceText,
		&a.GeneratedText, &audioURL, &a.Duration, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.SourceText = sourceText.String
	a.AudioURL = audioURL.String
	return &a, nil
}
