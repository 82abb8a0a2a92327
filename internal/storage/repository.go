package storage

import (
	"context"
	"errors"
	"time"

	"github.com/taxolab/taxoquery/internal/taxonomy"
)

// ErrNotFound is returned when no snapshot exists for a source.
var ErrNotFound = errors.New("taxonomy snapshot not found")

// Snapshot is a persisted parse of a taxonomy source. SourceID identifies
// where the grid came from (typically the spreadsheet ID); the document is
// the full parsed taxonomy.
type Snapshot struct {
	ID       string
	SourceID string
	Taxonomy *taxonomy.Taxonomy
	SavedAt  time.Time
}

// TaxonomyStore persists and retrieves taxonomy snapshots. Parses are
// immutable once stored; re-parsing a source appends a new snapshot rather
// than rewriting the old one.
type TaxonomyStore interface {
	// SaveSnapshot stores a new snapshot and populates its ID and SavedAt.
	SaveSnapshot(ctx context.Context, snap *Snapshot) error

	// LatestSnapshot returns the most recent snapshot for a source.
	// Returns ErrNotFound when the source has never been parsed.
	LatestSnapshot(ctx context.Context, sourceID string) (*Snapshot, error)

	// ListSnapshots returns snapshot metadata for a source, newest first.
	// The taxonomy document itself is not loaded.
	ListSnapshots(ctx context.Context, sourceID string, limit int) ([]*Snapshot, error)
}
