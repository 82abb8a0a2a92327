// Package generator exposes the SQL generation and taxonomy endpoints.
package generator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taxolab/taxoquery/internal/sqlgen"
	"github.com/taxolab/taxoquery/internal/storage"
	"github.com/taxolab/taxoquery/internal/taxonomy"
)

// Service wires the taxonomy parser, the template engine and the optional
// snapshot store behind the HTTP API. The current taxonomy is an immutable
// snapshot swapped atomically on each successful parse.
type Service struct {
	parser     *taxonomy.Parser
	registry   *sqlgen.Registry
	engine     *sqlgen.Engine
	store      storage.TaxonomyStore // nil when persistence is disabled
	pricePerTB decimal.Decimal
	now        func() time.Time

	mu            sync.RWMutex
	current       *taxonomy.Taxonomy
	currentSource string
}

// NewService creates the generation service. store may be nil.
func NewService(registry *sqlgen.Registry, engine *sqlgen.Engine, store storage.TaxonomyStore, pricePerTB decimal.Decimal) *Service {
	return &Service{
		parser:     taxonomy.NewParser(),
		registry:   registry,
		engine:     engine,
		store:      store,
		pricePerTB: pricePerTB,
		now:        time.Now,
	}
}

// Taxonomy returns the current taxonomy snapshot, or nil when none is
// loaded.
func (s *Service) Taxonomy() *taxonomy.Taxonomy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetTaxonomy swaps in a freshly parsed taxonomy and, when a store is
// configured, persists it as a new snapshot. Persistence failures are
// logged but do not invalidate the in-memory swap.
func (s *Service) SetTaxonomy(ctx context.Context, sourceID string, tax *taxonomy.Taxonomy) {
	s.mu.Lock()
	s.current = tax
	s.currentSource = sourceID
	s.mu.Unlock()

	if s.store == nil {
		return
	}
	snap := &storage.Snapshot{SourceID: sourceID, Taxonomy: tax}
	if err := s.store.SaveSnapshot(ctx, snap); err != nil {
		slog.Error("Failed to persist taxonomy snapshot",
			"source_id", sourceID, "error", err)
		return
	}
	slog.Info("Persisted taxonomy snapshot",
		"snapshot_id", snap.ID,
		"source_id", sourceID,
		"events", len(tax.Events))
}

// RestoreTaxonomy loads the latest persisted snapshot for a source into the
// current slot. Used at startup to survive restarts without a re-parse.
func (s *Service) RestoreTaxonomy(ctx context.Context, sourceID string) error {
	if s.store == nil {
		return nil
	}
	snap, err := s.store.LatestSnapshot(ctx, sourceID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = snap.Taxonomy
	s.currentSource = snap.SourceID
	s.mu.Unlock()

	slog.Info("Restored taxonomy snapshot",
		"snapshot_id", snap.ID,
		"source_id", snap.SourceID,
		"events", len(snap.Taxonomy.Events))
	return nil
}
