package stats

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gauravw/herondb/internal/catalog"
	"github.com/gauravw/herondb/internal/config"
)

var (
	// ErrUnsupportedOperation is returned when a refresh is attempted on an
	// ephemeral relation, which has no durable storage to measure.
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrStorageAccess is returned when the storage layer fails while a
	// refresh is enumerating unit sizes. The prior stored value is kept.
	ErrStorageAccess = errors.New("storage access failure")
)

// Manager provides size estimates for relations. Until a relation has been
// refreshed (the ANALYZE-equivalent), its estimate is the configured
// default size; afterwards it is the byte sum measured at refresh time,
// which goes stale until the next refresh.
type Manager struct {
	catalog  *catalog.Catalog
	settings *config.Settings
	logger   *slog.Logger

	sizes map[string]uint64
	mu    sync.RWMutex
}

// NewManager creates a statistics manager over the catalog. Dropping a
// relation discards its cached size.
func NewManager(cat *catalog.Catalog, settings *config.Settings, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		catalog:  cat,
		settings: settings,
		logger:   logger,
		sizes:    make(map[string]uint64),
	}
	cat.RegisterDropHook(m.Invalidate)
	return m
}

// EstimateSize returns the relation's current size estimate. Relations
// that were never refreshed get the configured default, regardless of
// their actual content size.
func (m *Manager) EstimateSize(qualifiedName string) (RelationStatistics, error) {
	if _, err := m.catalog.LookupRelation(qualifiedName); err != nil {
		return RelationStatistics{}, err
	}

	m.mu.RLock()
	size, measured := m.sizes[qualifiedName]
	m.mu.RUnlock()

	if !measured {
		return RelationStatistics{SizeInBytes: uint64(m.settings.Int64(config.DefaultRelationSizeKey))}, nil
	}
	return RelationStatistics{SizeInBytes: size}, nil
}

// Refresh measures the relation's total storage size by summing the byte
// sizes of all its storage units and stores the result, replacing any
// prior value in one step. Refresh is all-or-nothing: on storage failure
// the previously stored size is left untouched.
func (m *Manager) Refresh(qualifiedName string) error {
	rel, err := m.catalog.LookupRelation(qualifiedName)
	if err != nil {
		return err
	}
	if rel.Ephemeral {
		return fmt.Errorf("%w: cannot refresh statistics of ephemeral relation %s",
			ErrUnsupportedOperation, qualifiedName)
	}

	units, err := m.catalog.StorageUnits(qualifiedName)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownRelation) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrStorageAccess, err)
	}

	var total uint64
	for _, unit := range units {
		total += uint64(unit.Second)
	}

	m.mu.Lock()
	m.sizes[qualifiedName] = total
	m.mu.Unlock()

	m.logger.Debug("refreshed statistics",
		"relation", qualifiedName,
		"units", len(units),
		"size_bytes", total)
	return nil
}

// Invalidate discards the cached size for the relation, if any.
func (m *Manager) Invalidate(qualifiedName string) {
	m.mu.Lock()
	delete(m.sizes, qualifiedName)
	m.mu.Unlock()
}
