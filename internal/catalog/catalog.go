package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	pair "github.com/notEpsilon/go-pair"

	"github.com/gauravw/herondb/internal/file"
)

var (
	// ErrUnknownRelation is returned when a relation name is not in the catalog.
	ErrUnknownRelation = errors.New("unknown relation")
	// ErrRelationExists is returned when creating a relation that already exists.
	ErrRelationExists = errors.New("relation already exists")
	// ErrUnknownPartition is returned when inserting into a missing partition
	// of a non-partitioned relation.
	ErrUnknownPartition = errors.New("relation is not partitioned")
)

// Catalog tracks relations and routes their data to the right storage
// backend: durable relations go to the disk store, ephemeral ones to the
// in-memory store.
type Catalog struct {
	disk   file.Store
	mem    file.Store
	logger *slog.Logger

	relations map[string]*Relation
	dropHooks []func(qualifiedName string)
	mu        sync.RWMutex
}

// NewCatalog creates a catalog over the given disk store.
func NewCatalog(disk file.Store, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		disk:      disk,
		mem:       file.NewMemStore(),
		logger:    logger,
		relations: make(map[string]*Relation),
	}
}

// RegisterDropHook registers a callback invoked after a relation is dropped.
// The statistics manager uses this to discard cached sizes.
func (c *Catalog) RegisterDropHook(fn func(qualifiedName string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropHooks = append(c.dropHooks, fn)
}

// CreateRelation registers a new relation under schemaName.name.
func (c *Catalog) CreateRelation(schemaName, name string, opts RelationOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rel := newRelation(schemaName, name, opts)
	qualified := rel.QualifiedName()
	if _, exists := c.relations[qualified]; exists {
		return fmt.Errorf("%w: %s", ErrRelationExists, qualified)
	}

	c.relations[qualified] = rel
	c.logger.Debug("created relation",
		"relation", qualified,
		"partitioned", opts.Partitioned,
		"ephemeral", opts.Ephemeral)
	return nil
}

// DropRelation removes the relation, deletes its storage units, and
// notifies drop hooks so dependent caches are discarded.
func (c *Catalog) DropRelation(qualifiedName string) error {
	c.mu.Lock()
	rel, exists := c.relations[qualifiedName]
	if !exists {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownRelation, qualifiedName)
	}

	store := c.storeFor(rel)
	for _, unit := range rel.unitNames() {
		if err := store.Remove(unit); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("failed to remove storage for %s: %w", qualifiedName, err)
		}
	}

	delete(c.relations, qualifiedName)
	hooks := append([]func(string){}, c.dropHooks...)
	c.mu.Unlock()

	for _, hook := range hooks {
		hook(qualifiedName)
	}
	c.logger.Debug("dropped relation", "relation", qualifiedName)
	return nil
}

// Insert appends payload bytes to the relation's storage. For partitioned
// relations the partition key selects the unit, creating the partition on
// first use. Non-partitioned relations must pass an empty partition key.
func (c *Catalog) Insert(qualifiedName, partition string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rel, exists := c.relations[qualifiedName]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownRelation, qualifiedName)
	}

	if partition != "" && !rel.Partitioned {
		return fmt.Errorf("%w: %s", ErrUnknownPartition, qualifiedName)
	}
	if rel.Partitioned && partition != "" {
		rel.addPartition(partition)
	}

	err := c.storeFor(rel).Append(rel.unitName(partition), payload)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", qualifiedName, err)
	}
	return nil
}

// LookupRelation returns the relation registered under the qualified name.
func (c *Catalog) LookupRelation(qualifiedName string) (*Relation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rel, exists := c.relations[qualifiedName]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRelation, qualifiedName)
	}
	return rel, nil
}

// StorageUnits enumerates the relation's storage units as (unit, bytes)
// pairs, reading each unit's current size from the storage layer.
func (c *Catalog) StorageUnits(qualifiedName string) ([]pair.Pair[string, int64], error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rel, exists := c.relations[qualifiedName]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRelation, qualifiedName)
	}

	store := c.storeFor(rel)
	units := make([]pair.Pair[string, int64], 0, len(rel.partitionOrder)+1)
	for _, unit := range rel.unitNames() {
		size, err := store.Size(unit)
		if err != nil {
			return nil, fmt.Errorf("failed to size unit %s: %w", unit, err)
		}
		units = append(units, pair.Pair[string, int64]{First: unit, Second: size})
	}
	return units, nil
}

// IsEphemeral reports whether the relation is in-memory only.
func (c *Catalog) IsEphemeral(qualifiedName string) (bool, error) {
	rel, err := c.LookupRelation(qualifiedName)
	if err != nil {
		return false, err
	}
	return rel.Ephemeral, nil
}

func (c *Catalog) storeFor(rel *Relation) file.Store {
	if rel.Ephemeral {
		return c.mem
	}
	return c.disk
}
