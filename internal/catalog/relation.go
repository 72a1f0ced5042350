package catalog

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// Relation describes a named, queryable table-like data source. A relation
// is either a single storage unit or a set of partitions, each with its own
// unit. Ephemeral relations live in memory only and have no durable storage.
type Relation struct {
	SchemaName  string
	Name        string
	Partitioned bool
	Ephemeral   bool

	partitionKeys  mapset.Set[string]
	partitionOrder []string
}

// RelationOptions controls how a relation is created.
type RelationOptions struct {
	Partitioned bool
	Ephemeral   bool
}

func newRelation(schemaName, name string, opts RelationOptions) *Relation {
	return &Relation{
		SchemaName:     schemaName,
		Name:           name,
		Partitioned:    opts.Partitioned,
		Ephemeral:      opts.Ephemeral,
		partitionKeys:  mapset.NewSet[string](),
		partitionOrder: make([]string, 0),
	}
}

// QualifiedName returns the namespace-qualified relation name.
func (r *Relation) QualifiedName() string {
	return r.SchemaName + "." + r.Name
}

// PartitionKeys returns the relation's partition keys in insertion order.
func (r *Relation) PartitionKeys() []string {
	keys := make([]string, len(r.partitionOrder))
	copy(keys, r.partitionOrder)
	return keys
}

// HasPartition reports whether the relation has the given partition key.
func (r *Relation) HasPartition(key string) bool {
	return r.partitionKeys.Contains(key)
}

// addPartition records a new partition key. Caller must hold the catalog lock.
func (r *Relation) addPartition(key string) {
	if r.partitionKeys.Add(key) {
		r.partitionOrder = append(r.partitionOrder, key)
	}
}

// unitName returns the storage unit name for the given partition key,
// or the relation's single unit when the key is empty.
func (r *Relation) unitName(partition string) string {
	if partition == "" {
		return r.QualifiedName() + ".tbl"
	}
	return fmt.Sprintf("%s.p.%s", r.QualifiedName(), partition)
}

// unitNames returns all storage unit names belonging to the relation.
func (r *Relation) unitNames() []string {
	if !r.Partitioned {
		return []string{r.unitName("")}
	}
	units := make([]string, 0, len(r.partitionOrder))
	for _, key := range r.partitionOrder {
		units = append(units, r.unitName(key))
	}
	return units
}
