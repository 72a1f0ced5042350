package catalog

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauravw/herondb/internal/file"
)

func newTestCatalog(t *testing.T, dbDir string) *Catalog {
	t.Helper()
	ds, err := file.NewDiskStore(dbDir)
	require.NoError(t, err)
	t.Cleanup(func() {
		ds.Close()
		os.RemoveAll(dbDir)
	})
	return NewCatalog(ds, nil)
}

func TestCatalog_CreateAndLookup(t *testing.T) {
	cat := newTestCatalog(t, "testdata_catalog_create")

	err := cat.CreateRelation("db1", "orders", RelationOptions{Partitioned: true})
	require.NoError(t, err)

	rel, err := cat.LookupRelation("db1.orders")
	require.NoError(t, err)
	assert.Equal(t, "db1.orders", rel.QualifiedName())
	assert.True(t, rel.Partitioned)
	assert.False(t, rel.Ephemeral)

	// Duplicate creation fails.
	err = cat.CreateRelation("db1", "orders", RelationOptions{})
	assert.ErrorIs(t, err, ErrRelationExists)

	_, err = cat.LookupRelation("db1.missing")
	assert.ErrorIs(t, err, ErrUnknownRelation)
}

func TestCatalog_InsertAndStorageUnits(t *testing.T) {
	cat := newTestCatalog(t, "testdata_catalog_insert")

	err := cat.CreateRelation("db1", "events", RelationOptions{Partitioned: true})
	require.NoError(t, err)

	err = cat.Insert("db1.events", "p1", make([]byte, 100))
	require.NoError(t, err)
	err = cat.Insert("db1.events", "p2", make([]byte, 40))
	require.NoError(t, err)
	err = cat.Insert("db1.events", "p1", make([]byte, 60))
	require.NoError(t, err)

	rel, err := cat.LookupRelation("db1.events")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, rel.PartitionKeys())
	assert.True(t, rel.HasPartition("p1"))
	assert.False(t, rel.HasPartition("p3"))

	units, err := cat.StorageUnits("db1.events")
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, int64(160), units[0].Second)
	assert.Equal(t, int64(40), units[1].Second)
}

func TestCatalog_NonPartitionedInsert(t *testing.T) {
	cat := newTestCatalog(t, "testdata_catalog_plain")

	err := cat.CreateRelation("db1", "customers", RelationOptions{})
	require.NoError(t, err)

	err = cat.Insert("db1.customers", "", make([]byte, 25))
	require.NoError(t, err)

	// Partition keys are rejected on non-partitioned relations.
	err = cat.Insert("db1.customers", "p1", make([]byte, 5))
	assert.ErrorIs(t, err, ErrUnknownPartition)

	units, err := cat.StorageUnits("db1.customers")
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, int64(25), units[0].Second)
}

func TestCatalog_DropRelation(t *testing.T) {
	cat := newTestCatalog(t, "testdata_catalog_drop")

	var dropped []string
	cat.RegisterDropHook(func(name string) {
		dropped = append(dropped, name)
	})

	err := cat.CreateRelation("db1", "t", RelationOptions{})
	require.NoError(t, err)
	err = cat.Insert("db1.t", "", make([]byte, 10))
	require.NoError(t, err)

	err = cat.DropRelation("db1.t")
	require.NoError(t, err)
	assert.Equal(t, []string{"db1.t"}, dropped)

	_, err = cat.LookupRelation("db1.t")
	assert.ErrorIs(t, err, ErrUnknownRelation)

	err = cat.DropRelation("db1.t")
	assert.ErrorIs(t, err, ErrUnknownRelation)
}

func TestCatalog_EphemeralRelation(t *testing.T) {
	cat := newTestCatalog(t, "testdata_catalog_ephemeral")

	err := cat.CreateRelation("db1", "scratch", RelationOptions{Ephemeral: true})
	require.NoError(t, err)

	ephemeral, err := cat.IsEphemeral("db1.scratch")
	require.NoError(t, err)
	assert.True(t, ephemeral)

	// Ephemeral data lives in the memory store, not in the db directory.
	err = cat.Insert("db1.scratch", "", make([]byte, 77))
	require.NoError(t, err)

	units, err := cat.StorageUnits("db1.scratch")
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, int64(77), units[0].Second)

	entries, err := os.ReadDir("testdata_catalog_ephemeral")
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = cat.IsEphemeral("db1.missing")
	assert.ErrorIs(t, err, ErrUnknownRelation)
}
