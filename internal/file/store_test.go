package file

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStore_AppendAndSize(t *testing.T) {
	dbDir := "testdata_diskstore"

	ds, err := NewDiskStore(dbDir)
	require.NoError(t, err)
	defer ds.Close()
	defer os.RemoveAll(dbDir)

	size, err := ds.Size("orders.tbl")
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)

	err = ds.Append("orders.tbl", make([]byte, 100))
	require.NoError(t, err)
	err = ds.Append("orders.tbl", make([]byte, 50))
	require.NoError(t, err)

	size, err = ds.Size("orders.tbl")
	require.NoError(t, err)
	assert.Equal(t, int64(150), size)

	// Units are independent.
	err = ds.Append("customers.tbl", make([]byte, 10))
	require.NoError(t, err)
	size, err = ds.Size("customers.tbl")
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)

	units, err := ds.Units()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"orders.tbl", "customers.tbl"}, units)
}

func TestDiskStore_Remove(t *testing.T) {
	dbDir := "testdata_diskstore_remove"

	ds, err := NewDiskStore(dbDir)
	require.NoError(t, err)
	defer ds.Close()
	defer os.RemoveAll(dbDir)

	err = ds.Append("t.tbl", make([]byte, 42))
	require.NoError(t, err)

	err = ds.Remove("t.tbl")
	require.NoError(t, err)

	units, err := ds.Units()
	require.NoError(t, err)
	assert.Empty(t, units)

	// Removing a missing unit is not an error.
	err = ds.Remove("missing.tbl")
	assert.NoError(t, err)
}

func TestMemStore_AppendAndSize(t *testing.T) {
	ms := NewMemStore()
	defer ms.Close()

	size, err := ms.Size("temp.tbl")
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)

	err = ms.Append("temp.tbl", make([]byte, 64))
	require.NoError(t, err)
	err = ms.Append("temp.tbl", make([]byte, 36))
	require.NoError(t, err)

	size, err = ms.Size("temp.tbl")
	require.NoError(t, err)
	assert.Equal(t, int64(100), size)

	units, err := ms.Units()
	require.NoError(t, err)
	assert.Equal(t, []string{"temp.tbl"}, units)

	err = ms.Remove("temp.tbl")
	require.NoError(t, err)
	size, err = ms.Size("temp.tbl")
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)
}
