package file

import (
	"fmt"
	"sync"

	"github.com/dsnet/golib/memfile"
)

// MemStore keeps every storage unit in memory. It backs ephemeral
// relations, which have no durable storage location to measure.
type MemStore struct {
	units map[string]*memfile.File
	mu    sync.Mutex
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		units: make(map[string]*memfile.File),
	}
}

// Append writes data at the current end of the unit's buffer.
func (ms *MemStore) Append(unit string, data []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	f := ms.getUnit(unit)
	_, err := f.WriteAt(data, int64(len(f.Bytes())))
	if err != nil {
		return fmt.Errorf("failed to append to unit %s: %w", unit, err)
	}
	return nil
}

// Size returns the unit's in-memory size in bytes.
func (ms *MemStore) Size(unit string) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	f := ms.getUnit(unit)
	return int64(len(f.Bytes())), nil
}

// Remove discards the unit's buffer.
func (ms *MemStore) Remove(unit string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.units, unit)
	return nil
}

// Units lists all units currently held in memory.
func (ms *MemStore) Units() ([]string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	units := make([]string, 0, len(ms.units))
	for name := range ms.units {
		units = append(units, name)
	}
	return units, nil
}

// Close releases all buffers.
func (ms *MemStore) Close() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.units = make(map[string]*memfile.File)
	return nil
}

// getUnit returns the buffer backing the unit, creating it if needed.
// Caller must hold ms.mu.
func (ms *MemStore) getUnit(unit string) *memfile.File {
	f, ok := ms.units[unit]
	if !ok {
		f = memfile.New(make([]byte, 0))
		ms.units[unit] = f
	}
	return f
}
