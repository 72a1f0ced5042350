package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is the storage backend for a relation's storage units.
// Each unit is an independent append-only byte stream; the statistics
// subsystem only ever asks for a unit's total size.
type Store interface {
	// Append writes data to the end of the named unit, creating it if needed.
	Append(unit string, data []byte) error
	// Size returns the current size of the named unit in bytes.
	Size(unit string) (int64, error)
	// Remove deletes the named unit and its backing storage.
	Remove(unit string) error
	// Units returns the names of all existing units.
	Units() ([]string, error)
	// Close releases any resources held by the store.
	Close() error
}

// DiskStore keeps each storage unit as a file inside a database directory.
// Opened files are cached and reused across calls.
type DiskStore struct {
	dbDir       string
	openedFiles map[string]*os.File
	mu          sync.Mutex
}

var _ Store = (*DiskStore)(nil)

// NewDiskStore creates a store rooted at the specified directory,
// creating the directory if it does not exist.
func NewDiskStore(dbDir string) (*DiskStore, error) {
	_, err := os.Stat(dbDir)
	if os.IsNotExist(err) {
		err = os.MkdirAll(dbDir, 0755)
		if err != nil {
			return nil, errors.New("failed to create database directory: " + err.Error())
		}
	}

	return &DiskStore{
		dbDir:       dbDir,
		openedFiles: make(map[string]*os.File),
	}, nil
}

// Append writes data at the current end of the unit's file.
func (ds *DiskStore) Append(unit string, data []byte) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	f, err := ds.getFile(unit)
	if err != nil {
		return fmt.Errorf("failed to get unit file: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat unit file: %w", err)
	}

	_, err = f.WriteAt(data, fi.Size())
	if err != nil {
		return fmt.Errorf("failed to append to unit %s: %w", unit, err)
	}

	return nil
}

// Size returns the unit's on-disk size as reported by the filesystem.
func (ds *DiskStore) Size(unit string) (int64, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	f, err := ds.getFile(unit)
	if err != nil {
		return 0, fmt.Errorf("failed to get unit file: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat unit file: %w", err)
	}

	return fi.Size(), nil
}

// Remove closes and deletes the unit's file.
func (ds *DiskStore) Remove(unit string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if f, ok := ds.openedFiles[unit]; ok {
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close unit %s: %w", unit, err)
		}
		delete(ds.openedFiles, unit)
	}

	err := os.Remove(filepath.Join(ds.dbDir, unit))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove unit %s: %w", unit, err)
	}

	return nil
}

// Units lists the files currently present in the database directory.
func (ds *DiskStore) Units() ([]string, error) {
	entries, err := os.ReadDir(ds.dbDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read database directory: %w", err)
	}

	units := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			units = append(units, e.Name())
		}
	}
	return units, nil
}

// Close closes all opened unit files.
func (ds *DiskStore) Close() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	for name, f := range ds.openedFiles {
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close unit %s: %w", name, err)
		}
		delete(ds.openedFiles, name)
	}
	return nil
}

// getFile returns the file backing the unit, creating it if it does not exist.
// Caller must hold ds.mu.
func (ds *DiskStore) getFile(unit string) (*os.File, error) {
	f, ok := ds.openedFiles[unit]
	if ok {
		return f, nil
	}

	f, err := os.OpenFile(filepath.Join(ds.dbDir, unit), os.O_RDWR|os.O_CREATE|os.O_SYNC, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	ds.openedFiles[unit] = f

	return f, nil
}
