package config

import (
	"math"
	"sync"
)

// Setting keys understood by the planner core.
const (
	// BroadcastThresholdKey is the maximum size, in bytes, at or below which
	// a relation is considered cheap enough to broadcast. A negative value
	// disables broadcast joins entirely.
	BroadcastThresholdKey = "join.broadcast_threshold_bytes"
	// DefaultRelationSizeKey is the size assumed for relations that have
	// never been analyzed.
	DefaultRelationSizeKey = "stats.default_size_bytes"
)

// Built-in defaults. Unanalyzed relations are assumed to be as large as
// possible so the planner never broadcasts them by accident.
const (
	DefaultBroadcastThreshold int64 = 10 * 1024 * 1024
	DefaultRelationSize       int64 = math.MaxInt64
)

// Settings holds the mutable numeric configuration shared by planning
// passes. Reads and writes are safe for concurrent use; a planning pass
// must take a Snapshot once at entry and use it throughout, so a
// concurrent update never produces a plan built from two different values.
type Settings struct {
	values map[string]int64
	mu     sync.RWMutex
}

// NewSettings returns settings seeded with the built-in defaults.
func NewSettings() *Settings {
	return &Settings{
		values: map[string]int64{
			BroadcastThresholdKey:  DefaultBroadcastThreshold,
			DefaultRelationSizeKey: DefaultRelationSize,
		},
	}
}

// Int64 returns the current value of the named setting, or zero when the
// setting has never been defined.
func (s *Settings) Int64(key string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// SetInt64 updates the named setting.
func (s *Settings) SetInt64(key string, value int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// WithInt64 runs fn with the named setting temporarily set to value,
// restoring the prior value on every exit path.
func (s *Settings) WithInt64(key string, value int64, fn func()) {
	s.mu.Lock()
	prior, hadPrior := s.values[key]
	s.values[key] = value
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if hadPrior {
			s.values[key] = prior
		} else {
			delete(s.values, key)
		}
		s.mu.Unlock()
	}()

	fn()
}

// Snapshot returns an immutable copy of all settings, taken atomically.
func (s *Settings) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make(map[string]int64, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}
	return Snapshot{values: values}
}

// Snapshot is a point-in-time, read-only view of Settings. A planning pass
// holds exactly one Snapshot for its whole duration.
type Snapshot struct {
	values map[string]int64
}

// Int64 returns the snapshotted value of the named setting.
func (sn Snapshot) Int64(key string) int64 {
	return sn.values[key]
}
