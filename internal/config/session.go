package config

import "github.com/google/uuid"

// Session scopes settings to a single client session. Sessions start from
// a copy of the process defaults, so changing one session's threshold
// never leaks into another.
type Session struct {
	ID       uuid.UUID
	Settings *Settings
}

// NewSession creates a session whose settings are copied from base.
func NewSession(base *Settings) *Session {
	snapshot := base.Snapshot()

	settings := NewSettings()
	for key, value := range snapshot.values {
		settings.SetInt64(key, value)
	}

	return &Session{
		ID:       uuid.New(),
		Settings: settings,
	}
}
