package domain

import "time"

// SaveRecord is the local audit entry written after every save attempt.
type SaveRecord struct {
	ID        string
	SessionID string
	Mode      EditorMode
	EntityID  int64
	Creates   int
	Updates   int
	Deletes   int
	Success   bool
	Error     string
	SavedAt   time.Time
}

// StoredSession is the persisted envelope of an editor session. Payload and
// Filters are JSON documents owned by the session package.
type StoredSession struct {
	Key       string
	ID        string
	Mode      EditorMode
	EntityID  int64
	Payload   []byte
	Filters   []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}
