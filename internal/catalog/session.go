package catalog

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the ephemeral state of one orchestrator run: two syncing flags
// and a single current-status message. It is created at run start and cleared
// at run end on every exit path.
//
// Writes are confined to the one active orchestrator run; readers (status
// API, UI) take snapshots.
type Session struct {
	id        uuid.UUID
	startedAt time.Time

	mu             sync.RWMutex
	channelSyncing bool
	vodSyncing     bool
	status         string
}

// SessionSnapshot is a consistent read of a session's state.
type SessionSnapshot struct {
	ID             string    `json:"id"`
	StartedAt      time.Time `json:"started_at"`
	ChannelSyncing bool      `json:"channel_syncing"`
	VODSyncing     bool      `json:"vod_syncing"`
	Status         string    `json:"status,omitempty"`
}

// NewSession creates an idle session.
func NewSession() *Session {
	return &Session{
		id:        uuid.New(),
		startedAt: time.Now(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id.String()
}

// SetChannelSyncing sets the channel/EPG syncing flag.
func (s *Session) SetChannelSyncing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channelSyncing = v
}

// SetVODSyncing sets the VOD syncing flag.
func (s *Session) SetVODSyncing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vodSyncing = v
}

// SetStatus updates the current status message.
func (s *Session) SetStatus(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = msg
}

// ClearStatus empties the status message.
func (s *Session) ClearStatus() {
	s.SetStatus("")
}

// Clear resets both syncing flags and the status message. Called from the
// orchestrator's guaranteed teardown.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channelSyncing = false
	s.vodSyncing = false
	s.status = ""
}

// Snapshot returns a consistent copy of the session state.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionSnapshot{
		ID:             s.id.String(),
		StartedAt:      s.startedAt,
		ChannelSyncing: s.channelSyncing,
		VODSyncing:     s.vodSyncing,
		Status:         s.status,
	}
}
