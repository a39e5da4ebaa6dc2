package quiz

import (
	"sync"

	"github.com/coder/websocket"
)

// Session ties a live connection to the room it belongs to. A host
// session has an empty ParticipantID.
type Session struct {
	RoomCode      string
	ParticipantID string
	Host          bool
}

// Sessions is the reverse index from connection to (room,
// participant), so a disconnecting or submitting connection resolves
// to its room without scanning the registry. A connection maps to at
// most one session at any time.
type Sessions struct {
	sessions map[*websocket.Conn]Session
	mu       sync.RWMutex
}

func NewSessions() *Sessions {
	return &Sessions{
		sessions: map[*websocket.Conn]Session{},
	}
}

// Add registers a session for conn, replacing any previous one.
func (s *Sessions) Add(conn *websocket.Conn, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[conn] = sess
}

// Get resolves a connection to its session.
func (s *Sessions) Get(conn *websocket.Conn) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[conn]
	return sess, ok
}

// Delete removes the session for conn, if any.
func (s *Sessions) Delete(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, conn)
}

// Len returns the number of tracked sessions.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
