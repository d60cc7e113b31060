package ws

import (
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Session is one live connection. It has no persisted identity; the id only
// labels log lines. Writes are serialized because gorilla connections do not
// allow concurrent writers.
type Session struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// ID returns the ephemeral session identifier.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) send(payload any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(payload)
}

// Registry tracks the set of live connections. It holds no cross-connection
// state beyond membership; register and unregister arrive concurrently from
// each connection's own goroutine.
type Registry struct {
	mu       sync.Mutex
	sessions map[*Session]struct{}
}

// NewRegistry creates an empty registry. The server process owns exactly one
// and drains it at shutdown.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[*Session]struct{})}
}

// Register adds an accepted connection to the live set. It must complete
// before the first frame is read from that connection.
func (r *Registry) Register(conn *websocket.Conn) *Session {
	s := &Session{id: uuid.NewString(), conn: conn}

	r.mu.Lock()
	r.sessions[s] = struct{}{}
	live := len(r.sessions)
	r.mu.Unlock()

	log.Printf("[ws] session %s connected, live=%d", s.id, live)
	return s
}

// Unregister removes a connection from the live set. Each session is
// unregistered once, on its own terminal transition.
func (r *Registry) Unregister(s *Session) {
	r.mu.Lock()
	delete(r.sessions, s)
	live := len(r.sessions)
	r.mu.Unlock()

	log.Printf("[ws] session %s closed, live=%d", s.id, live)
}

// Deliver sends a payload to exactly one session. Replies are always
// addressed to the originating connection; there is no broadcast.
func (r *Registry) Deliver(s *Session, payload any) error {
	return s.send(payload)
}

// Len reports the number of live connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Drain closes every live connection; called once at shutdown.
func (r *Registry) Drain() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		_ = s.conn.Close()
	}
}
