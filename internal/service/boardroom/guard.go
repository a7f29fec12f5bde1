package boardroom

import "sync"

// SessionGuard tracks which sessions have a dispatch in flight. A session
// accepts one submission at a time.
type SessionGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewSessionGuard creates an empty guard.
func NewSessionGuard() *SessionGuard {
	return &SessionGuard{inFlight: make(map[string]struct{})}
}

// TryAcquire marks session busy. It returns false if it already was.
func (g *SessionGuard) TryAcquire(session string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[session]; busy {
		return false
	}
	g.inFlight[session] = struct{}{}
	return true
}

// Release marks session idle.
func (g *SessionGuard) Release(session string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, session)
}

// Busy reports whether session has a dispatch in flight.
func (g *SessionGuard) Busy(session string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inFlight[session]
	return busy
}
