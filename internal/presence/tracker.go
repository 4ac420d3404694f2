package presence

import "sync"

// Tracker records which users currently have the matching view open for a
// scheduled session. State is process-local and advisory only: it signals
// "your partner is also waiting" in the UI and never gates matching
// correctness. Everything here is a no-op on unknown identifiers.
type Tracker struct {
	mu       sync.RWMutex
	sessions map[string]map[string]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{sessions: make(map[string]map[string]struct{})}
}

// SetUserActive marks userID as watching sessionID.
func (t *Tracker) SetUserActive(userID, sessionID string) {
	if userID == "" || sessionID == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	users, ok := t.sessions[sessionID]
	if !ok {
		users = make(map[string]struct{})
		t.sessions[sessionID] = users
	}
	users[userID] = struct{}{}
}

// SetUserInactive removes userID from sessionID's watchers.
func (t *Tracker) SetUserInactive(userID, sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	users, ok := t.sessions[sessionID]
	if !ok {
		return
	}
	delete(users, userID)
	if len(users) == 0 {
		delete(t.sessions, sessionID)
	}
}

// ClearUserPresence removes userID from every session, used on connection
// loss when the session is unknown.
func (t *Tracker) ClearUserPresence(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for sessionID, users := range t.sessions {
		delete(users, userID)
		if len(users) == 0 {
			delete(t.sessions, sessionID)
		}
	}
}

// AnyOtherActive reports whether anyone besides userID is watching sessionID.
func (t *Tracker) AnyOtherActive(sessionID, userID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for u := range t.sessions[sessionID] {
		if u != userID {
			return true
		}
	}
	return false
}

// ActiveCount returns the number of watchers for sessionID.
func (t *Tracker) ActiveCount(sessionID string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions[sessionID])
}
