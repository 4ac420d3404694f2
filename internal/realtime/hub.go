package realtime

import "sync"

// Hub manages session rooms plus a per-user connection registry used to push
// matching notifications (match found, confirm deadline, partner presence)
// to users who are not yet in a session room.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	connMu sync.Mutex
	users  map[string]*Client

	// OnRoomEmpty fires after the last client leaves a session room, so the
	// session layer can mark abandoned sessions.
	OnRoomEmpty func(sessionID string)
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]*Room),
		users: make(map[string]*Client),
	}
}

func (h *Hub) GetOrCreate(id string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[id]; ok {
		return r
	}
	r := NewRoom(id)
	h.rooms[id] = r
	return r
}

func (h *Hub) Get(id string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[id]
	return r, ok
}

func (h *Hub) Delete(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, id)
}

// Leave removes a client from a room, tearing the room down and firing
// OnRoomEmpty when it was the last one out.
func (h *Hub) Leave(sessionID string, c *Client) {
	room, ok := h.Get(sessionID)
	if !ok {
		return
	}
	if room.Leave(c) == 0 {
		h.Delete(sessionID)
		if h.OnRoomEmpty != nil {
			h.OnRoomEmpty(sessionID)
		}
	}
}

// RegisterUser attaches a user's matching-notification connection.
func (h *Hub) RegisterUser(userID string, c *Client) {
	h.connMu.Lock()
	h.users[userID] = c
	h.connMu.Unlock()
}

// UnregisterUser detaches a user's matching-notification connection, but only
// if it is still the given client (a reconnect may have replaced it).
func (h *Hub) UnregisterUser(userID string, c *Client) {
	h.connMu.Lock()
	if h.users[userID] == c {
		delete(h.users, userID)
	}
	h.connMu.Unlock()
}

// NotifyUser sends a payload to a user's notification connection if one is
// open. Silent no-op otherwise.
func (h *Hub) NotifyUser(userID string, v interface{}) {
	h.connMu.Lock()
	c, ok := h.users[userID]
	h.connMu.Unlock()
	if ok {
		c.Send(v)
	}
}

// BroadcastToSession sends a payload to every client in a session room.
func (h *Hub) BroadcastToSession(sessionID string, sender *Client, v interface{}) {
	if room, ok := h.Get(sessionID); ok {
		room.Broadcast(sender, v)
	}
}
