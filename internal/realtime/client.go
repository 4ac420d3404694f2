package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client wraps one websocket connection. Writes are serialized through the
// mutex; the hook replaces the sender in tests.
type Client struct {
	UserID    string
	SessionID string

	Conn *websocket.Conn
	mu   sync.Mutex
	hook func(interface{})
}

func NewClient(conn *websocket.Conn, userID, sessionID string) *Client {
	return &Client{Conn: conn, UserID: userID, SessionID: sessionID}
}

// SetSendHook replaces the default WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func(interface{})) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

// Send writes a payload to the peer. Delivery is best-effort; errors are
// dropped along with the frame.
func (c *Client) Send(v interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		c.hook(v)
		return
	}
	if c.Conn == nil {
		return
	}
	_ = c.Conn.WriteJSON(v)
}
