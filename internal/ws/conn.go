package ws

import (
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Conn serialises writes to a websocket connection, which may be shared by the
// read loop and game broadcasts.
type Conn struct {
	ID   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewConn(c *websocket.Conn) *Conn {
	return &Conn{ID: uuid.NewString(), conn: c}
}

func (c *Conn) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// SendError reports a failure to the client.
func (c *Conn) SendError(text string) error {
	msg, err := NewMessage(MessageTypeError, ErrorPayload{Error: text})
	if err != nil {
		return err
	}
	return c.Send(msg)
}

// Close sends a close frame with reason and closes the connection.
func (c *Conn) Close(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
	)
	return c.conn.Close()
}
