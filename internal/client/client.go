package client

import (
	"sync"
	"time"
)

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// Client is one browser view attached to a table. Both players of a hot-seat
// table share the same view.
type Client struct {
	ID          string
	TableID     string
	Conn        Connection
	ConnectedAt time.Time

	writeMu sync.Mutex
}

// NewClient creates a client for the given table.
func NewClient(id, tableID string, conn Connection) *Client {
	return &Client{
		ID:          id,
		TableID:     tableID,
		Conn:        conn,
		ConnectedAt: time.Now(),
	}
}

// WriteMessage writes to the underlying connection. The websocket library allows
// a single concurrent writer, so writes are serialized here.
func (c *Client) WriteMessage(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}
