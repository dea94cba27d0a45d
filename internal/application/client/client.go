package client

import (
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client is one live websocket connection. Outbound payloads go
// through the buffered Send channel; the write pump ends when the hub
// closes it.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
	Log  *zap.Logger
}

// ReadPump feeds every inbound frame to handle, one at a time in
// arrival order. It returns when the connection drops.
func (c *Client) ReadPump(handle func(*Client, []byte)) {
	defer c.Conn.Close()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Log.Warn("read error", zap.String("id", c.ID), zap.Error(err))
			}
			return
		}
		handle(c, message)
	}
}

func (c *Client) WritePump() {
	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}
