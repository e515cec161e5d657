package server

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"scopa-game/internal/protocol"
)

// Client represents a single WebSocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	ID   string // Unique identifier, set before the client is registered
	Name string // Player's chosen name; owned by the hub goroutine
}

// ReadPump handles incoming messages from the WebSocket connection.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregisterClient(c)
		c.conn.Close()
	}()

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("Unexpected close", zap.String("client_id", c.ID), zap.Error(err))
			}
			break // Exit loop on read error or connection close
		}

		var msg protocol.Message
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			c.hub.logger.Warn("Malformed message", zap.String("client_id", c.ID), zap.Error(err))
			continue
		}

		if msg.Type != protocol.TypePing {
			c.hub.logger.Debug("Received message", zap.String("type", msg.Type), zap.String("client_id", c.ID))
		}
		if !c.hub.submit(c, msg) {
			break
		}
	}
}

// WritePump handles outgoing messages to the WebSocket connection.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.hub.logger.Warn("Write error", zap.String("client_id", c.ID), zap.Error(err))
			break
		}
	}
}
