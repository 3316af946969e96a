package websocket

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// NewUpgrader accepts browser connections whose Origin is in allowed.
// An empty list or "*" allows any origin; requests without an Origin
// header (non-browser clients) are always accepted.
func NewUpgrader(allowed []string) *websocket.Upgrader {
	allowAll := len(allowed) == 0
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if allowAll || origin == "" {
				return true
			}
			for _, o := range allowed {
				if strings.EqualFold(strings.TrimSuffix(o, "/"), origin) {
					return true
				}
			}
			return false
		},
	}
}

// NewClient wraps conn for room. handle may be nil for push-only clients.
func NewClient(hub *Hub, conn *websocket.Conn, room, user string, handle func(*Client, *Message)) *Client {
	return &Client{
		Hub:      hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Room:     room,
		UserName: user,
		handle:   handle,
	}
}

// ReadPump pumps messages from the WebSocket connection to the client's
// handler. It returns when the connection closes.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Leave(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			// Only log if it's not a normal close (code 1000 from navigation)
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.Hub.logger.Warn("websocket read", "room", c.Room, "error", err)
			}
			return
		}
		if c.handle == nil {
			continue
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			c.Hub.logger.Debug("invalid websocket message", "room", c.Room, "error", err)
			continue
		}

		msg.Room = c.Room
		msg.User = c.UserName
		msg.Timestamp = time.Now()
		c.handle(c, &msg)
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return b
}
