package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"santaverse/internal/models"
)

// Client represents a WebSocket connection
type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	Room     string
	UserName string

	// handle receives inbound messages; nil makes the client push-only.
	handle func(*Client, *Message)
}

// Hub maintains active clients and broadcasts messages per room
type Hub struct {
	Clients    map[string]map[*Client]bool // room -> clients
	Broadcast  chan *Message
	Register   chan *Client
	Unregister chan *Client
	Mu         sync.RWMutex

	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// Message represents a WebSocket message
type Message struct {
	Type      string          `json:"type"`
	Room      string          `json:"room"`
	User      string          `json:"user,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Message types
const (
	MSG_CHAT_MESSAGE   = "chat.message"
	MSG_CHAT_ERROR     = "chat.error"
	MSG_TYPING_START   = "typing.start"
	MSG_TYPING_STOP    = "typing.stop"
	MSG_WISH_CARD      = "wish.card"
	MSG_GALLERY_ADDED  = "gallery.added"
	MSG_GALLERY_LIKED  = "gallery.liked"
	MSG_GALLERY_VIEWED = "gallery.viewed"
)

// RoomGallery is where live gallery viewers listen.
const RoomGallery = "gallery"

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		Clients:    make(map[string]map[*Client]bool),
		Broadcast:  make(chan *Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// NewMessage builds a message with data encoded as JSON.
func NewMessage(typ, room, user string, data any) *Message {
	msg := &Message{Type: typ, Room: room, User: user, Timestamp: time.Now()}
	if data != nil {
		msg.Data = mustMarshal(data)
	}
	return msg
}

// Publish queues msg for its room. It gives up once the hub has stopped.
func (h *Hub) Publish(msg *Message) {
	select {
	case h.Broadcast <- msg:
	case <-h.done:
	}
}

// Join registers c with the running hub.
func (h *Hub) Join(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Leave unregisters c. Safe to call more than once.
func (h *Hub) Leave(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

// RoomSize reports how many clients are in room.
func (h *Hub) RoomSize(room string) int {
	h.Mu.RLock()
	defer h.Mu.RUnlock()
	return len(h.Clients[room])
}

// ItemAdded fans a newly shared gallery item out to live viewers.
func (h *Hub) ItemAdded(item models.GalleryItem) {
	h.Publish(NewMessage(MSG_GALLERY_ADDED, RoomGallery, item.Username, item))
}

// ItemLiked fans an updated like count out to live viewers.
func (h *Hub) ItemLiked(item models.GalleryItem) {
	h.Publish(NewMessage(MSG_GALLERY_LIKED, RoomGallery, item.Username, item))
}

// ItemViewed fans an updated view count out to live viewers.
func (h *Hub) ItemViewed(item models.GalleryItem) {
	h.Publish(NewMessage(MSG_GALLERY_VIEWED, RoomGallery, item.Username, item))
}

// Run starts the hub's message processing loop. It returns when ctx is
// cancelled, closing every client.
func (h *Hub) Run(ctx context.Context) {
	defer h.stop()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.Register:
			h.Mu.Lock()
			if h.Clients[client.Room] == nil {
				h.Clients[client.Room] = make(map[*Client]bool)
			}
			h.Clients[client.Room][client] = true
			h.Mu.Unlock()

		case client := <-h.Unregister:
			h.Mu.Lock()
			h.removeLocked(client)
			h.Mu.Unlock()

		case message := <-h.Broadcast:
			payload := mustMarshal(message)

			h.Mu.Lock()
			for client := range h.Clients[message.Room] {
				select {
				case client.Send <- payload:
				default:
					h.logger.Warn("dropping slow websocket client", "room", client.Room, "user", client.UserName)
					h.removeLocked(client)
				}
			}
			h.Mu.Unlock()
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.Clients[client.Room]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.Clients, client.Room)
	}
}

func (h *Hub) stop() {
	h.once.Do(func() {
		close(h.done)
		h.Mu.Lock()
		for _, clients := range h.Clients {
			for client := range clients {
				h.removeLocked(client)
			}
		}
		h.Mu.Unlock()
	})
}

// ServeGallery streams live gallery events to conn until it closes.
func ServeGallery(hub *Hub, conn *websocket.Conn) {
	client := NewClient(hub, conn, RoomGallery, "", nil)
	if !hub.Join(client) {
		conn.Close()
		return
	}
	go client.WritePump()
	client.ReadPump()
}
