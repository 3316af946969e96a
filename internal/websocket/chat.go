package websocket

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"santaverse/internal/chat"
	"santaverse/internal/dialogue"
	"santaverse/internal/models"
	"santaverse/internal/storage"
)

// SantaUser is the sender name on bot messages.
const SantaUser = "Santa"

const transcriptTimeout = 5 * time.Second

// ChatRoom is the room name of a single chat conversation.
func ChatRoom(conversationID string) string { return "chat:" + conversationID }

// ChatOptions configures chat sessions.
type ChatOptions struct {
	Engine      *dialogue.Engine
	TypingDelay time.Duration
	// Transcripts, when set, receives every message of the conversation.
	Transcripts storage.TranscriptStore
	Logger      *slog.Logger
}

// ChatText is the payload of chat.message events.
type ChatText struct {
	Text string `json:"text"`
}

// ChatError is the payload of chat.error events.
type ChatError struct {
	Error string `json:"error"`
}

// WishCardPayload is the payload of wish.card events sent to the client.
type WishCardPayload struct {
	Filename string `json:"filename"`
	DataURL  string `json:"dataUrl"`
}

// ChatSession binds one websocket client to one conversation with Santa.
type ChatSession struct {
	ID     string
	Client *Client

	conv        *chat.Conversation
	transcripts storage.TranscriptStore
	logger      *slog.Logger
}

// NewChatSession prepares a session; Serve runs it.
func NewChatSession(hub *Hub, conn *websocket.Conn, id string, opts ChatOptions) *ChatSession {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	engine := opts.Engine
	if engine == nil {
		engine = dialogue.NewEngine()
	}

	s := &ChatSession{
		ID:          id,
		transcripts: opts.Transcripts,
		logger:      logger.With("conversation_id", id),
	}
	s.Client = NewClient(hub, conn, ChatRoom(id), "", s.handle)

	convOpts := []chat.Option{chat.WithListener(s)}
	if opts.TypingDelay > 0 {
		convOpts = append(convOpts, chat.WithTypingDelay(opts.TypingDelay))
	}
	s.conv = chat.New(engine, convOpts...)
	return s
}

// Serve registers the client, posts the opening line and pumps messages
// until the connection closes. Any pending reply is then discarded.
func (s *ChatSession) Serve() {
	if !s.Client.Hub.Join(s.Client) {
		s.Client.Conn.Close()
		return
	}
	go s.Client.WritePump()

	s.logger.Info("chat session started")
	s.conv.Start()
	s.Client.ReadPump()
	s.conv.Close()
	s.logger.Info("chat session ended", "messages", len(s.conv.Messages()))
}

// MessageAppended forwards a new message to the client and records it.
func (s *ChatSession) MessageAppended(msg models.ChatMessage) {
	user := s.conv.Profile().DisplayName
	if msg.Sender == models.SenderBot {
		user = SantaUser
	}
	if s.transcripts != nil {
		ctx, cancel := context.WithTimeout(context.Background(), transcriptTimeout)
		if err := s.transcripts.SaveChatMessage(ctx, s.ID, msg); err != nil {
			s.logger.Error("save chat message", "seq", msg.Seq, "error", err)
		}
		cancel()
	}
	s.publish(MSG_CHAT_MESSAGE, user, msg)
}

// TypingChanged forwards Santa's typing indicator.
func (s *ChatSession) TypingChanged(typing bool) {
	typ := MSG_TYPING_STOP
	if typing {
		typ = MSG_TYPING_START
	}
	s.publish(typ, SantaUser, nil)
}

func (s *ChatSession) handle(c *Client, msg *Message) {
	switch msg.Type {
	case MSG_CHAT_MESSAGE:
		var body ChatText
		if err := json.Unmarshal(msg.Data, &body); err != nil {
			s.fail("invalid_message")
			return
		}
		if err := s.conv.Send(body.Text); err != nil {
			s.fail(errorCode(err))
		}

	case MSG_WISH_CARD:
		card, err := s.conv.WishCard()
		if err != nil {
			s.fail(errorCode(err))
			return
		}
		png, err := dialogue.EncodeWishCard(card)
		if err != nil {
			s.logger.Error("render wish card", "error", err)
			s.fail("render_failed")
			return
		}
		s.publish(MSG_WISH_CARD, SantaUser, WishCardPayload{
			Filename: card.Filename(),
			DataURL:  "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		})

	default:
		s.fail("unsupported_type")
	}
}

func (s *ChatSession) fail(code string) {
	s.publish(MSG_CHAT_ERROR, SantaUser, ChatError{Error: code})
}

func (s *ChatSession) publish(typ, user string, data any) {
	s.Client.Hub.Publish(NewMessage(typ, s.Client.Room, user, data))
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, chat.ErrReplyPending):
		return "reply_pending"
	case errors.Is(err, chat.ErrClosed):
		return "closed"
	case errors.Is(err, dialogue.ErrProfileIncomplete):
		return "profile_incomplete"
	default:
		return "internal"
	}
}
