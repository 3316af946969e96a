// Package chat runs one conversation with Santa: it owns the message list
// and engine state, simulates typing, and keeps turns strictly ordered.
package chat

import (
	"errors"
	"strings"
	"sync"
	"time"

	"santaverse/internal/dialogue"
	"santaverse/internal/models"
)

var (
	ErrEmptyInput   = errors.New("empty input")
	ErrReplyPending = errors.New("reply pending")
	ErrClosed       = errors.New("conversation closed")
)

// DefaultTypingDelay is how long Santa "types" before a reply appears.
const DefaultTypingDelay = 1500 * time.Millisecond

// Listener observes a conversation. Callbacks are serialised, arrive in
// append order, and may read the conversation.
type Listener interface {
	MessageAppended(models.ChatMessage)
	TypingChanged(typing bool)
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithTypingDelay sets the simulated typing delay.
func WithTypingDelay(d time.Duration) Option {
	return func(c *Conversation) { c.delay = d }
}

// WithListener registers a listener.
func WithListener(l Listener) Option {
	return func(c *Conversation) { c.listener = l }
}

// WithClock replaces time.Now for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Conversation) { c.now = now }
}

// Conversation is a single user's chat session.
type Conversation struct {
	engine   *dialogue.Engine
	delay    time.Duration
	listener Listener
	now      func() time.Time

	mu       sync.Mutex
	state    dialogue.State
	messages []models.ChatMessage
	events   []event
	timer    *time.Timer
	turn     int
	closed   bool

	emit sync.Mutex
}

type event struct {
	msg    *models.ChatMessage
	typing *bool
}

// New creates a conversation. Call Start to post the opening line.
func New(engine *dialogue.Engine, opts ...Option) *Conversation {
	c := &Conversation{
		engine: engine,
		delay:  DefaultTypingDelay,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start posts Santa's opening line.
func (c *Conversation) Start() {
	c.mu.Lock()
	if c.closed || len(c.messages) > 0 {
		c.mu.Unlock()
		return
	}
	c.appendLocked(models.SenderBot, c.engine.Opening())
	c.mu.Unlock()

	c.flush()
}

// Send accepts user input. The raw message is appended immediately and
// the reply follows after the typing delay.
func (c *Conversation) Send(input string) error {
	if strings.TrimSpace(input) == "" {
		return ErrEmptyInput
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.timer != nil {
		c.mu.Unlock()
		return ErrReplyPending
	}
	c.appendLocked(models.SenderUser, input)
	c.typingLocked(true)
	c.turn++
	turn := c.turn
	c.timer = time.AfterFunc(c.delay, func() { c.reply(turn, input) })
	c.mu.Unlock()

	c.flush()
	return nil
}

func (c *Conversation) reply(turn int, input string) {
	c.mu.Lock()
	if c.closed || turn != c.turn || c.timer == nil {
		c.mu.Unlock()
		return
	}
	next, r := c.engine.Step(c.state, input)
	c.state = next
	c.timer = nil
	if r != nil {
		c.appendLocked(models.SenderBot, r.Text)
	}
	c.typingLocked(false)
	c.mu.Unlock()

	c.flush()
}

// Close cancels any pending reply. It is safe to call more than once.
func (c *Conversation) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Typing reports whether a reply is pending.
func (c *Conversation) Typing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

// Messages returns a copy of the message list.
func (c *Conversation) Messages() []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Phase returns the current dialogue phase.
func (c *Conversation) Phase() dialogue.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Phase
}

// Profile returns what has been learnt about the user so far.
func (c *Conversation) Profile() models.UserProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Profile
}

// WishCard writes Santa's card for this user.
func (c *Conversation) WishCard() (dialogue.WishCard, error) {
	return dialogue.NewWishCard(c.Profile())
}

func (c *Conversation) appendLocked(sender models.Sender, text string) models.ChatMessage {
	msg := models.ChatMessage{
		Seq:       len(c.messages) + 1,
		Sender:    sender,
		Text:      text,
		CreatedAt: c.now(),
	}
	c.messages = append(c.messages, msg)
	if c.listener != nil {
		c.events = append(c.events, event{msg: &msg})
	}
	return msg
}

func (c *Conversation) typingLocked(typing bool) {
	if c.listener != nil {
		c.events = append(c.events, event{typing: &typing})
	}
}

// flush delivers queued events in the order they were recorded. Delivery
// happens without holding mu so listeners may read the conversation.
func (c *Conversation) flush() {
	if c.listener == nil {
		return
	}
	c.emit.Lock()
	defer c.emit.Unlock()
	for {
		c.mu.Lock()
		evs := c.events
		c.events = nil
		c.mu.Unlock()
		if len(evs) == 0 {
			return
		}
		for _, ev := range evs {
			if ev.msg != nil {
				c.listener.MessageAppended(*ev.msg)
			}
			if ev.typing != nil {
				c.listener.TypingChanged(*ev.typing)
			}
		}
	}
}
