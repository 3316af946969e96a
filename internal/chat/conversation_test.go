package chat_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"santaverse/internal/chat"
	"santaverse/internal/dialogue"
	"santaverse/internal/models"
)

type recorder struct {
	mu     sync.Mutex
	events []string
	idle   chan struct{}
}

func newRecorder() *recorder {
	return &recorder{idle: make(chan struct{}, 16)}
}

func (r *recorder) MessageAppended(m models.ChatMessage) {
	r.mu.Lock()
	r.events = append(r.events, "msg:"+string(m.Sender))
	r.mu.Unlock()
}

func (r *recorder) TypingChanged(typing bool) {
	r.mu.Lock()
	if typing {
		r.events = append(r.events, "typing:on")
	} else {
		r.events = append(r.events, "typing:off")
	}
	r.mu.Unlock()
	if !typing {
		r.idle <- struct{}{}
	}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) waitIdle(t *testing.T) {
	t.Helper()
	select {
	case <-r.idle:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reply")
	}
}

func newConversation(rec *recorder) *chat.Conversation {
	engine := dialogue.NewEngine(dialogue.WithPicker(func(int) int { return 0 }))
	return chat.New(engine, chat.WithTypingDelay(5*time.Millisecond), chat.WithListener(rec))
}

func TestConversationOnboarding(t *testing.T) {
	rec := newRecorder()
	c := newConversation(rec)
	defer c.Close()

	c.Start()
	if got := c.Messages(); len(got) != 1 || got[0].Sender != models.SenderBot {
		t.Fatalf("expected opening line, got %+v", got)
	}

	for _, in := range []string{"my name is rudolph", "9", "any good jokes?"} {
		if err := c.Send(in); err != nil {
			t.Fatalf("send %q: %v", in, err)
		}
		rec.waitIdle(t)
	}

	if c.Phase() != dialogue.OpenChat {
		t.Fatalf("expected open_chat, got %s", c.Phase())
	}
	p := c.Profile()
	if p.DisplayName != "Rudolph" || p.Age == nil || *p.Age != 9 {
		t.Fatalf("unexpected profile %+v", p)
	}

	msgs := c.Messages()
	if len(msgs) != 7 {
		t.Fatalf("expected 7 messages, got %d", len(msgs))
	}
	for i, m := range msgs {
		if m.Seq != i+1 {
			t.Fatalf("message %d has seq %d", i, m.Seq)
		}
	}

	card, err := c.WishCard()
	if err != nil {
		t.Fatalf("wish card: %v", err)
	}
	if card.Salutation != "Dear Rudolph," {
		t.Fatalf("unexpected salutation %q", card.Salutation)
	}
}

func TestConversationEventOrder(t *testing.T) {
	rec := newRecorder()
	c := newConversation(rec)
	defer c.Close()

	if err := c.Send("bob"); err != nil {
		t.Fatalf("send: %v", err)
	}
	rec.waitIdle(t)

	want := []string{"msg:user", "typing:on", "msg:bot", "typing:off"}
	got := rec.snapshot()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestConversationOneTurnInFlight(t *testing.T) {
	engine := dialogue.NewEngine()
	c := chat.New(engine, chat.WithTypingDelay(time.Hour))
	defer c.Close()

	if err := c.Send("bob"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !c.Typing() {
		t.Fatal("expected typing indicator")
	}
	if err := c.Send("again"); !errors.Is(err, chat.ErrReplyPending) {
		t.Fatalf("expected ErrReplyPending, got %v", err)
	}
	if got := len(c.Messages()); got != 1 {
		t.Fatalf("expected only the first user message, got %d", got)
	}
}

func TestConversationRejectsBlankInput(t *testing.T) {
	c := chat.New(dialogue.NewEngine())
	defer c.Close()

	if err := c.Send("   "); !errors.Is(err, chat.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if len(c.Messages()) != 0 {
		t.Fatal("blank input must not be appended")
	}
}

func TestConversationCloseDiscardsPendingReply(t *testing.T) {
	rec := newRecorder()
	engine := dialogue.NewEngine()
	c := chat.New(engine, chat.WithTypingDelay(20*time.Millisecond), chat.WithListener(rec))

	if err := c.Send("bob"); err != nil {
		t.Fatalf("send: %v", err)
	}
	c.Close()
	time.Sleep(60 * time.Millisecond)

	if got := len(c.Messages()); got != 1 {
		t.Fatalf("expected pending reply to be discarded, got %d messages", got)
	}
	if c.Phase() != dialogue.AwaitingName {
		t.Fatalf("state must not advance after close, got %s", c.Phase())
	}
	if err := c.Send("hello"); !errors.Is(err, chat.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestConversationWishCardBeforeOnboarding(t *testing.T) {
	c := chat.New(dialogue.NewEngine())
	defer c.Close()

	if _, err := c.WishCard(); !errors.Is(err, dialogue.ErrProfileIncomplete) {
		t.Fatalf("expected ErrProfileIncomplete, got %v", err)
	}
}
