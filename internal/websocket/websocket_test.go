package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"santaverse/internal/dialogue"
	"santaverse/internal/models"
	"santaverse/internal/storage"
)

type wsReader struct {
	t       *testing.T
	conn    *websocket.Conn
	pending []Message
}

func (r *wsReader) next() Message {
	r.t.Helper()
	for len(r.pending) == 0 {
		r.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		_, frame, err := r.conn.ReadMessage()
		if err != nil {
			r.t.Fatalf("read: %v", err)
		}
		for _, line := range bytes.Split(frame, []byte{'\n'}) {
			var msg Message
			if err := json.Unmarshal(line, &msg); err != nil {
				r.t.Fatalf("decode %q: %v", line, err)
			}
			r.pending = append(r.pending, msg)
		}
	}
	msg := r.pending[0]
	r.pending = r.pending[1:]
	return msg
}

func (r *wsReader) until(typ string) Message {
	r.t.Helper()
	for {
		if msg := r.next(); msg.Type == typ {
			return msg
		}
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func newChatServer(t *testing.T, delay time.Duration) (*httptest.Server, *storage.MemoryStore) {
	t.Helper()
	hub := startHub(t)
	store := storage.NewMemoryStore(storage.Options{})
	opts := ChatOptions{
		Engine:      dialogue.NewEngine(dialogue.WithPicker(func(int) int { return 0 })),
		TypingDelay: delay,
		Transcripts: store,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := NewUpgrader(nil).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewChatSession(hub, conn, "conv-1", opts).Serve()
	}))
	t.Cleanup(srv.Close)
	return srv, store
}

func send(t *testing.T, conn *websocket.Conn, typ string, data any) {
	t.Helper()
	if err := conn.WriteJSON(NewMessage(typ, "", "", data)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func chatMessage(t *testing.T, msg Message) models.ChatMessage {
	t.Helper()
	var cm models.ChatMessage
	if err := json.Unmarshal(msg.Data, &cm); err != nil {
		t.Fatalf("decode chat message: %v", err)
	}
	return cm
}

func TestChatSessionConversation(t *testing.T) {
	srv, store := newChatServer(t, time.Millisecond)
	conn := dial(t, srv)
	r := &wsReader{t: t, conn: conn}

	opening := r.next()
	if opening.Type != MSG_CHAT_MESSAGE || opening.User != SantaUser || opening.Room != ChatRoom("conv-1") {
		t.Fatalf("unexpected opening %+v", opening)
	}
	if cm := chatMessage(t, opening); !strings.Contains(cm.Text, "What is your name?") {
		t.Fatalf("unexpected opening text %q", cm.Text)
	}

	send(t, conn, MSG_CHAT_MESSAGE, ChatText{Text: "I'm ada"})

	want := []string{MSG_CHAT_MESSAGE, MSG_TYPING_START, MSG_CHAT_MESSAGE, MSG_TYPING_STOP}
	var got []Message
	for range want {
		got = append(got, r.next())
	}
	for i, typ := range want {
		if got[i].Type != typ {
			t.Fatalf("event %d: expected %s, got %s", i, typ, got[i].Type)
		}
	}
	if cm := chatMessage(t, got[0]); cm.Sender != models.SenderUser || cm.Text != "I'm ada" {
		t.Fatalf("unexpected echo %+v", cm)
	}
	if cm := chatMessage(t, got[2]); !strings.Contains(cm.Text, "Ada") {
		t.Fatalf("expected greeting to use the name, got %q", cm.Text)
	}

	saved, err := store.GetChatMessages(context.Background(), "conv-1")
	if err != nil {
		t.Fatalf("transcript: %v", err)
	}
	if len(saved) != 3 {
		t.Fatalf("expected 3 saved messages, got %d", len(saved))
	}
}

func TestChatSessionRejectsSecondMessageWhileTyping(t *testing.T) {
	srv, _ := newChatServer(t, 300*time.Millisecond)
	conn := dial(t, srv)
	r := &wsReader{t: t, conn: conn}
	r.next()

	send(t, conn, MSG_CHAT_MESSAGE, ChatText{Text: "Ada"})
	send(t, conn, MSG_CHAT_MESSAGE, ChatText{Text: "Grace"})

	var body ChatError
	if err := json.Unmarshal(r.until(MSG_CHAT_ERROR).Data, &body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body.Error != "reply_pending" {
		t.Fatalf("expected reply_pending, got %q", body.Error)
	}
}

func TestChatSessionWishCard(t *testing.T) {
	srv, _ := newChatServer(t, time.Millisecond)
	conn := dial(t, srv)
	r := &wsReader{t: t, conn: conn}
	r.next()

	send(t, conn, MSG_WISH_CARD, nil)
	var failure ChatError
	json.Unmarshal(r.until(MSG_CHAT_ERROR).Data, &failure)
	if failure.Error != "profile_incomplete" {
		t.Fatalf("expected profile_incomplete, got %q", failure.Error)
	}

	for _, text := range []string{"Ada", "7"} {
		send(t, conn, MSG_CHAT_MESSAGE, ChatText{Text: text})
		r.until(MSG_TYPING_STOP)
	}

	send(t, conn, MSG_WISH_CARD, nil)
	var card WishCardPayload
	if err := json.Unmarshal(r.until(MSG_WISH_CARD).Data, &card); err != nil {
		t.Fatalf("decode card: %v", err)
	}
	if card.Filename != "Wish_from_Santa_Ada.png" || !strings.HasPrefix(card.DataURL, "data:image/png;base64,") {
		t.Fatalf("unexpected card %+v", card)
	}
}

func TestGalleryRoomReceivesItemEvents(t *testing.T) {
	hub := startHub(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := NewUpgrader(nil).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ServeGallery(hub, conn)
	}))
	t.Cleanup(srv.Close)

	conn := dial(t, srv)
	deadline := time.Now().Add(3 * time.Second)
	for hub.RoomSize(RoomGallery) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("gallery client never joined")
		}
		time.Sleep(5 * time.Millisecond)
	}

	item := models.GalleryItem{ID: "item-1", Username: "Ada", Likes: 2}
	hub.ItemLiked(item)

	r := &wsReader{t: t, conn: conn}
	msg := r.next()
	if msg.Type != MSG_GALLERY_LIKED || msg.Room != RoomGallery {
		t.Fatalf("unexpected event %+v", msg)
	}
	var got models.GalleryItem
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("decode item: %v", err)
	}
	if got.ID != "item-1" || got.Likes != 2 {
		t.Fatalf("unexpected item %+v", got)
	}
}

func TestHubStopClosesClients(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	c := &Client{Hub: hub, Send: make(chan []byte, 1), Room: "r"}
	if !hub.Join(c) {
		t.Fatal("join failed")
	}
	cancel()
	<-done

	if _, ok := <-c.Send; ok {
		t.Fatal("expected send channel to be closed")
	}
	if hub.Join(&Client{Hub: hub, Send: make(chan []byte), Room: "r"}) {
		t.Fatal("join after stop should fail")
	}
	hub.Publish(NewMessage(MSG_CHAT_MESSAGE, "r", "", nil))
}

func TestUpgraderChecksOrigin(t *testing.T) {
	up := NewUpgrader([]string{"http://santa.test/", "https://elves.test"})

	cases := map[string]bool{
		"":                   true,
		"http://santa.test":  true,
		"HTTPS://ELVES.TEST": true,
		"http://grinch.test": false,
	}
	for origin, want := range cases {
		r := httptest.NewRequest(http.MethodGet, "/ws/chat", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		if got := up.CheckOrigin(r); got != want {
			t.Errorf("origin %q: got %v, want %v", origin, got, want)
		}
	}

	r := httptest.NewRequest(http.MethodGet, "/ws/chat", nil)
	r.Header.Set("Origin", "http://anywhere.test")
	if !NewUpgrader([]string{"*"}).CheckOrigin(r) {
		t.Error("wildcard should allow any origin")
	}
}
