package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"santaverse/internal/chat"
	"santaverse/internal/dialogue"
	"santaverse/internal/models"
)

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to Santa in the terminal",
		Long:  "Talk to Santa in the terminal. Type /wish <file> to save Santa's wish card as a PNG and /quit to leave.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.InOrStdin(), cmd.OutOrStdout(), cfg.TypingDelay)
		},
	}
	return cmd
}

// terminal prints the conversation and signals when Santa stops typing.
type terminal struct {
	mu   sync.Mutex
	out  io.Writer
	idle chan struct{}
}

func (t *terminal) MessageAppended(msg models.ChatMessage) {
	if msg.Sender != models.SenderBot {
		return
	}
	t.mu.Lock()
	fmt.Fprintf(t.out, "Santa: %s\n", msg.Text)
	t.mu.Unlock()
}

func (t *terminal) TypingChanged(typing bool) {
	if typing {
		t.mu.Lock()
		fmt.Fprintln(t.out, "Santa is typing...")
		t.mu.Unlock()
		return
	}
	select {
	case t.idle <- struct{}{}:
	default:
	}
}

func runChat(in io.Reader, out io.Writer, delay time.Duration) error {
	term := &terminal{out: out, idle: make(chan struct{}, 1)}
	conv := chat.New(dialogue.NewEngine(), chat.WithTypingDelay(delay), chat.WithListener(term))
	defer conv.Close()
	conv.Start()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return nil
		case strings.HasPrefix(line, "/wish"):
			if err := saveWishCard(conv, strings.TrimSpace(strings.TrimPrefix(line, "/wish")), out); err != nil {
				fmt.Fprintf(out, "Could not write the wish card: %v\n", err)
			}
			continue
		}

		if err := conv.Send(line); err != nil {
			if errors.Is(err, chat.ErrReplyPending) {
				fmt.Fprintln(out, "Santa is still typing, one moment!")
				continue
			}
			return err
		}
		<-term.idle
	}
	return scanner.Err()
}

func saveWishCard(conv *chat.Conversation, path string, out io.Writer) error {
	card, err := conv.WishCard()
	if errors.Is(err, dialogue.ErrProfileIncomplete) {
		return errors.New("tell Santa your name and age first")
	}
	if err != nil {
		return err
	}
	if path == "" {
		path = card.Filename()
	}
	png, err := dialogue.EncodeWishCard(card)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wish card saved to %s\n", path)
	return nil
}
