package dialogue

import (
	"errors"
	"fmt"
	"strings"

	"santaverse/internal/models"
)

// ErrProfileIncomplete is returned when a wish card is requested before
// onboarding has captured both name and age.
var ErrProfileIncomplete = errors.New("profile incomplete")

const (
	wishOpening   = "Ho ho ho! Santa is proud of you."
	wishChild     = "May your Christmas be filled with magic, toys, and lots of cookies!"
	wishGeneral   = "May your Christmas be filled with joy, peace, and new beginnings!"
	wishClosing   = "Keep shining bright!"
	wishSignature = "- Santa Claus"
)

// WishCard is the textual greeting Santa signs for the user.
type WishCard struct {
	Salutation string
	Body       []string
	Signature  string
	Name       string
}

// NewWishCard writes the card for a fully onboarded profile.
func NewWishCard(p models.UserProfile) (WishCard, error) {
	if p.DisplayName == "" || !p.HasAge() {
		return WishCard{}, ErrProfileIncomplete
	}
	wish := wishGeneral
	if IsChild(p) {
		wish = wishChild
	}
	return WishCard{
		Salutation: fmt.Sprintf("Dear %s,", p.DisplayName),
		Body:       []string{wishOpening, wish, wishClosing},
		Signature:  wishSignature,
		Name:       p.DisplayName,
	}, nil
}

// Text renders the card as plain text.
func (c WishCard) Text() string {
	var b strings.Builder
	b.WriteString(c.Salutation)
	b.WriteString("\n\n\"")
	b.WriteString(strings.Join(c.Body, " "))
	b.WriteString("\"\n\n")
	b.WriteString(c.Signature)
	return b.String()
}

// Filename is the download name for the rendered card.
func (c WishCard) Filename() string {
	return fmt.Sprintf("Wish_from_Santa_%s.png", c.Name)
}
