package dialogue

import (
	"fmt"
	"strings"

	"santaverse/internal/models"
)

// ReplyFunc builds a reply from what is known about the user.
type ReplyFunc func(models.UserProfile) string

// Rule maps a keyword category to a reply. A rule matches when any of its
// keywords is a case-insensitive substring of the input.
type Rule struct {
	Name     string
	Keywords []string
	Reply    ReplyFunc
}

// Matches reports whether lowered input contains one of the rule keywords.
func (r Rule) Matches(lowered string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Rule names, in evaluation order.
const (
	RuleGift     = "gift"
	RuleGood     = "good"
	RuleNaughty  = "naughty"
	RuleJoke     = "joke"
	RuleFallback = "fallback"
)

// DefaultRules returns the open-chat rule table. Order is priority: the
// first matching rule wins.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     RuleGift,
			Keywords: []string{"gift", "present", "want"},
			Reply:    byAge(childGiftReply, adultGiftReply),
		},
		{
			Name:     RuleGood,
			Keywords: []string{"good", "nice"},
			Reply:    fixedReply(goodReply),
		},
		{
			Name:     RuleNaughty,
			Keywords: []string{"naughty", "bad"},
			Reply:    fixedReply(naughtyReply),
		},
		{
			Name:     RuleJoke,
			Keywords: []string{"joke"},
			Reply:    fixedReply(jokeReply),
		},
	}
}

// DefaultFallbacks returns the replies used when no rule matches.
func DefaultFallbacks() []ReplyFunc {
	return []ReplyFunc{
		func(p models.UserProfile) string {
			return fmt.Sprintf("Ho ho ho! Tell me more, %s!", p.DisplayName)
		},
		fixedReply("The North Pole is very busy today! ❄️"),
		fixedReply("Have you left out any cookies for me yet? 🍪"),
		fixedReply("Christmas magic is everywhere! ✨"),
	}
}

func fixedReply(text string) ReplyFunc {
	return func(models.UserProfile) string { return text }
}

func byAge(child, general string) ReplyFunc {
	return func(p models.UserProfile) string {
		if IsChild(p) {
			return child
		}
		return general
	}
}

// IsChild reports whether the profile falls under the child branch.
func IsChild(p models.UserProfile) bool {
	return p.Age != nil && *p.Age < ChildAgeThreshold
}
