package dialogue

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"santaverse/internal/models"
)

// Phase is the position of a conversation in the onboarding flow.
type Phase int

const (
	AwaitingName Phase = iota
	AwaitingAge
	OpenChat
)

func (p Phase) String() string {
	switch p {
	case AwaitingName:
		return "awaiting_name"
	case AwaitingAge:
		return "awaiting_age"
	case OpenChat:
		return "open_chat"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is everything the engine needs to answer the next turn.
type State struct {
	Phase   Phase
	Profile models.UserProfile
}

// Reply is a single engine answer. Rule names the branch that produced it.
type Reply struct {
	Text string
	Rule string
}

// Reply rule names for the onboarding phases.
const (
	RuleAskName  = "ask_name"
	RuleGreeting = "greeting"
	RuleAskAge   = "ask_age"
	RuleAgeChild = "age_child"
	RuleAgeAdult = "age_general"
)

// Engine answers turns. It holds no per-conversation state and is safe
// for concurrent use as long as the picker is.
type Engine struct {
	rules     []Rule
	fallbacks []ReplyFunc
	pick      func(n int) int
}

// Option configures an Engine.
type Option func(*Engine)

// WithPicker replaces the uniform random fallback picker. pick(n) must
// return a value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(e *Engine) { e.pick = pick }
}

// WithRules replaces the open-chat rule table.
func WithRules(rules []Rule) Option {
	return func(e *Engine) { e.rules = rules }
}

// WithFallbacks replaces the fallback replies. At least one is required.
func WithFallbacks(fallbacks []ReplyFunc) Option {
	return func(e *Engine) {
		if len(fallbacks) > 0 {
			e.fallbacks = fallbacks
		}
	}
}

// NewEngine builds an engine with the default rule table.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rules:     DefaultRules(),
		fallbacks: DefaultFallbacks(),
		pick:      rand.Intn,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Opening is the line Santa starts every conversation with.
func (e *Engine) Opening() string {
	return openingLine
}

// Step answers input for the given state and returns the next state plus
// zero or one reply. Blank input after onboarding produces no reply.
func (e *Engine) Step(st State, input string) (State, *Reply) {
	switch st.Phase {
	case AwaitingName:
		return e.captureName(st, input)
	case AwaitingAge:
		if strings.TrimSpace(input) == "" {
			return st, nil
		}
		return e.captureAge(st, input)
	default:
		if strings.TrimSpace(input) == "" {
			return st, nil
		}
		r := e.respond(st.Profile, input)
		return st, &r
	}
}

func (e *Engine) captureName(st State, input string) (State, *Reply) {
	name := ExtractName(input)
	if name == "" {
		return st, &Reply{Text: askNameAgain, Rule: RuleAskName}
	}
	st.Profile.DisplayName = name
	st.Phase = AwaitingAge
	return st, &Reply{Text: fmt.Sprintf(greetingFmt, name), Rule: RuleGreeting}
}

func (e *Engine) captureAge(st State, input string) (State, *Reply) {
	age, err := ParseAge(input)
	if errors.Is(err, ErrInvalidAge) {
		return st, &Reply{Text: askAgeAgain, Rule: RuleAskAge}
	}
	st.Profile.Age = &age
	st.Phase = OpenChat
	if IsChild(st.Profile) {
		return st, &Reply{Text: childAgeReply, Rule: RuleAgeChild}
	}
	return st, &Reply{Text: adultAgeReply, Rule: RuleAgeAdult}
}

// respond is the single dispatch over the rule table.
func (e *Engine) respond(p models.UserProfile, input string) Reply {
	lowered := strings.ToLower(input)
	for _, r := range e.rules {
		if r.Matches(lowered) {
			return Reply{Text: r.Reply(p), Rule: r.Name}
		}
	}
	fb := e.fallbacks[e.pick(len(e.fallbacks))]
	return Reply{Text: fb(p), Rule: RuleFallback}
}
