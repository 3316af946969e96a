package dialogue

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidAge is returned by ParseAge when the input carries no usable age.
var ErrInvalidAge = errors.New("invalid age input")

var introPrefixes = []string{"i am ", "i'm ", "my name is ", "it is ", "it's "}

// ExtractName strips a leading self-introduction and capitalises the first
// letter of what remains.
func ExtractName(input string) string {
	name := strings.TrimSpace(input)
	for _, p := range introPrefixes {
		if len(name) >= len(p) && strings.EqualFold(name[:len(p)], p) {
			name = strings.TrimSpace(name[len(p):])
			break
		}
	}
	return capitalize(name)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return s
	}
	return cases.Upper(language.Und).String(string(r)) + s[size:]
}

// ParseAge reads a leading integer from input. Trailing text is ignored, so
// "7 years" is 7. Negative values and overflow are rejected.
func ParseAge(input string) (int, error) {
	s := strings.TrimSpace(input)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, ErrInvalidAge
	}
	age, err := strconv.Atoi(s[:end])
	if err != nil || age < 0 {
		return 0, ErrInvalidAge
	}
	return age, nil
}
