package rules

import (
	"strings"
	"unicode"
)

// Span is a half-open [Start, End) range of rune offsets into a description.
type Span struct {
	Start int
	End   int
}

// Len returns the number of runes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Matcher is the compiled form of a single rule term.
//
// A token matcher matches its tokens in order, case-insensitively, with any
// run of non-alphanumeric runes (possibly empty) between consecutive tokens,
// and only where the match is not glued to a neighbouring alphanumeric rune.
// A literal matcher (term with no alphanumerics, e.g. "&") is a plain
// case-insensitive substring search.
type Matcher struct {
	term    string
	tokens  [][]rune
	literal []rune
}

// NewMatcher compiles a rule term.
func NewMatcher(term string) *Matcher {
	term = strings.TrimSpace(term)
	m := &Matcher{term: term}

	for _, tok := range strings.FieldsFunc(term, func(r rune) bool { return !isAlnum(r) }) {
		m.tokens = append(m.tokens, lowerRunes(tok))
	}
	if len(m.tokens) == 0 {
		m.literal = lowerRunes(term)
	}
	return m
}

// Term returns the trimmed source term.
func (m *Matcher) Term() string { return m.term }

// Tokens returns the normalized tokens. Literal matchers have none.
func (m *Matcher) Tokens() []string {
	out := make([]string, len(m.tokens))
	for i, tok := range m.tokens {
		out[i] = string(tok)
	}
	return out
}

// IsLiteral reports whether the term had no alphanumeric characters.
func (m *Matcher) IsLiteral() bool { return len(m.tokens) == 0 }

// IsEmpty reports whether the matcher can never match (blank term).
func (m *Matcher) IsEmpty() bool { return len(m.tokens) == 0 && len(m.literal) == 0 }

// Find returns the leftmost span of description matched by m.
func (m *Matcher) Find(description string) (Span, bool) {
	return m.FindRunes([]rune(description))
}

// FindRunes is Find over a description already split into runes.
func (m *Matcher) FindRunes(text []rune) (Span, bool) {
	if m.IsEmpty() {
		return Span{}, false
	}
	if m.IsLiteral() {
		return findFold(text, m.literal)
	}

	for i := range text {
		if i > 0 && isAlnum(text[i-1]) {
			continue
		}
		if end, ok := m.matchAt(text, i); ok {
			return Span{Start: i, End: end}, true
		}
	}
	return Span{}, false
}

// matchAt tries to match all tokens starting exactly at pos and returns the
// end offset. Tokens are alphanumeric, so the separator run before each token
// can be consumed greedily without backtracking.
func (m *Matcher) matchAt(text []rune, pos int) (int, bool) {
	for k, tok := range m.tokens {
		if k > 0 {
			for pos < len(text) && !isAlnum(text[pos]) {
				pos++
			}
		}
		if !hasPrefixFold(text[pos:], tok) {
			return 0, false
		}
		pos += len(tok)
	}
	if pos < len(text) && isAlnum(text[pos]) {
		return 0, false
	}
	return pos, true
}

func findFold(text, needle []rune) (Span, bool) {
	for i := 0; i+len(needle) <= len(text); i++ {
		if hasPrefixFold(text[i:], needle) {
			return Span{Start: i, End: i + len(needle)}, true
		}
	}
	return Span{}, false
}

func hasPrefixFold(text, prefix []rune) bool {
	if len(text) < len(prefix) {
		return false
	}
	for i, r := range prefix {
		if !equalFold(text[i], r) {
			return false
		}
	}
	return true
}

// equalFold compares two runes under Unicode simple case folding.
func equalFold(a, b rune) bool {
	if a == b {
		return true
	}
	for f := unicode.SimpleFold(a); f != a; f = unicode.SimpleFold(f) {
		if f == b {
			return true
		}
	}
	return false
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// lowerRunes lowercases rune by rune so the token length stays the same as
// the text it was cut from.
func lowerRunes(s string) []rune {
	rs := []rune(s)
	for i, r := range rs {
		rs[i] = unicode.ToLower(r)
	}
	return rs
}
