// Package categorize assigns (category, subcategory) pairs to transaction
// descriptions using a compiled rules.RuleSet.
package categorize

import (
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/rules"
)

// Candidate is one matcher that matched a description.
type Candidate struct {
	model.Match
	Term string
	Span rules.Span
}

// Resolve returns the category of the matcher with the longest span in
// description. On equal spans the matcher declared first wins. With no match
// the result is model.Uncategorized().
func Resolve(description string, rs *rules.RuleSet) model.Match {
	best := model.Uncategorized()
	bestLen := -1

	each(description, rs, func(c Candidate) {
		if c.Span.Len() > bestLen {
			bestLen = c.Span.Len()
			best = c.Match
		}
	})
	return best
}

// Explain lists every matcher that matched description, in rule order.
func Explain(description string, rs *rules.RuleSet) []Candidate {
	var out []Candidate
	each(description, rs, func(c Candidate) {
		out = append(out, c)
	})
	return out
}

// Best picks the winning candidate using the same policy as Resolve.
func Best(candidates []Candidate) (Candidate, bool) {
	var best Candidate
	found := false
	for _, c := range candidates {
		if !found || c.Span.Len() > best.Span.Len() {
			best = c
			found = true
		}
	}
	return best, found
}

func each(description string, rs *rules.RuleSet, fn func(Candidate)) {
	text := []rune(description)
	for _, cat := range rs.Categories() {
		for _, sub := range cat.Subcategories {
			for _, m := range sub.Matchers {
				span, ok := m.FindRunes(text)
				if !ok {
					continue
				}
				fn(Candidate{
					Match: model.Match{Category: cat.Name, Subcategory: sub.Name},
					Term:  m.Term(),
					Span:  span,
				})
			}
		}
	}
}
