package importer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// errNoAmount marks a cell that holds no amount at all (blank, "nan").
var errNoAmount = errors.New("no amount")

// repeatedSpace matches what unicode.IsSpace accepts; \s alone is ASCII only
// and misses the NBSP runs some banks pad descriptions with.
var repeatedSpace = regexp.MustCompile(`[\s\v\p{Zs}\x{85}\x{2028}\x{2029}]{2,}`)

// NormalizeDescription collapses runs of whitespace (including Unicode
// spaces) into one ASCII space and trims the result.
func NormalizeDescription(s string) string {
	return strings.TrimSpace(repeatedSpace.ReplaceAllString(s, " "))
}

// ParseAmount parses an exported amount such as "-1,234.56" or "$12.00".
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "none":
		return decimal.Decimal{}, errNoAmount
	}

	cleaned := strings.NewReplacer(",", "", "$", "").Replace(s)
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}

// MerchantHint returns the first n whitespace-separated words of desc.
func MerchantHint(desc string, n int) string {
	words := strings.Fields(desc)
	if n >= 0 && len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
