package rules

import (
	"log/slog"
	"sort"
)

// Raw is an uncompiled rules document: categories holding subcategories
// holding plain terms, in declaration order.
type Raw []RawCategory

// RawCategory is one top-level category of a rules document.
type RawCategory struct {
	Name          string
	Subcategories []RawSubcategory
}

// RawSubcategory is a named list of terms.
type RawSubcategory struct {
	Name  string
	Terms []string
}

// FromMap builds a Raw from an unordered map. Go maps carry no declaration
// order, so categories and subcategories are ordered by name.
func FromMap(m map[string]map[string][]string) Raw {
	raw := make(Raw, 0, len(m))
	for _, cat := range sortedKeys(m) {
		subs := m[cat]
		rc := RawCategory{Name: cat}
		for _, sub := range sortedKeys(subs) {
			rc.Subcategories = append(rc.Subcategories, RawSubcategory{Name: sub, Terms: subs[sub]})
		}
		raw = append(raw, rc)
	}
	return raw
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RuleSet is the compiled, read-only form of a rules document. It is safe
// for concurrent use.
type RuleSet struct {
	categories []Category
}

// Category is a compiled category.
type Category struct {
	Name          string
	Subcategories []Subcategory
}

// Subcategory owns the matchers compiled from its terms.
type Subcategory struct {
	Name     string
	Matchers []*Matcher
}

// Compile turns a Raw document into a RuleSet. Repeated category or
// subcategory names keep the position of their first occurrence and the
// value of their last.
func Compile(raw Raw) *RuleSet {
	rs := &RuleSet{}
	catIndex := make(map[string]int)

	for _, rc := range raw {
		ci, ok := catIndex[rc.Name]
		if ok {
			slog.Debug("duplicate category, keeping last definition", "category", rc.Name)
			rs.categories[ci] = Category{Name: rc.Name}
		} else {
			ci = len(rs.categories)
			catIndex[rc.Name] = ci
			rs.categories = append(rs.categories, Category{Name: rc.Name})
		}
		rs.categories[ci].Subcategories = compileSubcategories(rc)
	}
	return rs
}

func compileSubcategories(rc RawCategory) []Subcategory {
	var subs []Subcategory
	subIndex := make(map[string]int)

	for _, rsub := range rc.Subcategories {
		matchers := make([]*Matcher, 0, len(rsub.Terms))
		for _, term := range rsub.Terms {
			m := NewMatcher(term)
			if m.IsEmpty() {
				slog.Warn("blank rule term never matches", "category", rc.Name, "subcategory", rsub.Name)
			}
			matchers = append(matchers, m)
		}

		if si, ok := subIndex[rsub.Name]; ok {
			slog.Debug("duplicate subcategory, keeping last definition", "category", rc.Name, "subcategory", rsub.Name)
			subs[si].Matchers = matchers
			continue
		}
		subIndex[rsub.Name] = len(subs)
		subs = append(subs, Subcategory{Name: rsub.Name, Matchers: matchers})
	}
	return subs
}

// Categories returns the compiled categories in declaration order. Callers
// must not modify the returned slice.
func (rs *RuleSet) Categories() []Category {
	if rs == nil {
		return nil
	}
	return rs.categories
}

// Stats summarizes a RuleSet.
type Stats struct {
	Categories    int
	Subcategories int
	Terms         int
}

// Stats counts categories, subcategories and terms.
func (rs *RuleSet) Stats() Stats {
	var st Stats
	for _, c := range rs.Categories() {
		st.Categories++
		for _, s := range c.Subcategories {
			st.Subcategories++
			st.Terms += len(s.Matchers)
		}
	}
	return st
}
