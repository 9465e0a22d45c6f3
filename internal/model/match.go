package model

// Sentinel category and subcategory for descriptions no rule matched.
const (
	UncategorizedCategory    = "Uncategorized"
	UncategorizedSubcategory = "Other"
)

// Match is the (category, subcategory) pair assigned to a description.
type Match struct {
	Category    string
	Subcategory string
}

// Uncategorized returns the sentinel Match.
func Uncategorized() Match {
	return Match{Category: UncategorizedCategory, Subcategory: UncategorizedSubcategory}
}

// IsUncategorized reports whether m is the sentinel Match.
func (m Match) IsUncategorized() bool {
	return m == Uncategorized()
}

// String returns "Category/Subcategory".
func (m Match) String() string {
	return m.Category + "/" + m.Subcategory
}
