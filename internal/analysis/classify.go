// Package analysis derives summaries and keywords from extracted text.
package analysis

// Category buckets documents by length.
type Category string

const (
	CategoryShort  Category = "short"
	CategoryMedium Category = "medium"
	CategoryLong   Category = "long"
)

// Classify maps a unit count to its length category: up to 10 units is
// short, up to 30 is medium, anything larger is long.
func Classify(units int) Category {
	switch {
	case units <= 10:
		return CategoryShort
	case units <= 30:
		return CategoryMedium
	default:
		return CategoryLong
	}
}

// SummarySentences is the number of leading sentences kept for the category.
func (c Category) SummarySentences() int {
	switch c {
	case CategoryMedium:
		return 15
	case CategoryLong:
		return 25
	default:
		return 10
	}
}
