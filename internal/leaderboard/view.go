package leaderboard

import (
	"cmp"
	"slices"
	"strings"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Query is everything the table projection depends on besides the entries.
type Query struct {
	Search string
	Sort   Sort
}

// Ranked is an entry with its 1-based position in a projection.
type Ranked struct {
	Rank int `json:"rank"`
	*domain.Entry
}

// Project filters and sorts entries for display and numbers the result.
// The input slice and its entries are never modified.
func Project(entries []*domain.Entry, q Query) []Ranked {
	if q.Sort.Field == "" {
		q.Sort = DefaultSort
	}
	if q.Sort.Direction == "" {
		q.Sort.Direction = Descending
	}

	filtered := Filter(entries, q.Search)
	sortEntries(filtered, q.Sort)

	ranked := make([]Ranked, len(filtered))
	for i, e := range filtered {
		ranked[i] = Ranked{Rank: i + 1, Entry: e}
	}
	return ranked
}

// Filter returns the entries whose ai_system or organization contains term,
// ignoring case, in their original order. The returned slice is always new.
func Filter(entries []*domain.Entry, term string) []*domain.Entry {
	needle := strings.ToLower(term)
	out := make([]*domain.Entry, 0, len(entries))
	for _, e := range entries {
		if e == nil {
			continue
		}
		if needle == "" ||
			strings.Contains(strings.ToLower(e.AISystem), needle) ||
			strings.Contains(strings.ToLower(e.Organization), needle) {
			out = append(out, e)
		}
	}
	return out
}

func sortEntries(entries []*domain.Entry, s Sort) {
	compare := comparator(s.Field)
	if s.Direction == Descending {
		slices.SortStableFunc(entries, func(a, b *domain.Entry) int { return compare(b, a) })
		return
	}
	slices.SortStableFunc(entries, compare)
}

func comparator(field Field) func(a, b *domain.Entry) int {
	if field.Numeric() {
		value := numericValue(field)
		return func(a, b *domain.Entry) int {
			return compareNullable(value(a), value(b))
		}
	}

	// collators keep internal buffers and are not safe to share
	collator := collate.New(language.English, collate.IgnoreCase)
	value := stringValue(field)
	return func(a, b *domain.Entry) int {
		return collator.CompareString(value(a), value(b))
	}
}

// compareNullable orders nil below every number.
func compareNullable(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return cmp.Compare(*a, *b)
}

func numericValue(field Field) func(*domain.Entry) *float64 {
	switch field {
	case FieldARCAGI2:
		return func(e *domain.Entry) *float64 { return e.ARCAGI2 }
	case FieldCostPerTask:
		return func(e *domain.Entry) *float64 { return e.CostPerTask }
	default:
		return func(e *domain.Entry) *float64 { return e.ARCAGI1 }
	}
}

func stringValue(field Field) func(*domain.Entry) string {
	switch field {
	case FieldOrganization:
		return func(e *domain.Entry) string { return e.Organization }
	case FieldSystemType:
		return func(e *domain.Entry) string { return e.SystemType }
	default:
		return func(e *domain.Entry) string { return e.AISystem }
	}
}
