// Package query applies dashboard search, sort and bucket filters to lists of
// users, stores and ratings.
//
// Filters compose in a fixed order: bucket filter, then search, then sort.
// Sorting is stable, and descending order is the exact reverse of ascending
// order. Unknown sort fields fall back to "name" and unknown orders to
// ascending; the dashboards only ever send values from a fixed set, so the
// fallback is not reported as an error.
package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Clark-Hu/store-ratings/internal/domain"
)

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// DefaultField is the sort field used when none or an unknown one is given.
const DefaultField = "name"

// ParseOrder maps a UI value to an Order, defaulting to Asc.
func ParseOrder(raw string) Order {
	if Order(strings.ToLower(strings.TrimSpace(raw))) == Desc {
		return Desc
	}
	return Asc
}

// Params are the caller-selected view options.
type Params struct {
	Search    string
	SortField string
	Order     Order
	Bucket    domain.Bucket
}

// Spec describes how one item type is searched, sorted and bucketed.
type Spec[T any] struct {
	// Fields maps sort field names to ascending comparators. It must contain DefaultField.
	Fields map[string]func(a, b T) int
	// Text returns the fields matched by search.
	Text func(T) []string
	// Stars returns the rating value used for bucket filtering; nil disables buckets.
	Stars func(T) int
}

// Normalize resolves fallbacks so callers can show the effective options.
// Search text is kept verbatim, surrounding spaces included.
func (s Spec[T]) Normalize(p Params) Params {
	if _, ok := s.Fields[p.SortField]; !ok {
		p.SortField = DefaultField
	}
	if p.Order != Desc {
		p.Order = Asc
	}
	if s.Stars == nil {
		p.Bucket = domain.BucketAll
	} else {
		p.Bucket = domain.ParseBucket(string(p.Bucket))
	}
	return p
}

// Apply returns a new slice holding the filtered, searched and sorted items.
// The input slice is never modified. Ties keep their input order, so callers
// must sort from one fixed base order for desc to mirror asc.
func Apply[T any](items []T, spec Spec[T], p Params) []T {
	p = spec.Normalize(p)
	out := Filter(items, spec, p)
	slices.SortStableFunc(out, spec.Fields[p.SortField])
	if p.Order == Desc {
		slices.Reverse(out)
	}
	return out
}

// Filter returns the items passing the bucket filter and search of p, in
// input order.
func Filter[T any](items []T, spec Spec[T], p Params) []T {
	p = spec.Normalize(p)

	out := make([]T, 0, len(items))
	needle := strings.ToLower(p.Search)
	for _, item := range items {
		if spec.Stars != nil && !p.Bucket.Contains(spec.Stars(item)) {
			continue
		}
		if needle != "" && !matches(spec.Text(item), needle) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matches(fields []string, needle string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// CompareText orders strings case-insensitively.
func CompareText(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// CompareNumber orders numbers numerically.
func CompareNumber[N cmp.Ordered](a, b N) int {
	return cmp.Compare(a, b)
}
