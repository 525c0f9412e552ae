// Package aggregate derives per-store rating numbers from the underlying rating
// values. Averages are always computed from an exact integer sum and count, so
// folding values in one at a time gives the same result as a full recomputation.
package aggregate

import (
	"math"

	"github.com/Clark-Hu/store-ratings/internal/domain"
)

// Summary is the {average, count} pair shown next to a store.
type Summary struct {
	Average float64
	Count   int
}

// Summarize computes the canonical summary of a snapshot of rating values.
func Summarize(values []int) Summary {
	var t Tally
	for _, v := range values {
		t.Add(v)
	}
	return t.Summary()
}

// SummarizeRatings is Summarize over rating records.
func SummarizeRatings(ratings []domain.Rating) Summary {
	var t Tally
	for _, r := range ratings {
		t.Add(r.Value)
	}
	return t.Summary()
}

// Tally folds rating values incrementally. It keeps the integer sum rather
// than a running average, so it never drifts from Summarize.
type Tally struct {
	sum   int64
	count int
}

// Add folds in one new rating value.
func (t *Tally) Add(value int) {
	t.sum += int64(value)
	t.count++
}

// Summary rounds the exact mean to one decimal; empty tallies report 0/0.
func (t Tally) Summary() Summary {
	if t.count == 0 {
		return Summary{}
	}
	return Summary{
		Average: RoundToOneDecimal(float64(t.sum) / float64(t.count)),
		Count:   t.count,
	}
}

// RoundToOneDecimal rounds half away from zero at one decimal place.
func RoundToOneDecimal(value float64) float64 {
	return math.Round(value*10) / 10.0
}

// ByStore groups ratings by store and summarizes each group.
func ByStore(ratings []domain.Rating) map[string]Summary {
	tallies := make(map[string]*Tally)
	for _, r := range ratings {
		t, ok := tallies[r.StoreID]
		if !ok {
			t = &Tally{}
			tallies[r.StoreID] = t
		}
		t.Add(r.Value)
	}
	out := make(map[string]Summary, len(tallies))
	for id, t := range tallies {
		out[id] = t.Summary()
	}
	return out
}
