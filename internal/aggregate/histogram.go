package aggregate

import "github.com/Clark-Hu/store-ratings/internal/domain"

// Histogram counts ratings per star value. Index 0 holds one-star ratings.
type Histogram [domain.MaxStars]int

// HistogramOf builds the distribution of a set of ratings. Values outside the
// 1..5 scale are ignored.
func HistogramOf(ratings []domain.Rating) Histogram {
	var h Histogram
	for _, r := range ratings {
		if domain.ValidStars(r.Value) {
			h[r.Value-1]++
		}
	}
	return h
}

// Stars returns the number of ratings with the given star value.
func (h Histogram) Stars(value int) int {
	if !domain.ValidStars(value) {
		return 0
	}
	return h[value-1]
}

// Total is the number of ratings in the histogram.
func (h Histogram) Total() int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}

// Bucket sums the star counts that fall into b.
func (h Histogram) Bucket(b domain.Bucket) int {
	n := 0
	for v := domain.MinStars; v <= domain.MaxStars; v++ {
		if b.Contains(v) {
			n += h[v-1]
		}
	}
	return n
}
