package domain

import "time"

// MinStars and MaxStars bound the rating scale.
const (
	MinStars = 1
	MaxStars = 5
)

// Rating represents a single user's rating for a store. At most one exists per
// (UserID, StoreID) pair; resubmission replaces Value and Comment.
type Rating struct {
	ID        string
	UserID    string
	StoreID   string
	Value     int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RatingView is a rating denormalized with author and store details for display
// on the owner dashboard.
type RatingView struct {
	Rating
	UserName  string
	UserEmail string
	StoreName string
}

// RatingInput is the payload of a create-or-update rating request.
type RatingInput struct {
	UserID  string
	StoreID string
	Value   int
	Comment string
}

// Validate checks the star value before any request is issued. A comment alone
// is not submittable.
func (in RatingInput) Validate() error {
	verr := &ValidationError{}
	if in.StoreID == "" {
		verr.Add("store_id", "store is required")
	}
	if in.Value == 0 {
		verr.Add("rating", "please select a star rating first")
	} else if !ValidStars(in.Value) {
		verr.Add("rating", "rating must be between 1 and 5")
	}
	return verr.OrNil()
}

// ValidStars reports whether v is on the 1..5 scale.
func ValidStars(v int) bool {
	return v >= MinStars && v <= MaxStars
}

// Bucket is a named partition of the rating scale used for filtering.
type Bucket string

const (
	BucketAll      Bucket = "all"
	BucketPositive Bucket = "positive"
	BucketNeutral  Bucket = "neutral"
	BucketNegative Bucket = "negative"
)

// ParseBucket maps a UI value to a Bucket. Unknown values select BucketAll.
func ParseBucket(raw string) Bucket {
	switch Bucket(raw) {
	case BucketPositive, BucketNeutral, BucketNegative:
		return Bucket(raw)
	default:
		return BucketAll
	}
}

// BucketOf returns the single bucket a star value belongs to.
func BucketOf(value int) Bucket {
	switch {
	case value >= 4:
		return BucketPositive
	case value == 3:
		return BucketNeutral
	default:
		return BucketNegative
	}
}

// Contains reports whether value falls in the bucket. BucketAll contains everything.
func (b Bucket) Contains(value int) bool {
	if b == BucketAll || b == "" {
		return true
	}
	return BucketOf(value) == b
}
