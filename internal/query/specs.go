package query

import "github.com/Clark-Hu/store-ratings/internal/domain"

// StoreSpec searches name and address and sorts by name or average rating.
var StoreSpec = Spec[domain.StoreView]{
	Fields: map[string]func(a, b domain.StoreView) int{
		"name": func(a, b domain.StoreView) int { return CompareText(a.Name, b.Name) },
		"rating": func(a, b domain.StoreView) int {
			return CompareNumber(a.AverageRating, b.AverageRating)
		},
	},
	Text: func(s domain.StoreView) []string { return []string{s.Name, s.Address} },
}

// UserSpec searches name and email and sorts by name, email or role.
var UserSpec = Spec[domain.User]{
	Fields: map[string]func(a, b domain.User) int{
		"name":  func(a, b domain.User) int { return CompareText(a.Name, b.Name) },
		"email": func(a, b domain.User) int { return CompareText(a.Email, b.Email) },
		"role":  func(a, b domain.User) int { return CompareText(string(a.Role), string(b.Role)) },
	},
	Text: func(u domain.User) []string { return []string{u.Name, u.Email} },
}

// RatingSpec backs the owner's ratings list: bucket filter, search over the
// author and comment, sort by author name, stars or date.
var RatingSpec = Spec[domain.RatingView]{
	Fields: map[string]func(a, b domain.RatingView) int{
		"name":   func(a, b domain.RatingView) int { return CompareText(a.UserName, b.UserName) },
		"rating": func(a, b domain.RatingView) int { return CompareNumber(a.Value, b.Value) },
		"date": func(a, b domain.RatingView) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		},
	},
	Text:  func(r domain.RatingView) []string { return []string{r.UserName, r.UserEmail, r.Comment} },
	Stars: func(r domain.RatingView) int { return r.Value },
}

// Stores applies p to a store list.
func Stores(items []domain.StoreView, p Params) []domain.StoreView {
	return Apply(items, StoreSpec, p)
}

// Users applies p to a user list.
func Users(items []domain.User, p Params) []domain.User {
	return Apply(items, UserSpec, p)
}

// Ratings applies p to a rating list.
func Ratings(items []domain.RatingView, p Params) []domain.RatingView {
	return Apply(items, RatingSpec, p)
}
