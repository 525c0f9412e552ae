package httpserver

import (
	"time"

	"github.com/Clark-Hu/store-ratings/internal/domain"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

type passwordRequest struct {
	UserID          string `json:"userId"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type storeCreateRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	OwnerID string `json:"owner_id"`
}

type storeUpdateRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type ratingRequest struct {
	UserID  string `json:"user_id"`
	StoreID string `json:"store_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type storeResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	OwnerID       string    `json:"owner_id"`
	AverageRating float64   `json:"average_rating"`
	TotalRatings  int       `json:"total_ratings"`
	MyRating      int       `json:"my_rating"`
	MyComment     string    `json:"my_comment"`
	CreatedAt     time.Time `json:"created_at"`
}

type ratingResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	StoreID   string    `json:"store_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ratingViewResponse struct {
	ratingResponse
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	StoreName string `json:"store_name"`
}

type statsResponse struct {
	TotalUsers   int64 `json:"total_users"`
	TotalStores  int64 `json:"total_stores"`
	TotalRatings int64 `json:"total_ratings"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Address:   u.Address,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

func toStoreResponse(s domain.StoreView) storeResponse {
	return storeResponse{
		ID:            s.ID,
		Name:          s.Name,
		Email:         s.Email,
		Address:       s.Address,
		OwnerID:       s.OwnerID,
		AverageRating: s.AverageRating,
		TotalRatings:  s.TotalRatings,
		MyRating:      s.MyRating,
		MyComment:     s.MyComment,
		CreatedAt:     s.CreatedAt,
	}
}

func toRatingResponse(r domain.Rating) ratingResponse {
	return ratingResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		StoreID:   r.StoreID,
		Rating:    r.Value,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toRatingViewResponses(views []domain.RatingView) []ratingViewResponse {
	out := make([]ratingViewResponse, 0, len(views))
	for _, v := range views {
		out = append(out, ratingViewResponse{
			ratingResponse: toRatingResponse(v.Rating),
			UserName:       v.UserName,
			UserEmail:      v.UserEmail,
			StoreName:      v.StoreName,
		})
	}
	return out
}
