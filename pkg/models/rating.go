package models

import "time"

// Rating is one (user, movie, score) observation. Score is on the half-star
// scale 0.5..5.0; Timestamp is unix seconds.
type Rating struct {
	UserID    int     `json:"userId"`
	MovieID   int     `json:"movieId"`
	Score     float64 `json:"rating"`
	Timestamp int64   `json:"timestamp"`
}

type CreateRatingRequest struct {
	UserID  int     `json:"userId" validate:"required,min=1"`
	MovieID int     `json:"movieId" validate:"required,min=1"`
	Rating  float64 `json:"rating" validate:"required,min=0.5,max=5"`
}

type CreateRatingResponse struct {
	Rating    Rating    `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	Rebuild   string    `json:"rebuild"`
}

type UserRatingsResponse struct {
	UserID  int      `json:"user_id"`
	Ratings []Rating `json:"ratings"`
	Total   int      `json:"total"`
}

type DeleteRatingResponse struct {
	UserID  int    `json:"userId"`
	MovieID int    `json:"movieId"`
	Removed int    `json:"removed"`
	Rebuild string `json:"rebuild"`
}
