package services

import "errors"

var (
	ErrMovieNotFound  = errors.New("movie not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrRatingNotFound = errors.New("rating not found")
	ErrInvalidRating  = errors.New("rating must be between 0.5 and 5.0 in steps of 0.5")
	ErrInvalidTag     = errors.New("tag must not be blank")
)
