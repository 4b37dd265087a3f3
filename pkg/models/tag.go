package models

import "time"

// Tag is a free-text label a user attached to a movie. Timestamp is unix
// seconds.
type Tag struct {
	UserID    int    `json:"userId"`
	MovieID   int    `json:"movieId"`
	Tag       string `json:"tag"`
	Timestamp int64  `json:"timestamp"`
}

type CreateTagRequest struct {
	UserID  int    `json:"userId" validate:"required,min=1"`
	MovieID int    `json:"movieId" validate:"required,min=1"`
	Tag     string `json:"tag" validate:"required,max=255"`
}

type CreateTagResponse struct {
	Tag        Tag       `json:"tag"`
	MovieTitle string    `json:"movie_title"`
	CreatedAt  time.Time `json:"created_at"`
	Rebuild    string    `json:"rebuild"`
}

// TagCount is a lower-cased tag with the number of times it was used.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type UserTagsResponse struct {
	UserID     int        `json:"user_id"`
	Tags       []Tag      `json:"tags"`
	Pagination Pagination `json:"pagination"`
}

type MovieTagsResponse struct {
	MovieID    int        `json:"movie_id"`
	Title      string     `json:"movie_title"`
	Tags       []Tag      `json:"tags"`
	TagCloud   []TagCount `json:"tag_cloud"`
	Pagination Pagination `json:"pagination"`
}

type PopularTagsResponse struct {
	Tags  []TagCount `json:"tags"`
	Count int        `json:"count"`
}
