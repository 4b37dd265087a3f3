package models

// Movie is a catalog entry. Genres is the pipe-split genre field, so a movie
// with no genres carries the single "(no genres listed)" label.
type Movie struct {
	ID     int      `json:"movieId"`
	Title  string   `json:"title"`
	Genres []string `json:"genres"`
}

// NoGenres is the MovieLens sentinel genre label.
const NoGenres = "(no genres listed)"

type MovieStats struct {
	AvgRating          *float64       `json:"avg_rating"`
	RatingCount        int            `json:"rating_count"`
	RatingDistribution map[string]int `json:"rating_distribution"`
}

// Links are a movie's external database ids from links.csv. Zero means
// unknown.
type Links struct {
	MovieID int `json:"movieId"`
	IMDbID  int `json:"imdbId"`
	TMDbID  int `json:"tmdbId"`
}

type MovieDetails struct {
	Movie
	Year    *string    `json:"year,omitempty"`
	Stats   MovieStats `json:"stats"`
	IMDbURL *string    `json:"imdb_url,omitempty"`
	TMDbURL *string    `json:"tmdb_url,omitempty"`
	Tags    []string   `json:"tags,omitempty"`
}

type MovieListResponse struct {
	Movies     []Movie    `json:"movies"`
	Pagination Pagination `json:"pagination"`
}

type MovieRatingsResponse struct {
	MovieID    int        `json:"movie_id"`
	Title      string     `json:"movie_title"`
	Ratings    []Rating   `json:"ratings"`
	Stats      MovieStats `json:"stats"`
	Pagination Pagination `json:"pagination"`
}

type MovieSearchResponse struct {
	Query   string  `json:"query"`
	Movies  []Movie `json:"movies"`
	Total   int     `json:"total"`
	Limited bool    `json:"limited"`
}

type GenresResponse struct {
	Genres []string `json:"genres"`
	Total  int      `json:"total"`
}
