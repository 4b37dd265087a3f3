package models

type User struct {
	ID       int    `json:"userId"`
	Username string `json:"username"`
}

type GenreStat struct {
	Genre     string  `json:"genre"`
	AvgRating float64 `json:"avg_rating"`
	Count     int     `json:"count"`
}

type UserProfile struct {
	UserID             int            `json:"user_id"`
	TotalRatings       int            `json:"total_ratings"`
	AvgRating          *float64       `json:"avg_rating"`
	FavoriteGenres     []GenreStat    `json:"favorite_genres"`
	RatingDistribution map[string]int `json:"rating_distribution"`
}

type SimilarUser struct {
	UserID       int     `json:"user_id"`
	Similarity   float64 `json:"similarity"`
	CommonMovies int     `json:"common_movies"`
}

type SimilarUsersResponse struct {
	UserID       int           `json:"user_id"`
	SimilarUsers []SimilarUser `json:"similar_users"`
}
