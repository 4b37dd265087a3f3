package models

import "time"

// Recommendation methods, in the order hybrid results list them.
const (
	MethodCollaborative = "collaborative"
	MethodItemBased     = "item_based"
	MethodContentBased  = "content_based"
	MethodPopularity    = "popularity"
)

// Personalized strategies.
const (
	StrategyPopular        = "popular"
	StrategyHybrid         = "hybrid"
	StrategyAnchoredHybrid = "hybrid_anchored"
)

// Recommendation is a transient scored movie. Only the score fields that the
// producing method computes are set.
type Recommendation struct {
	MovieID         int      `json:"movieId"`
	Title           string   `json:"title"`
	Year            *string  `json:"year,omitempty"`
	Genres          []string `json:"genres"`
	AvgRating       *float64 `json:"avg_rating"`
	RatingCount     int      `json:"rating_count"`
	Similarity      *float64 `json:"similarity_score,omitempty"`
	PredictedRating *float64 `json:"predicted_rating,omitempty"`
	WeightedRating  *float64 `json:"weighted_rating,omitempty"`
	HybridScore     *float64 `json:"hybrid_score,omitempty"`
	Methods         []string `json:"methods,omitempty"`
}

// RecommendationRequest is the query string of list endpoints. A nil N
// means the configured default.
type RecommendationRequest struct {
	N *int `form:"n" validate:"omitempty,min=1,max=100"`
}

type HybridRequest struct {
	N       *int `form:"n" validate:"omitempty,min=1,max=100"`
	MovieID *int `form:"movie_id" validate:"omitempty,min=1"`
}

type RecommendationResponse struct {
	Method          string           `json:"method"`
	UserID          *int             `json:"user_id,omitempty"`
	MovieID         *int             `json:"movie_id,omitempty"`
	Recommendations []Recommendation `json:"recommendations"`
	Count           int              `json:"count"`
	Version         uint64           `json:"model_version"`
	GeneratedAt     time.Time        `json:"generated_at"`
	CacheHit        bool             `json:"cache_hit"`
}

// PersonalizedResult carries the strategy the personalized policy picked.
type PersonalizedResult struct {
	Strategy        string           `json:"strategy"`
	UserRatingCount int              `json:"user_rating_count"`
	AnchorMovieID   *int             `json:"anchor_movie_id,omitempty"`
	Recommendations []Recommendation `json:"recommendations"`
}

type PersonalizedResponse struct {
	UserID int `json:"user_id"`
	PersonalizedResult
	Version     uint64    `json:"model_version"`
	GeneratedAt time.Time `json:"generated_at"`
	CacheHit    bool      `json:"cache_hit"`
}

type CompareRequest struct {
	UserID  int  `json:"userId" validate:"required,min=1"`
	MovieID *int `json:"movieId,omitempty" validate:"omitempty,min=1"`
	N       int  `json:"n,omitempty" validate:"omitempty,min=1,max=50"`
}

type CompareResponse struct {
	UserID  int                         `json:"user_id"`
	MovieID *int                        `json:"movie_id,omitempty"`
	Methods map[string][]Recommendation `json:"methods"`
}
