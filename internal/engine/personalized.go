package engine

import "github.com/temcen/movierec/pkg/models"

// Personalized picks a strategy from how much the user has rated: nothing
// gives the popularity ranking, a few ratings give an unanchored hybrid, and
// from AnchorMinRatings on the hybrid is anchored on the most recently rated
// movie.
func (s *Snapshot) Personalized(userID, n int) models.PersonalizedResult {
	ratings := s.userRatings[userID]
	result := models.PersonalizedResult{UserRatingCount: len(ratings)}

	switch {
	case len(ratings) == 0:
		result.Strategy = models.StrategyPopular
		result.Recommendations = s.Popular(n)
	case len(ratings) < s.opts.AnchorMinRatings:
		result.Strategy = models.StrategyHybrid
		result.Recommendations = s.Hybrid(userID, nil, n)
	default:
		anchor := latestRated(ratings)
		result.Strategy = models.StrategyAnchoredHybrid
		result.AnchorMovieID = &anchor
		result.Recommendations = s.Hybrid(userID, &anchor, n)
	}
	return result
}

// latestRated returns the movie with the newest timestamp. The first of
// equal timestamps wins.
func latestRated(ratings []models.Rating) int {
	latest := ratings[0]
	for _, r := range ratings[1:] {
		if r.Timestamp > latest.Timestamp {
			latest = r
		}
	}
	return latest.MovieID
}
