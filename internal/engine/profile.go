package engine

import (
	"sort"
	"strconv"

	"github.com/temcen/movierec/pkg/models"
)

const favoriteGenresLimit = 5

// SimilarUsers lists the users most similar to userID above the configured
// similarity floor, with how many movies each pair has both rated.
func (s *Snapshot) SimilarUsers(userID, n int) []models.SimilarUser {
	out := []models.SimilarUser{}
	if n <= 0 || !s.matrix.HasUser(userID) {
		return out
	}
	target := s.matrix.userRow(userID)
	for _, nb := range s.userSim.Neighbors(userID, 0) {
		if len(out) == n {
			break
		}
		if nb.Score <= s.opts.MinUserSimilarity {
			// neighbours are sorted, nothing further qualifies
			break
		}
		other := s.matrix.userRow(nb.ID)
		common := 0
		for col, r := range target {
			if r > 0 && other[col] > 0 {
				common++
			}
		}
		out = append(out, models.SimilarUser{
			UserID:       nb.ID,
			Similarity:   round(nb.Score, 3),
			CommonMovies: common,
		})
	}
	return out
}

// UserProfile summarises a user's ratings. ok is false for users without
// ratings.
func (s *Snapshot) UserProfile(userID int) (models.UserProfile, bool) {
	ratings := s.userRatings[userID]
	if len(ratings) == 0 {
		return models.UserProfile{}, false
	}

	type genreAgg struct {
		sum   float64
		count int
	}
	genres := make(map[string]*genreAgg)
	distribution := make(map[string]int)
	var total float64
	for _, r := range ratings {
		total += r.Score
		distribution[strconv.FormatFloat(r.Score, 'f', 1, 64)]++
		m, ok := s.movies[r.MovieID]
		if !ok {
			continue
		}
		for _, g := range m.Genres {
			agg, ok := genres[g]
			if !ok {
				agg = &genreAgg{}
				genres[g] = agg
			}
			agg.sum += r.Score
			agg.count++
		}
	}

	favorites := make([]models.GenreStat, 0, len(genres))
	for g, agg := range genres {
		favorites = append(favorites, models.GenreStat{
			Genre:     g,
			AvgRating: agg.sum / float64(agg.count),
			Count:     agg.count,
		})
	}
	sort.Slice(favorites, func(i, j int) bool {
		a, b := favorites[i], favorites[j]
		if a.AvgRating != b.AvgRating {
			return a.AvgRating > b.AvgRating
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Genre < b.Genre
	})
	if len(favorites) > favoriteGenresLimit {
		favorites = favorites[:favoriteGenresLimit]
	}
	for i := range favorites {
		favorites[i].AvgRating = round(favorites[i].AvgRating, 2)
	}

	return models.UserProfile{
		UserID:             userID,
		TotalRatings:       len(ratings),
		AvgRating:          ptr(round(total/float64(len(ratings)), 2)),
		FavoriteGenres:     favorites,
		RatingDistribution: distribution,
	}, true
}

// MovieStats returns the rating summary of a movie. Unrated movies have a
// nil average and no distribution.
func (s *Snapshot) MovieStats(movieID int) models.MovieStats {
	st, ok := s.stats[movieID]
	if !ok || st.count == 0 {
		return models.MovieStats{}
	}
	distribution := make(map[string]int, len(st.buckets))
	for i, c := range st.buckets {
		distribution[strconv.Itoa(i+1)] = c
	}
	return models.MovieStats{
		AvgRating:          ptr(round(st.mean(), 2)),
		RatingCount:        st.count,
		RatingDistribution: distribution,
	}
}

// Compare runs every method for the same request so they can be inspected
// side by side. Item and content results are only present with an anchor.
func (s *Snapshot) Compare(userID int, anchor *int, n int) map[string][]models.Recommendation {
	methods := map[string][]models.Recommendation{
		models.MethodCollaborative: s.UserBased(userID, n),
		models.MethodPopularity:    s.Popular(n),
		models.StrategyHybrid:      s.Hybrid(userID, anchor, n),
	}
	if anchor != nil {
		methods[models.MethodItemBased] = s.ItemBased(*anchor, n)
		methods[models.MethodContentBased] = s.ContentBased(*anchor, n)
	}
	return methods
}
