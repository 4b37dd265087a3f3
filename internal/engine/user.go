package engine

import (
	"sort"

	"github.com/temcen/movierec/pkg/models"
)

// UserBased predicts ratings for the movies userID has not rated from its
// most similar users. Users without ratings, or without any prediction,
// get the popularity ranking instead.
func (s *Snapshot) UserBased(userID, n int) []models.Recommendation {
	recs, ok := s.predictForUser(userID, n)
	if !ok {
		return s.Popular(n)
	}
	return recs
}

// predictForUser is UserBased without the popularity fallback. ok is false
// when no prediction could be made.
func (s *Snapshot) predictForUser(userID, n int) ([]models.Recommendation, bool) {
	if n <= 0 || s.userSim == nil || !s.matrix.HasUser(userID) {
		return nil, false
	}

	neighbors := s.userSim.Neighbors(userID, s.opts.TopSimilarUsers)
	if len(neighbors) == 0 {
		return nil, false
	}
	neighborRows := make([][]float64, len(neighbors))
	for i, nb := range neighbors {
		neighborRows[i] = s.matrix.userRow(nb.ID)
	}

	type prediction struct {
		id    int
		score float64
	}
	var predictions []prediction
	target := s.matrix.userRow(userID)
	for col, movieID := range s.matrix.Movies() {
		if target[col] != 0 {
			continue
		}
		var weighted, weights float64
		for i, nb := range neighbors {
			r := neighborRows[i][col]
			if r <= 0 {
				continue
			}
			weighted += nb.Score * r
			weights += nb.Score
		}
		if weights <= 0 {
			continue
		}
		predictions = append(predictions, prediction{id: movieID, score: weighted / weights})
	}
	if len(predictions) == 0 {
		return nil, false
	}

	sort.Slice(predictions, func(i, j int) bool {
		if predictions[i].score != predictions[j].score {
			return predictions[i].score > predictions[j].score
		}
		return predictions[i].id < predictions[j].id
	})

	out := make([]models.Recommendation, 0, n)
	for _, p := range predictions {
		if len(out) == n {
			break
		}
		rec, ok := s.record(p.id)
		if !ok {
			continue
		}
		rec.PredictedRating = ptr(round(p.score, 2))
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}
