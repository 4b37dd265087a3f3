package engine

import (
	"sort"

	"github.com/temcen/movierec/pkg/models"
)

// ItemBased returns the movies whose rating vectors are closest to movieID.
// The top oversample*n neighbours are filtered for metadata and minimum
// rating count; fewer than n results are returned rather than padding.
func (s *Snapshot) ItemBased(movieID, n int) []models.Recommendation {
	out := []models.Recommendation{}
	if n <= 0 || !s.movieSim.Has(movieID) {
		return out
	}

	for _, nb := range s.movieSim.Neighbors(movieID, n*s.oversample()) {
		st := s.stats[nb.ID]
		if st.count == 0 || st.count < s.opts.MinRatings {
			continue
		}
		rec, ok := s.record(nb.ID)
		if !ok {
			continue
		}
		rec.Similarity = ptr(round(nb.Score, 3))
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].Similarity > *out[j].Similarity
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func (s *Snapshot) oversample() int {
	if s.opts.Oversample < 1 {
		return 1
	}
	return s.opts.Oversample
}
