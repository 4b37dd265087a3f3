package engine

import (
	"sort"

	"github.com/temcen/movierec/pkg/models"
)

// Jaccard is |a ∩ b| / |a ∪ b| over genre labels; 0 when both are empty.
func Jaccard(a, b []string) float64 {
	set := make(map[string]bool, len(a))
	for _, g := range a {
		set[g] = true
	}
	union := len(set)
	intersection := 0
	seen := make(map[string]bool, len(b))
	for _, g := range b {
		if seen[g] {
			continue
		}
		seen[g] = true
		if set[g] {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// ContentBased ranks catalog movies by genre overlap with movieID, skipping
// the movie itself, non-overlapping movies and movies with too few ratings.
func (s *Snapshot) ContentBased(movieID, n int) []models.Recommendation {
	out := []models.Recommendation{}
	target, ok := s.movies[movieID]
	if !ok || n <= 0 {
		return out
	}

	type candidate struct {
		id         int
		similarity float64
		avg        float64
	}
	var candidates []candidate
	for id, m := range s.movies {
		if id == movieID {
			continue
		}
		sim := Jaccard(target.Genres, m.Genres)
		if sim <= 0 {
			continue
		}
		st := s.stats[id]
		if st.count < s.opts.MinRatings {
			continue
		}
		candidates = append(candidates, candidate{id: id, similarity: sim, avg: st.mean()})
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.similarity != b.similarity {
			return a.similarity > b.similarity
		}
		if a.avg != b.avg {
			return a.avg > b.avg
		}
		return a.id < b.id
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}

	for _, c := range candidates {
		rec, _ := s.record(c.id)
		rec.Similarity = ptr(round(c.similarity, 3))
		out = append(out, rec)
	}
	return out
}
