package engine

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/temcen/movierec/pkg/models"
)

// popularityQuantile is the share of qualifying movies whose rating count
// falls below the prior weight m.
const popularityQuantile = 0.7

// Popular ranks movies by Bayesian weighted rating
//
//	WR = v/(v+m)*R + m/(v+m)*C
//
// where v and R are the movie's rating count and mean, C is the mean of all
// qualifying movie means and m is the 70th percentile of qualifying counts.
func (s *Snapshot) Popular(n int) []models.Recommendation {
	out := []models.Recommendation{}
	if n <= 0 {
		return out
	}

	type candidate struct {
		id       int
		weighted float64
	}
	var (
		ids    []int
		means  []float64
		counts []float64
	)
	for id, st := range s.stats {
		if st.count == 0 || st.count < s.opts.MinRatings {
			continue
		}
		ids = append(ids, id)
		means = append(means, st.mean())
		counts = append(counts, float64(st.count))
	}
	if len(ids) == 0 {
		return out
	}

	c := stat.Mean(means, nil)
	m := linearQuantile(counts, popularityQuantile)

	candidates := make([]candidate, len(ids))
	for i, id := range ids {
		v, r := counts[i], means[i]
		wr := r
		if v+m > 0 {
			wr = v/(v+m)*r + m/(v+m)*c
		}
		candidates[i] = candidate{id: id, weighted: wr}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].weighted != candidates[j].weighted {
			return candidates[i].weighted > candidates[j].weighted
		}
		return candidates[i].id < candidates[j].id
	})

	for _, cand := range candidates {
		if len(out) == n {
			break
		}
		rec, ok := s.record(cand.id)
		if !ok {
			continue
		}
		rec.Title, rec.Year = SplitTitle(rec.Title)
		rec.WeightedRating = ptr(round(cand.weighted, 2))
		out = append(out, rec)
	}
	return out
}

// linearQuantile interpolates between the two closest ranks of the sorted
// values, so q=0.7 over [10 20 30 40] is 31.
func linearQuantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}
