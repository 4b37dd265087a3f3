package engine

import (
	"sort"

	"github.com/temcen/movierec/pkg/models"
)

// methodOrder fixes the order in which contributing methods are listed.
var methodOrder = []string{
	models.MethodCollaborative,
	models.MethodItemBased,
	models.MethodContentBased,
	models.MethodPopularity,
}

type scoredList struct {
	method string
	weight float64
	recs   []models.Recommendation
	score  func(models.Recommendation) float64
}

// Hybrid blends the four scorers. Each method is asked for oversample*n
// results, its scores are min-max normalised into [0,1] and the weighted
// sum is taken per movie over the methods that returned it. Without an
// anchor movie the item and content methods are skipped. Movies the user
// has already rated, and the anchor itself, are never returned.
func (s *Snapshot) Hybrid(userID int, anchor *int, n int) []models.Recommendation {
	out := []models.Recommendation{}
	if n <= 0 {
		return out
	}
	pool := n * s.oversample()
	w := s.opts.Weights

	var lists []scoredList
	if w.Collaborative > 0 {
		// Only genuine predictions; the popularity fallback is blended
		// separately below.
		if recs, ok := s.predictForUser(userID, pool); ok {
			lists = append(lists, scoredList{models.MethodCollaborative, w.Collaborative, recs, predictedScore})
		}
	}
	if anchor != nil {
		if w.ItemBased > 0 {
			lists = append(lists, scoredList{models.MethodItemBased, w.ItemBased, s.ItemBased(*anchor, pool), similarityScore})
		}
		if w.ContentBased > 0 {
			lists = append(lists, scoredList{models.MethodContentBased, w.ContentBased, s.ContentBased(*anchor, pool), similarityScore})
		}
	}
	if w.Popularity > 0 {
		lists = append(lists, scoredList{models.MethodPopularity, w.Popularity, s.Popular(pool), weightedScore})
	}

	type blended struct {
		score   float64
		methods map[string]bool
	}
	combined := make(map[int]*blended)
	for _, l := range lists {
		normalized := normalizeScores(l.recs, l.score)
		for i, rec := range l.recs {
			if anchor != nil && rec.MovieID == *anchor {
				continue
			}
			if s.matrix.At(userID, rec.MovieID) > 0 {
				continue
			}
			b, ok := combined[rec.MovieID]
			if !ok {
				b = &blended{methods: make(map[string]bool)}
				combined[rec.MovieID] = b
			}
			b.score += l.weight * normalized[i]
			b.methods[l.method] = true
		}
	}

	ids := make([]int, 0, len(combined))
	for id := range combined {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := combined[ids[i]].score, combined[ids[j]].score
		if a != b {
			return a > b
		}
		return ids[i] < ids[j]
	})
	if len(ids) > n {
		ids = ids[:n]
	}

	for _, id := range ids {
		rec, ok := s.record(id)
		if !ok {
			continue
		}
		b := combined[id]
		rec.HybridScore = ptr(round(b.score, 4))
		for _, method := range methodOrder {
			if b.methods[method] {
				rec.Methods = append(rec.Methods, method)
			}
		}
		out = append(out, rec)
	}
	return out
}

// normalizeScores min-max scales scores into [0,1]. A list with a single
// distinct score maps every entry to 1.
func normalizeScores(recs []models.Recommendation, score func(models.Recommendation) float64) []float64 {
	normalized := make([]float64, len(recs))
	if len(recs) == 0 {
		return normalized
	}
	lo, hi := score(recs[0]), score(recs[0])
	for _, rec := range recs[1:] {
		v := score(rec)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	for i, rec := range recs {
		if span == 0 {
			normalized[i] = 1.0
			continue
		}
		normalized[i] = (score(rec) - lo) / span
	}
	return normalized
}

func predictedScore(r models.Recommendation) float64  { return deref(r.PredictedRating) }
func similarityScore(r models.Recommendation) float64 { return deref(r.Similarity) }
func weightedScore(r models.Recommendation) float64   { return deref(r.WeightedRating) }

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
