package engine

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SimilarityMatrix holds pairwise cosine similarity between the rows of a
// matrix, keyed by external id.
type SimilarityMatrix struct {
	ids   []int
	index map[int]int
	sym   *mat.SymDense
	zero  []bool // rows whose vector had no ratings
}

type Neighbor struct {
	ID    int
	Score float64
}

// UserSimilarity compares users over their movie ratings (matrix rows).
func UserSimilarity(rm *RatingMatrix) *SimilarityMatrix {
	if rm.data == nil {
		return nil
	}
	return cosine(rm.data, rm.users)
}

// MovieSimilarity compares movies over the ratings users gave them (matrix
// columns).
func MovieSimilarity(rm *RatingMatrix) *SimilarityMatrix {
	if rm.data == nil {
		return nil
	}
	return cosine(rm.data.T(), rm.movies)
}

// cosine normalises every row to unit length and multiplies the result by
// its own transpose. Zero rows stay zero, so their similarity to anything
// is 0.
func cosine(m mat.Matrix, ids []int) *SimilarityMatrix {
	normalized := mat.DenseCopyOf(m)
	rows, _ := normalized.Dims()
	zero := make([]bool, rows)
	for i := 0; i < rows; i++ {
		row := normalized.RawRowView(i)
		norm := floats.Norm(row, 2)
		if norm == 0 || math.IsNaN(norm) {
			zero[i] = true
			continue
		}
		floats.Scale(1/norm, row)
	}

	var sym mat.SymDense
	sym.SymOuterK(1, normalized)

	return &SimilarityMatrix{
		ids:   ids,
		index: indexOf(ids),
		sym:   &sym,
		zero:  zero,
	}
}

func (s *SimilarityMatrix) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// Has reports whether id has a row with at least one rating behind it.
func (s *SimilarityMatrix) Has(id int) bool {
	if s == nil {
		return false
	}
	i, ok := s.index[id]
	return ok && !s.zero[i]
}

// Similarity returns the clamped similarity of a and b. Self similarity is
// reported as 0.
func (s *SimilarityMatrix) Similarity(a, b int) float64 {
	if s == nil || a == b {
		return 0
	}
	i, ok := s.index[a]
	if !ok {
		return 0
	}
	j, ok := s.index[b]
	if !ok {
		return 0
	}
	return clampUnit(s.sym.At(i, j))
}

// Neighbors returns up to k other ids ordered by similarity descending, ties
// by ascending id. k <= 0 returns all of them.
func (s *SimilarityMatrix) Neighbors(id, k int) []Neighbor {
	if s == nil {
		return nil
	}
	i, ok := s.index[id]
	if !ok {
		return nil
	}

	neighbors := make([]Neighbor, 0, len(s.ids)-1)
	for j, other := range s.ids {
		if j == i {
			continue
		}
		neighbors = append(neighbors, Neighbor{ID: other, Score: clampUnit(s.sym.At(i, j))})
	}
	sort.Slice(neighbors, func(a, b int) bool {
		if neighbors[a].Score != neighbors[b].Score {
			return neighbors[a].Score > neighbors[b].Score
		}
		return neighbors[a].ID < neighbors[b].ID
	})
	if k > 0 && len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
