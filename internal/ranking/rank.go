// Package ranking scores candidate vectors against a query and orders them.
package ranking

import (
	"math"
	"sort"

	"github.com/kailas-cloud/newsrec/internal/textvec"
)

// Scored is a candidate position in the input slice and its similarity.
type Scored struct {
	Index int
	Score float64
}

// Cosine returns dot(a,b) / (|a|·|b|), clamped to [0,1].
// If either vector has zero norm the similarity is 0.
func Cosine(a, b textvec.Vector) float64 {
	return cosineWithNorm(a, a.Norm(), b)
}

// Rank scores every candidate against query and returns at most topN entries,
// highest score first, ties broken by ascending candidate index.
// Zero-score candidates are kept. topN <= 0 or no candidates yields an empty slice.
func Rank(query textvec.Vector, candidates []textvec.Vector, topN int) []Scored {
	if topN <= 0 || len(candidates) == 0 {
		return []Scored{}
	}

	qn := query.Norm()
	scored := make([]Scored, len(candidates))
	for i, c := range candidates {
		scored[i] = Scored{Index: i, Score: cosineWithNorm(query, qn, c)}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Index < scored[j].Index
	})

	if len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}

// cosineWithNorm avoids recomputing the query norm per candidate.
func cosineWithNorm(q textvec.Vector, qn float64, c textvec.Vector) float64 {
	cn := c.Norm()
	if qn == 0 || cn == 0 {
		return 0
	}
	s := textvec.Dot(q, c) / (qn * cn)
	switch {
	case math.IsNaN(s) || s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}
