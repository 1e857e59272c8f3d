// Package resolution measures the edge lengths of a triangle mesh.
package resolution

import (
	"context"
	"math"

	"github.com/chazu/facet/internal/parallel"
	"github.com/chazu/facet/pkg/mesh"
)

// Result holds the length of every unique edge, in unique-edge order
// (ascending by sorted endpoint pair), and summary statistics over them.
type Result struct {
	Mean        float64   `json:"mean"`
	EdgeLengths []float64 `json:"edgeLengths"`
	Min         float64   `json:"min"`
	Max         float64   `json:"max"`
	StdDev      float64   `json:"stdDev"` // population standard deviation
}

// Estimate computes the unique edge lengths of m and their mean. A mesh
// without edges fails with mesh.ErrEmptyMesh.
func Estimate(ctx context.Context, m *mesh.Mesh, workers int) (*Result, error) {
	edges := m.Topology().UniqueEdges()
	n := len(edges)
	if n == 0 {
		return nil, mesh.ErrEmptyMesh
	}

	lengths := make([]float64, n)
	sum, err := parallel.Sum(ctx, n, workers, func(lo, hi int) float64 {
		s := 0.0
		for i := lo; i < hi; i++ {
			e := edges[i].V
			lengths[i] = m.Position(e[0]).Sub(m.Position(e[1])).Length()
			s += lengths[i]
		}
		return s
	})
	if err != nil {
		return nil, err
	}

	r := &Result{
		Mean:        sum / float64(n),
		EdgeLengths: lengths,
		Min:         math.Inf(1),
		Max:         math.Inf(-1),
	}
	ss := 0.0
	for _, l := range lengths {
		r.Min = min(r.Min, l)
		r.Max = max(r.Max, l)
		d := l - r.Mean
		ss += d * d
	}
	r.StdDev = math.Sqrt(ss / float64(n))
	return r, nil
}
