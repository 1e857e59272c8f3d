// Package volume checks the manifold precondition of a closed triangle mesh
// and integrates its volume and mass properties.
package volume

import (
	"context"

	"github.com/chazu/facet/internal/parallel"
	"github.com/chazu/facet/pkg/mesh"
)

// Check fails with a *mesh.ManifoldError when m has non-manifold vertices or
// edges.
func Check(m *mesh.Mesh) error {
	edges := mesh.CountNonManifoldEdges(m)
	vertices := mesh.CountNonManifoldVertices(m)
	if edges != 0 || vertices != 0 {
		return &mesh.ManifoldError{Vertices: vertices, Edges: edges}
	}
	return nil
}

// Volume returns the absolute enclosed volume of m, sum(v0 . (v1 x v2)) / 6
// over the faces. The sign of the sum only reflects the global winding, so
// it is dropped. The mesh must pass Check.
func Volume(ctx context.Context, m *mesh.Mesh, workers int) (float64, error) {
	if m.IsEmpty() {
		return 0, mesh.ErrEmptyMesh
	}
	if err := Check(m); err != nil {
		return 0, err
	}
	v, err := signedVolume(ctx, m, workers)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		v = -v
	}
	return v, nil
}

func signedVolume(ctx context.Context, m *mesh.Mesh, workers int) (float64, error) {
	sum, err := parallel.Sum(ctx, m.FaceCount(), workers, func(lo, hi int) float64 {
		s := 0.0
		for f := lo; f < hi; f++ {
			if m.Faces[f].Flags&mesh.FlagDeleted != 0 {
				continue
			}
			p0, p1, p2 := m.Corners(f)
			s += p0.Dot(p1.Cross(p2))
		}
		return s
	})
	return sum / 6, err
}
