// Package curvature estimates discrete curvature on triangle meshes: mean
// and Gaussian curvature from the cotangent Laplacian and angle deficit over
// mixed Voronoi areas, an RMS curvature quality, per-face aggregates and
// principal curvatures from a per-vertex curvature tensor.
package curvature

import (
	"context"
	"errors"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/facet/internal/parallel"
	"github.com/chazu/facet/pkg/mesh"
)

// DefaultAreaEpsilon is the area below which faces and vertex areas are
// treated as degenerate.
const DefaultAreaEpsilon = 1e-12

// ErrNotComputed is returned by passes that read Kh and Kg before
// MeanAndGaussian has filled them in.
var ErrNotComputed = errors.New("curvature: mean and Gaussian curvature not computed")

// Options tunes the estimator.
type Options struct {
	// AreaEpsilon: faces with a double area at or below it are skipped and
	// vertices with a mixed area below it get zero curvature.
	AreaEpsilon float64
	// Aggregate selects the comparison used by FaceMax.
	Aggregate Aggregate
	// Workers bounds the goroutines used per pass; 0 means GOMAXPROCS.
	Workers int
}

func (o Options) epsilon() float64 {
	if o.AreaEpsilon > 0 {
		return o.AreaEpsilon
	}
	return DefaultAreaEpsilon
}

// faceGeom caches the per-face quantities every incident vertex needs.
type faceGeom struct {
	angle [3]float64 // interior angle at each corner
	cot   [3]float64 // cotangent of each corner angle
	area  float64
	skip  bool
}

// MeanAndGaussian fills Vertex.Kh and Vertex.Kg for every vertex and returns
// the mixed Voronoi area of each vertex, in vertex order.
//
// Kg is the angle deficit over the mixed area at interior vertices and 0 on
// the border. Kh is -1/2 of the cotangent Laplacian of the position,
// normalised by twice the mixed area, projected on the vertex normal, so it
// is positive on convex outward-oriented surfaces.
func MeanAndGaussian(ctx context.Context, m *mesh.Mesh, opts Options) ([]float64, error) {
	if m.IsEmpty() {
		return nil, mesh.ErrEmptyMesh
	}
	eps := opts.epsilon()
	m.UpdateNormals()
	border := m.VertexBorderFlags()
	topo := m.Topology()

	geom := make([]faceGeom, m.FaceCount())
	err := parallel.For(ctx, len(geom), opts.Workers, func(_ context.Context, lo, hi int) error {
		for f := lo; f < hi; f++ {
			geom[f] = faceGeometry(m, f, eps)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	areas := make([]float64, m.VertexCount())
	err = parallel.For(ctx, len(areas), opts.Workers, func(_ context.Context, lo, hi int) error {
		for v := lo; v < hi; v++ {
			vert := &m.Vertices[v]
			vert.Kh, vert.Kg = 0, 0
			if vert.Flags&mesh.FlagDeleted != 0 {
				continue
			}
			area, angles, lap := gather(m, geom, topo.VertexFaces(v), v)
			areas[v] = area
			if area < eps {
				continue
			}
			vert.Kh = -0.5 * lap.MulScalar(1/(2*area)).Dot(vert.N)
			if !border[v] {
				vert.Kg = (2*math.Pi - angles) / area
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.Enable(mesh.CapCurvature)
	return areas, nil
}

func faceGeometry(m *mesh.Mesh, f int, eps float64) faceGeom {
	var g faceGeom
	if m.Faces[f].Flags&mesh.FlagDeleted != 0 {
		g.skip = true
		return g
	}
	p := [3]v3.Vec{}
	p[0], p[1], p[2] = m.Corners(f)
	double := m.DoubleArea(f)
	if double <= eps {
		g.skip = true
		return g
	}
	g.area = double / 2
	for i := 0; i < 3; i++ {
		a := p[(i+1)%3].Sub(p[i])
		b := p[(i+2)%3].Sub(p[i])
		g.angle[i] = math.Atan2(a.Cross(b).Length(), a.Dot(b))
		g.cot[i] = a.Dot(b) / double
	}
	return g
}

// gather sums the contributions of the faces around v: its mixed area, the
// sum of its corner angles and the unnormalised cotangent Laplacian.
func gather(m *mesh.Mesh, geom []faceGeom, faces []int, v int) (area, angles float64, lap v3.Vec) {
	for _, f := range faces {
		g := &geom[f]
		if g.skip {
			continue
		}
		fv := m.Faces[f].V
		i := 0
		for fv[i] != v {
			i++
		}
		j, k := (i+1)%3, (i+2)%3
		pi := m.Vertices[fv[i]].P
		eij := m.Vertices[fv[j]].P.Sub(pi)
		eik := m.Vertices[fv[k]].P.Sub(pi)

		angles += g.angle[i]
		// Edge i-j is opposite corner k, edge i-k opposite corner j.
		lap = lap.Add(eij.MulScalar(g.cot[k])).Add(eik.MulScalar(g.cot[j]))

		switch {
		case g.angle[i] > math.Pi/2:
			area += g.area / 2
		case g.angle[j] > math.Pi/2 || g.angle[k] > math.Pi/2:
			area += g.area / 4
		default:
			area += (eij.Dot(eij)*g.cot[k] + eik.Dot(eik)*g.cot[j]) / 8
		}
	}
	return area, angles, lap
}

// RMSQuality sets Vertex.Q to the root mean square curvature
// sqrt(4*Kh^2 - 2*Kg), or 0 where the radicand is negative.
func RMSQuality(m *mesh.Mesh) error {
	if !m.Has(mesh.CapCurvature) {
		return ErrNotComputed
	}
	for i := range m.Vertices {
		v := &m.Vertices[i]
		r := 4*v.Kh*v.Kh - 2*v.Kg
		if r < 0 {
			v.Q = 0
			continue
		}
		v.Q = math.Sqrt(r)
	}
	m.Enable(mesh.CapQuality)
	return nil
}
