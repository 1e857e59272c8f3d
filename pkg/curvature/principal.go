package curvature

import (
	"context"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/mat"

	"github.com/chazu/facet/internal/parallel"
	"github.com/chazu/facet/pkg/mesh"
)

// neighbour is one edge leaving a vertex and the area of the faces on it.
type neighbour struct {
	v      int
	weight float64
}

// Principal fills K1, K2, PD1 and PD2 on every vertex from Taubin's
// curvature tensor: the area-weighted sum of directional curvatures along
// each edge, projected into the tangent plane. K1 >= K2. Isolated vertices
// and vertices whose tensor cannot be decomposed are left at zero.
func Principal(ctx context.Context, m *mesh.Mesh, opts Options) error {
	if m.IsEmpty() {
		return mesh.ErrEmptyMesh
	}
	eps := opts.epsilon()
	if !m.Has(mesh.CapNormals) {
		m.UpdateNormals()
	}
	topo := m.Topology()

	err := parallel.For(ctx, m.VertexCount(), opts.Workers, func(_ context.Context, lo, hi int) error {
		var nbrs []neighbour
		for v := lo; v < hi; v++ {
			vert := &m.Vertices[v]
			vert.K1, vert.K2 = 0, 0
			vert.PD1, vert.PD2 = v3.Vec{}, v3.Vec{}
			if vert.Flags&mesh.FlagDeleted != 0 {
				continue
			}
			nbrs = neighbours(m, topo.VertexFaces(v), v, eps, nbrs[:0])
			k1, k2, d1, d2, ok := taubin(m, v, nbrs)
			if !ok {
				continue
			}
			vert.K1, vert.K2, vert.PD1, vert.PD2 = k1, k2, d1, d2
		}
		return nil
	})
	if err != nil {
		return err
	}
	m.Enable(mesh.CapPrincipal)
	return nil
}

// neighbours collects the distinct vertices sharing an edge with v. Each
// edge is weighted by the area of the faces around v that contain it.
func neighbours(m *mesh.Mesh, faces []int, v int, eps float64, out []neighbour) []neighbour {
	add := func(u int, w float64) {
		for i := range out {
			if out[i].v == u {
				out[i].weight += w
				return
			}
		}
		out = append(out, neighbour{v: u, weight: w})
	}
	for _, f := range faces {
		double := m.DoubleArea(f)
		if double <= eps {
			continue
		}
		fv := m.Faces[f].V
		for i := 0; i < 3; i++ {
			if fv[i] != v {
				continue
			}
			add(fv[(i+1)%3], double/2)
			add(fv[(i+2)%3], double/2)
			break
		}
	}
	return out
}

func taubin(m *mesh.Mesh, v int, nbrs []neighbour) (k1, k2 float64, d1, d2 v3.Vec, ok bool) {
	n := m.Vertices[v].N
	if len(nbrs) == 0 || n.Length() == 0 {
		return 0, 0, v3.Vec{}, v3.Vec{}, false
	}
	total := 0.0
	for _, nb := range nbrs {
		total += nb.weight
	}
	if total == 0 {
		return 0, 0, v3.Vec{}, v3.Vec{}, false
	}

	p := m.Vertices[v].P
	var t [9]float64
	for _, nb := range nbrs {
		e := m.Vertices[nb.v].P.Sub(p)
		l2 := e.Dot(e)
		if l2 == 0 {
			continue
		}
		// Directional curvature along e, positive where the surface bends
		// away from the normal.
		kappa := -2 * n.Dot(e) / l2
		tan := e.Sub(n.MulScalar(n.Dot(e)))
		tl := tan.Length()
		if tl == 0 {
			continue
		}
		tan = tan.MulScalar(1 / tl)
		w := nb.weight / total * kappa
		c := [3]float64{tan.X, tan.Y, tan.Z}
		for r := 0; r < 3; r++ {
			for s := 0; s < 3; s++ {
				t[r*3+s] += w * c[r] * c[s]
			}
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(mat.NewSymDense(3, t[:]), true) {
		return 0, 0, v3.Vec{}, v3.Vec{}, false
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	col := func(c int) v3.Vec {
		return v3.Vec{X: vecs.At(0, c), Y: vecs.At(1, c), Z: vecs.At(2, c)}
	}
	// The normal is an eigenvector of the tensor; the other two span the
	// tangent plane.
	normal, best := 0, -1.0
	for c := 0; c < 3; c++ {
		if d := math.Abs(col(c).Dot(n)); d > best {
			normal, best = c, d
		}
	}
	var tc []int
	for c := 0; c < 3; c++ {
		if c != normal {
			tc = append(tc, c)
		}
	}
	ma, mb := vals[tc[0]], vals[tc[1]]
	ka, kb := 3*ma-mb, 3*mb-ma
	da, db := col(tc[0]), col(tc[1])
	if ka < kb {
		ka, kb = kb, ka
		da, db = db, da
	}
	return ka, kb, da, db, true
}
