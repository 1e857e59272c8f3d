package mesh

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/facet/pkg/kernel"
)

// DefaultWeldTolerance is the grid size used when welding with a
// non-positive tolerance.
const DefaultWeldTolerance = 1e-6

type weldKey [3]int64

// Weld merges the corners of a triangle soup that fall in the same cell of a
// grid of size tolerance, and drops triangles that collapse to a point or a
// segment. Vertices are numbered in order of first appearance.
func Weld(triangles [][3]v3.Vec, tolerance float64) *Mesh {
	if tolerance <= 0 {
		tolerance = DefaultWeldTolerance
	}
	index := make(map[weldKey]int, len(triangles))
	m := &Mesh{
		Vertices: make([]Vertex, 0, len(triangles)/2+3),
		Faces:    make([]Face, 0, len(triangles)),
	}

	lookup := func(p v3.Vec) int {
		k := weldKey{
			int64(math.Round(p.X / tolerance)),
			int64(math.Round(p.Y / tolerance)),
			int64(math.Round(p.Z / tolerance)),
		}
		if i, ok := index[k]; ok {
			return i
		}
		i := len(m.Vertices)
		index[k] = i
		m.Vertices = append(m.Vertices, Vertex{P: p})
		return i
	}

	for _, tri := range triangles {
		a, b, c := lookup(tri[0]), lookup(tri[1]), lookup(tri[2])
		if a == b || b == c || c == a {
			continue
		}
		m.Faces = append(m.Faces, Face{V: [3]int{a, b, c}})
	}
	return m
}

// WeldFlat welds a flat vertex/index array pair (3 floats per vertex, 3
// indices per triangle), the layout geometry kernels produce.
func WeldFlat(vertices []float32, indices []uint32, tolerance float64) (*Mesh, error) {
	if len(vertices)%3 != 0 || len(indices)%3 != 0 {
		return nil, fmt.Errorf("mesh: weld: array lengths %d/%d are not multiples of 3",
			len(vertices), len(indices))
	}
	nv := uint32(len(vertices) / 3)
	tris := make([][3]v3.Vec, len(indices)/3)
	for t := range tris {
		for c := 0; c < 3; c++ {
			i := indices[t*3+c]
			if i >= nv {
				return nil, &IndexError{Face: t, Corner: c, Index: int(i), VertexCount: int(nv)}
			}
			tris[t][c] = v3.Vec{
				X: float64(vertices[i*3]),
				Y: float64(vertices[i*3+1]),
				Z: float64(vertices[i*3+2]),
			}
		}
	}
	return Weld(tris, tolerance), nil
}

// FromKernel welds the flat output of a geometry kernel.
func FromKernel(km *kernel.Mesh, tolerance float64) (*Mesh, error) {
	return WeldFlat(km.Vertices, km.Indices, tolerance)
}
