//go:build manifold

// Package manifold implements kernel.Kernel on the Manifold C library
// (manifoldc), whose booleans always produce closed manifold meshes. That
// makes it the backend of choice when the volume pipeline needs a clean
// input.
//
// Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/chazu/facet/pkg/kernel"
)

var _ kernel.Kernel = (*Kernel)(nil)

// DefaultSegments is used when a round primitive is requested with fewer
// than three segments.
const DefaultSegments = 48

type solid struct {
	ptr *C.ManifoldManifold
}

func (s *solid) BoundingBox() (min, max [3]float64) {
	bbox := C.manifold_bounding_box(C.manifold_alloc_box(), s.ptr)
	defer C.manifold_delete_box(bbox)

	min = [3]float64{
		float64(C.manifold_box_min_x(bbox)),
		float64(C.manifold_box_min_y(bbox)),
		float64(C.manifold_box_min_z(bbox)),
	}
	max = [3]float64{
		float64(C.manifold_box_max_x(bbox)),
		float64(C.manifold_box_max_y(bbox)),
		float64(C.manifold_box_max_z(bbox)),
	}
	return min, max
}

// newSolid takes ownership of ptr and frees it when the solid is collected.
func newSolid(ptr *C.ManifoldManifold) *solid {
	s := &solid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *solid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

func ptr(s kernel.Solid) *C.ManifoldManifold {
	return s.(*solid).ptr
}

// Kernel is the Manifold backend.
type Kernel struct{}

// New returns a Manifold kernel.
func New() (kernel.Kernel, error) {
	return &Kernel{}, nil
}

func segments(n int) C.int {
	if n < 3 {
		n = DefaultSegments
	}
	return C.int(n)
}

// Box builds a box with its minimum corner at the origin.
func (k *Kernel) Box(x, y, z float64) (kernel.Solid, error) {
	if err := kernel.Positive("box", x, y, z); err != nil {
		return nil, err
	}
	p := C.manifold_cube(C.manifold_alloc_manifold(), C.double(x), C.double(y), C.double(z), C.int(0))
	return newSolid(p), nil
}

func (k *Kernel) Sphere(radius float64, n int) (kernel.Solid, error) {
	if err := kernel.Positive("sphere", radius); err != nil {
		return nil, err
	}
	p := C.manifold_sphere(C.manifold_alloc_manifold(), C.double(radius), segments(n))
	return newSolid(p), nil
}

// Cylinder builds a Z-axis cylinder centred on the origin.
func (k *Kernel) Cylinder(height, radius float64, n int) (kernel.Solid, error) {
	if err := kernel.Positive("cylinder", height, radius); err != nil {
		return nil, err
	}
	p := C.manifold_cylinder(C.manifold_alloc_manifold(),
		C.double(height), C.double(radius), C.double(radius), segments(n), C.int(1))
	return newSolid(p), nil
}

func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	return newSolid(C.manifold_union(C.manifold_alloc_manifold(), ptr(a), ptr(b)))
}

func (k *Kernel) Difference(a, b kernel.Solid) kernel.Solid {
	return newSolid(C.manifold_difference(C.manifold_alloc_manifold(), ptr(a), ptr(b)))
}

func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return newSolid(C.manifold_intersection(C.manifold_alloc_manifold(), ptr(a), ptr(b)))
}

func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return newSolid(C.manifold_translate(C.manifold_alloc_manifold(), ptr(s),
		C.double(x), C.double(y), C.double(z)))
}

func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return newSolid(C.manifold_rotate(C.manifold_alloc_manifold(), ptr(s),
		C.double(x), C.double(y), C.double(z)))
}

// ToMesh reads the solid's MeshGL. Unlike the SDF backend the result is
// already indexed: vertices are shared between triangles.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	gl := C.manifold_get_meshgl(C.manifold_alloc_meshgl(), ptr(s))
	defer C.manifold_delete_meshgl(gl)

	numVert := int(C.manifold_meshgl_num_vert(gl))
	numTri := int(C.manifold_meshgl_num_tri(gl))
	if numVert == 0 || numTri == 0 {
		return nil, fmt.Errorf("manifold: solid has no triangles")
	}

	// Properties are interleaved per vertex; the first three are position.
	numProp := int(C.manifold_meshgl_num_prop(gl))
	props := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties((*C.float)(unsafe.Pointer(&props[0])), gl)

	indices := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts((*C.uint32_t)(unsafe.Pointer(&indices[0])), gl)

	vertices := make([]float32, numVert*3)
	for i := 0; i < numVert; i++ {
		copy(vertices[i*3:i*3+3], props[i*numProp:i*numProp+3])
	}
	for t, idx := range indices {
		if int(idx) >= numVert {
			return nil, fmt.Errorf("manifold: triangle %d references vertex %d of %d", t/3, idx, numVert)
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  vertexNormals(vertices, indices),
		Indices:  indices,
	}, nil
}

// vertexNormals averages the area-weighted triangle normals at each vertex.
func vertexNormals(vertices []float32, indices []uint32) []float32 {
	acc := make([]float64, len(vertices))
	for t := 0; t+2 < len(indices); t += 3 {
		var p [3][3]float64
		for c := 0; c < 3; c++ {
			i := indices[t+c] * 3
			p[c] = [3]float64{float64(vertices[i]), float64(vertices[i+1]), float64(vertices[i+2])}
		}
		e1 := [3]float64{p[1][0] - p[0][0], p[1][1] - p[0][1], p[1][2] - p[0][2]}
		e2 := [3]float64{p[2][0] - p[0][0], p[2][1] - p[0][1], p[2][2] - p[0][2]}
		n := [3]float64{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}
		for c := 0; c < 3; c++ {
			i := indices[t+c] * 3
			acc[i] += n[0]
			acc[i+1] += n[1]
			acc[i+2] += n[2]
		}
	}
	out := make([]float32, len(vertices))
	for i := 0; i+2 < len(acc); i += 3 {
		l := math.Sqrt(acc[i]*acc[i] + acc[i+1]*acc[i+1] + acc[i+2]*acc[i+2])
		if l < 1e-12 {
			continue
		}
		out[i], out[i+1], out[i+2] = float32(acc[i]/l), float32(acc[i+1]/l), float32(acc[i+2]/l)
	}
	return out
}
