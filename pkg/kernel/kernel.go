// Package kernel defines the solid-modelling interface used to generate
// meshes for analysis. Backends (sdfx, manifold) build primitive solids,
// combine them with booleans and transforms, and tessellate the result
// into a flat triangle mesh.
package kernel

import (
	"errors"
	"fmt"
)

// ErrInvalidDimension is returned when a primitive is asked for a
// non-positive size.
var ErrInvalidDimension = errors.New("kernel: invalid dimension")

// Solid is an opaque handle to a backend solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel builds and tessellates solids.
//
// Box places its minimum corner at the origin. Sphere and Cylinder are
// centred on the origin, the cylinder's axis along Z. segments is the
// number of facets around a circle for backends that build polygonal
// primitives; implicit backends ignore it.
type Kernel interface {
	Box(x, y, z float64) (Solid, error)
	Sphere(radius float64, segments int) (Solid, error)
	Cylinder(height, radius float64, segments int) (Solid, error)

	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees, applied X then Y then Z

	ToMesh(s Solid) (*Mesh, error)
}

// Positive returns an error wrapping ErrInvalidDimension unless every value
// is strictly positive.
func Positive(what string, values ...float64) error {
	for _, v := range values {
		if !(v > 0) {
			return fmt.Errorf("%w: %s needs positive sizes, got %v", ErrInvalidDimension, what, values)
		}
	}
	return nil
}
