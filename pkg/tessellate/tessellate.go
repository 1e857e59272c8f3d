// Package tessellate turns a backend-neutral CSG shape tree into a welded,
// indexed mesh.Mesh using a geometry kernel.
package tessellate

import (
	"fmt"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/kernel/manifold"
	"github.com/chazu/facet/pkg/kernel/sdfx"
	"github.com/chazu/facet/pkg/mesh"
)

// Kind is the operation a Shape node performs.
type Kind int

const (
	KindBox Kind = iota
	KindSphere
	KindCylinder
	KindUnion
	KindDifference
	KindIntersection
	KindTranslate
	KindRotate
)

var kindNames = [...]string{"box", "sphere", "cylinder", "union", "difference", "intersection", "translate", "rotate"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Shape is a node of a CSG tree. Primitives read Size (box: x, y, z;
// sphere: radius; cylinder: height, radius) and Segments. Translate reads
// Vec as an offset and Rotate as Euler angles in degrees; both take one
// child. Booleans fold their children left to right.
type Shape struct {
	Kind     Kind
	Name     string
	Size     [3]float64
	Segments int
	Vec      [3]float64
	Children []*Shape
}

func Box(x, y, z float64) *Shape {
	return &Shape{Kind: KindBox, Size: [3]float64{x, y, z}}
}

func Sphere(radius float64) *Shape {
	return &Shape{Kind: KindSphere, Size: [3]float64{radius}}
}

func Cylinder(height, radius float64) *Shape {
	return &Shape{Kind: KindCylinder, Size: [3]float64{height, radius}}
}

func Union(a *Shape, rest ...*Shape) *Shape {
	return &Shape{Kind: KindUnion, Children: append([]*Shape{a}, rest...)}
}

// Difference subtracts every later shape from a.
func Difference(a *Shape, rest ...*Shape) *Shape {
	return &Shape{Kind: KindDifference, Children: append([]*Shape{a}, rest...)}
}

func Intersection(a *Shape, rest ...*Shape) *Shape {
	return &Shape{Kind: KindIntersection, Children: append([]*Shape{a}, rest...)}
}

func Translate(s *Shape, x, y, z float64) *Shape {
	return &Shape{Kind: KindTranslate, Vec: [3]float64{x, y, z}, Children: []*Shape{s}}
}

func Rotate(s *Shape, x, y, z float64) *Shape {
	return &Shape{Kind: KindRotate, Vec: [3]float64{x, y, z}, Children: []*Shape{s}}
}

// label names a node in error messages.
func (s *Shape) label() string {
	if s.Name != "" {
		return fmt.Sprintf("%s %q", s.Kind, s.Name)
	}
	return s.Kind.String()
}

// NewKernel returns the kernel for a backend name: "sdfx" (or "") with the
// given marching cubes resolution, or "manifold".
func NewKernel(backend string, cells int) (kernel.Kernel, error) {
	switch backend {
	case "", "sdfx":
		return sdfx.New(cells), nil
	case "manifold":
		return manifold.New()
	default:
		return nil, fmt.Errorf("tessellate: unknown kernel backend %q", backend)
	}
}

// Build evaluates the shape tree into a kernel solid.
func Build(k kernel.Kernel, s *Shape) (kernel.Solid, error) {
	if s == nil {
		return nil, fmt.Errorf("tessellate: nil shape")
	}
	solid, err := walkNode(k, s)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	return solid, nil
}

func walkNode(k kernel.Kernel, s *Shape) (kernel.Solid, error) {
	switch s.Kind {
	case KindBox:
		return k.Box(s.Size[0], s.Size[1], s.Size[2])
	case KindSphere:
		return k.Sphere(s.Size[0], s.Segments)
	case KindCylinder:
		return k.Cylinder(s.Size[0], s.Size[1], s.Segments)

	case KindUnion, KindDifference, KindIntersection:
		return handleBoolean(k, s)

	case KindTranslate, KindRotate:
		if len(s.Children) != 1 {
			return nil, fmt.Errorf("%s takes one shape, got %d", s.label(), len(s.Children))
		}
		child, err := walkNode(k, s.Children[0])
		if err != nil {
			return nil, err
		}
		if s.Kind == KindTranslate {
			return k.Translate(child, s.Vec[0], s.Vec[1], s.Vec[2]), nil
		}
		return k.Rotate(child, s.Vec[0], s.Vec[1], s.Vec[2]), nil

	default:
		return nil, fmt.Errorf("unknown shape kind %v", s.Kind)
	}
}

func handleBoolean(k kernel.Kernel, s *Shape) (kernel.Solid, error) {
	if len(s.Children) == 0 {
		return nil, fmt.Errorf("%s needs at least one shape", s.label())
	}
	acc, err := walkNode(k, s.Children[0])
	if err != nil {
		return nil, err
	}
	for _, c := range s.Children[1:] {
		next, err := walkNode(k, c)
		if err != nil {
			return nil, err
		}
		switch s.Kind {
		case KindUnion:
			acc = k.Union(acc, next)
		case KindDifference:
			acc = k.Difference(acc, next)
		case KindIntersection:
			acc = k.Intersection(acc, next)
		}
	}
	return acc, nil
}

// Tessellate builds s with k, tessellates it and welds the triangles into
// an indexed mesh with the given weld tolerance.
func Tessellate(k kernel.Kernel, s *Shape, tolerance float64) (*mesh.Mesh, error) {
	solid, err := Build(k, s)
	if err != nil {
		return nil, err
	}
	km, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for %s: %w", s.label(), err)
	}
	m, err := mesh.FromKernel(km, tolerance)
	if err != nil {
		return nil, fmt.Errorf("tessellate: weld %s: %w", s.label(), err)
	}
	if m.IsEmpty() {
		return nil, fmt.Errorf("tessellate: %s: %w", s.label(), mesh.ErrEmptyMesh)
	}
	return m, nil
}
