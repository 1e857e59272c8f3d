package tessellate_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/kernel/sdfx"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/chazu/facet/pkg/resolution"
	"github.com/chazu/facet/pkg/tessellate"
	"github.com/chazu/facet/pkg/volume"
)

// newKernel returns a coarse sdfx kernel so the tests stay fast.
func newKernel() kernel.Kernel {
	return sdfx.New(24)
}

func TestBoxVolume(t *testing.T) {
	m, err := tessellate.Tessellate(newKernel(), tessellate.Box(10, 10, 10), 0)
	if err != nil {
		t.Fatalf("Tessellate() error = %v", err)
	}
	info := mesh.Describe(m)
	t.Logf("box: %+v", info)
	if err := volume.Check(m); err != nil {
		t.Skipf("marching cubes output not manifold: %v", err)
	}
	v, err := volume.Volume(context.Background(), m, 0)
	if err != nil {
		t.Fatalf("Volume() error = %v", err)
	}
	// Marching cubes bevels the box edges, so allow a few percent.
	if math.Abs(v-1000) > 50 {
		t.Errorf("Volume() = %f, want about 1000", v)
	}
}

func TestWeldSharesVertices(t *testing.T) {
	k := newKernel()
	s, err := tessellate.Build(k, tessellate.Sphere(5))
	if err != nil {
		t.Fatal(err)
	}
	soup, err := k.ToMesh(s)
	if err != nil {
		t.Fatal(err)
	}
	m, err := mesh.FromKernel(soup, 0)
	if err != nil {
		t.Fatal(err)
	}
	if m.VertexCount() >= soup.VertexCount() {
		t.Errorf("welded %d vertices, soup had %d; want fewer", m.VertexCount(), soup.VertexCount())
	}
	if m.FaceCount() > soup.TriangleCount() {
		t.Errorf("welded %d faces, soup had %d triangles", m.FaceCount(), soup.TriangleCount())
	}
	// Closed surface: interior edges are shared, so V is roughly F/2.
	if m.VertexCount() > m.FaceCount() {
		t.Errorf("welded %d vertices for %d faces, want about half", m.VertexCount(), m.FaceCount())
	}
}

func TestSphereResolution(t *testing.T) {
	m, err := tessellate.Tessellate(newKernel(), tessellate.Sphere(5), 0)
	if err != nil {
		t.Fatal(err)
	}
	r, err := resolution.Estimate(context.Background(), m, 0)
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	// 24 cells across a padded diameter of 10 gives cells of about half a
	// unit; marching cubes edges are shorter than a cell diagonal.
	if r.Mean <= 0 || r.Max > 1.5 {
		t.Errorf("edge lengths mean %f max %f, want within a cell", r.Mean, r.Max)
	}
}

func TestTranslatedBoxBounds(t *testing.T) {
	shape := tessellate.Translate(tessellate.Box(100, 50, 10), 200, 100, 50)
	m, err := tessellate.Tessellate(newKernel(), shape, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Box has its min corner at the origin, so it spans (200,100,50)-(300,150,60).
	min, max := m.BoundingBox()
	const tol = 5.0
	if math.Abs(min.X-200) > tol || math.Abs(min.Y-100) > tol || math.Abs(min.Z-50) > tol {
		t.Errorf("min = %v, want near (200, 100, 50)", min)
	}
	if math.Abs(max.X-300) > tol || math.Abs(max.Y-150) > tol || math.Abs(max.Z-60) > tol {
		t.Errorf("max = %v, want near (300, 150, 60)", max)
	}
}

func TestBooleans(t *testing.T) {
	k := newKernel()
	tests := []struct {
		name  string
		shape *tessellate.Shape
	}{
		{"union", tessellate.Union(tessellate.Box(10, 10, 10), tessellate.Translate(tessellate.Box(10, 10, 10), 5, 0, 0))},
		{"difference", tessellate.Difference(tessellate.Box(10, 10, 10), tessellate.Translate(tessellate.Cylinder(20, 3), 5, 5, 5))},
		{"intersection", tessellate.Intersection(tessellate.Sphere(6), tessellate.Translate(tessellate.Box(10, 10, 10), -5, -5, -5))},
		{"rotated", tessellate.Rotate(tessellate.Box(20, 4, 4), 0, 0, 45)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := tessellate.Tessellate(k, tt.shape, 0)
			if err != nil {
				t.Fatalf("Tessellate() error = %v", err)
			}
			if m.IsEmpty() {
				t.Fatal("mesh is empty")
			}
			t.Logf("%s: %d vertices, %d faces", tt.name, m.VertexCount(), m.FaceCount())
		})
	}
}

func TestBuildErrors(t *testing.T) {
	k := newKernel()
	tests := []struct {
		name  string
		shape *tessellate.Shape
		is    error
	}{
		{"nil", nil, nil},
		{"zero box", tessellate.Box(0, 1, 1), kernel.ErrInvalidDimension},
		{"negative sphere inside union", tessellate.Union(tessellate.Box(1, 1, 1), tessellate.Sphere(-1)), kernel.ErrInvalidDimension},
		{"empty boolean", &tessellate.Shape{Kind: tessellate.KindUnion}, nil},
		{"translate without child", &tessellate.Shape{Kind: tessellate.KindTranslate}, nil},
		{"unknown kind", &tessellate.Shape{Kind: tessellate.Kind(99)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tessellate.Build(k, tt.shape)
			if err == nil {
				t.Fatal("Build() error = nil, want error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("Build() error = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestNewKernel(t *testing.T) {
	for _, name := range []string{"", "sdfx"} {
		k, err := tessellate.NewKernel(name, 10)
		if err != nil || k == nil {
			t.Errorf("NewKernel(%q) = %v, %v", name, k, err)
		}
	}
	if _, err := tessellate.NewKernel("cgal", 0); err == nil {
		t.Error("NewKernel(\"cgal\") error = nil, want unknown backend")
	}
}

func TestKindString(t *testing.T) {
	if got := tessellate.KindDifference.String(); got != "difference" {
		t.Errorf("String() = %q, want %q", got, "difference")
	}
	if got := tessellate.Kind(42).String(); got != "Kind(42)" {
		t.Errorf("String() = %q, want %q", got, "Kind(42)")
	}
}
