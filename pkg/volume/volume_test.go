package volume

import (
	"context"
	"errors"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/facet/pkg/mesh"
)

func flipped(m *mesh.Mesh) *mesh.Mesh {
	for i := range m.Faces {
		v := m.Faces[i].V
		m.Faces[i].V = [3]int{v[0], v[2], v[1]}
	}
	m.Invalidate()
	return m
}

// box scales the unit cube to the given extents.
func box(x, y, z float64) *mesh.Mesh {
	m := mesh.Cube(1)
	for i := range m.Vertices {
		p := m.Vertices[i].P
		m.Vertices[i].P = v3.Vec{X: p.X * x, Y: p.Y * y, Z: p.Z * z}
	}
	return m
}

func TestVolume(t *testing.T) {
	tests := []struct {
		name string
		m    *mesh.Mesh
		want float64
		tol  float64
	}{
		{"unit cube", mesh.Cube(1), 1, 1e-12},
		{"flipped unit cube", flipped(mesh.Cube(1)), 1, 1e-12},
		{"cube side 3", mesh.Cube(3), 27, 1e-9},
		{"box 1x2x3", box(1, 2, 3), 6, 1e-12},
		{"icosphere", mesh.Icosphere(2, 4), 4.0 / 3 * math.Pi * 8, 0.01 * 4.0 / 3 * math.Pi * 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Volume(context.Background(), tt.m, 0)
			if err != nil {
				t.Fatalf("Volume() error = %v", err)
			}
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("Volume() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVolumeTranslationInvariant(t *testing.T) {
	m := mesh.Cube(1)
	for i := range m.Vertices {
		m.Vertices[i].P = m.Vertices[i].P.Add(v3.Vec{X: 10, Y: -4, Z: 2.5})
	}
	got, err := Volume(context.Background(), m, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("Volume() = %v, want 1", got)
	}
}

func TestVolumeNonManifold(t *testing.T) {
	tests := []struct {
		name     string
		build    func() *mesh.Mesh
		vertices int
		edges    int
	}{
		{"duplicated face", func() *mesh.Mesh {
			m := mesh.Cube(1)
			v := m.Faces[0].V
			if _, err := m.AddFace(v[0], v[1], v[2]); err != nil {
				t.Fatal(err)
			}
			return m
		}, 0, 3},
		{"two cubes touching at a corner", func() *mesh.Mesh {
			a := mesh.Cube(1)
			b := mesh.Cube(1)
			// Share vertex 6 of a with vertex 0 of b.
			base := a.VertexCount()
			for i := range b.Vertices {
				a.AddVertex(b.Vertices[i].P.Add(v3.Vec{X: 1, Y: 1, Z: 1}))
			}
			for _, f := range b.Faces {
				idx := [3]int{}
				for c, v := range f.V {
					idx[c] = base + v
					if v == 0 {
						idx[c] = 6
					}
				}
				if _, err := a.AddFace(idx[0], idx[1], idx[2]); err != nil {
					t.Fatal(err)
				}
			}
			return a
		}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Volume(context.Background(), tt.build(), 0)
			if !errors.Is(err, mesh.ErrNonManifold) {
				t.Fatalf("Volume() = %v, %v, want ErrNonManifold", v, err)
			}
			var me *mesh.ManifoldError
			if !errors.As(err, &me) {
				t.Fatalf("error %T is not *mesh.ManifoldError", err)
			}
			if me.Vertices != tt.vertices || me.Edges != tt.edges {
				t.Errorf("ManifoldError = %+v, want %d vertices %d edges", me, tt.vertices, tt.edges)
			}
		})
	}
}

func TestVolumeEmpty(t *testing.T) {
	if _, err := Volume(context.Background(), &mesh.Mesh{}, 0); !errors.Is(err, mesh.ErrEmptyMesh) {
		t.Errorf("Volume() error = %v, want ErrEmptyMesh", err)
	}
}

func TestInertiaUnitCube(t *testing.T) {
	p, err := Inertia(context.Background(), mesh.Cube(1), 0)
	if err != nil {
		t.Fatalf("Inertia() error = %v", err)
	}
	if math.Abs(p.Volume-1) > 1e-12 {
		t.Errorf("Volume = %v, want 1", p.Volume)
	}
	if math.Abs(p.Area-6) > 1e-12 {
		t.Errorf("Area = %v, want 6", p.Area)
	}
	want := v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}
	if p.Center.Sub(want).Length() > 1e-12 {
		t.Errorf("Center = %v, want %v", p.Center, want)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			w := 0.0
			if i == j {
				w = 1.0 / 6
			}
			if math.Abs(p.Tensor[i][j]-w) > 1e-12 {
				t.Errorf("Tensor[%d][%d] = %v, want %v", i, j, p.Tensor[i][j], w)
			}
		}
	}
}

func TestInertiaBox(t *testing.T) {
	m := flipped(box(1, 2, 3))
	p, err := Inertia(context.Background(), m, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Flipped {
		t.Error("Flipped = false for an inward-wound box")
	}
	if math.Abs(p.Volume-6) > 1e-12 {
		t.Errorf("Volume = %v, want 6", p.Volume)
	}
	// I = m/12 * (b^2 + c^2) per axis, ascending.
	want := [3]float64{6.0 / 12 * 5, 6.0 / 12 * 10, 6.0 / 12 * 13}
	for i := range want {
		if math.Abs(p.Principal[i]-want[i]) > 1e-9 {
			t.Errorf("Principal = %v, want %v", p.Principal, want)
			break
		}
	}
	// The smallest moment is about the long (z) axis.
	if math.Abs(math.Abs(p.Axes[0].Z)-1) > 1e-9 {
		t.Errorf("Axes[0] = %v, want +-Z", p.Axes[0])
	}
}

func TestInertiaSphere(t *testing.T) {
	const r = 1.0
	p, err := Inertia(context.Background(), mesh.Icosphere(r, 4), 0)
	if err != nil {
		t.Fatal(err)
	}
	if p.Center.Length() > 1e-9 {
		t.Errorf("Center = %v, want origin", p.Center)
	}
	// Solid sphere: I = 2/5 m r^2, using the mesh's own volume as mass.
	want := 0.4 * p.Volume * r * r
	for i, v := range p.Principal {
		if math.Abs(v-want) > 0.02*want {
			t.Errorf("Principal[%d] = %v, want about %v", i, v, want)
		}
	}
}

func TestInertiaOpenSheetHasNoVolume(t *testing.T) {
	if _, err := Inertia(context.Background(), mesh.Grid(2, 2, 1), 0); !errors.Is(err, ErrZeroVolume) {
		t.Errorf("Inertia() error = %v, want ErrZeroVolume", err)
	}
}
