package analysis

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/chazu/facet/pkg/curvature"
	"github.com/chazu/facet/pkg/mesh"
)

// unitCube returns the unit cube as plain arrays.
func unitCube() ([][3]float64, [][3]int) {
	m := mesh.Cube(1)
	return m.Points(), m.Triangles()
}

func equilateral(side float64) ([][3]float64, [][3]int) {
	return [][3]float64{
			{0, 0, 0},
			{side, 0, 0},
			{side / 2, side * math.Sqrt(3) / 2, 0},
		},
		[][3]int{{0, 1, 2}}
}

func TestInvalidIndexFailsEveryPipeline(t *testing.T) {
	ctx := context.Background()
	vertices, faces := unitCube()
	// Index equal to the vertex count is the first invalid one.
	faces[5] = [3]int{0, 1, len(vertices)}

	checks := []struct {
		name string
		run  func() error
	}{
		{"curvature", func() error { _, err := Curvature(ctx, vertices, faces, Options{}); return err }},
		{"resolution", func() error { _, err := MeshResolution(ctx, vertices, faces, Options{}); return err }},
		{"volume", func() error { _, err := MeshVolume(ctx, vertices, faces, Options{}); return err }},
		{"inertia", func() error { _, err := MeshInertia(ctx, vertices, faces, Options{}); return err }},
		{"info", func() error { _, err := MeshInfo(vertices, faces, Options{}); return err }},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			err := c.run()
			if !errors.Is(err, mesh.ErrInvalidIndex) {
				t.Fatalf("error = %v, want ErrInvalidIndex", err)
			}
			var ie *mesh.IndexError
			if !errors.As(err, &ie) {
				t.Fatalf("error %T is not *mesh.IndexError", err)
			}
			if ie.Face != 5 || ie.Index != len(vertices) {
				t.Errorf("IndexError face=%d index=%d, want face=5 index=%d", ie.Face, ie.Index, len(vertices))
			}
		})
	}
}

func TestNoFacesIsEmpty(t *testing.T) {
	ctx := context.Background()
	vertices := [][3]float64{{0, 0, 0}, {1, 0, 0}}

	if _, err := Curvature(ctx, vertices, nil, Options{}); !errors.Is(err, mesh.ErrEmptyMesh) {
		t.Errorf("Curvature() error = %v, want ErrEmptyMesh", err)
	}
	if _, err := MeshResolution(ctx, vertices, nil, Options{}); !errors.Is(err, mesh.ErrEmptyMesh) {
		t.Errorf("MeshResolution() error = %v, want ErrEmptyMesh", err)
	}
	if _, err := MeshVolume(ctx, nil, nil, Options{}); !errors.Is(err, mesh.ErrEmptyMesh) {
		t.Errorf("MeshVolume() error = %v, want ErrEmptyMesh", err)
	}
}

func TestMeshVolumeUnitCube(t *testing.T) {
	vertices, faces := unitCube()
	got, err := MeshVolume(context.Background(), vertices, faces, Options{})
	if err != nil {
		t.Fatalf("MeshVolume() error = %v", err)
	}
	if math.Abs(got-1) > 1e-12 {
		t.Errorf("MeshVolume() = %v, want 1", got)
	}
}

func TestMeshVolumeDuplicatedFace(t *testing.T) {
	vertices, faces := unitCube()
	faces = append(faces, faces[0])

	_, err := MeshVolume(context.Background(), vertices, faces, Options{})
	if !errors.Is(err, mesh.ErrNonManifold) {
		t.Fatalf("MeshVolume() error = %v, want ErrNonManifold", err)
	}
	var me *mesh.ManifoldError
	if !errors.As(err, &me) || me.Edges == 0 {
		t.Errorf("error = %v, want a ManifoldError with non-manifold edges", err)
	}
}

func TestMeshResolutionEquilateral(t *testing.T) {
	const side = 2.5
	vertices, faces := equilateral(side)

	res, err := MeshResolution(context.Background(), vertices, faces, Options{})
	if err != nil {
		t.Fatalf("MeshResolution() error = %v", err)
	}
	if math.Abs(res.Mean-side) > 1e-12 {
		t.Errorf("Mean = %v, want %v", res.Mean, side)
	}
	if len(res.EdgeLengths) != 3 {
		t.Fatalf("got %d edge lengths, want 3", len(res.EdgeLengths))
	}
	for i, l := range res.EdgeLengths {
		if math.Abs(l-side) > 1e-12 {
			t.Errorf("EdgeLengths[%d] = %v, want %v", i, l, side)
		}
	}
	if res.StdDev > 1e-12 {
		t.Errorf("StdDev = %v, want 0", res.StdDev)
	}
}

func TestCurvatureFlatSheet(t *testing.T) {
	g := mesh.Grid(4, 4, 1)
	res, err := Curvature(context.Background(), g.Points(), g.Triangles(), Options{Principal: true})
	if err != nil {
		t.Fatalf("Curvature() error = %v", err)
	}

	if len(res.Gauss) != g.VertexCount() || len(res.FaceGaussMax) != g.FaceCount() {
		t.Fatalf("result lengths %d/%d, want %d/%d",
			len(res.Gauss), len(res.FaceGaussMax), g.VertexCount(), g.FaceCount())
	}
	for i := range res.Gauss {
		if math.Abs(res.Gauss[i]) > 1e-9 || math.Abs(res.Mean[i]) > 1e-9 {
			t.Errorf("vertex %d: Kg=%v Kh=%v, want 0", i, res.Gauss[i], res.Mean[i])
		}
		if math.Abs(res.K1[i]) > 1e-9 || math.Abs(res.K2[i]) > 1e-9 {
			t.Errorf("vertex %d: K1=%v K2=%v, want 0", i, res.K1[i], res.K2[i])
		}
	}

	borders := 0
	for _, b := range res.VertexBorder {
		if b {
			borders++
		}
	}
	if borders != 16 {
		t.Errorf("border vertices = %d, want 16", borders)
	}
}

func TestCurvatureSphere(t *testing.T) {
	const r = 3.0
	s := mesh.Icosphere(r, 3)
	res, err := Curvature(context.Background(), s.Points(), s.Triangles(), Options{Workers: 2})
	if err != nil {
		t.Fatalf("Curvature() error = %v", err)
	}
	if res.K1 != nil || res.K2 != nil {
		t.Error("principal curvatures computed without Options.Principal")
	}

	mean := 0.0
	for _, h := range res.Mean {
		mean += h
	}
	mean /= float64(len(res.Mean))
	if math.Abs(mean-1/r)/(1/r) > 0.05 {
		t.Errorf("mean Kh = %v, want ~%v", mean, 1/r)
	}
	for f, b := range res.FaceBorder {
		if b {
			t.Errorf("face %d is marked border on a closed sphere", f)
		}
	}
	for i, q := range res.RMS {
		if q < 0 || math.IsNaN(q) {
			t.Errorf("RMS[%d] = %v", i, q)
		}
	}
}

func TestCurvatureAggregateModes(t *testing.T) {
	// Inward winding makes Kh negative everywhere; the legacy comparison then
	// never replaces the first corner.
	s := mesh.Icosphere(1, 1)
	faces := s.Triangles()
	for i, f := range faces {
		faces[i] = [3]int{f[0], f[2], f[1]}
	}

	ctx := context.Background()
	legacy, err := Curvature(ctx, s.Points(), faces, Options{Aggregate: curvature.AggregateLegacy})
	if err != nil {
		t.Fatalf("Curvature(legacy) error = %v", err)
	}
	for f, face := range faces {
		if got, want := legacy.FaceMeanMax[f], legacy.Mean[face[0]]; got != want {
			t.Errorf("legacy face %d: FaceMeanMax = %v, want first corner %v", f, got, want)
		}
	}

	abs, err := Curvature(ctx, s.Points(), faces, Options{})
	if err != nil {
		t.Fatalf("Curvature(abs) error = %v", err)
	}
	for f, face := range faces {
		want := abs.Mean[face[0]]
		for _, v := range face[1:] {
			if math.Abs(want) < math.Abs(abs.Mean[v]) {
				want = abs.Mean[v]
			}
		}
		if got := abs.FaceMeanMax[f]; got != want {
			t.Errorf("abs face %d: FaceMeanMax = %v, want %v", f, got, want)
		}
	}
}

func TestMeshInertiaCube(t *testing.T) {
	vertices, faces := unitCube()
	mp, err := MeshInertia(context.Background(), vertices, faces, Options{})
	if err != nil {
		t.Fatalf("MeshInertia() error = %v", err)
	}
	if math.Abs(mp.Volume-1) > 1e-12 {
		t.Errorf("Volume = %v, want 1", mp.Volume)
	}
	if math.Abs(mp.Area-6) > 1e-12 {
		t.Errorf("Area = %v, want 6", mp.Area)
	}
	for i, c := range []float64{mp.Center.X, mp.Center.Y, mp.Center.Z} {
		if math.Abs(c-0.5) > 1e-12 {
			t.Errorf("Center[%d] = %v, want 0.5", i, c)
		}
	}
}

func TestMeshInfo(t *testing.T) {
	vertices, faces := unitCube()
	vertices = append(vertices, [3]float64{9, 9, 9})

	r, err := MeshInfo(vertices, faces, Options{})
	if err != nil {
		t.Fatalf("MeshInfo() error = %v", err)
	}
	if r.Faces != 12 || r.Edges != 18 {
		t.Errorf("faces/edges = %d/%d, want 12/18", r.Faces, r.Edges)
	}
	if !r.Watertight || !r.Oriented {
		t.Errorf("watertight=%v oriented=%v, want both true", r.Watertight, r.Oriented)
	}
	if r.Max != [3]float64{9, 9, 9} {
		t.Errorf("Max = %v, want [9 9 9]", r.Max)
	}
	if len(r.Warnings) != 1 {
		t.Errorf("warnings = %v, want one unused-vertex warning", r.Warnings)
	}
}
