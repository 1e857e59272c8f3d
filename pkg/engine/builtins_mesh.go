package engine

import (
	"fmt"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/facet/pkg/curvature"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/mesh"
)

// maxSubdivisions keeps icosphere below ~1.3M faces.
const maxSubdivisions = 8

func registerMeshBuiltins(env *zygo.Zlisp, s *session) {

	// -----------------------------------------------------------------------
	// (mesh [[0 0 0] [1 0 0] [0 1 0]] [[0 1 2]])
	// -----------------------------------------------------------------------
	env.AddFunction("mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		vs, okV := pa.arg("vertices", 0)
		fs, okF := pa.arg("faces", 1)
		if !okV || !okF {
			return zygo.SexpNull, fmt.Errorf("mesh requires vertices and faces")
		}

		points, err := toPoints(vs)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: vertices: %w", err)
		}
		faces, err := toFaces(fs)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: faces: %w", err)
		}
		m, err := mesh.FromPoints(points, faces)
		if err != nil {
			return zygo.SexpNull, err
		}

		eps := s.opts.Analysis.AreaEpsilon
		if eps <= 0 {
			eps = curvature.DefaultAreaEpsilon
		}
		_, warnings := m.Validate(eps)
		for _, w := range warnings {
			s.warn("mesh", "%s", w)
		}

		return &sexpMesh{m: m}, nil
	})

	// -----------------------------------------------------------------------
	// (cube 2)
	// -----------------------------------------------------------------------
	env.AddFunction("cube", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		side, err := pa.float("side", 0, 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cube: %w", err)
		}
		if err := kernel.Positive("cube", side); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpMesh{m: mesh.Cube(side)}, nil
	})

	// -----------------------------------------------------------------------
	// (icosphere :radius 1 :subdivisions 3)
	// -----------------------------------------------------------------------
	env.AddFunction("icosphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		radius, err := pa.float("radius", 0, 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("icosphere: %w", err)
		}
		if err := kernel.Positive("icosphere", radius); err != nil {
			return zygo.SexpNull, err
		}
		sub, err := pa.integer("subdivisions", 1, 2)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("icosphere: %w", err)
		}
		if sub < 0 || sub > maxSubdivisions {
			return zygo.SexpNull, fmt.Errorf("icosphere: subdivisions %d out of range [0, %d]", sub, maxSubdivisions)
		}
		return &sexpMesh{m: mesh.Icosphere(radius, sub)}, nil
	})

	// -----------------------------------------------------------------------
	// (grid 4 4 :spacing 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("grid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		nx, err := pa.integer("nx", 0, 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("grid: %w", err)
		}
		ny, err := pa.integer("ny", 1, nx)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("grid: %w", err)
		}
		if nx < 1 || ny < 1 {
			return zygo.SexpNull, fmt.Errorf("grid: needs at least one quad each way, got %dx%d", nx, ny)
		}
		spacing, err := pa.float("spacing", 2, 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("grid: %w", err)
		}
		if err := kernel.Positive("grid spacing", spacing); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpMesh{m: mesh.Grid(nx, ny, spacing)}, nil
	})

	// -----------------------------------------------------------------------
	// (vertices m) and (faces m)
	// -----------------------------------------------------------------------
	env.AddFunction("vertices", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("vertices requires a mesh")
		}
		m, err := toMesh(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vertices: %w", err)
		}
		items := make([]zygo.Sexp, m.VertexCount())
		for i := range items {
			items[i] = vecList(m.Position(i))
		}
		return zygo.MakeList(items), nil
	})

	env.AddFunction("faces", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("faces requires a mesh")
		}
		m, err := toMesh(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("faces: %w", err)
		}
		items := make([]zygo.Sexp, m.FaceCount())
		for i, f := range m.Triangles() {
			items[i] = zygo.MakeList([]zygo.Sexp{
				&zygo.SexpInt{Val: int64(f[0])},
				&zygo.SexpInt{Val: int64(f[1])},
				&zygo.SexpInt{Val: int64(f[2])},
			})
		}
		return zygo.MakeList(items), nil
	})
}
