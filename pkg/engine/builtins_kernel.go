package engine

import (
	"fmt"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/tessellate"
)

// shapes reads the positional shape arguments of a boolean builtin.
func shapes(builtin string, args []zygo.Sexp) ([]*tessellate.Shape, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("%s requires at least two shapes, got %d", builtin, len(args))
	}
	out := make([]*tessellate.Shape, len(args))
	for i, a := range args {
		sh, err := toShape(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", builtin, i, err)
		}
		out[i] = sh
	}
	return out, nil
}

// transform reads (op shape x y z).
func transform(builtin string, args []zygo.Sexp) (*tessellate.Shape, [3]float64, error) {
	var v [3]float64
	if len(args) != 4 {
		return nil, v, fmt.Errorf("%s requires a shape and three numbers, got %d arguments", builtin, len(args))
	}
	sh, err := toShape(args[0])
	if err != nil {
		return nil, v, fmt.Errorf("%s: %w", builtin, err)
	}
	for i := range v {
		if v[i], err = toFloat64(args[i+1]); err != nil {
			return nil, v, fmt.Errorf("%s: %w", builtin, err)
		}
	}
	return sh, v, nil
}

func registerKernelBuiltins(env *zygo.Zlisp, s *session) {

	// -----------------------------------------------------------------------
	// (box 10 20 5)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var size [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := pa.float(axis, i, 0)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: %w", err)
			}
			size[i] = f
		}
		if err := kernel.Positive("box", size[:]...); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{shape: tessellate.Box(size[0], size[1], size[2])}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere 5 :segments 32)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		radius, err := pa.float("radius", 0, 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		if err := kernel.Positive("sphere", radius); err != nil {
			return zygo.SexpNull, err
		}
		seg, err := pa.integer("segments", -1, 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		sh := tessellate.Sphere(radius)
		sh.Segments = seg
		return &sexpShape{shape: sh}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder 20 4 :segments 32)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		height, err := pa.float("height", 0, 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		radius, err := pa.float("radius", 1, 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		if err := kernel.Positive("cylinder", height, radius); err != nil {
			return zygo.SexpNull, err
		}
		seg, err := pa.integer("segments", -1, 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		sh := tessellate.Cylinder(height, radius)
		sh.Segments = seg
		return &sexpShape{shape: sh}, nil
	})

	// -----------------------------------------------------------------------
	// (union a b ...), (difference a b ...), (intersection a b ...)
	// -----------------------------------------------------------------------
	booleans := []struct {
		name string
		op   func(*tessellate.Shape, ...*tessellate.Shape) *tessellate.Shape
	}{
		{"union", tessellate.Union},
		{"difference", tessellate.Difference},
		{"intersection", tessellate.Intersection},
	}
	for _, b := range booleans {
		env.AddFunction(b.name, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			in, err := shapes(b.name, args)
			if err != nil {
				return zygo.SexpNull, err
			}
			return &sexpShape{shape: b.op(in[0], in[1:]...)}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (translate shape x y z) and (rotate shape x y z), angles in degrees
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		sh, v, err := transform("translate", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{shape: tessellate.Translate(sh, v[0], v[1], v[2])}, nil
	})

	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		sh, v, err := transform("rotate", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{shape: tessellate.Rotate(sh, v[0], v[1], v[2])}, nil
	})

	// -----------------------------------------------------------------------
	// (tessellate shape :cells 48)
	// -----------------------------------------------------------------------
	env.AddFunction("tessellate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		v, ok := pa.arg("shape", 0)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("tessellate requires a shape")
		}
		sh, err := toShape(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tessellate: %w", err)
		}
		cells, err := pa.integer("cells", -1, s.opts.MeshCells)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tessellate: %w", err)
		}

		k, err := tessellate.NewKernel(s.opts.Backend, cells)
		if err != nil {
			return zygo.SexpNull, err
		}
		m, err := tessellate.Tessellate(k, sh, s.opts.weldTolerance())
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpMesh{m: m}, nil
	})
}
