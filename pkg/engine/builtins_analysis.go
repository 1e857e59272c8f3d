package engine

import (
	"fmt"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/facet/pkg/analysis"
	"github.com/chazu/facet/pkg/curvature"
)

// meshArg reads the mesh every analysis builtin takes first.
func meshArg(builtin string, pa kwArgs) ([][3]float64, [][3]int, error) {
	v, ok := pa.arg("mesh", 0)
	if !ok {
		return nil, nil, fmt.Errorf("%s requires a mesh", builtin)
	}
	m, err := toMesh(v)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", builtin, err)
	}
	return m.Points(), m.Triangles(), nil
}

func registerAnalysisBuiltins(env *zygo.Zlisp, s *session) {

	// -----------------------------------------------------------------------
	// (curvature m :aggregate :legacy :principal true)
	// -----------------------------------------------------------------------
	env.AddFunction("curvature", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		vertices, faces, err := meshArg("curvature", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		opts := s.opts.Analysis
		if v, ok := pa.kw["aggregate"]; ok {
			mode, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("curvature: aggregate: %w", err)
			}
			if opts.Aggregate, err = curvature.ParseAggregate(mode); err != nil {
				return zygo.SexpNull, err
			}
		}
		if v, ok := pa.kw["principal"]; ok {
			if opts.Principal, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("curvature: principal: %w", err)
			}
		}

		res, err := analysis.Curvature(s.ctx, vertices, faces, opts)
		if err != nil {
			return zygo.SexpNull, err
		}

		rec := newRecord("curvature")
		rec.set("gauss", floatList(res.Gauss))
		rec.set("mean", floatList(res.Mean))
		rec.set("rms", floatList(res.RMS))
		rec.set("face-gauss-max", floatList(res.FaceGaussMax))
		rec.set("face-mean-max", floatList(res.FaceMeanMax))
		rec.set("vertex-border", boolList(res.VertexBorder))
		rec.set("face-border", boolList(res.FaceBorder))
		if opts.Principal {
			rec.set("k1", floatList(res.K1))
			rec.set("k2", floatList(res.K2))
		}
		return rec, nil
	})

	// -----------------------------------------------------------------------
	// (mesh-resolution m)
	// -----------------------------------------------------------------------
	env.AddFunction("mesh_resolution", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		vertices, faces, err := meshArg("mesh-resolution", parseArgs(args))
		if err != nil {
			return zygo.SexpNull, err
		}
		res, err := analysis.MeshResolution(s.ctx, vertices, faces, s.opts.Analysis)
		if err != nil {
			return zygo.SexpNull, err
		}

		rec := newRecord("resolution")
		rec.set("mean", &zygo.SexpFloat{Val: res.Mean})
		rec.set("edge-lengths", floatList(res.EdgeLengths))
		rec.set("min", &zygo.SexpFloat{Val: res.Min})
		rec.set("max", &zygo.SexpFloat{Val: res.Max})
		rec.set("std-dev", &zygo.SexpFloat{Val: res.StdDev})
		return rec, nil
	})

	// -----------------------------------------------------------------------
	// (mesh-volume m)
	// -----------------------------------------------------------------------
	env.AddFunction("mesh_volume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		vertices, faces, err := meshArg("mesh-volume", parseArgs(args))
		if err != nil {
			return zygo.SexpNull, err
		}
		v, err := analysis.MeshVolume(s.ctx, vertices, faces, s.opts.Analysis)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpFloat{Val: v}, nil
	})

	// -----------------------------------------------------------------------
	// (mesh-inertia m)
	// -----------------------------------------------------------------------
	env.AddFunction("mesh_inertia", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		vertices, faces, err := meshArg("mesh-inertia", parseArgs(args))
		if err != nil {
			return zygo.SexpNull, err
		}
		mp, err := analysis.MeshInertia(s.ctx, vertices, faces, s.opts.Analysis)
		if err != nil {
			return zygo.SexpNull, err
		}

		rows := make([]zygo.Sexp, 3)
		axes := make([]zygo.Sexp, 3)
		for i := range rows {
			rows[i] = floatList(mp.Tensor[i][:])
			axes[i] = vecList(mp.Axes[i])
		}

		rec := newRecord("inertia")
		rec.set("volume", &zygo.SexpFloat{Val: mp.Volume})
		rec.set("area", &zygo.SexpFloat{Val: mp.Area})
		rec.set("center", vecList(mp.Center))
		rec.set("tensor", zygo.MakeList(rows))
		rec.set("principal", floatList(mp.Principal[:]))
		rec.set("axes", zygo.MakeList(axes))
		rec.set("flipped", &zygo.SexpBool{Val: mp.Flipped})
		return rec, nil
	})

	// -----------------------------------------------------------------------
	// (mesh-info m)
	// -----------------------------------------------------------------------
	env.AddFunction("mesh_info", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		vertices, faces, err := meshArg("mesh-info", parseArgs(args))
		if err != nil {
			return zygo.SexpNull, err
		}
		r, err := analysis.MeshInfo(vertices, faces, s.opts.Analysis)
		if err != nil {
			return zygo.SexpNull, err
		}

		rec := newRecord("info")
		for _, f := range []struct {
			key string
			val int
		}{
			{"vertices", r.Vertices},
			{"faces", r.Faces},
			{"edges", r.Edges},
			{"border-edges", r.BorderEdges},
			{"non-manifold-edges", r.NonManifoldEdges},
			{"non-manifold-vertices", r.NonManifoldVertices},
			{"components", r.Components},
			{"boundary-loops", r.BoundaryLoops},
			{"euler", r.Euler},
		} {
			rec.set(f.key, &zygo.SexpInt{Val: int64(f.val)})
		}
		rec.set("oriented", &zygo.SexpBool{Val: r.Oriented})
		rec.set("watertight", &zygo.SexpBool{Val: r.Watertight})
		rec.set("area", &zygo.SexpFloat{Val: r.Area})
		rec.set("min", floatList(r.Min[:]))
		rec.set("max", floatList(r.Max[:]))
		return rec, nil
	})
}
