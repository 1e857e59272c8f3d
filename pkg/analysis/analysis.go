// Package analysis exposes the mesh pipelines as pure functions over plain
// vertex and face arrays. Every call builds a fresh mesh, so no derived
// data survives between calls.
//
// Input is validated before any geometry is computed: a face index outside
// [0, len(vertices)) fails with mesh.ErrInvalidIndex, and an input without
// faces fails with mesh.ErrEmptyMesh. Per-vertex and per-face outputs are
// aligned with the input order.
package analysis

import (
	"context"
	"fmt"

	"github.com/chazu/facet/pkg/curvature"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/chazu/facet/pkg/resolution"
	"github.com/chazu/facet/pkg/volume"
)

// Options configures the pipelines. The zero value uses the package
// defaults of each pipeline.
type Options struct {
	AreaEpsilon float64
	Aggregate   curvature.Aggregate
	// Principal also computes principal curvatures (K1, K2).
	Principal bool
	Workers   int
}

func (o Options) curvature() curvature.Options {
	return curvature.Options{
		AreaEpsilon: o.AreaEpsilon,
		Aggregate:   o.Aggregate,
		Workers:     o.Workers,
	}
}

// CurvatureResult holds the curvature outputs. Gauss, Mean, RMS,
// VertexBorder, K1 and K2 follow vertex order; FaceGaussMax, FaceMeanMax and
// FaceBorder follow face order. K1 and K2 are nil unless Options.Principal
// was set.
type CurvatureResult struct {
	Gauss        []float64 `json:"gauss"`
	Mean         []float64 `json:"mean"`
	RMS          []float64 `json:"rms"`
	FaceGaussMax []float64 `json:"faceGaussMax"`
	FaceMeanMax  []float64 `json:"faceMeanMax"`
	VertexBorder []bool    `json:"vertexBorder"`
	FaceBorder   []bool    `json:"faceBorder"`
	K1           []float64 `json:"k1,omitempty"`
	K2           []float64 `json:"k2,omitempty"`
}

// ResolutionResult is the edge-length summary of a mesh. EdgeLengths
// follows the unique-edge order, ascending by sorted endpoint pair.
type ResolutionResult = resolution.Result

// load validates the arrays and builds the mesh.
func load(vertices [][3]float64, faces [][3]int) (*mesh.Mesh, error) {
	m, err := mesh.FromPoints(vertices, faces)
	if err != nil {
		return nil, err
	}
	if m.IsEmpty() {
		return nil, mesh.ErrEmptyMesh
	}
	return m, nil
}

// Curvature computes per-vertex mean, Gaussian and RMS curvature, the
// per-face extreme curvatures and the border flags.
func Curvature(ctx context.Context, vertices [][3]float64, faces [][3]int, opts Options) (*CurvatureResult, error) {
	m, err := load(vertices, faces)
	if err != nil {
		return nil, err
	}
	return CurvatureOf(ctx, m, opts)
}

// CurvatureOf runs the curvature pipeline on an existing mesh, overwriting
// its curvature attributes and border flags.
func CurvatureOf(ctx context.Context, m *mesh.Mesh, opts Options) (*CurvatureResult, error) {
	copts := opts.curvature()
	if _, err := curvature.MeanAndGaussian(ctx, m, copts); err != nil {
		return nil, fmt.Errorf("analysis: curvature: %w", err)
	}
	if err := curvature.RMSQuality(m); err != nil {
		return nil, fmt.Errorf("analysis: curvature: %w", err)
	}
	gmax, hmax, err := curvature.FaceMax(m, opts.Aggregate)
	if err != nil {
		return nil, fmt.Errorf("analysis: curvature: %w", err)
	}
	n := m.VertexCount()
	res := &CurvatureResult{
		Gauss:        make([]float64, n),
		Mean:         make([]float64, n),
		RMS:          make([]float64, n),
		FaceGaussMax: gmax,
		FaceMeanMax:  hmax,
		VertexBorder: m.VertexBorderFlags(),
		FaceBorder:   m.FaceBorderFlags(),
	}
	for i, v := range m.Vertices {
		res.Gauss[i] = v.Kg
		res.Mean[i] = v.Kh
		res.RMS[i] = v.Q
	}

	if opts.Principal {
		if err := curvature.Principal(ctx, m, copts); err != nil {
			return nil, fmt.Errorf("analysis: principal curvature: %w", err)
		}
		res.K1 = make([]float64, n)
		res.K2 = make([]float64, n)
		for i, v := range m.Vertices {
			res.K1[i], res.K2[i] = v.K1, v.K2
		}
	}
	return res, nil
}

// MeshResolution returns the unique edge lengths and their mean.
func MeshResolution(ctx context.Context, vertices [][3]float64, faces [][3]int, opts Options) (*ResolutionResult, error) {
	m, err := load(vertices, faces)
	if err != nil {
		return nil, err
	}
	return ResolutionOf(ctx, m, opts)
}

// ResolutionOf runs the resolution pipeline on an existing mesh.
func ResolutionOf(ctx context.Context, m *mesh.Mesh, opts Options) (*ResolutionResult, error) {
	res, err := resolution.Estimate(ctx, m, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("analysis: resolution: %w", err)
	}
	return res, nil
}

// MeshVolume returns the absolute enclosed volume. It fails with
// mesh.ErrNonManifold if the mesh is not locally manifold.
func MeshVolume(ctx context.Context, vertices [][3]float64, faces [][3]int, opts Options) (float64, error) {
	m, err := load(vertices, faces)
	if err != nil {
		return 0, err
	}
	return VolumeOf(ctx, m, opts)
}

// VolumeOf runs the volume pipeline on an existing mesh.
func VolumeOf(ctx context.Context, m *mesh.Mesh, opts Options) (float64, error) {
	v, err := volume.Volume(ctx, m, opts.Workers)
	if err != nil {
		return 0, fmt.Errorf("analysis: volume: %w", err)
	}
	return v, nil
}

// MeshInertia returns the mass properties of a closed manifold mesh of
// unit density.
func MeshInertia(ctx context.Context, vertices [][3]float64, faces [][3]int, opts Options) (*volume.MassProperties, error) {
	m, err := load(vertices, faces)
	if err != nil {
		return nil, err
	}
	return InertiaOf(ctx, m, opts)
}

// InertiaOf runs the mass-properties pipeline on an existing mesh.
func InertiaOf(ctx context.Context, m *mesh.Mesh, opts Options) (*volume.MassProperties, error) {
	mp, err := volume.Inertia(ctx, m, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("analysis: inertia: %w", err)
	}
	return mp, nil
}

// Report is the topology summary of a mesh together with its validation
// warnings.
type Report struct {
	mesh.Info
	Area     float64    `json:"area"`
	Min      [3]float64 `json:"min"`
	Max      [3]float64 `json:"max"`
	Warnings []string   `json:"warnings,omitempty"`
}

// MeshInfo describes the topology of a mesh.
func MeshInfo(vertices [][3]float64, faces [][3]int, opts Options) (*Report, error) {
	m, err := load(vertices, faces)
	if err != nil {
		return nil, err
	}
	return InfoOf(m, opts), nil
}

// InfoOf describes an existing mesh. Index errors must already have been
// ruled out, as they are by every mesh constructor.
func InfoOf(m *mesh.Mesh, opts Options) *Report {
	eps := opts.AreaEpsilon
	if eps <= 0 {
		eps = curvature.DefaultAreaEpsilon
	}
	min, max := m.BoundingBox()
	r := &Report{
		Info: mesh.Describe(m),
		Area: m.Area(),
		Min:  [3]float64{min.X, min.Y, min.Z},
		Max:  [3]float64{max.X, max.Y, max.Z},
	}
	_, warnings := m.Validate(eps)
	for _, w := range warnings {
		r.Warnings = append(r.Warnings, w.String())
	}
	return r
}
