package volume

import (
	"context"
	"errors"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/mat"

	"github.com/chazu/facet/internal/parallel"
	"github.com/chazu/facet/pkg/mesh"
)

// ErrZeroVolume is returned by Inertia when the mesh encloses no volume, so
// the centre of mass is undefined.
var ErrZeroVolume = errors.New("volume: mesh encloses zero volume")

// MassProperties are the unit-density mass properties of a closed mesh.
// Everything is reported for outward winding; an inward-wound mesh gives
// the same values.
type MassProperties struct {
	Volume float64 `json:"volume"`
	Area   float64 `json:"area"`
	Center v3.Vec  `json:"center"`
	// Tensor is the inertia tensor about Center.
	Tensor [3][3]float64 `json:"tensor"`
	// Principal holds the eigenvalues of Tensor in ascending order and Axes
	// the matching unit eigenvectors.
	Principal [3]float64 `json:"principal"`
	Axes      [3]v3.Vec  `json:"axes"`
	// Flipped reports that the faces were wound inward.
	Flipped bool `json:"flipped"`
}

// integrals are the ten polynomial surface integrals of the divergence
// theorem formulation: 1, x, y, z, x^2, y^2, z^2, xy, yz, zx.
type integrals [10]float64

func (a *integrals) add(b *integrals) {
	for i := range a {
		a[i] += b[i]
	}
}

// Inertia computes volume, surface area, centre of mass and the inertia
// tensor of m by integrating over its faces. The mesh must pass Check.
func Inertia(ctx context.Context, m *mesh.Mesh, workers int) (*MassProperties, error) {
	if m.IsEmpty() {
		return nil, mesh.ErrEmptyMesh
	}
	if err := Check(m); err != nil {
		return nil, err
	}

	partial := make([]integrals, parallel.Chunks(m.FaceCount()))
	err := parallel.For(ctx, m.FaceCount(), workers, func(_ context.Context, lo, hi int) error {
		acc := &partial[lo/parallel.ChunkSize]
		for f := lo; f < hi; f++ {
			if m.Faces[f].Flags&mesh.FlagDeleted != 0 {
				continue
			}
			p0, p1, p2 := m.Corners(f)
			faceIntegrals(acc, p0, p1, p2)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	var in integrals
	for i := range partial {
		in.add(&partial[i])
	}

	scale := [10]float64{1.0 / 6, 1.0 / 24, 1.0 / 24, 1.0 / 24, 1.0 / 60, 1.0 / 60, 1.0 / 60, 1.0 / 120, 1.0 / 120, 1.0 / 120}
	for i := range in {
		in[i] *= scale[i]
	}

	props := &MassProperties{Area: m.Area()}
	if in[0] < 0 {
		props.Flipped = true
		for i := range in {
			in[i] = -in[i]
		}
	}
	mass := in[0]
	props.Volume = mass
	if mass == 0 || math.IsNaN(mass) {
		return nil, ErrZeroVolume
	}

	c := v3.Vec{X: in[1] / mass, Y: in[2] / mass, Z: in[3] / mass}
	props.Center = c

	xx := in[5] + in[6] - mass*(c.Y*c.Y+c.Z*c.Z)
	yy := in[4] + in[6] - mass*(c.Z*c.Z+c.X*c.X)
	zz := in[4] + in[5] - mass*(c.X*c.X+c.Y*c.Y)
	xy := -(in[7] - mass*c.X*c.Y)
	yz := -(in[8] - mass*c.Y*c.Z)
	zx := -(in[9] - mass*c.Z*c.X)
	props.Tensor = [3][3]float64{
		{xx, xy, zx},
		{xy, yy, yz},
		{zx, yz, zz},
	}

	var eig mat.EigenSym
	ok := eig.Factorize(mat.NewSymDense(3, []float64{
		xx, xy, zx,
		xy, yy, yz,
		zx, yz, zz,
	}), true)
	if !ok {
		return nil, errors.New("volume: inertia tensor eigen decomposition failed")
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	for i := 0; i < 3; i++ {
		props.Principal[i] = vals[i]
		props.Axes[i] = v3.Vec{X: vecs.At(0, i), Y: vecs.At(1, i), Z: vecs.At(2, i)}
	}
	return props, nil
}

// faceIntegrals adds the contribution of one triangle, before the constant
// factors, following Eberly's polyhedral mass properties.
func faceIntegrals(in *integrals, p0, p1, p2 v3.Vec) {
	d := p1.Sub(p0).Cross(p2.Sub(p0))

	f1x, f2x, f3x, g0x, g1x, g2x := subexpressions(p0.X, p1.X, p2.X)
	_, f2y, f3y, g0y, g1y, g2y := subexpressions(p0.Y, p1.Y, p2.Y)
	_, f2z, f3z, g0z, g1z, g2z := subexpressions(p0.Z, p1.Z, p2.Z)

	in[0] += d.X * f1x
	in[1] += d.X * f2x
	in[2] += d.Y * f2y
	in[3] += d.Z * f2z
	in[4] += d.X * f3x
	in[5] += d.Y * f3y
	in[6] += d.Z * f3z
	in[7] += d.X * (p0.Y*g0x + p1.Y*g1x + p2.Y*g2x)
	in[8] += d.Y * (p0.Z*g0y + p1.Z*g1y + p2.Z*g2y)
	in[9] += d.Z * (p0.X*g0z + p1.X*g1z + p2.X*g2z)
}

func subexpressions(w0, w1, w2 float64) (f1, f2, f3, g0, g1, g2 float64) {
	t0 := w0 + w1
	t1 := w0 * w0
	t2 := t1 + w1*t0
	f1 = t0 + w2
	f2 = t2 + w2*f1
	f3 = w0*t1 + w1*t2 + w2*f2
	g0 = f2 + w0*(f1+w0)
	g1 = f2 + w1*(f1+w1)
	g2 = f2 + w2*(f1+w2)
	return
}
