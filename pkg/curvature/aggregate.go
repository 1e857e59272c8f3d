package curvature

import (
	"fmt"
	"math"

	"github.com/chazu/facet/pkg/mesh"
)

// Aggregate selects how FaceMax compares a running maximum with the next
// vertex value.
type Aggregate int

const (
	// AggregateAbs keeps the value of largest magnitude: |cur| < |v|.
	AggregateAbs Aggregate = iota
	// AggregateLegacy compares the magnitude of the running value with the
	// signed vertex value, |cur| < v, so negative values only win at the
	// first corner.
	AggregateLegacy
)

func (a Aggregate) String() string {
	switch a {
	case AggregateAbs:
		return "abs"
	case AggregateLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("Aggregate(%d)", int(a))
	}
}

// ParseAggregate maps "abs" (or "") and "legacy" to an Aggregate.
func ParseAggregate(s string) (Aggregate, error) {
	switch s {
	case "", "abs":
		return AggregateAbs, nil
	case "legacy":
		return AggregateLegacy, nil
	}
	return 0, fmt.Errorf("curvature: unknown face aggregate %q (want \"abs\" or \"legacy\")", s)
}

func (a Aggregate) better(cur, v float64) bool {
	if a == AggregateLegacy {
		return math.Abs(cur) < v
	}
	return math.Abs(cur) < math.Abs(v)
}

// FaceMax returns, per face in face order, the Gaussian and mean curvature
// of largest magnitude among the face's three vertices. The signed value is
// kept and the comparison is strict, so on ties the earliest corner wins.
// Deleted faces get 0.
func FaceMax(m *mesh.Mesh, mode Aggregate) (gauss, mean []float64, err error) {
	if !m.Has(mesh.CapCurvature) {
		return nil, nil, ErrNotComputed
	}
	gauss = make([]float64, m.FaceCount())
	mean = make([]float64, m.FaceCount())
	for f := range m.Faces {
		face := &m.Faces[f]
		if face.Flags&mesh.FlagDeleted != 0 {
			continue
		}
		v0 := &m.Vertices[face.V[0]]
		g, h := v0.Kg, v0.Kh
		for j := 1; j < 3; j++ {
			vj := &m.Vertices[face.V[j]]
			if mode.better(g, vj.Kg) {
				g = vj.Kg
			}
			if mode.better(h, vj.Kh) {
				h = vj.Kh
			}
		}
		gauss[f], mean[f] = g, h
	}
	return gauss, mean, nil
}
