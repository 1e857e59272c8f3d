package mesh

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// normalEpsilon is the length below which a vector is treated as zero when
// normalizing.
const normalEpsilon = 1e-12

// FaceCross returns the unnormalized normal (p1-p0)x(p2-p0) of face f. Its
// length is twice the face area.
func (m *Mesh) FaceCross(f int) v3.Vec {
	p0, p1, p2 := m.Corners(f)
	return p1.Sub(p0).Cross(p2.Sub(p0))
}

// DoubleArea returns twice the area of face f.
func (m *Mesh) DoubleArea(f int) float64 {
	return m.FaceCross(f).Length()
}

// Area returns the total area of the live faces.
func (m *Mesh) Area() float64 {
	sum := 0.0
	for f := range m.Faces {
		if m.Faces[f].Flags&FlagDeleted != 0 {
			continue
		}
		sum += m.DoubleArea(f)
	}
	return sum / 2
}

// UpdateNormals sets unit face normals and area-weighted unit vertex
// normals. Degenerate faces get a zero normal and contribute nothing.
func (m *Mesh) UpdateNormals() {
	for i := range m.Vertices {
		m.Vertices[i].N = v3.Vec{}
	}
	for f := range m.Faces {
		face := &m.Faces[f]
		if face.Flags&FlagDeleted != 0 {
			continue
		}
		c := m.FaceCross(f)
		face.N = unit(c)
		for _, v := range face.V {
			m.Vertices[v].N = m.Vertices[v].N.Add(c)
		}
	}
	for i := range m.Vertices {
		m.Vertices[i].N = unit(m.Vertices[i].N)
	}
	m.Enable(CapNormals)
}

// unit normalizes v, returning the zero vector for a (near) zero input.
func unit(v v3.Vec) v3.Vec {
	l := v.Length()
	if l < normalEpsilon {
		return v3.Vec{}
	}
	return v.MulScalar(1 / l)
}
