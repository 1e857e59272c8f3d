package mesh

// MarkBorders recomputes border flags from scratch and copies them into
// the selection flags. An edge used by exactly one face is a border edge;
// a face with a border edge is a border face; a vertex on a border edge is
// a border vertex. Non-manifold edges are not borders.
func (m *Mesh) MarkBorders() {
	t := m.Topology()

	const faceBits = FlagBorder | FlagBorder0 | FlagBorder1 | FlagBorder2 | FlagSelected
	for i := range m.Vertices {
		m.Vertices[i].Flags &^= FlagBorder | FlagSelected
	}
	for f := range m.Faces {
		face := &m.Faces[f]
		face.Flags &^= faceBits
		if face.Flags&FlagDeleted != 0 {
			continue
		}
		for i := 0; i < 3; i++ {
			if t.EdgeShare(f, i) != 1 {
				continue
			}
			face.Flags |= FlagBorder | edgeBorderFlag(i)
			m.Vertices[face.V[i]].Flags |= FlagBorder
			m.Vertices[face.V[(i+1)%3]].Flags |= FlagBorder
		}
	}

	for f := range m.Faces {
		if m.Faces[f].Flags&FlagBorder != 0 {
			m.Faces[f].Flags |= FlagSelected
		}
	}
	for i := range m.Vertices {
		if m.Vertices[i].Flags&FlagBorder != 0 {
			m.Vertices[i].Flags |= FlagSelected
		}
	}
	m.Enable(CapBorder)
}

// VertexBorderFlags returns, in vertex order, whether each vertex is
// selected as a border vertex. MarkBorders is run first if needed.
func (m *Mesh) VertexBorderFlags() []bool {
	if !m.Has(CapBorder) {
		m.MarkBorders()
	}
	out := make([]bool, len(m.Vertices))
	for i := range m.Vertices {
		out[i] = m.Vertices[i].Flags&FlagSelected != 0
	}
	return out
}

// FaceBorderFlags returns, in face order, whether each face is selected as
// a border face. MarkBorders is run first if needed.
func (m *Mesh) FaceBorderFlags() []bool {
	if !m.Has(CapBorder) {
		m.MarkBorders()
	}
	out := make([]bool, len(m.Faces))
	for i := range m.Faces {
		out[i] = m.Faces[i].Flags&FlagSelected != 0
	}
	return out
}
