package mesh

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Build constructs a mesh from vertex positions and triangle index triples.
// Every index is checked against [0, len(vertices)) before the mesh is
// returned; the first bad index produces an *IndexError.
func Build(vertices []v3.Vec, faces [][3]int) (*Mesh, error) {
	m := &Mesh{
		Vertices: make([]Vertex, len(vertices)),
		Faces:    make([]Face, len(faces)),
	}
	for i, p := range vertices {
		m.Vertices[i].P = p
	}
	for i, tri := range faces {
		m.Faces[i].V = tri
		if err := m.checkFace(i, m.Faces[i]); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// FromPoints is Build for plain coordinate triples.
func FromPoints(points [][3]float64, faces [][3]int) (*Mesh, error) {
	vertices := make([]v3.Vec, len(points))
	for i, p := range points {
		vertices[i] = v3.Vec{X: p[0], Y: p[1], Z: p[2]}
	}
	return Build(vertices, faces)
}

// FromFlat builds a mesh from flat arrays: coords holds x,y,z per vertex
// and indices holds i,j,k per triangle.
func FromFlat(coords []float64, indices []int) (*Mesh, error) {
	if len(coords)%3 != 0 {
		return nil, fmt.Errorf("mesh: coordinate array length %d is not a multiple of 3", len(coords))
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("mesh: index array length %d is not a multiple of 3", len(indices))
	}
	vertices := make([]v3.Vec, len(coords)/3)
	for i := range vertices {
		vertices[i] = v3.Vec{X: coords[i*3], Y: coords[i*3+1], Z: coords[i*3+2]}
	}
	faces := make([][3]int, len(indices)/3)
	for i := range faces {
		faces[i] = [3]int{indices[i*3], indices[i*3+1], indices[i*3+2]}
	}
	return Build(vertices, faces)
}

// checkFace validates the indices of face f, reported as face number i.
func (m *Mesh) checkFace(i int, f Face) error {
	n := len(m.Vertices)
	for c, idx := range f.V {
		if idx < 0 || idx >= n {
			return &IndexError{Face: i, Corner: c, Index: idx, VertexCount: n}
		}
	}
	return nil
}

// Points returns the vertex positions as coordinate triples.
func (m *Mesh) Points() [][3]float64 {
	out := make([][3]float64, len(m.Vertices))
	for i := range m.Vertices {
		p := m.Vertices[i].P
		out[i] = [3]float64{p.X, p.Y, p.Z}
	}
	return out
}

// Triangles returns the face index triples.
func (m *Mesh) Triangles() [][3]int {
	out := make([][3]int, len(m.Faces))
	for i := range m.Faces {
		out[i] = m.Faces[i].V
	}
	return out
}

// RemoveUnreferenced marks every vertex that no live face uses as deleted
// and returns how many were marked.
func (m *Mesh) RemoveUnreferenced() int {
	used := make([]bool, len(m.Vertices))
	for i := range m.Faces {
		if m.Faces[i].Flags&FlagDeleted != 0 {
			continue
		}
		for _, v := range m.Faces[i].V {
			used[v] = true
		}
	}
	n := 0
	for i := range m.Vertices {
		if !used[i] && m.Vertices[i].Flags&FlagDeleted == 0 {
			m.Vertices[i].Flags |= FlagDeleted
			n++
		}
	}
	if n > 0 {
		m.invalidate()
	}
	return n
}

// Compact removes deleted faces and vertices, remapping face indices so the
// surviving elements keep their relative order. It fails if a live face
// references a deleted vertex.
func (m *Mesh) Compact() error {
	remap := make([]int, len(m.Vertices))
	vertices := m.Vertices[:0:0]
	for i := range m.Vertices {
		if m.Vertices[i].Flags&FlagDeleted != 0 {
			remap[i] = -1
			continue
		}
		remap[i] = len(vertices)
		vertices = append(vertices, m.Vertices[i])
	}
	faces := m.Faces[:0:0]
	for i := range m.Faces {
		f := m.Faces[i]
		if f.Flags&FlagDeleted != 0 {
			continue
		}
		for c, v := range f.V {
			if remap[v] < 0 {
				return fmt.Errorf("mesh: compact: face %d references deleted vertex %d", i, v)
			}
			f.V[c] = remap[v]
		}
		faces = append(faces, f)
	}
	if len(vertices) == len(m.Vertices) && len(faces) == len(m.Faces) {
		return nil
	}
	m.Vertices = vertices
	m.Faces = faces
	m.invalidate()
	return nil
}
