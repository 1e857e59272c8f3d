// Package mesh defines the indexed triangle mesh shared by the curvature,
// resolution and volume pipelines. A Mesh owns its vertices and faces and
// lazily derives topology (adjacency, unique edges, borders) which is
// dropped whenever the vertex or face sets change.
package mesh

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Flag is a per-element bit set.
type Flag uint16

const (
	FlagDeleted  Flag = 1 << iota // removed, awaiting Compact
	FlagSelected                  // selection, set from border flags by MarkBorders
	FlagBorder                    // element lies on a border
	FlagVisited                   // scratch bit for traversals
	FlagBorder0                   // face edge 0 (V0-V1) is a border edge
	FlagBorder1                   // face edge 1 (V1-V2) is a border edge
	FlagBorder2                   // face edge 2 (V2-V0) is a border edge
)

// edgeBorderFlag returns the per-edge border bit for face edge i.
func edgeBorderFlag(i int) Flag {
	return FlagBorder0 << uint(i)
}

// Capability records which optional attributes of a mesh are populated.
type Capability uint8

const (
	CapNormals   Capability = 1 << iota // face and vertex normals
	CapCurvature                        // Vertex.Kh and Vertex.Kg
	CapPrincipal                        // Vertex.K1, K2, PD1, PD2
	CapQuality                          // Vertex.Q
	CapBorder                           // border and selection flags
)

func (c Capability) String() string {
	names := []string{"normals", "curvature", "principal", "quality", "border"}
	s := ""
	for i, n := range names {
		if c&(1<<uint(i)) == 0 {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += n
	}
	if s == "" {
		return "none"
	}
	return s
}

// Vertex is a mesh vertex and the per-vertex attributes the pipelines fill in.
type Vertex struct {
	P     v3.Vec // position
	N     v3.Vec // unit normal
	Flags Flag

	Q      float64 // quality (RMS curvature)
	Kh, Kg float64 // mean and Gaussian curvature

	K1, K2   float64 // principal curvatures, K1 >= K2
	PD1, PD2 v3.Vec  // principal directions
}

// Face is a triangle. V holds indices into the owning mesh's vertex slice.
type Face struct {
	V     [3]int
	N     v3.Vec
	Flags Flag
}

// IsBorder reports whether face edge i (V[i] -> V[(i+1)%3]) is a border edge.
// Only valid after MarkBorders.
func (f *Face) IsBorder(i int) bool {
	return f.Flags&edgeBorderFlag(i) != 0
}

// Mesh is an indexed triangle mesh. Vertex and face order is the input
// order and is preserved by every operation except Compact.
type Mesh struct {
	Vertices []Vertex
	Faces    []Face

	caps Capability
	topo *Topology
}

// VertexCount returns the number of vertices, deleted ones included.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceCount returns the number of faces, deleted ones included.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// IsEmpty returns true if the mesh has no faces.
func (m *Mesh) IsEmpty() bool {
	return len(m.Faces) == 0
}

// Has reports whether every capability in c is populated.
func (m *Mesh) Has(c Capability) bool {
	return m.caps&c == c
}

// Enable marks the capabilities in c as populated. Pipelines call it after
// filling the corresponding attributes.
func (m *Mesh) Enable(c Capability) {
	m.caps |= c
}

// Capabilities returns the populated capability set.
func (m *Mesh) Capabilities() Capability {
	return m.caps
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(p v3.Vec) int {
	m.Vertices = append(m.Vertices, Vertex{P: p})
	m.invalidate()
	return len(m.Vertices) - 1
}

// AddFace appends a face after validating its indices.
func (m *Mesh) AddFace(a, b, c int) (int, error) {
	f := Face{V: [3]int{a, b, c}}
	if err := m.checkFace(len(m.Faces), f); err != nil {
		return -1, err
	}
	m.Faces = append(m.Faces, f)
	m.invalidate()
	return len(m.Faces) - 1, nil
}

// DeleteFace marks face i deleted. It is removed by Compact.
func (m *Mesh) DeleteFace(i int) {
	m.Faces[i].Flags |= FlagDeleted
	m.invalidate()
}

// DeleteVertex marks vertex i deleted. Faces referencing it must be deleted
// too before Compact, otherwise Compact fails.
func (m *Mesh) DeleteVertex(i int) {
	m.Vertices[i].Flags |= FlagDeleted
	m.invalidate()
}

// Position returns the coordinate of vertex i.
func (m *Mesh) Position(i int) v3.Vec {
	return m.Vertices[i].P
}

// Corners returns the three corner positions of face f.
func (m *Mesh) Corners(f int) (p0, p1, p2 v3.Vec) {
	v := m.Faces[f].V
	return m.Vertices[v[0]].P, m.Vertices[v[1]].P, m.Vertices[v[2]].P
}

// BoundingBox returns the axis-aligned bounds of the live vertices.
func (m *Mesh) BoundingBox() (min, max v3.Vec) {
	first := true
	for i := range m.Vertices {
		if m.Vertices[i].Flags&FlagDeleted != 0 {
			continue
		}
		p := m.Vertices[i].P
		if first {
			min, max = p, p
			first = false
			continue
		}
		min = min.Min(p)
		max = max.Max(p)
	}
	return min, max
}

// invalidate drops derived state after a structural change.
func (m *Mesh) invalidate() {
	m.topo = nil
	m.caps &^= CapBorder
}

// Invalidate drops the cached topology. Callers that edit Vertices or Faces
// directly must call it before the next topology query.
func (m *Mesh) Invalidate() {
	m.invalidate()
}
