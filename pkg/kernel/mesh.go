package kernel

import "math"

// Mesh is the triangle output of a kernel. All arrays are flat: Vertices
// and Normals hold 3 floats per vertex, Indices 3 entries per triangle.
// Backends may emit an unwelded soup where every triangle has its own
// three vertices; mesh.WeldFlat turns it into an indexed mesh.
type Mesh struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name,omitempty"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no triangles.
func (m *Mesh) IsEmpty() bool {
	return len(m.Indices) == 0
}

// Bounds returns the axis-aligned bounds of the vertices, or zero vectors
// for an empty mesh.
func (m *Mesh) Bounds() (min, max [3]float64) {
	if len(m.Vertices) < 3 {
		return min, max
	}
	for i := 0; i < 3; i++ {
		min[i], max[i] = math.Inf(1), math.Inf(-1)
	}
	for v := 0; v+2 < len(m.Vertices); v += 3 {
		for i := 0; i < 3; i++ {
			x := float64(m.Vertices[v+i])
			min[i] = math.Min(min[i], x)
			max[i] = math.Max(max[i], x)
		}
	}
	return min, max
}
