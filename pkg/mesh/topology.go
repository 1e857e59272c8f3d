package mesh

import (
	"cmp"
	"slices"
)

// Edge is an undirected edge with V[0] < V[1] (or equal, for a degenerate
// face). Faces is the number of face corners that share it.
type Edge struct {
	V     [2]int
	Faces int
}

// Topology is the adjacency derived from a mesh. It is built by
// Mesh.Topology and must not be used after the mesh changes.
type Topology struct {
	// ff[f][i] is the face across edge i of face f, or -1 on a border.
	// Faces around a non-manifold edge are linked in a ring.
	ff [][3]int
	// edge[f][i] indexes edges for edge i of face f.
	edge [][3]int
	vf   [][]int

	edges      []Edge
	incoherent int // manifold edges whose two faces traverse it the same way
}

// halfEdge is one face corner's edge, keyed by its sorted endpoints.
type halfEdge struct {
	a, b   int
	face   int
	corner int
	flip   bool // V[corner] > V[corner+1]
}

// Topology returns the mesh's adjacency, building it if the cached copy was
// dropped by a mutation.
func (m *Mesh) Topology() *Topology {
	if m.topo == nil {
		m.topo = buildTopology(m)
	}
	return m.topo
}

// buildTopology sorts the 3F half-edges by sorted endpoint pair so every
// group of equal keys is one undirected edge.
func buildTopology(m *Mesh) *Topology {
	nf := len(m.Faces)
	t := &Topology{
		ff:   make([][3]int, nf),
		edge: make([][3]int, nf),
		vf:   make([][]int, len(m.Vertices)),
	}

	hes := make([]halfEdge, 0, 3*nf)
	for f := range m.Faces {
		t.ff[f] = [3]int{-1, -1, -1}
		t.edge[f] = [3]int{-1, -1, -1}
		face := &m.Faces[f]
		if face.Flags&FlagDeleted != 0 {
			continue
		}
		for i := 0; i < 3; i++ {
			a, b := face.V[i], face.V[(i+1)%3]
			h := halfEdge{a: a, b: b, face: f, corner: i}
			if a > b {
				h.a, h.b, h.flip = b, a, true
			}
			hes = append(hes, h)

			// A degenerate face can list a vertex twice; record it once.
			list := t.vf[face.V[i]]
			if len(list) == 0 || list[len(list)-1] != f {
				t.vf[face.V[i]] = append(list, f)
			}
		}
	}

	slices.SortFunc(hes, func(x, y halfEdge) int {
		if c := cmp.Compare(x.a, y.a); c != 0 {
			return c
		}
		if c := cmp.Compare(x.b, y.b); c != 0 {
			return c
		}
		if c := cmp.Compare(x.face, y.face); c != 0 {
			return c
		}
		return cmp.Compare(x.corner, y.corner)
	})

	for lo := 0; lo < len(hes); {
		hi := lo + 1
		for hi < len(hes) && hes[hi].a == hes[lo].a && hes[hi].b == hes[lo].b {
			hi++
		}
		n := hi - lo
		e := len(t.edges)
		t.edges = append(t.edges, Edge{V: [2]int{hes[lo].a, hes[lo].b}, Faces: n})
		for k := lo; k < hi; k++ {
			h := hes[k]
			t.edge[h.face][h.corner] = e
			if n > 1 {
				t.ff[h.face][h.corner] = hes[lo+(k-lo+1)%n].face
			}
		}
		if n == 2 && hes[lo].flip == hes[lo+1].flip {
			t.incoherent++
		}
		lo = hi
	}
	return t
}

// FaceFace returns the face adjacent to face f across edge i, or -1 when
// the edge is a border. On a non-manifold edge it returns the next face in
// the ring of faces sharing that edge.
func (t *Topology) FaceFace(f, i int) int {
	return t.ff[f][i]
}

// EdgeShare returns how many faces share edge i of face f.
func (t *Topology) EdgeShare(f, i int) int {
	e := t.edge[f][i]
	if e < 0 {
		return 0
	}
	return t.edges[e].Faces
}

// EdgeIndex returns the index into UniqueEdges of edge i of face f, or -1
// for a deleted face.
func (t *Topology) EdgeIndex(f, i int) int {
	return t.edge[f][i]
}

// VertexFaces returns the faces incident to vertex v in face order.
func (t *Topology) VertexFaces(v int) []int {
	return t.vf[v]
}

// UniqueEdges returns every undirected edge once, ordered by ascending
// (V[0], V[1]).
func (t *Topology) UniqueEdges() []Edge {
	return t.edges
}

// BorderEdgeCount returns the number of edges used by exactly one face.
func (t *Topology) BorderEdgeCount() int {
	n := 0
	for _, e := range t.edges {
		if e.Faces == 1 {
			n++
		}
	}
	return n
}

// NonManifoldEdgeCount returns the number of edges shared by more than two
// faces.
func (t *Topology) NonManifoldEdgeCount() int {
	n := 0
	for _, e := range t.edges {
		if e.Faces > 2 {
			n++
		}
	}
	return n
}

// IncoherentEdgeCount returns the number of two-face edges whose faces
// traverse the edge in the same direction, i.e. disagree on orientation.
func (t *Topology) IncoherentEdgeCount() int {
	return t.incoherent
}
