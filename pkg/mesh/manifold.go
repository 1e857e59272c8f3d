package mesh

// CountNonManifoldEdges returns the number of edges shared by more than two
// faces.
func CountNonManifoldEdges(m *Mesh) int {
	return m.Topology().NonManifoldEdgeCount()
}

// CountNonManifoldVertices returns the number of vertices whose incident
// faces do not form a single fan. Vertices on a non-manifold edge are
// skipped; CountNonManifoldEdges already reports them.
func CountNonManifoldVertices(m *Mesh) int {
	t := m.Topology()

	onBadEdge := make([]bool, len(m.Vertices))
	for _, e := range t.edges {
		if e.Faces > 2 {
			onBadEdge[e.V[0]] = true
			onBadEdge[e.V[1]] = true
		}
	}

	n := 0
	for v := range m.Vertices {
		if onBadEdge[v] || m.Vertices[v].Flags&FlagDeleted != 0 {
			continue
		}
		incident := len(t.vf[v])
		if incident == 0 {
			continue
		}
		if fanSize(m, t, v) != incident {
			n++
		}
	}
	return n
}

// corner returns the corner of face f holding vertex v, or -1.
func corner(f *Face, v int) int {
	for i, w := range f.V {
		if w == v {
			return i
		}
	}
	return -1
}

// fanSize walks the faces around v across face-face adjacency, starting from
// v's first incident face, and returns how many faces it reached. A manifold
// vertex reaches all of its incident faces.
func fanSize(m *Mesh, t *Topology, v int) int {
	start := t.vf[v][0]
	k := corner(&m.Faces[start], v)
	limit := len(t.vf[v])

	count := 1
	sv := m.Faces[start].V

	// Rotate across the edge leaving v (edge k) first.
	n, closed := walkFan(m, t, v, start, k, sv[(k+1)%3], limit)
	count += n
	if closed {
		return count
	}
	// Open fan: go the other way, across the edge entering v.
	n, _ = walkFan(m, t, v, start, (k+2)%3, sv[(k+2)%3], limit)
	return count + n
}

// walkFan crosses edge e of face f, whose far endpoint (not v) is u, and
// keeps rotating around v. It returns the number of new faces visited and
// whether the walk came back to the start face.
func walkFan(m *Mesh, t *Topology, v, f, e, u, limit int) (int, bool) {
	start := f
	n := 0
	for step := 0; step < limit; step++ {
		g := t.ff[f][e]
		if g < 0 {
			return n, false
		}
		if g == start {
			return n, true
		}
		n++
		gv := m.Faces[g].V
		j := corner(&m.Faces[g], v)
		if gv[(j+1)%3] == u {
			// Entered through edge j; leave through the edge entering v.
			e, u = (j+2)%3, gv[(j+2)%3]
		} else {
			e, u = j, gv[(j+1)%3]
		}
		f = g
	}
	return n, false
}

// IsManifold reports whether the mesh has no non-manifold edges or vertices.
func IsManifold(m *Mesh) bool {
	return CountNonManifoldEdges(m) == 0 && CountNonManifoldVertices(m) == 0
}
