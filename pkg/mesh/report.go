package mesh

// Info summarises a mesh's topology.
type Info struct {
	Vertices            int  `json:"vertices"`
	Faces               int  `json:"faces"`
	Edges               int  `json:"edges"`
	BorderEdges         int  `json:"borderEdges"`
	NonManifoldEdges    int  `json:"nonManifoldEdges"`
	NonManifoldVertices int  `json:"nonManifoldVertices"`
	Components          int  `json:"components"`
	BoundaryLoops       int  `json:"boundaryLoops"`
	Oriented            bool `json:"oriented"`
	Watertight          bool `json:"watertight"`
	Euler               int  `json:"euler"`
}

// Describe computes the topology summary of m. Deleted elements are not
// counted.
func Describe(m *Mesh) Info {
	t := m.Topology()

	var info Info
	for i := range m.Vertices {
		if m.Vertices[i].Flags&FlagDeleted == 0 {
			info.Vertices++
		}
	}
	for i := range m.Faces {
		if m.Faces[i].Flags&FlagDeleted == 0 {
			info.Faces++
		}
	}
	info.Edges = len(t.edges)
	info.BorderEdges = t.BorderEdgeCount()
	info.NonManifoldEdges = t.NonManifoldEdgeCount()
	info.NonManifoldVertices = CountNonManifoldVertices(m)
	info.Components = countComponents(m, t)
	info.BoundaryLoops = countBoundaryLoops(m, t)
	info.Oriented = t.incoherent == 0 && info.NonManifoldEdges == 0
	info.Watertight = info.BorderEdges == 0 && info.NonManifoldEdges == 0 && info.NonManifoldVertices == 0
	info.Euler = info.Vertices - info.Edges + info.Faces
	return info
}

// countComponents flood-fills faces across face-face adjacency.
func countComponents(m *Mesh, t *Topology) int {
	seen := make([]bool, len(m.Faces))
	stack := make([]int, 0, 64)
	n := 0
	for f := range m.Faces {
		if seen[f] || m.Faces[f].Flags&FlagDeleted != 0 {
			continue
		}
		n++
		seen[f] = true
		stack = append(stack[:0], f)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for i := 0; i < 3; i++ {
				g := t.ff[cur][i]
				if g >= 0 && !seen[g] {
					seen[g] = true
					stack = append(stack, g)
				}
			}
		}
	}
	return n
}

// countBoundaryLoops groups border edges into connected chains with a
// union-find over their endpoints.
func countBoundaryLoops(m *Mesh, t *Topology) int {
	parent := make(map[int]int)
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for _, e := range t.edges {
		if e.Faces != 1 {
			continue
		}
		for _, v := range e.V {
			if _, ok := parent[v]; !ok {
				parent[v] = v
			}
		}
		ra, rb := find(e.V[0]), find(e.V[1])
		if ra != rb {
			parent[ra] = rb
		}
	}
	loops := 0
	for v := range parent {
		if find(v) == v {
			loops++
		}
	}
	return loops
}
