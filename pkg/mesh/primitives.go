package mesh

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Cube returns an axis-aligned cube of the given side with its minimum
// corner at the origin: 8 vertices and 12 outward-facing triangles.
func Cube(side float64) *Mesh {
	s := side
	vertices := []v3.Vec{
		{X: 0, Y: 0, Z: 0}, {X: s, Y: 0, Z: 0}, {X: s, Y: s, Z: 0}, {X: 0, Y: s, Z: 0},
		{X: 0, Y: 0, Z: s}, {X: s, Y: 0, Z: s}, {X: s, Y: s, Z: s}, {X: 0, Y: s, Z: s},
	}
	faces := [][3]int{
		{0, 2, 1}, {0, 3, 2}, // bottom, -Z
		{4, 5, 6}, {4, 6, 7}, // top, +Z
		{0, 1, 5}, {0, 5, 4}, // front, -Y
		{2, 3, 7}, {2, 7, 6}, // back, +Y
		{0, 4, 7}, {0, 7, 3}, // left, -X
		{1, 2, 6}, {1, 6, 5}, // right, +X
	}
	m, _ := Build(vertices, faces)
	return m
}

// Grid returns a flat sheet in the z=0 plane made of nx by ny quads, each
// split into two triangles, with the given spacing.
func Grid(nx, ny int, spacing float64) *Mesh {
	if nx < 1 {
		nx = 1
	}
	if ny < 1 {
		ny = 1
	}
	vertices := make([]v3.Vec, 0, (nx+1)*(ny+1))
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			vertices = append(vertices, v3.Vec{X: float64(i) * spacing, Y: float64(j) * spacing})
		}
	}
	row := nx + 1
	faces := make([][3]int, 0, 2*nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a := j*row + i
			b, c, d := a+1, a+row+1, a+row
			faces = append(faces, [3]int{a, b, c}, [3]int{a, c, d})
		}
	}
	m, _ := Build(vertices, faces)
	return m
}

// Icosphere returns a sphere of the given radius centred at the origin,
// built by subdividing an icosahedron. Faces are wound outward.
func Icosphere(radius float64, subdivisions int) *Mesh {
	t := (1 + math.Sqrt(5)) / 2
	vertices := []v3.Vec{
		{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
		{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
		{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
	}
	faces := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	for i := range vertices {
		vertices[i] = unit(vertices[i])
	}

	for s := 0; s < subdivisions; s++ {
		mid := make(map[[2]int]int, len(faces)*3/2)
		midpoint := func(a, b int) int {
			k := [2]int{a, b}
			if a > b {
				k = [2]int{b, a}
			}
			if i, ok := mid[k]; ok {
				return i
			}
			p := unit(vertices[a].Add(vertices[b]))
			vertices = append(vertices, p)
			mid[k] = len(vertices) - 1
			return len(vertices) - 1
		}
		next := make([][3]int, 0, len(faces)*4)
		for _, f := range faces {
			ab := midpoint(f[0], f[1])
			bc := midpoint(f[1], f[2])
			ca := midpoint(f[2], f[0])
			next = append(next,
				[3]int{f[0], ab, ca},
				[3]int{f[1], bc, ab},
				[3]int{f[2], ca, bc},
				[3]int{ab, bc, ca},
			)
		}
		faces = next
	}

	for i := range vertices {
		vertices[i] = vertices[i].MulScalar(radius)
	}
	m, _ := Build(vertices, faces)
	return m
}
