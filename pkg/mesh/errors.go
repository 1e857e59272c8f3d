package mesh

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIndex is returned when a face references a vertex outside
	// [0, vertexCount).
	ErrInvalidIndex = errors.New("mesh: invalid vertex index")

	// ErrEmptyMesh is returned when an operation needs faces or edges and
	// the mesh has none.
	ErrEmptyMesh = errors.New("mesh: empty mesh")

	// ErrNonManifold is returned when an operation requires a locally
	// manifold surface.
	ErrNonManifold = errors.New("mesh: mesh is not manifold")
)

// IndexError describes a face corner that references a missing vertex.
type IndexError struct {
	Face        int
	Corner      int
	Index       int
	VertexCount int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("mesh: face %d corner %d references vertex %d, vertex count is %d",
		e.Face, e.Corner, e.Index, e.VertexCount)
}

// Unwrap lets errors.Is match ErrInvalidIndex.
func (e *IndexError) Unwrap() error {
	return ErrInvalidIndex
}

// ManifoldError carries the non-manifold element counts that failed a
// manifold precondition.
type ManifoldError struct {
	Vertices int
	Edges    int
}

func (e *ManifoldError) Error() string {
	return fmt.Sprintf("mesh: mesh is not manifold (%d non-manifold vertices, %d non-manifold edges)",
		e.Vertices, e.Edges)
}

// Unwrap lets errors.Is match ErrNonManifold.
func (e *ManifoldError) Unwrap() error {
	return ErrNonManifold
}
