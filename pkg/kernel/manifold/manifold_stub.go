//go:build !manifold

// Package manifold is the Manifold C library backend. Without the
// "manifold" build tag only this stub is compiled and New fails.
package manifold

import (
	"errors"

	"github.com/chazu/facet/pkg/kernel"
)

// ErrUnavailable is returned by New when the binary was built without the
// manifold tag.
var ErrUnavailable = errors.New("manifold kernel not available: build with -tags=manifold")

func New() (kernel.Kernel, error) {
	return nil, ErrUnavailable
}
