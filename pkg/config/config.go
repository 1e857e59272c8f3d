// Package config loads facet settings from a TOML file and merges them with
// command-line overrides.
package config

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/chazu/facet/pkg/curvature"
	"github.com/chazu/facet/pkg/kernel/sdfx"
	"github.com/chazu/facet/pkg/logging"
	"github.com/chazu/facet/pkg/mesh"
)

// Defaults applied by Resolve to unset fields.
const (
	DefaultBackend = "sdfx"
	DefaultTimeout = 5 // seconds
)

// Config mirrors the TOML file layout.
type Config struct {
	Geometry  Geometry       `toml:"geometry"`
	Curvature Curvature      `toml:"curvature"`
	Kernel    Kernel         `toml:"kernel"`
	Engine    Engine         `toml:"engine"`
	Parallel  Parallel       `toml:"parallel"`
	Logging   logging.Config `toml:"logging"`
}

// Geometry holds the numeric tolerances of the mesh pipelines.
type Geometry struct {
	WeldTolerance float64 `toml:"weld_tolerance"`
	AreaEpsilon   float64 `toml:"area_epsilon"`
}

type Curvature struct {
	// FaceAggregate is "abs" or "legacy".
	FaceAggregate string `toml:"face_aggregate"`
	Principal     bool   `toml:"principal"`
}

type Kernel struct {
	Backend   string `toml:"backend"`
	MeshCells int    `toml:"mesh_cells"`
}

type Engine struct {
	Timeout int `toml:"timeout"` // seconds
}

type Parallel struct {
	Workers int `toml:"workers"`
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Backend string
	Workers int
	Timeout int
	Logfile string
	Verbose bool
}

// Load reads a TOML config file. Fields not set in the file keep their zero
// values; keys the file sets but Config does not know are an error.
func Load(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("config: %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Default returns a resolved configuration with no file and no flags.
func Default() Config {
	var c Config
	// The zero config always resolves.
	_ = c.Resolve(Flags{})
	return c
}

// Resolve applies flag overrides, then fills empty fields with defaults and
// checks the result. CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) error {
	if flags.Backend != "" {
		c.Kernel.Backend = flags.Backend
	}
	if flags.Workers > 0 {
		c.Parallel.Workers = flags.Workers
	}
	if flags.Timeout > 0 {
		c.Engine.Timeout = flags.Timeout
	}
	if flags.Logfile != "" {
		c.Logging.Logfile = flags.Logfile
	}
	if flags.Verbose {
		c.Logging.Verbose = true
	}

	if c.Geometry.WeldTolerance <= 0 {
		c.Geometry.WeldTolerance = mesh.DefaultWeldTolerance
	}
	if c.Geometry.AreaEpsilon <= 0 {
		c.Geometry.AreaEpsilon = curvature.DefaultAreaEpsilon
	}
	if c.Curvature.FaceAggregate == "" {
		c.Curvature.FaceAggregate = curvature.AggregateAbs.String()
	}
	if c.Kernel.Backend == "" {
		c.Kernel.Backend = DefaultBackend
	}
	if c.Kernel.MeshCells <= 0 {
		c.Kernel.MeshCells = sdfx.DefaultMeshCells
	}
	if c.Engine.Timeout <= 0 {
		c.Engine.Timeout = DefaultTimeout
	}
	if c.Parallel.Workers <= 0 {
		c.Parallel.Workers = runtime.NumCPU()
	}

	if _, err := c.Aggregate(); err != nil {
		return fmt.Errorf("config: curvature.face_aggregate: %w", err)
	}
	switch c.Kernel.Backend {
	case "sdfx", "manifold":
	default:
		return fmt.Errorf("config: kernel.backend: unknown backend %q (want \"sdfx\" or \"manifold\")", c.Kernel.Backend)
	}
	return nil
}

// Aggregate parses Curvature.FaceAggregate.
func (c *Config) Aggregate() (curvature.Aggregate, error) {
	return curvature.ParseAggregate(c.Curvature.FaceAggregate)
}

// EvalTimeout returns Engine.Timeout as a duration.
func (c *Config) EvalTimeout() time.Duration {
	return time.Duration(c.Engine.Timeout) * time.Second
}
