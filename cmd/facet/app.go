package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/chazu/facet/pkg/analysis"
	"github.com/chazu/facet/pkg/config"
	"github.com/chazu/facet/pkg/engine"
	"github.com/chazu/facet/pkg/logging"
)

// App evaluates facet scripts with a resolved configuration.
type App struct {
	engine *engine.Engine
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the JSON report printed for a script.
type EvalResult struct {
	Value    any                  `json:"value"`
	Errors   []EvalErrorData      `json:"errors"`
	Warnings []engine.EvalWarning `json:"warnings"`
}

// Failed reports whether the script produced errors.
func (r EvalResult) Failed() bool {
	return len(r.Errors) > 0
}

// NewApp creates an App whose engine follows cfg. cfg must be resolved.
func NewApp(cfg config.Config) (*App, error) {
	opts, err := engineOptions(cfg)
	if err != nil {
		return nil, err
	}
	return &App{engine: engine.NewEngine(opts)}, nil
}

func engineOptions(cfg config.Config) (engine.Options, error) {
	agg, err := cfg.Aggregate()
	if err != nil {
		return engine.Options{}, err
	}
	return engine.Options{
		Timeout:       cfg.EvalTimeout(),
		Backend:       cfg.Kernel.Backend,
		MeshCells:     cfg.Kernel.MeshCells,
		WeldTolerance: cfg.Geometry.WeldTolerance,
		Analysis: analysis.Options{
			AreaEpsilon: cfg.Geometry.AreaEpsilon,
			Aggregate:   agg,
			Principal:   cfg.Curvature.Principal,
			Workers:     cfg.Parallel.Workers,
		},
	}, nil
}

// Evaluate runs a script and returns its report. Fatal engine errors
// (timeout, panic) are reported as errors without line information.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Errors:   []EvalErrorData{},
		Warnings: []engine.EvalWarning{},
	}

	res, err := a.engine.Evaluate(source)
	if err != nil {
		logging.Errorf("evaluate: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	result.Warnings = append(result.Warnings, res.Warnings...)
	for _, w := range res.Warnings {
		logging.Debugf("%s: %s", w.Builtin, w.Message)
	}
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	result.Value = res.Value
	return result
}

// Summary is a one-line human-readable description of a report.
func Summary(r EvalResult) string {
	if r.Failed() {
		return fmt.Sprintf("failed: %s", r.Errors[0].Message)
	}

	var b strings.Builder
	switch v := r.Value.(type) {
	case *analysis.Report:
		fmt.Fprintf(&b, "mesh: %s vertices, %s faces, %s edges, area %s",
			humanize.Comma(int64(v.Vertices)),
			humanize.Comma(int64(v.Faces)),
			humanize.Comma(int64(v.Edges)),
			humanize.FtoaWithDigits(v.Area, 4))
		if v.Watertight {
			b.WriteString(", watertight")
		}
	case float64:
		fmt.Fprintf(&b, "value: %s", humanize.FtoaWithDigits(v, 6))
	case []any:
		fmt.Fprintf(&b, "list: %s items", humanize.Comma(int64(len(v))))
	case map[string]any:
		fmt.Fprintf(&b, "record: %s fields", humanize.Comma(int64(len(v))))
	case nil:
		b.WriteString("ok")
	default:
		fmt.Fprintf(&b, "value: %v", v)
	}
	if n := len(r.Warnings); n > 0 {
		fmt.Fprintf(&b, " (%s)", english.Plural(n, "warning", ""))
	}
	return b.String()
}
