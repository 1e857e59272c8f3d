// Package engine provides the Lisp evaluation engine for facet.
// It wraps zygomys in a sandboxed environment whose builtins build meshes
// and solids and run the analysis pipelines on them.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/facet/pkg/analysis"
	"github.com/chazu/facet/pkg/mesh"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
	Message string `json:"message"`
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning is an advisory finding raised by a builtin, such as a
// degenerate face in a mesh built from script data.
type EvalWarning struct {
	Builtin string `json:"builtin"`
	Message string `json:"message"`
}

// EvalResult bundles the full output of an evaluation. Value is the last
// expression's value converted to plain Go data (numbers, strings, slices,
// maps) and is nil when Errors is non-empty.
type EvalResult struct {
	Value    any           `json:"value"`
	Errors   []EvalError   `json:"errors,omitempty"`
	Warnings []EvalWarning `json:"warnings,omitempty"`
}

// Options configures the builtins and the evaluation limits.
type Options struct {
	// Timeout bounds a single evaluation; 0 means EvalTimeout.
	Timeout time.Duration
	// Backend is the kernel used by tessellate: "sdfx" (default) or
	// "manifold".
	Backend string
	// MeshCells is the marching cubes resolution of the sdfx kernel.
	MeshCells int
	// WeldTolerance merges tessellated vertices closer than it.
	WeldTolerance float64
	// Analysis is passed to every analysis builtin.
	Analysis analysis.Options
}

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return EvalTimeout
}

func (o Options) weldTolerance() float64 {
	if o.WeldTolerance > 0 {
		return o.WeldTolerance
	}
	return mesh.DefaultWeldTolerance
}

// Engine wraps the zygomys interpreter for facet evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	opts Options

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Evaluate runs Lisp source code and returns the value of its last
// expression.
//
// Return semantics:
//   - On success: result with Value set + nil error
//   - On parse/eval failure: result with Errors set + nil error
//   - On fatal failure (timeout, panic, superseded): nil + error
func (e *Engine) Evaluate(source string) (*EvalResult, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	// Cancelled on return so that analysis passes of a timed-out script stop.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res, err := e.evaluate(ctx, source)
		ch <- evalResult{result: res, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation, e.opts.timeout())
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(ctx context.Context, source string) (*EvalResult, error) {
	// Empty source is a valid program with no value.
	if strings.TrimSpace(source) == "" {
		return &EvalResult{}, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	s := &session{ctx: ctx, opts: e.opts}
	registerBuiltins(env, s)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return &EvalResult{Errors: parseZygomysError(err), Warnings: s.warnings}, nil
	}

	out, err := env.Run()
	if err != nil {
		return &EvalResult{Errors: parseZygomysError(err), Warnings: s.warnings}, nil
	}

	value, err := toGo(out, s)
	if err != nil {
		return &EvalResult{Errors: []EvalError{{Message: err.Error()}}, Warnings: s.warnings}, nil
	}
	return &EvalResult{Value: value, Warnings: s.warnings}, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values,
// extracting the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
