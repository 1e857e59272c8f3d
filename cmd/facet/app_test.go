package main

import (
	"math"
	"os"
	"strings"
	"testing"

	"github.com/chazu/facet/pkg/analysis"
	"github.com/chazu/facet/pkg/config"
	"github.com/chazu/facet/pkg/engine"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(config.Default())
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	return app
}

// TestE2ESphereExample runs the example script through the same path the
// command takes.
func TestE2ESphereExample(t *testing.T) {
	app := newTestApp(t)

	source, err := os.ReadFile("../../examples/sphere.facet")
	if err != nil {
		t.Fatalf("failed to read sphere.facet: %v", err)
	}
	result := app.Evaluate(string(source))
	if result.Failed() {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	items, ok := result.Value.([]any)
	if !ok || len(items) != 3 {
		t.Fatalf("value = %v, want a 3 item list", result.Value)
	}
	vol, _ := items[0].(float64)
	if want := 4.0 / 3 * math.Pi * 8; math.Abs(vol-want)/want > 0.02 {
		t.Errorf("volume = %v, want ~%v", vol, want)
	}
	if faces, _ := items[2].([]any); len(faces) != 1280 {
		t.Errorf("face-mean-max has %d entries, want 1280", len(faces))
	}
}

func TestE2EDrilledBlockExample(t *testing.T) {
	app := newTestApp(t)

	source, err := os.ReadFile("../../examples/drilled_block.facet")
	if err != nil {
		t.Fatalf("failed to read drilled_block.facet: %v", err)
	}
	result := app.Evaluate(string(source))
	if result.Failed() {
		t.Fatalf("errors: %v", result.Errors)
	}
	rec, ok := result.Value.(map[string]any)
	if !ok {
		t.Fatalf("value %T, want record", result.Value)
	}
	if faces, _ := rec["faces"].(int64); faces == 0 {
		t.Error("drilled block has no faces")
	}
	t.Logf("drilled block: %v", Summary(result))
}

func TestE2EEmptySource(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate("")

	if result.Failed() {
		t.Errorf("expected 0 errors for empty source, got %v", result.Errors)
	}
	if result.Value != nil {
		t.Errorf("expected nil value, got %v", result.Value)
	}
	// Slices are non-nil so JSON has [] rather than null.
	if result.Errors == nil || result.Warnings == nil {
		t.Error("Errors and Warnings should be non-nil empty slices")
	}
}

func TestE2ESyntaxError(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate("(+ 1 2)\n(mesh-volume (cube 1)")

	if !result.Failed() {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	if result.Value != nil {
		t.Errorf("expected nil value on syntax error, got %v", result.Value)
	}
	if result.Errors[0].Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
}

func TestE2EInvalidIndex(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate(`(curvature (mesh [[0 0 0] [1 0 0] [0 1 0]] [[0 1 -1]]))`)

	if !result.Failed() {
		t.Fatal("expected an invalid index error")
	}
	if !strings.Contains(result.Errors[0].Message, "invalid vertex index") &&
		!strings.Contains(result.Errors[0].Message, "references vertex -1") {
		t.Errorf("message = %q", result.Errors[0].Message)
	}
}

func TestE2EWarningsReported(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate(`(mesh-info (mesh [[0 0 0] [1 0 0] [0 1 0] [3 3 3]] [[0 1 2]]))`)

	if result.Failed() {
		t.Fatalf("errors: %v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("warnings = %v, want one unused-vertex warning", result.Warnings)
	}
}

func TestE2ERapidEvaluation(t *testing.T) {
	// Sequential calls on one App exercise the generation counter.
	app := newTestApp(t)

	sources := []string{
		`(mesh-volume (cube 1))`,
		`(+ 1 2)`,
		``,
		`(mesh-volume (cube`,
		`(mesh-resolution (grid 2 2))`,
		`(curvature (icosphere 1 1))`,
	}
	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked: %v", i, r)
				}
			}()
			_ = app.Evaluate(source)
		}()
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name   string
		result EvalResult
		want   string
	}{
		{
			name: "mesh",
			result: EvalResult{Value: &analysis.Report{
				Area: 6,
			}},
			want: "mesh: 0 vertices, 0 faces, 0 edges, area 6",
		},
		{
			name:   "number",
			result: EvalResult{Value: 1.5},
			want:   "value: 1.5",
		},
		{
			name:   "list",
			result: EvalResult{Value: make([]any, 1200)},
			want:   "list: 1,200 items",
		},
		{
			name:   "nothing",
			result: EvalResult{},
			want:   "ok",
		},
		{
			name:   "failure",
			result: EvalResult{Errors: []EvalErrorData{{Message: "boom"}}},
			want:   "failed: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summary(tt.result); got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummaryCountsWarnings(t *testing.T) {
	r := EvalResult{Warnings: make([]engine.EvalWarning, 2)}
	if got := Summary(r); !strings.HasSuffix(got, "(2 warnings)") {
		t.Errorf("Summary() = %q, want warning count", got)
	}
}
