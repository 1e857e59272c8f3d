package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runFacet(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func decode(t *testing.T, stdout string) map[string]any {
	t.Helper()
	var report map[string]any
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}
	return report
}

func TestRunExpression(t *testing.T) {
	code, stdout, stderr := runFacet(t, "", "-summary", "-e", "(mesh-volume (cube 2))")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	report := decode(t, stdout)
	if report["value"] != 8.0 {
		t.Errorf("value = %v, want 8", report["value"])
	}
	if errs, _ := report["errors"].([]any); len(errs) != 0 {
		t.Errorf("errors = %v", errs)
	}
	if !strings.Contains(stderr, "value: 8") {
		t.Errorf("summary = %q", stderr)
	}
}

func TestRunStdin(t *testing.T) {
	code, stdout, stderr := runFacet(t, "(mesh-info (cube 1))", "-")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	value, ok := decode(t, stdout)["value"].(map[string]any)
	if !ok {
		t.Fatalf("value is not an object: %s", stdout)
	}
	if value["euler"] != 2.0 || value["watertight"] != true {
		t.Errorf("value = %v, want euler 2 and watertight", value)
	}
}

func TestRunScriptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edges.facet")
	if err := os.WriteFile(path, []byte("(get-field (mesh-resolution (grid 1 1)) :max)"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, stdout, stderr := runFacet(t, "", path)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	if v, _ := decode(t, stdout)["value"].(float64); v < 1.414 || v > 1.415 {
		t.Errorf("value = %v, want sqrt(2)", v)
	}
}

func TestRunScriptError(t *testing.T) {
	code, stdout, _ := runFacet(t, "", "-e", "(mesh-volume (cube 0))")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	errs, _ := decode(t, stdout)["errors"].([]any)
	if len(errs) == 0 {
		t.Error("report has no errors")
	}
}

func TestRunConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "facet.toml")
	logfile := filepath.Join(dir, "facet.log")
	body := "[curvature]\nface_aggregate = \"legacy\"\n[logging]\nlogfile = \"" + filepath.ToSlash(logfile) + "\"\n"
	if err := os.WriteFile(cfg, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	// File settings resolve alongside flags.
	code, _, stderr := runFacet(t, "", "-config", cfg, "-e", "(curvature (icosphere 1 1))")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
}

func TestRunUsageErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.facet")
	tests := []struct {
		name string
		args []string
	}{
		{"no script", nil},
		{"expression and file", []string{"-e", "(+ 1 2)", "x.facet"}},
		{"two files", []string{"a.facet", "b.facet"}},
		{"missing file", []string{missing}},
		{"bad flag", []string{"-bogus"}},
		{"bad backend", []string{"-backend", "cgal", "-e", "(+ 1 2)"}},
		{"missing config", []string{"-config", missing, "-e", "(+ 1 2)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runFacet(t, "", tt.args...)
			if code != 2 {
				t.Errorf("exit code = %d, want 2", code)
			}
		})
	}
}
