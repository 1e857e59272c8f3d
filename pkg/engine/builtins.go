package engine

import (
	"context"
	"fmt"
	"math"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/facet/pkg/analysis"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/chazu/facet/pkg/tessellate"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites facet source before passing it to zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: mesh-volume -> mesh_volume
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both respect string literal boundaries and line comments, and ; comments
// become // comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpMesh wraps an indexed mesh built by mesh, cube, icosphere, grid or
// tessellate.
type sexpMesh struct {
	m *mesh.Mesh
}

func (m *sexpMesh) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(mesh %d vertices %d faces)", m.m.VertexCount(), m.m.FaceCount())
}
func (m *sexpMesh) Type() *zygo.RegisteredType { return nil }

// sexpShape wraps a CSG node; nothing is tessellated until tessellate.
type sexpShape struct {
	shape *tessellate.Shape
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(shape %s)", s.shape.Kind)
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpRecord is a named set of fields returned by the analysis builtins and
// read back with get-field.
type sexpRecord struct {
	kind   string
	keys   []string
	fields map[string]zygo.Sexp
}

func newRecord(kind string) *sexpRecord {
	return &sexpRecord{kind: kind, fields: make(map[string]zygo.Sexp)}
}

func (r *sexpRecord) set(key string, v zygo.Sexp) {
	if _, ok := r.fields[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = v
}

func (r *sexpRecord) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s :%s)", r.kind, strings.Join(r.keys, " :"))
}
func (r *sexpRecord) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: a flag.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// arg returns the keyword argument kw, or else positional argument i.
func (pa kwArgs) arg(kw string, i int) (zygo.Sexp, bool) {
	if v, ok := pa.kw[kw]; ok {
		return v, true
	}
	if i >= 0 && i < len(pa.positional) {
		return pa.positional[i], true
	}
	return nil, false
}

// float reads a numeric argument, falling back to def when it is absent.
func (pa kwArgs) float(kw string, i int, def float64) (float64, error) {
	v, ok := pa.arg(kw, i)
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", kw, err)
	}
	return f, nil
}

// integer reads an integer argument, falling back to def when it is absent.
func (pa kwArgs) integer(kw string, i int, def int) (int, error) {
	v, ok := pa.arg(kw, i)
	if !ok {
		return def, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", kw, err)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a SexpInt, or from a SexpFloat holding a whole
// number.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool treats a bare keyword flag as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_abs) and plain strings ("abs").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

func toMesh(s zygo.Sexp) (*mesh.Mesh, error) {
	if m, ok := s.(*sexpMesh); ok {
		return m.m, nil
	}
	return nil, fmt.Errorf("expected mesh, got %T (%s)", s, s.SexpString(nil))
}

func toShape(s zygo.Sexp) (*tessellate.Shape, error) {
	if sh, ok := s.(*sexpShape); ok {
		return sh.shape, nil
	}
	return nil, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toPoints reads a list of [x y z] coordinate triples.
func toPoints(s zygo.Sexp) ([][3]float64, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	points := make([][3]float64, len(items))
	for i, item := range items {
		xyz, err := sexpListToSlice(item)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		if len(xyz) != 3 {
			return nil, fmt.Errorf("vertex %d: expected 3 coordinates, got %d", i, len(xyz))
		}
		for c := range xyz {
			if points[i][c], err = toFloat64(xyz[c]); err != nil {
				return nil, fmt.Errorf("vertex %d: %w", i, err)
			}
		}
	}
	return points, nil
}

// toFaces reads a list of [i j k] vertex index triples.
func toFaces(s zygo.Sexp) ([][3]int, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	faces := make([][3]int, len(items))
	for i, item := range items {
		ijk, err := sexpListToSlice(item)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		if len(ijk) != 3 {
			return nil, fmt.Errorf("face %d: expected 3 indices, got %d", i, len(ijk))
		}
		for c := range ijk {
			if faces[i][c], err = toInt(ijk[c]); err != nil {
				return nil, fmt.Errorf("face %d: %w", i, err)
			}
		}
	}
	return faces, nil
}

// ---------------------------------------------------------------------------
// Go -> Sexp
// ---------------------------------------------------------------------------

func floatList(vals []float64) zygo.Sexp {
	items := make([]zygo.Sexp, len(vals))
	for i, v := range vals {
		items[i] = &zygo.SexpFloat{Val: v}
	}
	return zygo.MakeList(items)
}

func boolList(vals []bool) zygo.Sexp {
	items := make([]zygo.Sexp, len(vals))
	for i, v := range vals {
		items[i] = &zygo.SexpBool{Val: v}
	}
	return zygo.MakeList(items)
}

func vecList(v v3.Vec) zygo.Sexp {
	return floatList([]float64{v.X, v.Y, v.Z})
}

// ---------------------------------------------------------------------------
// Sexp -> Go
// ---------------------------------------------------------------------------

// toGo converts an evaluation result into plain Go data for reporting.
// Meshes become their topology report and records become maps.
func toGo(sx zygo.Sexp, s *session) (any, error) {
	switch v := sx.(type) {
	case nil, *zygo.SexpSentinel:
		return nil, nil
	case *zygo.SexpInt:
		return v.Val, nil
	case *zygo.SexpFloat:
		return v.Val, nil
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpStr:
		if name, ok := isKW(v); ok {
			return ":" + name, nil
		}
		return v.S, nil
	case *zygo.SexpPair:
		items, err := zygo.ListToArray(v)
		if err != nil {
			return nil, err
		}
		return toGoSlice(items, s)
	case *zygo.SexpArray:
		return toGoSlice(v.Val, s)
	case *sexpMesh:
		return analysis.InfoOf(v.m, s.opts.Analysis), nil
	case *sexpShape:
		return map[string]any{"shape": v.shape.Kind.String()}, nil
	case *sexpRecord:
		out := make(map[string]any, len(v.keys))
		for _, k := range v.keys {
			val, err := toGo(v.fields[k], s)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = val
		}
		return out, nil
	}
	return sx.SexpString(nil), nil
}

func toGoSlice(items []zygo.Sexp, s *session) ([]any, error) {
	out := make([]any, len(items))
	for i, item := range items {
		v, err := toGo(item, s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// session is the per-evaluation state shared by the builtins.
type session struct {
	ctx      context.Context
	opts     Options
	warnings []EvalWarning
}

func (s *session) warn(builtin, format string, args ...any) {
	s.warnings = append(s.warnings, EvalWarning{Builtin: builtin, Message: fmt.Sprintf(format, args...)})
}

// registerBuiltins installs all facet builtins into a zygomys environment.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals and
// kebab-case names match the underscore names registered here.
func registerBuiltins(env *zygo.Zlisp, s *session) {
	registerMeshBuiltins(env, s)
	registerAnalysisBuiltins(env, s)
	registerKernelBuiltins(env, s)

	// -----------------------------------------------------------------------
	// (get-field record :name)
	// -----------------------------------------------------------------------
	env.AddFunction("get_field", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("get-field requires a record and a field name, got %d arguments", len(args))
		}
		rec, ok := args[0].(*sexpRecord)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("get-field: expected record, got %T (%s)", args[0], args[0].SexpString(nil))
		}
		key, err := toKeywordString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("get-field: %w", err)
		}
		v, ok := rec.fields[key]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("get-field: %s has no field %q (fields: %s)",
				rec.kind, key, strings.Join(rec.keys, ", "))
		}
		return v, nil
	})
}
