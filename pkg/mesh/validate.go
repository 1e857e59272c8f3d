package mesh

import (
	"fmt"
	"slices"
)

// Severity distinguishes blocking problems from advisory ones.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Issue is a single validation finding. Element is the face or vertex index
// it concerns, or -1 for mesh-wide findings.
type Issue struct {
	Element  int
	Message  string
	Severity Severity
}

func (i Issue) String() string {
	if i.Element < 0 {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: element %d: %s", i.Severity, i.Element, i.Message)
}

// Validate checks the mesh and returns blocking errors (bad indices) and
// advisory warnings (degenerate faces, duplicate faces, unused vertices)
// separately. areaEpsilon is the double area below which a face counts as
// degenerate.
func (m *Mesh) Validate(areaEpsilon float64) (errs []Issue, warnings []Issue) {
	errs = m.validateIndices()
	if len(errs) > 0 {
		// The remaining checks index into Vertices.
		return errs, nil
	}
	warnings = append(warnings, m.validateDegenerate(areaEpsilon)...)
	warnings = append(warnings, m.validateDuplicates()...)
	warnings = append(warnings, m.validateUnreferenced()...)
	return errs, warnings
}

func (m *Mesh) validateIndices() []Issue {
	var errs []Issue
	for f := range m.Faces {
		if err := m.checkFace(f, m.Faces[f]); err != nil {
			errs = append(errs, Issue{Element: f, Message: err.Error(), Severity: SeverityError})
		}
	}
	return errs
}

func (m *Mesh) validateDegenerate(areaEpsilon float64) []Issue {
	var warnings []Issue
	for f := range m.Faces {
		if m.Faces[f].Flags&FlagDeleted != 0 {
			continue
		}
		if a := m.DoubleArea(f); a <= areaEpsilon {
			warnings = append(warnings, Issue{
				Element: f,
				Message: fmt.Sprintf("degenerate face, double area %.3g", a),
			})
		}
	}
	return warnings
}

// validateDuplicates reports faces using the same three vertices as an
// earlier face, in any order or winding.
func (m *Mesh) validateDuplicates() []Issue {
	var warnings []Issue
	seen := make(map[[3]int]int, len(m.Faces))
	for f := range m.Faces {
		if m.Faces[f].Flags&FlagDeleted != 0 {
			continue
		}
		key := m.Faces[f].V
		slices.Sort(key[:])
		if first, ok := seen[key]; ok {
			warnings = append(warnings, Issue{
				Element: f,
				Message: fmt.Sprintf("duplicate of face %d", first),
			})
			continue
		}
		seen[key] = f
	}
	return warnings
}

func (m *Mesh) validateUnreferenced() []Issue {
	used := make([]bool, len(m.Vertices))
	for f := range m.Faces {
		if m.Faces[f].Flags&FlagDeleted != 0 {
			continue
		}
		for _, v := range m.Faces[f].V {
			used[v] = true
		}
	}
	var warnings []Issue
	for v, ok := range used {
		if !ok && m.Vertices[v].Flags&FlagDeleted == 0 {
			warnings = append(warnings, Issue{Element: v, Message: "vertex is not used by any face"})
		}
	}
	return warnings
}
