package scene

import (
	"fmt"
	"regexp"
	"strings"

	"shadeweave/internal/diag"
	"shadeweave/internal/provenance"
)

var identRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Validate reports problems that would make generation produce nonsense or code
// that cannot compile for reasons the user did not write. It returns true when
// no error was reported.
func Validate(s *Scene, r diag.Reporter) bool {
	v := validator{r: diag.NewDedupReporter(r)}
	v.names("uniform", len(s.Uniforms), func(i int) (string, diag.Location) {
		return s.Uniforms[i].Name, diag.Nowhere()
	})
	v.names("matrix", len(s.Matrices), func(i int) (string, diag.Location) {
		return s.Matrices[i].Name, diag.Nowhere()
	})
	v.names("object", len(s.Objects), func(i int) (string, diag.Location) {
		return s.Objects[i].Name, diag.At(provenance.Object(i), 0)
	})
	v.names("material", len(s.Materials), func(i int) (string, diag.Location) {
		return s.Materials[i].Name, diag.At(provenance.Material(i), 0)
	})
	v.names("texture", len(s.Textures), func(i int) (string, diag.Location) {
		return s.Textures[i].Name, diag.Nowhere()
	})
	v.names("library", len(s.Library), func(i int) (string, diag.Location) {
		return s.Library[i].Name, diag.At(provenance.Library(i), 0)
	})

	res := NewResolver(s)
	for i := range s.Uniforms {
		v.uniform(&s.Uniforms[i], res)
	}
	matrices := make(map[string]bool, len(s.Matrices))
	for _, m := range s.Matrices {
		matrices[m.Name] = true
	}
	for i := range s.Objects {
		v.object(i, &s.Objects[i], matrices)
	}
	for i := range s.Materials {
		v.material(i, &s.Materials[i])
	}
	for i := range s.Library {
		if strings.TrimSpace(s.Library[i].Code) == "" {
			diag.ReportWarning(v.r, diag.SceneEmptyCode, diag.At(provenance.Library(i), 0),
				fmt.Sprintf("library %q has no code", s.Library[i].Name)).Emit()
		}
	}
	return !v.failed
}

type validator struct {
	r      diag.Reporter
	failed bool
}

func (v *validator) errorf(code diag.Code, loc diag.Location, format string, args ...any) *diag.ReportBuilder {
	v.failed = true
	return diag.ReportError(v.r, code, loc, fmt.Sprintf(format, args...))
}

func (v *validator) names(kind string, n int, at func(int) (string, diag.Location)) {
	first := make(map[string]diag.Location, n)
	for i := range n {
		name, loc := at(i)
		switch {
		case name == "":
			v.errorf(diag.SceneEmptyName, loc, "%s #%d has no name", kind, i).Emit()
			continue
		case strings.HasPrefix(name, "_"):
			v.errorf(diag.SceneReservedName, loc, "%s %q: names starting with '_' are reserved", kind, name).Emit()
			continue
		case !identRe.MatchString(name):
			v.errorf(diag.SceneBadName, loc, "%s %q is not a valid identifier", kind, name).Emit()
			continue
		}
		if prev, ok := first[name]; ok {
			v.errorf(diag.SceneDuplicateName, loc, "duplicate %s %q", kind, name).
				WithNote(prev, "first declared here").Emit()
			continue
		}
		first[name] = loc
	}
}

func (v *validator) uniform(u *Uniform, res *Resolver) {
	switch u.Kind {
	case UniformBool, UniformInt, UniformFloat, UniformAngle:
		if u.Min != nil && u.Max != nil && *u.Min > *u.Max {
			v.errorf(diag.SceneBadRange, diag.Nowhere(), "uniform %q: min %g exceeds max %g", u.Name, *u.Min, *u.Max).Emit()
		} else if (u.Min != nil && u.Value < *u.Min) || (u.Max != nil && u.Value > *u.Max) {
			diag.ReportWarning(v.r, diag.SceneBadRange, diag.Nowhere(),
				fmt.Sprintf("uniform %q: value %g is outside its range", u.Name, u.Value)).Emit()
		}
	case UniformFormula:
		if strings.TrimSpace(u.Formula) == "" {
			v.errorf(diag.SceneEmptyCode, diag.Nowhere(), "formula uniform %q has no formula", u.Name).Emit()
			return
		}
		switch r := res.Get(u.Name); r.Status {
		case NotFound:
			v.errorf(diag.SceneUnknownUniform, diag.Nowhere(), "formula uniform %q refers to undeclared uniform %q", u.Name, r.Name).Emit()
		case Recursion:
			v.errorf(diag.SceneRecursion, diag.Nowhere(), "formula uniform %q depends on itself through %q", u.Name, r.Name).Emit()
		case Invalid:
			v.errorf(diag.SceneBadFormula, diag.Nowhere(), "formula uniform %q: %v", u.Name, r.Err).Emit()
		}
	default:
		v.errorf(diag.SceneBadKind, diag.Nowhere(), "uniform %q has unknown kind %q", u.Name, u.Kind).Emit()
	}
}

func (v *validator) object(pos int, o *Object, matrices map[string]bool) {
	loc := diag.At(provenance.Object(pos), 0)
	ref := func(name string) {
		if !matrices[name] {
			v.errorf(diag.SceneUnknownMatrix, loc, "object %q refers to undeclared matrix %q", o.Name, name).Emit()
		}
	}

	switch o.Kind {
	case ObjectDebug:
		if o.Matrix == "" {
			v.errorf(diag.SceneMissingPlacement, loc, "debug object %q needs a matrix", o.Name).Emit()
			return
		}
		if o.Portal != nil {
			v.errorf(diag.SceneMissingPlacement, loc, "debug object %q cannot be a portal", o.Name).Emit()
		}
		ref(o.Matrix)
		return
	case ObjectFlat, ObjectComplex:
	default:
		v.errorf(diag.SceneBadKind, loc, "object %q has unknown kind %q", o.Name, o.Kind).Emit()
		return
	}

	switch {
	case o.Portal != nil && o.Matrix != "":
		v.errorf(diag.SceneMissingPlacement, loc, "object %q has both matrix and portal", o.Name).Emit()
	case o.Portal != nil:
		ref(o.Portal.A)
		ref(o.Portal.B)
	case o.Matrix != "":
		ref(o.Matrix)
	default:
		v.errorf(diag.SceneMissingPlacement, loc, "object %q has neither matrix nor portal", o.Name).Emit()
	}
	if strings.TrimSpace(o.Code) == "" {
		v.errorf(diag.SceneEmptyCode, loc, "%s object %q has no code", o.Kind, o.Name).Emit()
	}
}

func (v *validator) material(pos int, m *Material) {
	loc := diag.At(provenance.Material(pos), 0)
	switch m.Kind {
	case MaterialSimple, MaterialReflect, MaterialRefract:
	case MaterialComplex:
		if strings.TrimSpace(m.Code) == "" {
			v.errorf(diag.SceneEmptyCode, loc, "complex material %q has no code", m.Name).Emit()
		}
	default:
		v.errorf(diag.SceneBadKind, loc, "material %q has unknown kind %q", m.Name, m.Kind).Emit()
	}
}
