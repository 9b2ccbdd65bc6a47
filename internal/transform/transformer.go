package transform

import (
	"errors"
	"reflect"
	"slices"

	"mapper-generator/internal/analyze"
	"mapper-generator/options"
)

var (
	// ErrNoTransformer is returned when no transformer applies to a runtime value.
	ErrNoTransformer = errors.New("no transformer")
	// ErrSkip asks the caller to leave the target property untouched.
	ErrSkip = errors.New("skip property")
)

// Procedure is a compiled mapping for one (source, target) pair. It accepts
// the source type or a pointer to it at any depth and returns an invalid
// value for nil. Values of another type fail with a source type error.
type Procedure func(src reflect.Value, ctx *options.Context) (reflect.Value, error)

// Dependency names the nested mapper an Object transformer delegates to.
type Dependency struct {
	Source *analyze.TypeDescriptor
	Target *analyze.TypeDescriptor
}

func (d Dependency) Name() string {
	return d.Source.String() + "->" + d.Target.String()
}

// Linker provides the procedure of a dependency, compiling it if needed.
type Linker interface {
	Link(dep Dependency) (Procedure, error)
}

// Scope is what a transformer sees of the running mapping call.
type Scope struct {
	// Context is the context of the nested value, already derived for Property.
	Context  *options.Context
	Property string
	Linker   Linker
}

// Transformer converts a source value into a target value. An invalid
// result stands for nil: the target receives its zero value.
type Transformer interface {
	Transform(in reflect.Value, s Scope) (reflect.Value, error)
	String() string
}

// DependentTransformer declares the nested mappers it needs.
type DependentTransformer interface {
	Transformer
	Dependencies() []Dependency
}

// Meta carries property metadata that influences transformation.
type Meta struct {
	Property string
	// DateFormat is the layout configured on the property.
	DateFormat string

	// nesting lists the composite pairs being resolved, outermost first.
	nesting []string
}

// enter marks the resolution of a composite transformer for src and tgt.
// It reports false when the same pair is already being resolved, as with
// self-referential types like `type Tree map[string]Tree`.
func (m Meta) enter(src, tgt *analyze.TypeDescriptor) (Meta, bool) {
	pair := src.ID() + "->" + tgt.ID()
	if slices.Contains(m.nesting, pair) {
		return m, false
	}

	m.nesting = append(slices.Clip(m.nesting), pair)

	return m, true
}

// Dependencies returns the nested mappers t needs, composite transformers included.
func Dependencies(t Transformer) []Dependency {
	if dt, ok := t.(DependentTransformer); ok {
		return dt.Dependencies()
	}

	return nil
}

func collectDependencies(ts ...Transformer) []Dependency {
	var deps []Dependency
	for _, t := range ts {
		deps = append(deps, Dependencies(t)...)
	}

	return deps
}

// unwrap returns the dynamic value behind interfaces, invalid for nil.
func unwrap(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}

		v = v.Elem()
	}

	return v
}
