package transform

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"mapper-generator/internal/access"
	"mapper-generator/internal/analyze"
)

// Unique serves a source with one declared type and several candidate
// target types, as in a union target. One branch is built per viable target
// type. Branches run in declaration order and the first success wins.
type Unique struct {
	branches []Transformer
}

func (u *Unique) Transform(in reflect.Value, s Scope) (reflect.Value, error) {
	var errs []error

	for _, t := range u.branches {
		out, err := t.Transform(in, s)
		if err == nil || errors.Is(err, ErrSkip) {
			return out, err
		}

		errs = append(errs, err)
	}

	return reflect.Value{}, errors.Join(errs...)
}

func (u *Unique) String() string {
	return "unique(" + joinTransformers(u.branches) + ")"
}

func (u *Unique) Dependencies() []Dependency {
	return collectDependencies(u.branches...)
}

// Multiple serves a source with several declared types, such as an interface
// with registered implementations. It is the runtime type check cascade: the
// branch built for the concrete type of the value applies.
type Multiple struct {
	types    []reflect.Type
	branches []Transformer
}

func (m *Multiple) Transform(in reflect.Value, s Scope) (reflect.Value, error) {
	in = unwrap(in)
	if access.IsNil(in) {
		return reflect.Value{}, nil
	}

	for i, typ := range m.types {
		if typ == in.Type() {
			return m.branches[i].Transform(in, s)
		}
	}

	return reflect.Value{}, fmt.Errorf("%w for runtime type %s", ErrNoTransformer, in.Type())
}

func (m *Multiple) String() string {
	return "multiple(" + joinTransformers(m.branches) + ")"
}

func (m *Multiple) Dependencies() []Dependency {
	return collectDependencies(m.branches...)
}

func joinTransformers(ts []Transformer) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.String()
	}

	return strings.Join(names, " | ")
}

// uniqueFactory builds a Unique for one source type and several targets.
type uniqueFactory struct{}

func (uniqueFactory) Priority() int { return PriorityUnique }

func (uniqueFactory) Create(r *Resolver, sources, targets []*analyze.TypeDescriptor, meta Meta) (Transformer, bool) {
	if len(sources) != 1 || len(targets) < 2 {
		return nil, false
	}

	var branches []Transformer

	for _, tgt := range targets {
		if t, ok := r.Resolve(sources, []*analyze.TypeDescriptor{tgt}, meta); ok {
			branches = append(branches, t)
		}
	}

	switch len(branches) {
	case 0:
		return nil, false
	case 1:
		return branches[0], true
	default:
		return &Unique{branches: branches}, true
	}
}

// multipleFactory builds a Multiple for several source types.
type multipleFactory struct{}

func (multipleFactory) Priority() int { return PriorityMultiple }

func (multipleFactory) Create(r *Resolver, sources, targets []*analyze.TypeDescriptor, meta Meta) (Transformer, bool) {
	if len(sources) < 2 {
		return nil, false
	}

	m := &Multiple{}

	for _, src := range sources {
		t, ok := r.Resolve([]*analyze.TypeDescriptor{src}, targets, meta)
		if !ok {
			continue
		}

		m.types = append(m.types, src.Type)
		m.branches = append(m.branches, t)
	}

	if len(m.branches) == 0 {
		return nil, false
	}

	return m, true
}
