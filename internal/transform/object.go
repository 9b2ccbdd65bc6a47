package transform

import (
	"fmt"
	"reflect"
	"sync"

	"mapper-generator/internal/access"
	"mapper-generator/internal/analyze"
)

// Object delegates to the nested mapper of its dependency. The mapper is
// linked on first use, so that a type may map into itself.
type Object struct {
	dep    Dependency
	target *analyze.TypeDescriptor
	link   Lazy
}

func (o *Object) Transform(in reflect.Value, s Scope) (reflect.Value, error) {
	in = unwrap(in)
	if access.IsNil(in) {
		return reflect.Value{}, nil
	}

	proc, err := o.link.Get(o.dep, s.Linker)
	if err != nil {
		return reflect.Value{}, err
	}

	out, err := proc(in, s.Context)
	if err != nil || !out.IsValid() {
		return out, err
	}

	return o.adapt(out), nil
}

// Lazy holds the procedure of a dependency linked on first use. A failed
// link is not kept: the next call links again.
type Lazy struct {
	mu   sync.Mutex
	proc Procedure
}

func (l *Lazy) Get(dep Dependency, linker Linker) (Procedure, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.proc != nil {
		return l.proc, nil
	}

	if linker == nil {
		return nil, fmt.Errorf("mapper %s: no linker", dep.Name())
	}

	proc, err := linker.Link(dep)
	if err != nil {
		return nil, err
	}

	l.proc = proc

	return proc, nil
}

// adapt dereferences the *T produced by the mapper for value targets.
func (o *Object) adapt(out reflect.Value) reflect.Value {
	typ := o.target.Type
	if typ == nil || out.Type() == typ || typ.Kind() == reflect.Interface {
		return out
	}

	if out.Kind() == reflect.Pointer && out.Type().Elem() == typ {
		if out.IsNil() {
			return reflect.Value{}
		}

		return out.Elem()
	}

	return out
}

func (o *Object) String() string {
	return "object(" + o.dep.Name() + ")"
}

func (o *Object) Dependencies() []Dependency {
	return []Dependency{o.dep}
}

type objectFactory struct{}

func (objectFactory) Priority() int { return PriorityObject }

func (objectFactory) Create(r *Resolver, sources, targets []*analyze.TypeDescriptor, _ Meta) (Transformer, bool) {
	src, tgt, ok := single(sources, targets)
	if !ok {
		return nil, false
	}

	polymorphic := tgt.Interface && r.polymorph != nil && r.polymorph(tgt.Base())

	switch {
	case src.IsObject() && (tgt.IsObject() || tgt.IsGenericMap() || tgt.IsMixed() || polymorphic):
	case src.IsGenericMap() && (tgt.IsObject() || polymorphic):
	default:
		return nil, false
	}

	return &Object{
		dep:    Dependency{Source: src.Base(), Target: tgt.Base()},
		target: tgt,
	}, true
}
