package transform

import (
	"reflect"

	"mapper-generator/internal/access"
	"mapper-generator/internal/analyze"
)

// Nullable dereferences a pointer source and allocates a pointer target
// around an inner transformer. A nil source produces nil without running
// the inner transformer.
type Nullable struct {
	inner  Transformer
	target *analyze.TypeDescriptor
	deref  bool
	alloc  bool
}

func (n *Nullable) Transform(in reflect.Value, s Scope) (reflect.Value, error) {
	if n.deref {
		in = unwrap(in)
		if access.IsNil(in) {
			return reflect.Value{}, nil
		}

		in = in.Elem()
	}

	out, err := n.inner.Transform(in, s)
	if err != nil || !n.alloc || !out.IsValid() {
		return out, err
	}

	ptr := reflect.New(n.target.Type.Elem())
	access.Assign(ptr.Elem(), out)

	return ptr, nil
}

func (n *Nullable) String() string {
	return "nullable(" + n.inner.String() + ")"
}

func (n *Nullable) Dependencies() []Dependency {
	return Dependencies(n.inner)
}

type nullableFactory struct{}

func (nullableFactory) Priority() int { return PriorityNullable }

// Create applies to pointers of non-object shapes on either side. Pointers
// to structs are handled by the nested mapper, which accepts both.
func (nullableFactory) Create(r *Resolver, sources, targets []*analyze.TypeDescriptor, meta Meta) (Transformer, bool) {
	src, tgt, ok := single(sources, targets)
	if !ok || src.IsMixed() || tgt.IsMixed() || src.Interface || tgt.Interface {
		return nil, false
	}

	deref := src.Elem != nil && !src.Base().IsObject()
	alloc := tgt.Elem != nil && !tgt.Base().IsObject()

	if !deref && !alloc {
		return nil, false
	}

	inner, innerTarget := src, tgt
	if deref {
		inner = src.Elem
	}

	if alloc {
		innerTarget = tgt.Elem
	}

	t, ok := r.Resolve([]*analyze.TypeDescriptor{inner}, []*analyze.TypeDescriptor{innerTarget}, meta)
	if !ok {
		return nil, false
	}

	return &Nullable{inner: t, target: tgt, deref: deref, alloc: alloc}, true
}
