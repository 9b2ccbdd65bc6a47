package transform

import (
	"errors"
	"fmt"
	"reflect"

	"mapper-generator/internal/access"
	"mapper-generator/internal/analyze"
)

// Array maps a slice, array or iterator into a freshly built slice or array.
// Elements skipped by their transformer are dropped from slices.
type Array struct {
	elem     Transformer
	target   *analyze.TypeDescriptor
	iterable bool
}

func (a *Array) Transform(in reflect.Value, s Scope) (reflect.Value, error) {
	in = unwrap(in)
	if access.IsNil(in) {
		return reflect.Value{}, nil
	}

	typ := a.target.Type
	isSlice := typ.Kind() == reflect.Slice

	var result reflect.Value
	if isSlice {
		capacity := 0
		if !a.iterable {
			capacity = in.Len()
		}

		result = reflect.MakeSlice(typ, 0, capacity)
	} else {
		result = reflect.New(typ).Elem()
	}

	i := 0
	put := func(v reflect.Value) error {
		defer func() { i++ }()

		out, err := a.elem.Transform(v, s)
		if errors.Is(err, ErrSkip) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}

		if isSlice {
			item := reflect.New(typ.Elem()).Elem()
			access.Assign(item, out)
			result = reflect.Append(result, item)
		} else if i < result.Len() {
			access.Assign(result.Index(i), out)
		}

		return nil
	}

	if a.iterable {
		for v := range in.Seq() {
			if err := put(v); err != nil {
				return reflect.Value{}, err
			}
		}

		return result, nil
	}

	for j := range in.Len() {
		if err := put(in.Index(j)); err != nil {
			return reflect.Value{}, err
		}
	}

	return result, nil
}

func (a *Array) String() string {
	return "array(" + a.elem.String() + ")"
}

func (a *Array) Dependencies() []Dependency {
	return Dependencies(a.elem)
}

// Map maps keys and values of a map into a freshly built map.
type Map struct {
	key    Transformer
	value  Transformer
	target *analyze.TypeDescriptor
}

func (m *Map) Transform(in reflect.Value, s Scope) (reflect.Value, error) {
	in = unwrap(in)
	if access.IsNil(in) {
		return reflect.Value{}, nil
	}

	typ := m.target.Type
	result := reflect.MakeMapWithSize(typ, in.Len())

	iter := in.MapRange()
	for iter.Next() {
		k, err := m.key.Transform(iter.Key(), s)
		if errors.Is(err, ErrSkip) {
			continue
		}

		if err != nil {
			return reflect.Value{}, fmt.Errorf("key %v: %w", iter.Key(), err)
		}

		v, err := m.value.Transform(iter.Value(), s)
		if errors.Is(err, ErrSkip) {
			continue
		}

		if err != nil {
			return reflect.Value{}, fmt.Errorf("[%v]: %w", iter.Key(), err)
		}

		key := reflect.New(typ.Key()).Elem()
		access.Assign(key, k)

		value := reflect.New(typ.Elem()).Elem()
		access.Assign(value, v)

		result.SetMapIndex(key, value)
	}

	return result, nil
}

func (m *Map) String() string {
	return "map(" + m.key.String() + ": " + m.value.String() + ")"
}

func (m *Map) Dependencies() []Dependency {
	return collectDependencies(m.key, m.value)
}

type collectionFactory struct{}

func (collectionFactory) Priority() int { return PriorityCollection }

func (collectionFactory) Create(r *Resolver, sources, targets []*analyze.TypeDescriptor, meta Meta) (Transformer, bool) {
	src, tgt, ok := single(sources, targets)
	if !ok || src.Nullable || tgt.Nullable {
		return nil, false
	}

	meta, ok = meta.enter(src, tgt)
	if !ok {
		return nil, false
	}

	switch {
	case (src.Kind == analyze.KindArray || src.Kind == analyze.KindIterable) && tgt.Kind == analyze.KindArray:
		elem, ok := r.Resolve(r.Candidates(src.ValueType), r.Candidates(tgt.ValueType), meta)
		if !ok {
			return nil, false
		}

		return &Array{elem: elem, target: tgt, iterable: src.Kind == analyze.KindIterable}, true

	case src.Kind == analyze.KindMap && tgt.Kind == analyze.KindMap:
		key, ok := r.Resolve([]*analyze.TypeDescriptor{src.KeyType}, []*analyze.TypeDescriptor{tgt.KeyType}, meta)
		if !ok {
			return nil, false
		}

		value, ok := r.Resolve(r.Candidates(src.ValueType), r.Candidates(tgt.ValueType), meta)
		if !ok {
			return nil, false
		}

		return &Map{key: key, value: value, target: tgt}, true

	default:
		return nil, false
	}
}
