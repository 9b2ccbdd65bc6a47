package transform

import (
	"reflect"

	"mapper-generator/internal/access"
	"mapper-generator/internal/analyze"
	"mapper-generator/primitive"
)

// Builtin applies a scalar cast from the primitive table.
type Builtin struct {
	pair   primitive.ConversionPair
	target *analyze.TypeDescriptor
	cast   primitive.CastFunc
}

func (b *Builtin) Transform(in reflect.Value, _ Scope) (reflect.Value, error) {
	in = unwrap(in)
	if !in.IsValid() {
		return reflect.Value{}, nil
	}

	return b.cast(in, b.target.Type)
}

func (b *Builtin) String() string {
	return "builtin(" + b.pair.String() + ")"
}

// Wrap builds a single element slice around a scalar.
type Wrap struct {
	elem   Transformer
	target *analyze.TypeDescriptor
}

func (w *Wrap) Transform(in reflect.Value, s Scope) (reflect.Value, error) {
	out, err := w.elem.Transform(in, s)
	if err != nil {
		return reflect.Value{}, err
	}

	typ := w.target.Type

	var result reflect.Value
	if typ.Kind() == reflect.Slice {
		result = reflect.MakeSlice(typ, 1, 1)
	} else {
		result = reflect.New(typ).Elem()
		if result.Len() == 0 {
			return result, nil
		}
	}

	access.Assign(result.Index(0), out)

	return result, nil
}

func (w *Wrap) String() string {
	return "wrap(" + w.elem.String() + ")"
}

func (w *Wrap) Dependencies() []Dependency {
	return Dependencies(w.elem)
}

type builtinFactory struct{}

func (builtinFactory) Priority() int { return PriorityBuiltin }

func (builtinFactory) Create(r *Resolver, sources, targets []*analyze.TypeDescriptor, meta Meta) (Transformer, bool) {
	src, tgt, ok := single(sources, targets)
	if !ok || src.Nullable || tgt.Nullable || !src.IsScalar() {
		return nil, false
	}

	if tgt.IsScalar() {
		pair := primitive.ConversionPair{From: src.Primitive, To: tgt.Primitive}

		cast, ok := primitive.Lookup(pair.From, pair.To, r.categories)
		if !ok {
			return nil, false
		}

		return &Builtin{pair: pair, target: tgt, cast: cast}, true
	}

	if tgt.Kind == analyze.KindArray && tgt.ValueType != nil {
		meta, ok := meta.enter(src, tgt)
		if !ok {
			return nil, false
		}

		elem, ok := r.Resolve(sources, []*analyze.TypeDescriptor{tgt.ValueType}, meta)
		if !ok {
			return nil, false
		}

		return &Wrap{elem: elem, target: tgt}, true
	}

	return nil, false
}
