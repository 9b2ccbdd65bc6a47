package transform

import (
	"reflect"

	"mapper-generator/internal/analyze"
)

// Copy deep copies maps, slices and arrays and passes other values through.
type Copy struct{}

func (Copy) Transform(in reflect.Value, _ Scope) (reflect.Value, error) {
	if !in.IsValid() {
		return in, nil
	}

	return DeepCopy(in), nil
}

func (Copy) String() string {
	return "copy"
}

// DeepCopy returns a copy of v sharing no map or slice storage with it.
// Pointers and struct values are copied shallowly.
func DeepCopy(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return v
		}

		out := reflect.New(v.Type()).Elem()
		out.Set(DeepCopy(v.Elem()))

		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}

		out := reflect.MakeMapWithSize(v.Type(), v.Len())

		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), DeepCopy(iter.Value()))
		}

		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}

		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := range v.Len() {
			out.Index(i).Set(DeepCopy(v.Index(i)))
		}

		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := range v.Len() {
			out.Index(i).Set(DeepCopy(v.Index(i)))
		}

		return out
	default:
		return v
	}
}

type copyFactory struct{}

func (copyFactory) Priority() int { return PriorityCopy }

func (copyFactory) Create(_ *Resolver, sources, targets []*analyze.TypeDescriptor, _ Meta) (Transformer, bool) {
	src, tgt, ok := single(sources, targets)
	if !ok || src.IsObject() || tgt.IsObject() {
		return nil, false
	}

	if tgt.IsMixed() || src.ID() == tgt.ID() {
		return Copy{}, true
	}

	return nil, false
}
