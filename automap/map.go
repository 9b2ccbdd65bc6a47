package automap

import (
	"fmt"
	"reflect"

	"mapper-generator/internal/common"
	"mapper-generator/options"
)

// Map maps src into a new T. T may be a struct, a pointer to one, a string
// keyed map or any. A nil src yields the zero T.
func Map[T any](r *Registry, src any, opts ...options.Option) (T, error) {
	var zero T

	if src == nil {
		return zero, nil
	}

	target := reflect.TypeFor[T]()

	m, err := r.GetMapper(reflect.TypeOf(src), target)
	if err != nil {
		return zero, err
	}

	out, err := m.MapValue(reflect.ValueOf(src), options.New(opts...))
	if err != nil {
		return zero, err
	}

	v, err := adapt(out, target)
	if err != nil || !v.IsValid() {
		return zero, err
	}

	return v.Interface().(T), nil
}

// MapInto writes src into dst, a non-nil pointer to a struct or a non-nil
// map. Only the properties admitted by the call options are written.
func MapInto(r *Registry, src, dst any, opts ...options.Option) error {
	v := reflect.ValueOf(dst)

	switch {
	case !v.IsValid():
		return ErrInvalidTarget
	case v.Kind() == reflect.Pointer && v.Type().Elem().Kind() == reflect.Map:
		if v.IsNil() {
			return fmt.Errorf("%T: %w", dst, ErrInvalidTarget)
		}

		if v.Elem().IsNil() {
			v.Elem().Set(reflect.MakeMap(v.Type().Elem()))
		}

		v = v.Elem()
	case v.Kind() != reflect.Pointer && v.Kind() != reflect.Map, v.IsNil():
		return fmt.Errorf("%T: %w", dst, ErrInvalidTarget)
	}

	if src == nil {
		return nil
	}

	m, err := r.GetMapper(reflect.TypeOf(src), v.Type())
	if err != nil {
		return err
	}

	opts = append(opts[:len(opts):len(opts)], options.WithTargetToPopulate(v.Interface()))

	_, err = m.MapValue(reflect.ValueOf(src), options.New(opts...))

	return err
}

// MapSlice maps every element of src in order. The elements share one call
// context, so an object referenced from several elements is mapped once.
func MapSlice[T, S any](r *Registry, src []S, opts ...options.Option) ([]T, error) {
	if src == nil {
		return nil, nil
	}

	target := reflect.TypeFor[T]()

	m, err := r.GetMapper(reflect.TypeFor[S](), target)
	if err != nil {
		return nil, err
	}

	ctx := options.New(opts...)
	result := make([]T, len(src))

	for i := range src {
		out, err := m.MapValue(reflect.ValueOf(&src[i]).Elem(), ctx)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}

		v, err := adapt(out, target)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}

		if v.IsValid() {
			result[i] = v.Interface().(T)
		}
	}

	return result, nil
}

// adapt converts the output of a procedure to the requested type: struct
// mappers produce *T, which is dereferenced for value targets.
func adapt(out reflect.Value, target reflect.Type) (reflect.Value, error) {
	if !out.IsValid() {
		return out, nil
	}

	switch t := out.Type(); {
	case t.AssignableTo(target):
		return out, nil
	case t.Kind() == reflect.Pointer && t.Elem().AssignableTo(target):
		if out.IsNil() {
			return reflect.Value{}, nil
		}

		return out.Elem(), nil
	case target.Kind() == reflect.Pointer && target.Elem().Kind() == reflect.Pointer:
		inner, err := adapt(out, target.Elem())
		if err != nil || !inner.IsValid() {
			return inner, err
		}

		ptr := reflect.New(target.Elem())
		ptr.Elem().Set(inner)

		return ptr, nil
	default:
		return reflect.Value{}, fmt.Errorf("mapper produced %s, %s requested", common.TypeName(t), common.TypeName(target))
	}
}
