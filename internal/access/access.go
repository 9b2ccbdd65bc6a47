package access

import (
	"reflect"
)

// Reader reads one property of a source value.
type Reader interface {
	// Read returns the property value. ok is false when the property is
	// absent from src: a missing map key or a nil intermediate on a path.
	Read(src reflect.Value) (v reflect.Value, ok bool, err error)
	String() string
}

// Writer writes one property of a target value.
type Writer interface {
	Write(dst reflect.Value, v reflect.Value) error
	String() string
}

// Addressable returns a pointer to v when v is a struct, copying it when it
// is not addressable. Other values are returned unchanged.
func Addressable(v reflect.Value) reflect.Value {
	if v.Kind() != reflect.Struct {
		return v
	}

	if v.CanAddr() {
		return v.Addr()
	}

	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)

	return ptr
}

// Assign stores v into dst, converting between named and unnamed types of
// the same underlying type.
func Assign(dst, v reflect.Value) {
	if !v.IsValid() {
		dst.SetZero()
		return
	}

	if v.Type() != dst.Type() && !v.Type().AssignableTo(dst.Type()) {
		v = v.Convert(dst.Type())
	}

	dst.Set(v)
}

// IsNil reports invalid values and nil pointers, interfaces, maps and slices.
func IsNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
