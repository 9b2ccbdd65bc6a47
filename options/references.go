package options

import (
	"reflect"
)

// CircularReferenceHandler decides what a revisited source object maps to once
// the circular reference limit is exceeded. target is the type being produced.
type CircularReferenceHandler func(source reflect.Value, target reflect.Type, ctx *Context) (reflect.Value, error)

// References records the targets produced during one top-level mapping call.
// It is shared by every context derived from that call and dropped with it.
type References struct {
	entries map[referenceKey]*reference
}

type referenceKey struct {
	addr   uintptr
	source reflect.Type
	target reflect.Type
}

type reference struct {
	target   reflect.Value
	visits   int
	building bool
}

func newReferences() *References {
	return &References{entries: make(map[referenceKey]*reference)}
}

// Len returns the number of tracked objects.
func (r *References) Len() int {
	return len(r.entries)
}

// identity returns the address of pointer and map values. Other values have
// no identity and are never tracked.
func identity(source reflect.Value) (uintptr, bool) {
	if !source.IsValid() {
		return 0, false
	}

	switch source.Kind() {
	case reflect.Pointer, reflect.Map:
		if source.IsNil() {
			return 0, false
		}

		return source.Pointer(), true
	default:
		return 0, false
	}
}

func (r *References) key(source reflect.Value, target reflect.Type) (referenceKey, bool) {
	addr, ok := identity(source)
	if !ok {
		return referenceKey{}, false
	}

	return referenceKey{addr: addr, source: source.Type(), target: target}, true
}
