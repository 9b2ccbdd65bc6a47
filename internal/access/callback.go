package access

import (
	"reflect"
)

// ExtractFunc reads a property from the source object.
type ExtractFunc func(src any) (any, error)

// HydrateFunc writes a property into the target object.
type HydrateFunc func(dst any, v any) error

// Extract wraps a caller supplied read callback.
type Extract struct {
	name string
	fn   ExtractFunc
}

func NewExtract(name string, fn ExtractFunc) *Extract {
	return &Extract{name: name, fn: fn}
}

func (e *Extract) Read(src reflect.Value) (reflect.Value, bool, error) {
	v, err := e.fn(src.Interface())
	if err != nil {
		return reflect.Value{}, false, err
	}

	return reflect.ValueOf(v), true, nil
}

func (e *Extract) String() string {
	return "extract callback " + e.name
}

// Hydrate wraps a caller supplied write callback.
type Hydrate struct {
	name string
	fn   HydrateFunc
}

func NewHydrate(name string, fn HydrateFunc) *Hydrate {
	return &Hydrate{name: name, fn: fn}
}

func (h *Hydrate) Write(dst reflect.Value, v reflect.Value) error {
	var value any
	if v.IsValid() {
		value = v.Interface()
	}

	return h.fn(dst.Interface(), value)
}

func (h *Hydrate) String() string {
	return "hydrate callback " + h.name
}

// Argument binds a property to a constructor parameter.
type Argument struct {
	Name     string
	Position int
}

func (a Argument) String() string {
	return "constructor argument " + a.Name
}
