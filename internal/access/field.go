package access

import (
	"reflect"
	"strings"
	"unsafe"

	"github.com/viant/xunsafe"

	"mapper-generator/internal/analyze"
)

// Field accesses a struct field, exported or not, through its offset.
// Promoted fields keep one offset per embedding level.
type Field struct {
	name  string
	typ   reflect.Type
	chain []*xunsafe.Field
}

// NewField creates an accessor for field of the struct described by owner.
func NewField(owner *analyze.TypeDescriptor, field analyze.FieldDescriptor) *Field {
	f := &Field{name: field.GoName}

	st := owner.Base().Type
	if st == nil {
		return f
	}

	for _, i := range field.Index {
		sf := st.Field(i)
		f.chain = append(f.chain, xunsafe.NewField(sf))
		st = sf.Type
	}

	f.typ = st

	return f
}

func (f *Field) pointer(ptr reflect.Value) unsafe.Pointer {
	p := ptr.UnsafePointer()
	for _, xf := range f.chain {
		p = xf.Pointer(p)
	}

	return p
}

func (f *Field) Read(src reflect.Value) (reflect.Value, bool, error) {
	return reflect.NewAt(f.typ, f.pointer(src)).Elem(), true, nil
}

func (f *Field) Write(dst reflect.Value, v reflect.Value) error {
	Assign(reflect.NewAt(f.typ, f.pointer(dst)).Elem(), v)
	return nil
}

func (f *Field) String() string {
	return "field " + f.name
}

// Method calls a getter or a setter declared on the struct pointer.
type Method struct {
	name   string
	method reflect.Method
	setter bool
}

// NewGetter creates a reader calling owner's method name.
func NewGetter(owner *analyze.TypeDescriptor, name string) *Method {
	return newMethod(owner, name, false)
}

// NewSetter creates a writer calling owner's method name.
func NewSetter(owner *analyze.TypeDescriptor, name string) *Method {
	return newMethod(owner, name, true)
}

func newMethod(owner *analyze.TypeDescriptor, name string, setter bool) *Method {
	m := &Method{name: name, setter: setter}
	if st := owner.Base().Type; st != nil {
		m.method, _ = reflect.PointerTo(st).MethodByName(name)
	}

	return m
}

func (m *Method) Read(src reflect.Value) (reflect.Value, bool, error) {
	out := m.method.Func.Call([]reflect.Value{src})
	if err := callError(out, 1); err != nil {
		return reflect.Value{}, false, err
	}

	return out[0], true, nil
}

func (m *Method) Write(dst reflect.Value, v reflect.Value) error {
	arg := reflect.New(m.method.Type.In(1)).Elem()
	Assign(arg, v)

	return callError(m.method.Func.Call([]reflect.Value{dst, arg}), 0)
}

func (m *Method) String() string {
	if m.setter {
		return "setter " + m.name + "()"
	}

	return "getter " + m.name + "()"
}

// callError returns the error at out[i], if any.
func callError(out []reflect.Value, i int) error {
	if len(out) <= i || out[i].IsNil() {
		return nil
	}

	err, _ := out[i].Interface().(error)

	return err
}

// Key reads and writes one entry of a string keyed map.
type Key struct {
	key string
}

func NewKey(key string) *Key {
	return &Key{key: key}
}

func (k *Key) Read(src reflect.Value) (reflect.Value, bool, error) {
	if src.Kind() == reflect.Interface {
		src = src.Elem()
	}

	if src.Kind() != reflect.Map || src.IsNil() {
		return reflect.Value{}, false, nil
	}

	v := src.MapIndex(reflect.ValueOf(k.key).Convert(src.Type().Key()))
	if !v.IsValid() {
		return reflect.Value{}, false, nil
	}

	return v, true, nil
}

func (k *Key) Write(dst reflect.Value, v reflect.Value) error {
	elem := reflect.New(dst.Type().Elem()).Elem()
	Assign(elem, v)
	dst.SetMapIndex(reflect.ValueOf(k.key).Convert(dst.Type().Key()), elem)

	return nil
}

func (k *Key) String() string {
	return "key " + k.key
}

// Path reads a nested property through a chain of readers. A nil
// intermediate value makes the whole path absent.
type Path struct {
	segments []string
	readers  []Reader
}

func NewPath(segments []string, readers []Reader) *Path {
	return &Path{segments: segments, readers: readers}
}

func (p *Path) Read(src reflect.Value) (reflect.Value, bool, error) {
	current := src

	for i, r := range p.readers {
		if i > 0 {
			for current.Kind() == reflect.Interface && !current.IsNil() {
				current = current.Elem()
			}

			if IsNil(current) {
				return reflect.Value{}, false, nil
			}

			current = Addressable(current)
		}

		v, ok, err := r.Read(current)
		if err != nil || !ok {
			return reflect.Value{}, ok, err
		}

		current = v
	}

	return current, true, nil
}

func (p *Path) String() string {
	return "path " + strings.Join(p.segments, ".")
}
