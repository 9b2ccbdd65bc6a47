package analyze

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"mapper-generator/internal/common"
	"mapper-generator/primitive"
)

var errorType = reflect.TypeFor[error]()

// ReflectProvider describes runtime types. Go has no declared constructors,
// implementation lists or read-only types, so the provider keeps a catalog
// of them filled before the first mapper is compiled.
type ReflectProvider struct {
	mu              sync.RWMutex
	descriptors     map[reflect.Type]*TypeDescriptor
	fields          map[reflect.Type][]FieldDescriptor
	constructors    map[reflect.Type]*Constructor
	implementations map[reflect.Type][]reflect.Type
	readOnly        map[reflect.Type]bool
}

// NewReflectProvider creates a provider with an empty catalog.
func NewReflectProvider() *ReflectProvider {
	return &ReflectProvider{
		descriptors:     make(map[reflect.Type]*TypeDescriptor),
		fields:          make(map[reflect.Type][]FieldDescriptor),
		constructors:    make(map[reflect.Type]*Constructor),
		implementations: make(map[reflect.Type][]reflect.Type),
		readOnly:        make(map[reflect.Type]bool),
	}
}

// Describe returns the descriptor of t. Descriptors are cached per type.
// Self-referential types such as `type Tree map[string]Tree` get a
// descriptor whose value type is the descriptor itself.
func (p *ReflectProvider) Describe(t reflect.Type) *TypeDescriptor {
	if t == nil {
		return &TypeDescriptor{Kind: KindNull, Name: "nil", Nullable: true}
	}

	if d, ok := p.cached(t); ok {
		return d
	}

	pending := make(map[reflect.Type]*TypeDescriptor)
	d := p.describe(t, pending)

	p.mu.Lock()
	defer p.mu.Unlock()

	if cached, ok := p.descriptors[t]; ok {
		return cached
	}

	for typ, desc := range pending {
		if _, ok := p.descriptors[typ]; !ok {
			p.descriptors[typ] = desc
		}
	}

	return d
}

func (p *ReflectProvider) cached(t reflect.Type) (*TypeDescriptor, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	d, ok := p.descriptors[t]

	return d, ok
}

// lookup resolves a component type within one Describe call. Types still
// being described are returned from pending.
func (p *ReflectProvider) lookup(t reflect.Type, pending map[reflect.Type]*TypeDescriptor) *TypeDescriptor {
	if d, ok := pending[t]; ok {
		return d
	}

	if d, ok := p.cached(t); ok {
		return d
	}

	return p.describe(t, pending)
}

func (p *ReflectProvider) describe(t reflect.Type, pending map[reflect.Type]*TypeDescriptor) *TypeDescriptor {
	d := &TypeDescriptor{
		Type:                            t,
		Name:                            common.TypeName(t),
		ConstructibleWithoutInitializer: true,
	}

	pending[t] = d

	if t.Name() != "" && t.PkgPath() != "" {
		d.ClassName = d.Name
	}

	if kind := primitive.FromReflectType(t); kind != 0 {
		d.Primitive = kind
		d.Kind = scalarKind(kind)

		return d
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem := p.lookup(t.Elem(), pending)
		d.Kind = elem.Kind
		d.ClassName = elem.ClassName
		d.Primitive = elem.Primitive
		d.Collection = elem.Collection
		d.KeyType = elem.KeyType
		d.ValueType = elem.ValueType
		d.Interface = elem.Interface
		d.Nullable = true
		d.Elem = elem
	case reflect.Interface:
		d.Nullable = true
		if t.NumMethod() > 0 {
			d.Kind = KindObject
			d.Interface = true
			d.ConstructibleWithoutInitializer = false
		} else {
			d.Kind = KindMixed
		}
	case reflect.Struct:
		d.Kind = KindObject
	case reflect.Slice, reflect.Array:
		d.Kind = KindArray
		d.Collection = true
		d.KeyType = p.lookup(reflect.TypeFor[int](), pending)
		d.ValueType = p.lookup(t.Elem(), pending)
	case reflect.Map:
		d.Kind = KindMap
		d.Collection = true
		d.KeyType = p.lookup(t.Key(), pending)
		d.ValueType = p.lookup(t.Elem(), pending)
	case reflect.Func:
		if elem, ok := iteratorElem(t); ok {
			d.Kind = KindIterable
			d.Collection = true
			d.ValueType = p.lookup(elem, pending)
		} else {
			d.Kind = KindMixed
		}
	default:
		d.Kind = KindMixed
	}

	return d
}

func scalarKind(kind primitive.KindEnum) Kind {
	switch {
	case kind == primitive.KindBool:
		return KindBool
	case kind == primitive.KindString:
		return KindString
	case kind.IsFloat():
		return KindFloat
	case kind.IsInteger(), kind == primitive.KindDuration:
		return KindInt
	case kind == primitive.KindTime:
		return KindObject
	default:
		return KindMixed
	}
}

// iteratorElem matches func(yield func(V) bool).
func iteratorElem(t reflect.Type) (reflect.Type, bool) {
	if t.NumIn() != 1 || t.NumOut() != 0 {
		return nil, false
	}

	yield := t.In(0)
	if yield.Kind() != reflect.Func || yield.NumIn() != 1 || yield.NumOut() != 1 || yield.Out(0).Kind() != reflect.Bool {
		return nil, false
	}

	return yield.In(0), true
}

// ListFields returns the properties of a struct shape, promoted fields of
// embedded structs included. The first field wins when two share a name.
func (p *ReflectProvider) ListFields(t *TypeDescriptor) []FieldDescriptor {
	base := t.Base()
	if base.Type == nil || base.Type.Kind() != reflect.Struct || base.Primitive != 0 {
		return nil
	}

	p.mu.RLock()
	fields, ok := p.fields[base.Type]
	p.mu.RUnlock()

	if ok {
		return fields
	}

	fields = p.listFields(base.Type)

	p.mu.Lock()
	p.fields[base.Type] = fields
	p.mu.Unlock()

	return fields
}

func (p *ReflectProvider) listFields(st reflect.Type) []FieldDescriptor {
	var (
		fields []FieldDescriptor
		seen   = make(map[string]bool)
		ptr    = reflect.PointerTo(st)
	)

	for _, sf := range reflect.VisibleFields(st) {
		if sf.Anonymous && derefKind(sf.Type) == reflect.Struct {
			continue
		}

		if throughPointer(st, sf.Index) {
			continue
		}

		tag := ParseTag(sf.Tag)

		name := tag.Name
		if name == "" {
			name = sf.Name
		}

		if seen[name] {
			continue
		}

		seen[name] = true

		exported := sf.IsExported()
		method := exportedName(sf.Name)
		field := FieldDescriptor{
			Name:     name,
			GoName:   sf.Name,
			Type:     p.Describe(sf.Type),
			Index:    sf.Index,
			Exported: exported,
			Tag:      tag,
		}

		if !exported {
			field.Getter = findGetter(ptr, sf.Type, method, "Get"+method)
		}

		field.Setter = findSetter(ptr, sf.Type, "Set"+method)

		if sf.Type.Kind() == reflect.Slice {
			field.Adder = findSetter(ptr, sf.Type.Elem(), "Add"+singular(method))
			if field.Adder != "" {
				field.Remover = findSetter(ptr, sf.Type.Elem(), "Remove"+singular(method))
			}
		}

		fields = append(fields, field)
	}

	return fields
}

func derefKind(t reflect.Type) reflect.Kind {
	if t.Kind() == reflect.Pointer {
		return t.Elem().Kind()
	}

	return t.Kind()
}

// throughPointer reports promoted fields reached through an embedded pointer.
func throughPointer(st reflect.Type, index []int) bool {
	current := st
	for _, i := range index[:len(index)-1] {
		f := current.Field(i)
		if f.Type.Kind() == reflect.Pointer {
			return true
		}

		current = f.Type
	}

	return false
}

// findGetter returns the first method named after candidates that takes no
// argument and returns the field type, optionally followed by an error.
func findGetter(ptr, fieldType reflect.Type, candidates ...string) string {
	for _, name := range candidates {
		m, ok := ptr.MethodByName(name)
		if !ok {
			continue
		}

		mt := m.Type
		if mt.NumIn() != 1 || mt.NumOut() == 0 || mt.NumOut() > 2 || mt.Out(0) != fieldType {
			continue
		}

		if mt.NumOut() == 2 && mt.Out(1) != errorType {
			continue
		}

		return name
	}

	return ""
}

// findSetter returns name if the method takes one argument of type in and
// returns nothing or an error.
func findSetter(ptr, in reflect.Type, name string) string {
	m, ok := ptr.MethodByName(name)
	if !ok {
		return ""
	}

	mt := m.Type
	if mt.NumIn() != 2 || mt.In(1) != in {
		return ""
	}

	if mt.NumOut() > 1 || (mt.NumOut() == 1 && mt.Out(0) != errorType) {
		return ""
	}

	return name
}

// DeclaredTypes returns the registered implementations for interface
// fields and the field type otherwise.
func (p *ReflectProvider) DeclaredTypes(_ *TypeDescriptor, field FieldDescriptor) []*TypeDescriptor {
	if field.Type.Interface && field.Type.Type != nil {
		p.mu.RLock()
		impls := p.implementations[field.Type.Type]
		p.mu.RUnlock()

		if len(impls) > 0 {
			result := make([]*TypeDescriptor, 0, len(impls))
			for _, impl := range impls {
				result = append(result, p.Describe(impl))
			}

			return result
		}
	}

	return []*TypeDescriptor{field.Type}
}

// Implementations returns the registered implementations of an interface.
func (p *ReflectProvider) Implementations(iface reflect.Type) []reflect.Type {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.implementations[iface]
}

// Constructor returns the registered constructor of t's struct type.
func (p *ReflectProvider) Constructor(t *TypeDescriptor) *Constructor {
	base := t.Base()
	if base.Type == nil {
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.constructors[base.Type]
}

func (p *ReflectProvider) IsReadOnly(t *TypeDescriptor) bool {
	base := t.Base()
	if base.Type == nil {
		return false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.readOnly[base.Type]
}

// RegisterConstructor registers fn as the constructor of the struct it
// returns. fn returns T or *T, optionally followed by an error; params name
// its parameters in order since reflection does not expose them.
func (p *ReflectProvider) RegisterConstructor(fn any, params ...string) error {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return fmt.Errorf("constructor must be a function, got %T", fn)
	}

	ft := fv.Type()
	if ft.NumIn() != len(params) {
		return fmt.Errorf("constructor %s has %d parameters, %d names given", ft, ft.NumIn(), len(params))
	}

	if ft.NumOut() == 0 || ft.NumOut() > 2 || (ft.NumOut() == 2 && ft.Out(1) != errorType) {
		return fmt.Errorf("constructor %s must return T, *T, (T, error) or (*T, error)", ft)
	}

	out := ft.Out(0)

	returnsPointer := out.Kind() == reflect.Pointer
	if returnsPointer {
		out = out.Elem()
	}

	if out.Kind() != reflect.Struct {
		return fmt.Errorf("constructor %s must build a struct, got %s", ft, out)
	}

	ctor := &Constructor{
		Name:           common.TypeName(out) + " constructor",
		Func:           fv,
		ReturnsPointer: returnsPointer,
		ReturnsError:   ft.NumOut() == 2,
	}

	for i, name := range params {
		if name == "" {
			return errors.New("constructor parameter names must not be empty")
		}

		ctor.Params = append(ctor.Params, ParamDescriptor{
			Name:     name,
			Position: i,
			Type:     p.Describe(ft.In(i)),
			Variadic: ft.IsVariadic() && i == ft.NumIn()-1,
		})
	}

	p.mu.Lock()
	p.constructors[out] = ctor
	p.mu.Unlock()

	return nil
}

// RegisterConstructorDefault sets the value used for param when neither
// the source nor the call context supplies one.
func (p *ReflectProvider) RegisterConstructorDefault(target reflect.Type, param string, value any) error {
	for target.Kind() == reflect.Pointer {
		target = target.Elem()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ctor, ok := p.constructors[target]
	if !ok {
		return fmt.Errorf("no constructor registered for %s", common.TypeName(target))
	}

	for i, pd := range ctor.Params {
		if pd.Name != param {
			continue
		}

		v, err := convertTo(value, pd.Type.Type)
		if err != nil {
			return fmt.Errorf("default for %s.%s: %w", common.TypeName(target), param, err)
		}

		params := append([]ParamDescriptor(nil), ctor.Params...)
		params[i].HasDefault = true
		params[i].Default = v

		next := *ctor
		next.Params = params
		p.constructors[target] = &next

		return nil
	}

	return fmt.Errorf("constructor of %s has no parameter %q", common.TypeName(target), param)
}

// RegisterImplementations lists the concrete types behind an interface.
func (p *ReflectProvider) RegisterImplementations(iface reflect.Type, impls ...reflect.Type) error {
	if iface.Kind() != reflect.Interface {
		return fmt.Errorf("%s is not an interface", common.TypeName(iface))
	}

	for _, impl := range impls {
		if !impl.Implements(iface) {
			return fmt.Errorf("%s does not implement %s", common.TypeName(impl), common.TypeName(iface))
		}
	}

	p.mu.Lock()
	p.implementations[iface] = append(p.implementations[iface], impls...)
	p.mu.Unlock()

	return nil
}

// RegisterReadOnly marks struct types that must be built through their constructor.
func (p *ReflectProvider) RegisterReadOnly(t reflect.Type) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	p.mu.Lock()
	p.readOnly[t] = true
	p.mu.Unlock()
}

func convertTo(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		default:
			return reflect.Value{}, fmt.Errorf("nil is not a valid %s", t)
		}
	}

	v := reflect.ValueOf(value)

	switch {
	case v.Type().AssignableTo(t):
		return v, nil
	case v.Type().ConvertibleTo(t) && (t.Kind() != reflect.String || v.Kind() == reflect.String):
		return v.Convert(t), nil
	default:
		return reflect.Value{}, fmt.Errorf("%T is not assignable to %s", value, t)
	}
}
