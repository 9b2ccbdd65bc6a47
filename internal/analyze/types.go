package analyze

import (
	"reflect"
	"strings"

	"mapper-generator/internal/common"
	"mapper-generator/primitive"
)

// Kind is the builtin kind of a shape.
type Kind int

const (
	KindMixed    Kind = iota // any: no declared shape
	KindNull                 // untyped nil
	KindBool                 // bool
	KindInt                  // signed and unsigned integers
	KindFloat                // float32, float64
	KindString               // string
	KindArray                // slices and arrays
	KindMap                  // maps
	KindObject               // structs and non-empty interfaces
	KindIterable             // func(yield func(V) bool)
)

// String returns a human-readable representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindMixed:
		return "mixed"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindObject:
		return "object"
	case KindIterable:
		return "iterable"
	default:
		return common.UnknownStr
	}
}

// TypeDescriptor is the normalized shape of a value. Descriptors are
// immutable once built and are shared between resolutions.
type TypeDescriptor struct {
	Kind Kind
	// ClassName is "alias.Name" for named types.
	ClassName string
	// Primitive is the fine-grained scalar kind, zero for non-scalars.
	Primitive primitive.KindEnum
	// Collection is set for arrays, maps and iterables.
	Collection bool
	KeyType    *TypeDescriptor
	ValueType  *TypeDescriptor
	// Nullable is set for pointers and interfaces.
	Nullable bool
	// Elem is the pointed-to shape of a pointer.
	Elem *TypeDescriptor
	// Interface is set for non-empty interfaces.
	Interface bool
	// ConstructibleWithoutInitializer reports whether a zero value is a valid instance.
	ConstructibleWithoutInitializer bool
	// Type is the runtime type. It is nil for statically described types.
	Type reflect.Type
	// Name is the spelling used in reports.
	Name string
}

// String returns the readable type name.
func (d *TypeDescriptor) String() string {
	if d == nil {
		return "<nil>"
	}

	return d.Name
}

// ID identifies the described type. Two descriptors with the same ID
// describe the same type.
func (d *TypeDescriptor) ID() string {
	if d.Type != nil {
		return d.Type.String()
	}

	return d.Name
}

// NonNullable returns the shape without its nullability: the pointed-to shape
// for pointers, a copy with Nullable unset for interfaces.
func (d *TypeDescriptor) NonNullable() *TypeDescriptor {
	if d.Elem != nil {
		return d.Elem
	}

	if !d.Nullable {
		return d
	}

	cp := *d
	cp.Nullable = false

	return &cp
}

// Base strips every pointer level.
func (d *TypeDescriptor) Base() *TypeDescriptor {
	for d.Elem != nil {
		d = d.Elem
	}

	return d
}

// IsObject reports struct shapes with declared fields. time.Time is a
// struct but maps as a scalar.
func (d *TypeDescriptor) IsObject() bool {
	return d.Kind == KindObject && !d.Interface && d.Primitive == 0
}

// IsGenericMap reports maps keyed by strings: the generic keyed shape.
func (d *TypeDescriptor) IsGenericMap() bool {
	return d.Kind == KindMap && d.KeyType != nil && d.KeyType.Kind == KindString
}

func (d *TypeDescriptor) IsMixed() bool {
	return d.Kind == KindMixed
}

// IsScalar reports shapes with a primitive kind.
func (d *TypeDescriptor) IsScalar() bool {
	return d.Primitive != 0
}

// Mixed returns the shape of values typed any.
func Mixed() *TypeDescriptor {
	t := reflect.TypeFor[any]()

	return &TypeDescriptor{
		Kind:                            KindMixed,
		Nullable:                        true,
		ConstructibleWithoutInitializer: true,
		Type:                            t,
		Name:                            common.TypeName(t),
	}
}

// FieldDescriptor describes one property of an object shape.
type FieldDescriptor struct {
	// Name is the property name used for matching.
	Name string
	// GoName is the declared Go field name.
	GoName   string
	Type     *TypeDescriptor
	Index    []int
	Exported bool
	// Method names, empty when absent.
	Getter  string
	Setter  string
	Adder   string
	Remover string
	Tag     Tag
}

// HasField reports whether the property is backed by a struct field.
// Constructor-only and method-only properties have no index.
func (f FieldDescriptor) HasField() bool {
	return len(f.Index) > 0
}

// Readable reports whether the property can be read under the visibility policy.
func (f FieldDescriptor) Readable(allowUnexported bool) bool {
	return f.Getter != "" || (f.HasField() && (f.Exported || allowUnexported))
}

// Writable reports whether the property can be written under the visibility policy.
func (f FieldDescriptor) Writable(allowUnexported bool) bool {
	return f.Setter != "" || f.Adder != "" || (f.HasField() && (f.Exported || allowUnexported))
}

// ParamDescriptor describes a constructor parameter.
type ParamDescriptor struct {
	Name       string
	Position   int
	Type       *TypeDescriptor
	HasDefault bool
	Default    reflect.Value
	Variadic   bool
}

// Constructor describes how instances of an object shape are built.
type Constructor struct {
	Name   string
	Params []ParamDescriptor
	// Func is the runtime function. It is invalid for static descriptions.
	Func           reflect.Value
	ReturnsPointer bool
	ReturnsError   bool
}

// Param returns the parameter named name.
func (c *Constructor) Param(name string) (ParamDescriptor, bool) {
	for _, p := range c.Params {
		if p.Name == name {
			return p, true
		}
	}

	return ParamDescriptor{}, false
}

// Provider is the type introspection service used by the property resolver.
type Provider interface {
	// ListFields returns the properties of an object shape in declaration order.
	ListFields(t *TypeDescriptor) []FieldDescriptor
	// DeclaredTypes returns the candidate shapes of a field. Interfaces with
	// registered implementations yield one shape per implementation.
	DeclaredTypes(owner *TypeDescriptor, field FieldDescriptor) []*TypeDescriptor
	// Constructor returns the constructor of an object shape, nil if it has none.
	Constructor(t *TypeDescriptor) *Constructor
	// IsReadOnly reports object shapes that must be built through their constructor.
	IsReadOnly(t *TypeDescriptor) bool
}

// exportedName upper-cases the first letter of a Go identifier.
func exportedName(name string) string {
	if name == "" {
		return ""
	}

	return strings.ToUpper(name[:1]) + name[1:]
}

// singular drops a trailing "s" for adder/remover lookup: Tags -> Tag.
func singular(name string) string {
	if strings.HasSuffix(name, "ies") && len(name) > 3 {
		return name[:len(name)-3] + "y"
	}

	if strings.HasSuffix(name, "s") && len(name) > 1 {
		return name[:len(name)-1]
	}

	return name
}
