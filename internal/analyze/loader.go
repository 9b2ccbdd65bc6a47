package analyze

import (
	"errors"
	"fmt"
	"go/types"
	"reflect"
	"slices"
	"strings"

	"golang.org/x/tools/go/packages"

	"mapper-generator/primitive"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// StaticProvider describes types of loaded Go packages without running
// them. Its descriptors carry no reflect.Type: they feed resolution reports,
// not compiled mappers.
type StaticProvider struct {
	packages    map[string]*types.Package
	named       []*types.Named
	descriptors map[string]*TypeDescriptor
	goTypes     map[*TypeDescriptor]types.Type
}

// LoadPackages loads the specified packages.
// Patterns are standard Go package patterns (e.g., "./store", "mapper-generator/warehouse").
func LoadPackages(patterns ...string) (*StaticProvider, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error

	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	typed := make([]*types.Package, 0, len(pkgs))
	for _, pkg := range pkgs {
		typed = append(typed, pkg.Types)
	}

	return NewStaticProvider(typed...), nil
}

// NewStaticProvider creates a provider over already type-checked packages.
func NewStaticProvider(pkgs ...*types.Package) *StaticProvider {
	p := &StaticProvider{
		packages:    make(map[string]*types.Package),
		descriptors: make(map[string]*TypeDescriptor),
		goTypes:     make(map[*TypeDescriptor]types.Type),
	}

	for _, pkg := range pkgs {
		p.packages[pkg.Path()] = pkg

		scope := pkg.Scope()
		for _, name := range scope.Names() {
			typeName, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || !typeName.Exported() || typeName.IsAlias() {
				continue
			}

			if named, ok := typeName.Type().(*types.Named); ok {
				p.named = append(p.named, named)
			}
		}
	}

	return p
}

// Lookup finds a named type by "alias.Name" or "import/path.Name".
func (p *StaticProvider) Lookup(name string) (*TypeDescriptor, error) {
	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		return nil, fmt.Errorf("type %q must be qualified by its package", name)
	}

	pkgName, typeName := name[:dot], name[dot+1:]

	for path, pkg := range p.packages {
		if path != pkgName && pkg.Name() != pkgName {
			continue
		}

		if obj, ok := pkg.Scope().Lookup(typeName).(*types.TypeName); ok {
			return p.Describe(obj.Type()), nil
		}
	}

	return nil, fmt.Errorf("type %s not found", name)
}

// Describe returns the descriptor of t.
func (p *StaticProvider) Describe(t types.Type) *TypeDescriptor {
	key := types.TypeString(t, nil)
	if d, ok := p.descriptors[key]; ok {
		return d
	}

	if alias, ok := t.(*types.Alias); ok {
		d := p.Describe(types.Unalias(alias))
		p.descriptors[key] = d

		return d
	}

	// Registered before its components so that self-referential types
	// resolve to it.
	d := &TypeDescriptor{}
	p.descriptors[key] = d
	p.goTypes[d] = t
	p.describe(t, d)

	return d
}

func qualifier(pkg *types.Package) string {
	return pkg.Name()
}

func (p *StaticProvider) describe(t types.Type, d *TypeDescriptor) {
	d.Name = types.TypeString(t, qualifier)
	d.ConstructibleWithoutInitializer = true

	switch tt := t.(type) {
	case *types.Named:
		obj := tt.Obj()
		if obj.Pkg() != nil && obj.Pkg().Path() == "time" && (obj.Name() == "Time" || obj.Name() == "Duration") {
			d.Primitive = primitive.FromName("time." + obj.Name())
			d.Kind = KindObject
			if d.Primitive == primitive.KindDuration {
				d.Kind = KindInt
			}

			return
		}

		d.ClassName = d.Name
		p.describeUnderlying(tt.Underlying(), d)
	default:
		p.describeUnderlying(t, d)
	}
}

func (p *StaticProvider) describeUnderlying(t types.Type, d *TypeDescriptor) {
	switch tt := t.(type) {
	case *types.Basic:
		if tt.Kind() == types.UntypedNil {
			d.Kind = KindNull
			d.Nullable = true

			return
		}

		d.Primitive = primitive.FromName(tt.Name())
		if d.Primitive == 0 {
			d.Kind = KindMixed
			return
		}

		d.Kind = scalarKind(d.Primitive)
	case *types.Pointer:
		elem := p.Describe(tt.Elem())
		d.Kind = elem.Kind
		d.ClassName = elem.ClassName
		d.Primitive = elem.Primitive
		d.Collection = elem.Collection
		d.KeyType = elem.KeyType
		d.ValueType = elem.ValueType
		d.Interface = elem.Interface
		d.Nullable = true
		d.Elem = elem
	case *types.Interface:
		d.Nullable = true
		if tt.NumMethods() > 0 {
			d.Kind = KindObject
			d.Interface = true
			d.ConstructibleWithoutInitializer = false
		} else {
			d.Kind = KindMixed
		}
	case *types.Struct:
		d.Kind = KindObject
	case *types.Slice:
		d.Kind = KindArray
		d.Collection = true
		d.KeyType = p.Describe(types.Typ[types.Int])
		d.ValueType = p.Describe(tt.Elem())
	case *types.Array:
		d.Kind = KindArray
		d.Collection = true
		d.KeyType = p.Describe(types.Typ[types.Int])
		d.ValueType = p.Describe(tt.Elem())
	case *types.Map:
		d.Kind = KindMap
		d.Collection = true
		d.KeyType = p.Describe(tt.Key())
		d.ValueType = p.Describe(tt.Elem())
	case *types.Signature:
		if elem, ok := staticIteratorElem(tt); ok {
			d.Kind = KindIterable
			d.Collection = true
			d.ValueType = p.Describe(elem)
		} else {
			d.Kind = KindMixed
		}
	default:
		d.Kind = KindMixed
	}
}

func staticIteratorElem(sig *types.Signature) (types.Type, bool) {
	if sig.Params().Len() != 1 || sig.Results().Len() != 0 {
		return nil, false
	}

	yield, ok := sig.Params().At(0).Type().Underlying().(*types.Signature)
	if !ok || yield.Params().Len() != 1 || yield.Results().Len() != 1 {
		return nil, false
	}

	if b, ok := yield.Results().At(0).Type().Underlying().(*types.Basic); !ok || b.Kind() != types.Bool {
		return nil, false
	}

	return yield.Params().At(0).Type(), true
}

// GoType returns the go/types type a descriptor was built from.
func (p *StaticProvider) GoType(d *TypeDescriptor) (types.Type, bool) {
	t, ok := p.goTypes[d]
	return t, ok
}

// ListFields returns the properties of a struct shape, promoted fields of
// embedded structs included.
func (p *StaticProvider) ListFields(t *TypeDescriptor) []FieldDescriptor {
	base := t.Base()
	if !base.IsObject() {
		return nil
	}

	gt, ok := p.goTypes[base]
	if !ok {
		return nil
	}

	st, ok := gt.Underlying().(*types.Struct)
	if !ok {
		return nil
	}

	methods := types.NewMethodSet(types.NewPointer(gt))
	seen := make(map[string]bool)

	var fields []FieldDescriptor

	p.collectFields(st, nil, methods, seen, &fields)

	return fields
}

func (p *StaticProvider) collectFields(st *types.Struct, prefix []int, methods *types.MethodSet,
	seen map[string]bool, fields *[]FieldDescriptor,
) {
	var embedded []int

	for i := range st.NumFields() {
		v := st.Field(i)

		if v.Embedded() {
			if _, ok := v.Type().Underlying().(*types.Struct); ok {
				embedded = append(embedded, i)

				continue
			}
		}

		tag := ParseTag(reflect.StructTag(st.Tag(i)))

		name := tag.Name
		if name == "" {
			name = v.Name()
		}

		if seen[name] {
			continue
		}

		seen[name] = true

		method := exportedName(v.Name())
		field := FieldDescriptor{
			Name:     name,
			GoName:   v.Name(),
			Type:     p.Describe(v.Type()),
			Index:    append(slices.Clone(prefix), i),
			Exported: v.Exported(),
			Tag:      tag,
		}

		if !v.Exported() {
			field.Getter = staticGetter(methods, v.Type(), method, "Get"+method)
		}

		field.Setter = staticSetter(methods, v.Type(), "Set"+method)

		if slice, ok := v.Type().Underlying().(*types.Slice); ok {
			field.Adder = staticSetter(methods, slice.Elem(), "Add"+singular(method))
			if field.Adder != "" {
				field.Remover = staticSetter(methods, slice.Elem(), "Remove"+singular(method))
			}
		}

		*fields = append(*fields, field)
	}

	// promoted fields lose to fields declared at a shallower depth
	for _, i := range embedded {
		inner, _ := st.Field(i).Type().Underlying().(*types.Struct)
		p.collectFields(inner, append(slices.Clone(prefix), i), methods, seen, fields)
	}
}

func lookupMethod(methods *types.MethodSet, name string) (*types.Signature, bool) {
	for i := range methods.Len() {
		sel := methods.At(i)
		if sel.Obj().Name() != name {
			continue
		}

		sig, ok := sel.Type().(*types.Signature)

		return sig, ok
	}

	return nil, false
}

func isError(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}

func staticGetter(methods *types.MethodSet, fieldType types.Type, candidates ...string) string {
	for _, name := range candidates {
		sig, ok := lookupMethod(methods, name)
		if !ok || sig.Params().Len() != 0 {
			continue
		}

		res := sig.Results()
		if res.Len() == 0 || res.Len() > 2 || !types.Identical(res.At(0).Type(), fieldType) {
			continue
		}

		if res.Len() == 2 && !isError(res.At(1).Type()) {
			continue
		}

		return name
	}

	return ""
}

func staticSetter(methods *types.MethodSet, in types.Type, name string) string {
	sig, ok := lookupMethod(methods, name)
	if !ok || sig.Params().Len() != 1 || !types.Identical(sig.Params().At(0).Type(), in) {
		return ""
	}

	res := sig.Results()
	if res.Len() > 1 || (res.Len() == 1 && !isError(res.At(0).Type())) {
		return ""
	}

	return name
}

// DeclaredTypes returns, for interface fields, every loaded struct type
// implementing the interface; the field type otherwise.
func (p *StaticProvider) DeclaredTypes(_ *TypeDescriptor, field FieldDescriptor) []*TypeDescriptor {
	if !field.Type.Interface {
		return []*TypeDescriptor{field.Type}
	}

	gt, ok := p.goTypes[field.Type.Base()]
	if !ok {
		return []*TypeDescriptor{field.Type}
	}

	iface, ok := gt.Underlying().(*types.Interface)
	if !ok {
		return []*TypeDescriptor{field.Type}
	}

	var result []*TypeDescriptor

	for _, named := range p.named {
		if _, isStruct := named.Underlying().(*types.Struct); !isStruct {
			continue
		}

		ptr := types.NewPointer(named)
		if types.Implements(named, iface) || types.Implements(ptr, iface) {
			result = append(result, p.Describe(ptr))
		}
	}

	if len(result) == 0 {
		return []*TypeDescriptor{field.Type}
	}

	slices.SortFunc(result, func(a, b *TypeDescriptor) int {
		return strings.Compare(a.Name, b.Name)
	})

	return result
}

// Constructor returns the package level New<Type> function of a named
// struct, if it returns the type or a pointer to it.
func (p *StaticProvider) Constructor(t *TypeDescriptor) *Constructor {
	gt, ok := p.goTypes[t.Base()]
	if !ok {
		return nil
	}

	named, ok := gt.(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return nil
	}

	fn, ok := named.Obj().Pkg().Scope().Lookup("New" + named.Obj().Name()).(*types.Func)
	if !ok {
		return nil
	}

	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Results().Len() == 0 || sig.Results().Len() > 2 {
		return nil
	}

	out := sig.Results().At(0).Type()

	returnsPointer := false
	if ptr, isPtr := out.(*types.Pointer); isPtr {
		out = ptr.Elem()
		returnsPointer = true
	}

	if !types.Identical(out, named) {
		return nil
	}

	ctor := &Constructor{
		Name:           fn.Name(),
		ReturnsPointer: returnsPointer,
		ReturnsError:   sig.Results().Len() == 2 && isError(sig.Results().At(1).Type()),
	}

	for i := range sig.Params().Len() {
		param := sig.Params().At(i)
		ctor.Params = append(ctor.Params, ParamDescriptor{
			Name:     param.Name(),
			Position: i,
			Type:     p.Describe(param.Type()),
			Variadic: sig.Variadic() && i == sig.Params().Len()-1,
		})
	}

	return ctor
}

// IsReadOnly reports struct types that hide every field behind a constructor.
func (p *StaticProvider) IsReadOnly(t *TypeDescriptor) bool {
	if p.Constructor(t) == nil {
		return false
	}

	for _, f := range p.ListFields(t) {
		if f.Exported {
			return false
		}
	}

	return true
}
