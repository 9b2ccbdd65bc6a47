package gen

import (
	"fmt"
	"reflect"

	"mapper-generator/internal/access"
	"mapper-generator/internal/analyze"
	"mapper-generator/internal/diagnostic"
	"mapper-generator/internal/plan"
	"mapper-generator/internal/transform"
	"mapper-generator/options"
)

// object maps into a struct target. Properties are partitioned once:
// constructor-bound ones feed the constructor, the rest are written after
// construction.
type object struct {
	guard     sourceGuard
	name      string
	target    reflect.Type
	ctor      *analyze.Constructor
	readOnly  bool
	prototype reflect.Value
	linker    transform.Linker

	// args is indexed by constructor parameter position.
	args []*plan.PropertyMapping
	// writes are the post-construction properties.
	writes []*plan.PropertyMapping
	// populate are the properties written into a given target instance.
	populate []*plan.PropertyMapping
}

func newObject(m *plan.ResolvedMapping, cfg Config) (*object, error) {
	if m.Target.Type == nil {
		return nil, fmt.Errorf("%s: %w", m.Target, ErrNoRuntimeType)
	}

	o := &object{
		guard:    newSourceGuard(m),
		name:     m.Target.String(),
		target:   m.Target.Type,
		ctor:     m.Constructor,
		readOnly: m.ReadOnly,
		linker:   cfg.Linker,
	}

	if cfg.Prototype.IsValid() {
		proto := unwrap(cfg.Prototype)
		if proto.Kind() == reflect.Pointer {
			proto = proto.Elem()
		}

		if proto.Type() != o.target {
			return nil, fmt.Errorf("prototype %s for %s: %w", proto.Type(), o.name, ErrTargetType)
		}

		// detach from the caller's instance
		o.prototype = reflect.New(o.target).Elem()
		o.prototype.Set(proto)
	}

	if o.ctor != nil {
		if !o.ctor.Func.IsValid() {
			return nil, fmt.Errorf("%s: %w", o.ctor.Name, ErrNoRuntimeType)
		}

		o.args = make([]*plan.PropertyMapping, len(o.ctor.Params))
	}

	for i := range m.Properties {
		p := &m.Properties[i]
		if p.Ignored {
			continue
		}

		if p.Argument != nil {
			o.args[p.Argument.Position] = p
		} else {
			o.writes = append(o.writes, p)
		}

		if p.Write != nil {
			o.populate = append(o.populate, p)
		}
	}

	return o, nil
}

// Map produces a *T from src.
func (o *object) Map(src reflect.Value, ctx *options.Context) (reflect.Value, error) {
	src, err := o.guard.accept(src)
	if err != nil || !src.IsValid() {
		return reflect.Value{}, err
	}

	src = access.Addressable(src)

	if given, ok := ctx.TargetToPopulate(); ok {
		return o.populateTarget(src, given, ctx)
	}

	if out, found, err := ctx.Revisit(src, o.target); found || err != nil {
		return out, err
	}

	ctx.Building(src, o.target)

	out, err := o.construct(src, ctx)
	if err != nil {
		return reflect.Value{}, err
	}

	ctx.Remember(src, o.target, out)

	if err := o.write(o.writes, src, out, ctx); err != nil {
		return out, err
	}

	return out, nil
}

func (o *object) populateTarget(src, given reflect.Value, ctx *options.Context) (reflect.Value, error) {
	if o.readOnly && !ctx.AllowReadOnlyTargetToPopulate() {
		return reflect.Value{}, &diagnostic.ReadOnlyTargetError{Target: o.name}
	}

	if given.Kind() != reflect.Pointer || given.IsNil() || given.Type().Elem() != o.target {
		return reflect.Value{}, fmt.Errorf("%s given for %s: %w", given.Type(), o.name, ErrTargetType)
	}

	ctx.Remember(src, o.target, given)

	if err := o.write(o.populate, src, given, ctx); err != nil {
		return given, err
	}

	return given, nil
}

func (o *object) write(props []*plan.PropertyMapping, src, out reflect.Value, ctx *options.Context) error {
	for _, p := range props {
		if p.Write == nil || !admitted(p, ctx) {
			continue
		}

		v, ok, err := transformProperty(p, src, ctx, o.linker)
		if err != nil {
			return fmt.Errorf("%s.%w", o.name, err)
		}

		if !ok {
			continue
		}

		if err := p.Write.Write(out, v); err != nil {
			return fmt.Errorf("%s.%s: %w", o.name, p.Property, err)
		}
	}

	return nil
}

// construct builds a fresh instance: through the constructor, by cloning
// the prototype, or as a zero value.
func (o *object) construct(src reflect.Value, ctx *options.Context) (reflect.Value, error) {
	if o.ctor == nil {
		ptr := reflect.New(o.target)
		if o.prototype.IsValid() {
			ptr.Elem().Set(o.prototype)
		}

		return ptr, nil
	}

	args := make([]reflect.Value, len(o.ctor.Params))

	for i, param := range o.ctor.Params {
		v, err := o.argument(param, src, ctx)
		if err != nil {
			return reflect.Value{}, err
		}

		args[i] = v
	}

	var results []reflect.Value
	if o.ctor.Func.Type().IsVariadic() {
		results = o.ctor.Func.CallSlice(args)
	} else {
		results = o.ctor.Func.Call(args)
	}

	if o.ctor.ReturnsError && !results[1].IsNil() {
		return reflect.Value{}, fmt.Errorf("%s: %w", o.ctor.Name, results[1].Interface().(error))
	}

	out := results[0]
	if o.ctor.ReturnsPointer {
		if out.IsNil() {
			return reflect.Value{}, fmt.Errorf("%s returned nil", o.ctor.Name)
		}

		return out, nil
	}

	ptr := reflect.New(o.target)
	ptr.Elem().Set(out)

	return ptr, nil
}

// argument evaluates one constructor parameter: call override, then the
// source value, then the registered default.
func (o *object) argument(param analyze.ParamDescriptor, src reflect.Value, ctx *options.Context) (reflect.Value, error) {
	typ := param.Type.Type

	if v, ok := ctx.ConstructorArgument(o.target, param.Name); ok {
		arg, err := coerce(reflect.ValueOf(v), typ)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%s argument %s: %w", o.name, param.Name, err)
		}

		return arg, nil
	}

	if p := o.args[param.Position]; p != nil && admitted(p, ctx) {
		v, ok, err := transformProperty(p, src, ctx, o.linker)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%s argument %w", o.name, err)
		}

		if ok {
			arg, err := coerce(v, typ)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("%s argument %s: %w", o.name, param.Name, err)
			}

			return arg, nil
		}
	}

	switch {
	case param.HasDefault:
		return param.Default, nil
	case param.Variadic:
		return reflect.MakeSlice(typ, 0, 0), nil
	default:
		return reflect.Value{}, &diagnostic.MissingConstructorArgumentError{Target: o.name, Parameter: param.Name}
	}
}
