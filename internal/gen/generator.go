package gen

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"mapper-generator/internal/access"
	"mapper-generator/internal/diagnostic"
	"mapper-generator/internal/plan"
	"mapper-generator/internal/transform"
	"mapper-generator/options"
)

var (
	ErrNoRuntimeType = errors.New("type has no runtime representation")
	ErrTargetType    = errors.New("target to populate has the wrong type")
)

// Config holds configuration for procedure generation.
type Config struct {
	// Linker resolves the nested mappers of Dependent transformers.
	Linker transform.Linker
	// Prototype, when valid, is the instance new targets are cloned from.
	Prototype reflect.Value
	Logger    *slog.Logger
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}

	return slog.Default()
}

// Generate builds the procedure of a resolved mapping.
func Generate(m *plan.ResolvedMapping, cfg Config) (transform.Procedure, error) {
	switch {
	case m.Transformer != nil:
		return valueProcedure(m, cfg), nil
	case m.Discriminator != nil:
		return newDispatcher(m, cfg).Map, nil
	case m.TargetShape == plan.ShapeMap || m.TargetShape == plan.ShapeMixed:
		return newKeyed(m, cfg).Map, nil
	case m.TargetShape == plan.ShapeObject:
		o, err := newObject(m, cfg)
		if err != nil {
			return nil, err
		}

		return o.Map, nil
	default:
		return nil, fmt.Errorf("%s: nothing to generate", m.Pair())
	}
}

func valueProcedure(m *plan.ResolvedMapping, cfg Config) transform.Procedure {
	t := m.Transformer
	linker := cfg.Linker
	guard := newSourceGuard(m)

	return func(src reflect.Value, ctx *options.Context) (reflect.Value, error) {
		src, err := guard.accept(src)
		if err != nil || !src.IsValid() {
			return reflect.Value{}, err
		}

		out, err := t.Transform(src, transform.Scope{Context: ctx, Linker: linker})
		if errors.Is(err, transform.ErrSkip) {
			return reflect.Value{}, nil
		}

		return out, err
	}
}

// sourceGuard admits the values a procedure was compiled for. Field
// accessors work on raw offsets, so any other type must be refused before a
// property is read.
type sourceGuard struct {
	pair string
	want reflect.Type // nil accepts any value
}

func newSourceGuard(m *plan.ResolvedMapping) sourceGuard {
	g := sourceGuard{pair: m.Pair()}

	if m.Source != nil && m.Source.Type != nil {
		want := m.Source.Type
		for want.Kind() == reflect.Pointer {
			want = want.Elem()
		}

		if want.Kind() != reflect.Interface {
			g.want = want
		}
	}

	return g
}

// accept reduces src to a value or a single pointer to it. It returns an
// invalid value for nil at any pointer level.
func (g sourceGuard) accept(src reflect.Value) (reflect.Value, error) {
	src = unwrap(src)

	for src.IsValid() && src.Kind() == reflect.Pointer && !src.IsNil() && src.Elem().Kind() == reflect.Pointer {
		src = src.Elem()
	}

	if access.IsNil(src) {
		return reflect.Value{}, nil
	}

	if g.want == nil {
		return src, nil
	}

	got := src.Type()
	if got.Kind() == reflect.Pointer {
		got = got.Elem()
	}

	if got != g.want {
		return reflect.Value{}, &diagnostic.SourceTypeError{Mapper: g.pair, Want: g.want.String(), Got: src.Type().String()}
	}

	return src, nil
}

// admitted applies the context gates of a property: attribute filters,
// groups on both sides and the nesting depth limit.
func admitted(p *plan.PropertyMapping, ctx *options.Context) bool {
	if !ctx.IsAllowed(p.Property) {
		return false
	}

	if !ctx.InGroups(p.TargetGroups) || !ctx.InGroups(p.SourceGroups) {
		return false
	}

	return p.MaxDepth == 0 || ctx.Depth() <= p.MaxDepth
}

// transformProperty reads and transforms one property. write is false when
// the target must be left untouched.
func transformProperty(p *plan.PropertyMapping, src reflect.Value, ctx *options.Context,
	linker transform.Linker,
) (out reflect.Value, write bool, err error) {
	raw, ok, err := p.Read.Read(src)
	if err != nil {
		return reflect.Value{}, false, fmt.Errorf("%s: %w", p.Property, err)
	}

	if !ok {
		return reflect.Value{}, false, nil
	}

	if access.IsNil(raw) {
		return reflect.Value{}, !ctx.SkipNull(), nil
	}

	out, err = p.Transformer.Transform(raw, transform.Scope{
		Context:  ctx.Nested(p.Property),
		Property: p.Property,
		Linker:   linker,
	})

	switch {
	case errors.Is(err, transform.ErrSkip):
		return reflect.Value{}, false, nil
	case err != nil:
		return reflect.Value{}, false, fmt.Errorf("%s: %w", p.Property, err)
	}

	return out, true, nil
}

func unwrap(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}

		v = v.Elem()
	}

	return v
}

// coerce adapts a transformed value to the declared type t.
func coerce(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	v = unwrap(v)
	if !v.IsValid() {
		return reflect.Zero(t), nil
	}

	vt := v.Type()

	switch {
	case vt.AssignableTo(t):
		return v, nil
	case vt.Kind() == t.Kind() && vt.ConvertibleTo(t):
		return v.Convert(t), nil
	case vt.Kind() == reflect.Pointer && vt.Elem() == t:
		if v.IsNil() {
			return reflect.Zero(t), nil
		}

		return v.Elem(), nil
	case t.Kind() == reflect.Pointer && vt == t.Elem():
		ptr := reflect.New(vt)
		ptr.Elem().Set(v)

		return ptr, nil
	default:
		return reflect.Value{}, fmt.Errorf("cannot use %s as %s", vt, t)
	}
}
