package gen

import (
	"fmt"
	"reflect"

	"mapper-generator/internal/access"
	"mapper-generator/internal/plan"
	"mapper-generator/internal/transform"
	"mapper-generator/options"
)

// keyed maps an object into a string keyed map, one entry per property.
// Targets typed any receive a map[string]any.
type keyed struct {
	guard   sourceGuard
	name    string
	mapType reflect.Type
	props   []*plan.PropertyMapping
	linker  transform.Linker
}

func newKeyed(m *plan.ResolvedMapping, cfg Config) *keyed {
	k := &keyed{
		guard:   newSourceGuard(m),
		name:    m.Target.String(),
		mapType: reflect.TypeFor[map[string]any](),
		linker:  cfg.Linker,
	}

	if m.TargetShape == plan.ShapeMap && m.Target.Type != nil {
		k.mapType = m.Target.Type
	}

	for i := range m.Properties {
		if !m.Properties[i].Ignored {
			k.props = append(k.props, &m.Properties[i])
		}
	}

	return k
}

func (k *keyed) Map(src reflect.Value, ctx *options.Context) (reflect.Value, error) {
	src, err := k.guard.accept(src)
	if err != nil || !src.IsValid() {
		return reflect.Value{}, err
	}

	src = access.Addressable(src)

	out := reflect.MakeMapWithSize(k.mapType, len(k.props))
	if given, ok := ctx.TargetToPopulate(); ok {
		if given.Type() != k.mapType || given.IsNil() {
			return reflect.Value{}, fmt.Errorf("%s given for %s: %w", given.Type(), k.name, ErrTargetType)
		}

		out = given
	}

	for _, p := range k.props {
		if !admitted(p, ctx) {
			continue
		}

		v, ok, err := transformProperty(p, src, ctx, k.linker)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%s: %w", k.name, err)
		}

		if !ok {
			continue
		}

		if err := p.Write.Write(out, v); err != nil {
			return reflect.Value{}, fmt.Errorf("%s[%s]: %w", k.name, p.Property, err)
		}
	}

	return out, nil
}
