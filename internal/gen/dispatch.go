package gen

import (
	"fmt"
	"reflect"

	"mapper-generator/internal/access"
	"mapper-generator/internal/diagnostic"
	"mapper-generator/internal/plan"
	"mapper-generator/internal/transform"
	"mapper-generator/options"
)

// dispatcher routes a polymorphic target to the mapper of the concrete type
// selected by the discriminator value.
type dispatcher struct {
	guard    sourceGuard
	name     string
	property string
	read     access.Reader
	routes   map[string]*route
}

// route is a nested mapper linked on first use.
type route struct {
	dep    transform.Dependency
	linker transform.Linker
	link   transform.Lazy
}

func (r *route) procedure() (transform.Procedure, error) {
	return r.link.Get(r.dep, r.linker)
}

func newDispatcher(m *plan.ResolvedMapping, cfg Config) *dispatcher {
	d := m.Discriminator
	dp := &dispatcher{
		guard:    newSourceGuard(m),
		name:     m.Target.String(),
		property: d.Property,
		read:     d.Read,
		routes:   make(map[string]*route, len(d.Targets)),
	}

	for value, target := range d.Targets {
		dp.routes[value] = &route{
			dep:    transform.Dependency{Source: m.Source, Target: target},
			linker: cfg.Linker,
		}
	}

	return dp
}

func (d *dispatcher) Map(src reflect.Value, ctx *options.Context) (reflect.Value, error) {
	src, err := d.guard.accept(src)
	if err != nil || !src.IsValid() {
		return reflect.Value{}, err
	}

	src = access.Addressable(src)

	raw, ok, err := d.read.Read(src)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%s discriminator %s: %w", d.name, d.property, err)
	}

	raw = unwrap(raw)
	if !ok || !raw.IsValid() {
		return reflect.Value{}, &diagnostic.DiscriminatorError{Target: d.name, Property: d.property, Value: nil}
	}

	value := fmt.Sprint(raw.Interface())

	r, ok := d.routes[value]
	if !ok {
		return reflect.Value{}, &diagnostic.DiscriminatorError{Target: d.name, Property: d.property, Value: value}
	}

	proc, err := r.procedure()
	if err != nil {
		return reflect.Value{}, err
	}

	return proc(src, ctx)
}
