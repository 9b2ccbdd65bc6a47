package transform

import (
	"fmt"
	"reflect"
	"sync"

	"mapper-generator/internal/analyze"
)

// Dynamic resolves the transformer of a value typed any, or an interface
// without known implementations, from its concrete type at run time.
// Resolutions are cached per concrete type.
type Dynamic struct {
	resolver *Resolver
	targets  []*analyze.TypeDescriptor
	meta     Meta
	cache    sync.Map
}

type dynamicEntry struct {
	t  Transformer
	ok bool
}

func (d *Dynamic) Transform(in reflect.Value, s Scope) (reflect.Value, error) {
	in = unwrap(in)
	if !in.IsValid() {
		return reflect.Value{}, nil
	}

	t, err := d.lookup(in.Type())
	if err != nil {
		return reflect.Value{}, err
	}

	return t.Transform(in, s)
}

func (d *Dynamic) lookup(typ reflect.Type) (Transformer, error) {
	if cached, ok := d.cache.Load(typ); ok {
		entry := cached.(dynamicEntry)
		if !entry.ok {
			return nil, fmt.Errorf("%w from %s to %s", ErrNoTransformer, typ, d.targets[0])
		}

		return entry.t, nil
	}

	src := d.resolver.describe(typ)

	var entry dynamicEntry
	if !src.IsMixed() && !src.Interface {
		entry.t, entry.ok = d.resolver.Resolve([]*analyze.TypeDescriptor{src}, d.targets, d.meta)
	}

	d.cache.Store(typ, entry)

	if !entry.ok {
		return nil, fmt.Errorf("%w from %s to %s", ErrNoTransformer, typ, d.targets[0])
	}

	return entry.t, nil
}

func (d *Dynamic) String() string {
	return "dynamic(" + d.targets[0].String() + ")"
}

type dynamicFactory struct{}

func (dynamicFactory) Priority() int { return PriorityDynamic }

func (dynamicFactory) Create(r *Resolver, sources, targets []*analyze.TypeDescriptor, meta Meta) (Transformer, bool) {
	if len(sources) != 1 || r.describe == nil {
		return nil, false
	}

	src := sources[0]
	if !src.IsMixed() && !src.Interface {
		return nil, false
	}

	if len(targets) == 1 && targets[0].IsMixed() {
		return nil, false
	}

	return &Dynamic{resolver: r, targets: targets, meta: meta}, true
}
