package transform

import (
	"cmp"
	"reflect"
	"slices"

	"mapper-generator/internal/analyze"
	"mapper-generator/primitive"
)

// Factory priorities, highest first.
const (
	PriorityObject = (iota + 1) * 10
	PriorityDynamic
	PriorityCopy
	PriorityCollection
	PriorityBuiltin
	PriorityDateTime
	PriorityMultiple
	PriorityUnique
	PriorityNullable
	PriorityCustom
)

// Factory builds a transformer for a (sources, targets) pair, or reports
// that it does not apply.
type Factory interface {
	Priority() int
	Create(r *Resolver, sources, targets []*analyze.TypeDescriptor, meta Meta) (Transformer, bool)
}

// Resolver picks the transformer of a property from its factory chain.
// It is read-only once the first mapper is compiled.
type Resolver struct {
	factories  []Factory
	provider   analyze.Provider
	categories primitive.CategoryEnum
	dateFormat string
	describe   func(reflect.Type) *analyze.TypeDescriptor
	polymorph  func(*analyze.TypeDescriptor) bool
}

type ResolverOption func(*Resolver)

// WithCategories sets the scalar conversion categories Builtin may use.
func WithCategories(categories primitive.CategoryEnum) ResolverOption {
	return func(r *Resolver) {
		r.categories = categories
	}
}

// WithDateTimeFormat sets the layout used when neither the call nor the
// property configures one.
func WithDateTimeFormat(layout string) ResolverOption {
	return func(r *Resolver) {
		r.dateFormat = layout
	}
}

// WithDescriber enables runtime resolution of values typed any.
func WithDescriber(describe func(reflect.Type) *analyze.TypeDescriptor) ResolverOption {
	return func(r *Resolver) {
		r.describe = describe
	}
}

// WithPolymorphic reports interface targets a mapper can still produce,
// typically through a discriminator.
func WithPolymorphic(fn func(*analyze.TypeDescriptor) bool) ResolverOption {
	return func(r *Resolver) {
		r.polymorph = fn
	}
}

// WithFactory registers an additional factory.
func WithFactory(f Factory) ResolverOption {
	return func(r *Resolver) {
		r.Register(f)
	}
}

// NewResolver creates a resolver with the default factory chain.
func NewResolver(provider analyze.Provider, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		provider:   provider,
		categories: primitive.CategoryAll,
	}

	for _, f := range DefaultFactories() {
		r.Register(f)
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// DefaultFactories returns the builtin factory chain.
func DefaultFactories() []Factory {
	return []Factory{
		nullableFactory{},
		uniqueFactory{},
		multipleFactory{},
		dateTimeFactory{},
		builtinFactory{},
		collectionFactory{},
		copyFactory{},
		dynamicFactory{},
		objectFactory{},
	}
}

// Register adds f to the chain. Factories are kept sorted by priority, ties
// in registration order.
func (r *Resolver) Register(f Factory) {
	r.factories = append(r.factories, f)
	slices.SortStableFunc(r.factories, func(a, b Factory) int {
		return cmp.Compare(b.Priority(), a.Priority())
	})
}

// Resolve returns the transformer of the first factory that applies.
func (r *Resolver) Resolve(sources, targets []*analyze.TypeDescriptor, meta Meta) (Transformer, bool) {
	if len(sources) == 0 || len(targets) == 0 {
		return nil, false
	}

	for _, f := range r.factories {
		if t, ok := f.Create(r, sources, targets, meta); ok {
			return t, true
		}
	}

	return nil, false
}

// Candidates expands a shape into its declared candidates: the registered
// implementations of an interface, the shape itself otherwise.
func (r *Resolver) Candidates(d *analyze.TypeDescriptor) []*analyze.TypeDescriptor {
	if d == nil {
		return nil
	}

	if r.provider == nil {
		return []*analyze.TypeDescriptor{d}
	}

	return r.provider.DeclaredTypes(nil, analyze.FieldDescriptor{Type: d})
}

func (r *Resolver) Categories() primitive.CategoryEnum {
	return r.categories
}

func single(sources, targets []*analyze.TypeDescriptor) (*analyze.TypeDescriptor, *analyze.TypeDescriptor, bool) {
	if len(sources) != 1 || len(targets) != 1 {
		return nil, nil, false
	}

	return sources[0], targets[0], true
}
