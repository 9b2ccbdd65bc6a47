package automap

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/viant/xreflect"
	"golang.org/x/sync/singleflight"

	"mapper-generator/internal/access"
	"mapper-generator/internal/analyze"
	"mapper-generator/internal/common"
	"mapper-generator/internal/gen"
	"mapper-generator/internal/mapping"
	"mapper-generator/internal/plan"
	"mapper-generator/internal/transform"
	"mapper-generator/options"
	"mapper-generator/primitive"
)

// Registry compiles mappers on first request and caches them. It is safe for
// concurrent use; a pair is compiled at most once and failed compilations
// are not cached.
type Registry struct {
	provider     *analyze.ReflectProvider
	transformers *transform.Resolver
	planner      *plan.Resolver
	casters      *transform.CustomFactory
	types        *xreflect.Types
	mappings     *mapping.MappingFile
	hooks        *hooks
	prototypes   map[reflect.Type]reflect.Value
	config       plan.Config
	categories   primitive.CategoryEnum
	dateFormat   string
	logger       *slog.Logger

	mu       sync.RWMutex
	mappers  map[pair]*Mapper
	group    singleflight.Group
	compiles atomic.Int64
}

type pair struct {
	source reflect.Type
	target reflect.Type
}

// key identifies the pair for singleflight. Type names alone are not unique:
// two function-local types may share one.
func (p pair) key() string {
	return fmt.Sprintf("%s(%p)->%s(%p)", p.source, p.source, p.target, p.target)
}

// New creates a registry. Mapping configuration given through options is
// validated here; type names in it are checked when a pair using them is
// compiled.
func New(opts ...Option) (*Registry, error) {
	r := &Registry{
		provider:   analyze.NewReflectProvider(),
		casters:    transform.NewCustomFactory(),
		types:      xreflect.NewTypes(),
		mappings:   &mapping.MappingFile{Version: "1"},
		hooks:      newHooks(),
		prototypes: make(map[reflect.Type]reflect.Value),
		config:     plan.DefaultConfig(),
		categories: primitive.CategoryAll,
		logger:     slog.Default(),
		mappers:    make(map[pair]*Mapper),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	if res := mapping.Validate(r.mappings); res.HasErrors() {
		return nil, fmt.Errorf("invalid mapping configuration: %w", res.Error())
	}

	transformerOpts := []transform.ResolverOption{
		transform.WithCategories(r.categories),
		transform.WithDescriber(r.provider.Describe),
		transform.WithPolymorphic(func(d *analyze.TypeDescriptor) bool {
			return r.planner.IsPolymorphic(d)
		}),
	}

	if r.dateFormat != "" {
		transformerOpts = append(transformerOpts, transform.WithDateTimeFormat(r.dateFormat))
	}

	if r.casters.Len() > 0 {
		transformerOpts = append(transformerOpts, transform.WithFactory(r.casters))
	}

	r.transformers = transform.NewResolver(r.provider, transformerOpts...)
	r.planner = plan.NewResolver(r.provider, r.transformers,
		plan.WithMappings(r.mappings),
		plan.WithTypeLookup(r.lookup),
		plan.WithHooks(r.hooks),
		plan.WithConfig(r.config),
	)

	return r, nil
}

// MustNew is New that panics on invalid options.
func MustNew(opts ...Option) *Registry {
	r, err := New(opts...)
	if err != nil {
		panic(err)
	}

	return r
}

func (r *Registry) addMappings(mf *mapping.MappingFile) error {
	if res := mapping.Validate(mf); res.HasErrors() {
		return fmt.Errorf("invalid mapping configuration: %w", res.Error())
	}

	r.mappings.Merge(mf)

	return nil
}

// lookup resolves an "alias.Name" of the mapping configuration.
func (r *Registry) lookup(name string) (*analyze.TypeDescriptor, error) {
	var opts []xreflect.Option

	typeName := name
	if i := strings.LastIndex(name, "."); i >= 0 {
		opts = append(opts, xreflect.WithPackage(name[:i]))
		typeName = name[i+1:]
	}

	t, err := r.types.Lookup(typeName, opts...)
	if err != nil {
		return nil, fmt.Errorf("type %s is not registered: %w", name, err)
	}

	return r.provider.Describe(t), nil
}

// GetMapper returns the mapper of the (source, target) pair, compiling it on
// first request. Pointer levels are ignored: *S to *T shares the mapper of
// S to T.
func (r *Registry) GetMapper(source, target reflect.Type) (*Mapper, error) {
	if source == nil || target == nil {
		return nil, fmt.Errorf("%w: source and target types are required", ErrConfiguration)
	}

	p := pair{source: base(source), target: base(target)}
	if m, ok := r.cached(p); ok {
		return m, nil
	}

	v, err, _ := r.group.Do(p.key(), func() (any, error) {
		if m, ok := r.cached(p); ok {
			return m, nil
		}

		m, err := r.compile(p)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.mappers[p] = m
		r.mu.Unlock()

		return m, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Mapper), nil
}

func (r *Registry) cached(p pair) (*Mapper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.mappers[p]

	return m, ok
}

func (r *Registry) compile(p pair) (*Mapper, error) {
	source := r.provider.Describe(p.source)
	target := r.provider.Describe(p.target)

	resolved, err := r.planner.Resolve(source, target)
	if err != nil {
		r.logger.Warn("mapper configuration rejected",
			slog.String("source", source.String()),
			slog.String("target", target.String()),
			slog.Any("error", err),
		)

		return nil, err
	}

	resolved.Diagnostics.Log(r.logger)

	proc, err := gen.Generate(resolved, gen.Config{
		Linker:    r,
		Prototype: r.prototypes[p.target],
		Logger:    r.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", resolved.Pair(), err)
	}

	r.compiles.Add(1)
	r.logger.Debug("mapper compiled",
		slog.String("source", source.String()),
		slog.String("target", target.String()),
		slog.String("shape", resolved.SourceShape.String()+"->"+resolved.TargetShape.String()),
		slog.Int("properties", len(resolved.Properties)),
		slog.Int("unmapped", len(resolved.Unmapped)),
	)

	return &Mapper{source: p.source, target: p.target, mapping: resolved, proc: proc}, nil
}

// Link provides the procedure of a nested mapper to the mappers that
// depend on it.
func (r *Registry) Link(dep transform.Dependency) (transform.Procedure, error) {
	if dep.Source.Type == nil || dep.Target.Type == nil {
		return nil, fmt.Errorf("%s: %w", dep.Name(), gen.ErrNoRuntimeType)
	}

	m, err := r.GetMapper(dep.Source.Type, dep.Target.Type)
	if err != nil {
		return nil, err
	}

	return m.proc, nil
}

// Compiles returns how many mappers have been compiled.
func (r *Registry) Compiles() int64 {
	return r.compiles.Load()
}

// Mapper is the compiled mapping of one (source, target) pair. It is
// immutable and safe for concurrent use.
type Mapper struct {
	source  reflect.Type
	target  reflect.Type
	mapping *plan.ResolvedMapping
	proc    transform.Procedure
}

func (m *Mapper) Source() reflect.Type {
	return m.source
}

func (m *Mapper) Target() reflect.Type {
	return m.target
}

// Map maps src with a fresh call context. The result is a *T for struct
// targets and nil for a nil source.
func (m *Mapper) Map(src any, opts ...options.Option) (any, error) {
	out, err := m.MapValue(reflect.ValueOf(src), options.New(opts...))
	if err != nil || !out.IsValid() {
		return nil, err
	}

	return out.Interface(), nil
}

// MapValue runs the mapper within ctx. Nested calls share the circular
// reference table of ctx. src may be the source type or a pointer to it at
// any depth; any other type fails with a *SourceTypeError.
func (m *Mapper) MapValue(src reflect.Value, ctx *options.Context) (reflect.Value, error) {
	return m.proc(src, ctx)
}

// Unmapped lists the target properties the mapper never writes, with the
// reason and the closest source properties.
func (m *Mapper) Unmapped() []plan.UnmappedProperty {
	return m.mapping.Unmapped
}

// Report writes a table of the property mappings.
func (m *Mapper) Report(w io.Writer) error {
	return m.mapping.Report(w)
}

func (m *Mapper) String() string {
	return common.TypeName(m.source) + "->" + common.TypeName(m.target)
}

func base(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}

type hookKey struct {
	owner    reflect.Type
	property string
}

// hooks serves the extractors and hydrators registered with the registry.
type hooks struct {
	extractors map[hookKey]access.ExtractFunc
	hydrators  map[hookKey]access.HydrateFunc
}

func newHooks() *hooks {
	return &hooks{
		extractors: make(map[hookKey]access.ExtractFunc),
		hydrators:  make(map[hookKey]access.HydrateFunc),
	}
}

func (h *hooks) Extractor(source *analyze.TypeDescriptor, property string) (access.ExtractFunc, bool) {
	if source.Type == nil {
		return nil, false
	}

	fn, ok := h.extractors[hookKey{base(source.Type), property}]

	return fn, ok
}

func (h *hooks) Hydrator(target *analyze.TypeDescriptor, property string) (access.HydrateFunc, bool) {
	if target.Type == nil {
		return nil, false
	}

	fn, ok := h.hydrators[hookKey{base(target.Type), property}]

	return fn, ok
}
