package plan

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"mapper-generator/internal/access"
	"mapper-generator/internal/analyze"
	"mapper-generator/internal/diagnostic"
	"mapper-generator/internal/mapping"
	"mapper-generator/internal/match"
	"mapper-generator/internal/transform"
)

// Config holds configuration for the property resolver.
type Config struct {
	// AllowUnexported lets unexported fields be read and written directly.
	AllowUnexported bool
	// Strict turns unmapped required properties into errors.
	Strict bool
	// MaxSuggestions caps the candidates listed for unmapped properties.
	MaxSuggestions int
}

// DefaultConfig returns the default resolver configuration.
func DefaultConfig() Config {
	return Config{MaxSuggestions: 3}
}

// Hooks supplies per property callbacks replacing field access.
type Hooks interface {
	Extractor(source *analyze.TypeDescriptor, property string) (access.ExtractFunc, bool)
	Hydrator(target *analyze.TypeDescriptor, property string) (access.HydrateFunc, bool)
}

// TypeLookup resolves a type name of the mapping configuration.
type TypeLookup func(name string) (*analyze.TypeDescriptor, error)

// Resolver resolves type pairs into property mappings.
type Resolver struct {
	provider     analyze.Provider
	transformers *transform.Resolver
	mappings     *mapping.MappingFile
	lookup       TypeLookup
	hooks        Hooks
	config       Config
}

type Option func(*Resolver)

// WithMappings sets the override configuration.
func WithMappings(mf *mapping.MappingFile) Option {
	return func(r *Resolver) {
		r.mappings = mf
	}
}

// WithTypeLookup sets the lookup of discriminator type names.
func WithTypeLookup(lookup TypeLookup) Option {
	return func(r *Resolver) {
		r.lookup = lookup
	}
}

func WithHooks(hooks Hooks) Option {
	return func(r *Resolver) {
		r.hooks = hooks
	}
}

func WithConfig(config Config) Option {
	return func(r *Resolver) {
		r.config = config
	}
}

// NewResolver creates a property resolver.
func NewResolver(provider analyze.Provider, transformers *transform.Resolver, opts ...Option) *Resolver {
	r := &Resolver{
		provider:     provider,
		transformers: transformers,
		config:       DefaultConfig(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// IsPolymorphic reports target types with a configured discriminator.
func (r *Resolver) IsPolymorphic(target *analyze.TypeDescriptor) bool {
	return r.mappings != nil && r.mappings.FindDiscriminator(target.Base().Name) != nil
}

// Resolve builds the mapping of a (source, target) pair. Pointer levels are
// stripped from both sides. A ConfigurationError is returned when the pair
// cannot be mapped.
func (r *Resolver) Resolve(source, target *analyze.TypeDescriptor) (*ResolvedMapping, error) {
	src, tgt := source.Base(), target.Base()
	m := &ResolvedMapping{
		Source:      src,
		Target:      tgt,
		SourceShape: ShapeOf(src),
		TargetShape: ShapeOf(tgt),
	}

	var err error

	switch {
	case m.TargetShape == ShapePolymorphic:
		err = r.resolveDiscriminator(m)
	case m.TargetShape == ShapeObject && m.SourceShape == ShapeMixed:
		err = configError(m, "only array/plain-object targets accepted when source has no declared shape", nil)
	case m.TargetShape == ShapeObject && (m.SourceShape == ShapeObject || m.SourceShape == ShapeMap):
		err = r.resolveObject(m)
	case m.SourceShape == ShapeObject && (m.TargetShape == ShapeMap || m.TargetShape == ShapeMixed):
		err = r.resolveKeyed(m)
	default:
		err = r.resolveValue(m)
	}

	if err != nil {
		return nil, err
	}

	if m.Diagnostics.HasErrors() {
		return nil, configError(m, "unresolved required properties", m.Diagnostics.Error())
	}

	return m, nil
}

func (r *Resolver) resolveValue(m *ResolvedMapping) error {
	t, ok := r.transformers.Resolve(
		[]*analyze.TypeDescriptor{m.Source},
		[]*analyze.TypeDescriptor{m.Target},
		transform.Meta{},
	)
	if !ok {
		return configError(m, "no transformer", nil)
	}

	m.Transformer = t

	return nil
}

func (r *Resolver) resolveDiscriminator(m *ResolvedMapping) error {
	var d *mapping.Discriminator
	if r.mappings != nil {
		d = r.mappings.FindDiscriminator(m.Target.Name)
	}

	if d == nil {
		return configError(m, "polymorphic target without discriminator", nil)
	}

	if r.lookup == nil {
		return configError(m, "no type lookup for discriminator types", nil)
	}

	if m.SourceShape != ShapeObject && m.SourceShape != ShapeMap {
		return configError(m, "discriminator needs a source with properties", nil)
	}

	sp, ok := r.sourceProperty(m.Source, []string{d.Property})
	if !ok {
		return configError(m, fmt.Sprintf("source has no discriminator property %q", d.Property), nil)
	}

	targets := make(map[string]*analyze.TypeDescriptor, len(d.Types))

	for _, value := range slices.Sorted(maps.Keys(d.Types)) {
		td, err := r.lookup(d.Types[value])
		if err != nil {
			return configError(m, fmt.Sprintf("discriminator value %q", value), err)
		}

		if !td.Base().IsObject() {
			return configError(m, fmt.Sprintf("discriminator value %q maps to non-object %s", value, td), nil)
		}

		targets[value] = td.Base()
	}

	m.Discriminator = &Discriminator{
		Property:    d.Property,
		Read:        sp.read,
		CheckExists: sp.checkExists,
		Targets:     targets,
	}

	return nil
}

// targetProperty is a target field, a constructor parameter, or both.
type targetProperty struct {
	name     string
	field    analyze.FieldDescriptor
	hasField bool
	param    *analyze.ParamDescriptor
}

func (tp targetProperty) required() bool {
	return tp.field.Tag.Required || (tp.param != nil && !tp.param.HasDefault && !tp.param.Variadic)
}

func targetProperties(fields []analyze.FieldDescriptor, ctor *analyze.Constructor) []targetProperty {
	props := make([]targetProperty, 0, len(fields))
	byName := make(map[string]int, len(fields))

	for i, f := range fields {
		props = append(props, targetProperty{name: f.Name, field: f, hasField: true})
		byName[f.Name] = i

		if _, ok := byName[f.GoName]; !ok {
			byName[f.GoName] = i
		}
	}

	if ctor == nil {
		return props
	}

	for i := range ctor.Params {
		p := &ctor.Params[i]

		if idx, ok := byName[p.Name]; ok && props[idx].param == nil {
			props[idx].param = p
			continue
		}

		props = append(props, targetProperty{
			name:  p.Name,
			field: analyze.FieldDescriptor{Name: p.Name, Type: p.Type},
			param: p,
		})
	}

	return props
}

func (r *Resolver) resolveObject(m *ResolvedMapping) error {
	m.Constructor = r.provider.Constructor(m.Target)
	m.ReadOnly = r.provider.IsReadOnly(m.Target)

	if m.ReadOnly && m.Constructor == nil {
		return configError(m, "read-only target without constructor", nil)
	}

	if m.Constructor == nil && !m.Target.ConstructibleWithoutInitializer {
		return configError(m, "target cannot be instantiated without constructor", nil)
	}

	overrides, err := r.overrides(m)
	if err != nil {
		return configError(m, "invalid override", err)
	}

	props := targetProperties(r.provider.ListFields(m.Target), m.Constructor)
	names := make([]string, 0, len(props))

	for _, tp := range props {
		o, hasOverride := overrides[tp.name]
		r.resolveProperty(m, tp, o, hasOverride)

		names = append(names, tp.name)
	}

	for _, name := range slices.Sorted(maps.Keys(overrides)) {
		if slices.Contains(names, name) {
			continue
		}

		m.Diagnostics.AddWarning(diagnostic.CodeUnknownOverride,
			"override names no target property", m.Pair(), name,
			match.Suggest(name, names, r.config.MaxSuggestions)...)
	}

	return nil
}

func (r *Resolver) overrides(m *ResolvedMapping) (map[string]mapping.Override, error) {
	if r.mappings == nil {
		return nil, nil
	}

	tm := r.mappings.Find(m.Source.Name, m.Target.Name)
	if tm == nil {
		return nil, nil
	}

	return tm.Overrides()
}

func (r *Resolver) resolveProperty(m *ResolvedMapping, tp targetProperty, o mapping.Override, hasOverride bool) {
	pair := m.Pair()
	tag := tp.field.Tag

	if tag.Err != nil {
		m.Diagnostics.AddWarning(diagnostic.CodeInvalidOverride, tag.Err.Error(), pair, tp.name)
	}

	pm := PropertyMapping{
		Property:     tp.name,
		SourcePath:   []string{tp.name},
		TargetGroups: tag.Groups,
		MaxDepth:     tag.MaxDepth,
		Origin:       MappingSourceName,
	}
	dateFormat := tag.DateFormat

	if hasOverride {
		pm.Origin = originOf(o.Priority)

		if !o.Source.IsEmpty() {
			pm.SourcePath = o.Source.Names()
		}

		if len(o.Groups) > 0 {
			pm.TargetGroups = o.Groups
		}

		if o.MaxDepth > 0 {
			pm.MaxDepth = o.MaxDepth
		}

		if o.DateTimeFormat != "" {
			dateFormat = o.DateTimeFormat
		}
	}

	switch {
	case hasOverride && o.Ignore:
		pm.Ignored = true
	case tag.Ignore && !hasOverride:
		pm.Ignored = true
		pm.Origin = MappingSourceTag
	}

	if pm.Ignored {
		m.Properties = append(m.Properties, pm)
		return
	}

	targetTypes := r.provider.DeclaredTypes(m.Target, tp.field)

	if tp.param != nil {
		pm.Argument = &access.Argument{Name: tp.param.Name, Position: tp.param.Position}
		pm.TargetType = tp.param.Type
		targetTypes = []*analyze.TypeDescriptor{tp.param.Type}

		// the field writer serves targets given to populate
		if tp.hasField && tp.field.Type.ID() == tp.param.Type.ID() {
			pm.Write = r.writer(m.Target, tp.field)
		}
	} else {
		if m.ReadOnly {
			m.Diagnostics.AddWarning(diagnostic.CodeReadOnlyProperty,
				"read-only target: property is not a constructor parameter", pair, tp.name)

			return
		}

		pm.Write = r.writer(m.Target, tp.field)
		if pm.Write == nil {
			m.Diagnostics.AddInfo(diagnostic.CodeUnexportedField, "property is not writable", pair, tp.name)
			return
		}

		pm.TargetType = tp.field.Type
	}

	sp, ok := r.source(m.Source, tp.name, pm.SourcePath, hasOverride && !o.Source.IsEmpty())
	if !ok {
		r.unmapped(m, tp, diagnostic.CodeUnmappedProperty, "no source property "+strings.Join(pm.SourcePath, "."))
		return
	}

	t, ok := r.transformers.Resolve(sp.types, targetTypes, transform.Meta{Property: tp.name, DateFormat: dateFormat})
	if !ok {
		r.unmapped(m, tp, diagnostic.CodeNoTransformer,
			fmt.Sprintf("no transformer from %s to %s", typeNames(sp.types), typeNames(targetTypes)))

		return
	}

	pm.Read = sp.read
	pm.SourceType = sp.types[0]
	pm.SourceGroups = sp.groups
	pm.CheckExists = sp.checkExists
	pm.Transformer = t

	m.Properties = append(m.Properties, pm)
}

func (r *Resolver) unmapped(m *ResolvedMapping, tp targetProperty, code, reason string) {
	var candidates []string
	if m.SourceShape == ShapeObject {
		candidates = slices.Sorted(maps.Keys(analyze.PropertyPaths(r.provider, m.Source, 1)))
	}

	suggestions := match.Suggest(tp.name, candidates, r.config.MaxSuggestions)
	m.Unmapped = append(m.Unmapped, UnmappedProperty{Property: tp.name, Reason: reason, Suggestions: suggestions})

	if r.config.Strict && tp.required() {
		m.Diagnostics.AddError(code, reason, m.Pair(), tp.name)
		return
	}

	m.Diagnostics.AddWarning(code, reason, m.Pair(), tp.name, suggestions...)
}

// writer picks the write accessor of a target property: hydrate hook,
// setter, adder/remover, then the field itself.
func (r *Resolver) writer(owner *analyze.TypeDescriptor, f analyze.FieldDescriptor) access.Writer {
	if r.hooks != nil {
		if fn, ok := r.hooks.Hydrator(owner, f.Name); ok {
			return access.NewHydrate(f.Name, fn)
		}
	}

	switch {
	case f.Setter != "":
		return access.NewSetter(owner, f.Setter)
	case f.Adder != "":
		return access.NewAdderRemover(owner, f.Adder, f.Remover, r.reader(owner, f))
	case f.HasField() && (f.Exported || r.config.AllowUnexported):
		return access.NewField(owner, f)
	default:
		return nil
	}
}

// reader picks the read accessor of a source property.
func (r *Resolver) reader(owner *analyze.TypeDescriptor, f analyze.FieldDescriptor) access.Reader {
	switch {
	case f.HasField() && f.Exported:
		return access.NewField(owner, f)
	case f.Getter != "":
		return access.NewGetter(owner, f.Getter)
	case f.HasField() && r.config.AllowUnexported:
		return access.NewField(owner, f)
	default:
		return nil
	}
}

// sourceProperty is a resolved source path.
type sourceProperty struct {
	read        access.Reader
	types       []*analyze.TypeDescriptor
	groups      []string
	checkExists bool
}

func (r *Resolver) source(src *analyze.TypeDescriptor, property string, path []string, overridden bool) (sourceProperty, bool) {
	if r.hooks != nil && !overridden {
		if fn, ok := r.hooks.Extractor(src, property); ok {
			return sourceProperty{
				read:  access.NewExtract(property, fn),
				types: []*analyze.TypeDescriptor{analyze.Mixed()},
			}, true
		}
	}

	return r.sourceProperty(src, path)
}

func (r *Resolver) sourceProperty(src *analyze.TypeDescriptor, path []string) (sourceProperty, bool) {
	var (
		sp      sourceProperty
		readers = make([]access.Reader, 0, len(path))
		current = src
	)

	for i, name := range path {
		base := current.Base()

		switch {
		case base.IsGenericMap():
			readers = append(readers, access.NewKey(name))
			current = base.ValueType
			sp.types = []*analyze.TypeDescriptor{base.ValueType}
			sp.groups = nil
			sp.checkExists = true
		case base.IsMixed() && i > 0:
			readers = append(readers, access.NewKey(name))
			current = analyze.Mixed()
			sp.types = []*analyze.TypeDescriptor{current}
			sp.groups = nil
			sp.checkExists = true
		case base.IsObject():
			f, ok := r.field(base, name)
			if !ok {
				return sp, false
			}

			reader := r.reader(base, f)
			if reader == nil {
				return sp, false
			}

			readers = append(readers, reader)
			current = f.Type
			sp.types = r.provider.DeclaredTypes(base, f)
			sp.groups = f.Tag.Groups
		default:
			return sp, false
		}
	}

	if len(readers) == 0 || len(sp.types) == 0 {
		return sp, false
	}

	if len(readers) == 1 {
		sp.read = readers[0]
	} else {
		sp.read = access.NewPath(path, readers)
	}

	return sp, true
}

// field finds a readable source property by name. Properties ignored by
// their tag are not exposed.
func (r *Resolver) field(owner *analyze.TypeDescriptor, name string) (analyze.FieldDescriptor, bool) {
	for _, f := range r.provider.ListFields(owner) {
		if f.Name == name && !f.Tag.Ignore {
			return f, true
		}
	}

	return analyze.FieldDescriptor{}, false
}

// resolveKeyed maps every readable source property to a key of the target.
func (r *Resolver) resolveKeyed(m *ResolvedMapping) error {
	valueType := analyze.Mixed()
	if m.TargetShape == ShapeMap {
		valueType = m.Target.ValueType
	}

	targets := []*analyze.TypeDescriptor{valueType}

	for _, f := range r.provider.ListFields(m.Source) {
		if f.Tag.Ignore {
			continue
		}

		read := r.reader(m.Source, f)
		if read == nil {
			continue
		}

		types := r.provider.DeclaredTypes(m.Source, f)

		t, ok := r.transformers.Resolve(types, targets, transform.Meta{Property: f.Name, DateFormat: f.Tag.DateFormat})
		if !ok {
			reason := fmt.Sprintf("no transformer from %s to %s", typeNames(types), valueType)
			m.Unmapped = append(m.Unmapped, UnmappedProperty{Property: f.Name, Reason: reason})
			m.Diagnostics.AddWarning(diagnostic.CodeNoTransformer, reason, m.Pair(), f.Name)

			continue
		}

		m.Properties = append(m.Properties, PropertyMapping{
			Property:     f.Name,
			SourcePath:   []string{f.Name},
			SourceType:   types[0],
			TargetType:   valueType,
			Read:         read,
			Write:        access.NewKey(f.Name),
			Transformer:  t,
			SourceGroups: f.Tag.Groups,
			MaxDepth:     f.Tag.MaxDepth,
			Origin:       MappingSourceName,
		})
	}

	return nil
}

func configError(m *ResolvedMapping, reason string, cause error) error {
	return &diagnostic.ConfigurationError{
		Source: m.Source.String(),
		Target: m.Target.String(),
		Reason: reason,
		Cause:  cause,
	}
}

func typeNames(types []*analyze.TypeDescriptor) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}

	return strings.Join(names, "|")
}
