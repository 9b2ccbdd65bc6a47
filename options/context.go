package options

import (
	"maps"
	"reflect"
	"slices"

	"mapper-generator/internal/common"
	"mapper-generator/internal/diagnostic"
)

// Context is the per-call state threaded through nested mapping calls.
// It is never mutated after construction: With and Nested return copies.
// Only the circular reference table is shared between a context and the
// contexts derived from it.
type Context struct {
	groups              []string
	allowed             Attributes
	ignored             Attributes
	target              reflect.Value
	constructorArgs     map[reflect.Type]map[string]any
	dateFormat          string
	circularLimit       int
	circularHandler     CircularReferenceHandler
	skipNull            bool
	allowReadOnlyTarget bool
	depth               int
	refs                *References
}

// Option configures a Context.
type Option func(*Context)

// New creates a top-level context with a fresh circular reference table.
func New(opts ...Option) *Context {
	c := &Context{refs: newReferences()}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// With returns a copy of c with opts applied.
func (c *Context) With(opts ...Option) *Context {
	next := c.clone()
	for _, opt := range opts {
		opt(next)
	}

	return next
}

// Nested returns the context for mapping the value of property: depth is
// incremented, attribute filters are narrowed to the property subtree and the
// target to populate is dropped.
func (c *Context) Nested(property string) *Context {
	next := c.clone()
	next.depth++
	next.target = reflect.Value{}

	if next.allowed != nil {
		next.allowed = c.allowed.Child(property)
	}

	next.ignored = c.ignored.Child(property)

	return next
}

func (c *Context) clone() *Context {
	next := *c
	return &next
}

func (c *Context) Depth() int {
	return c.depth
}

func (c *Context) Groups() []string {
	return c.groups
}

// InGroups reports whether a property declaring groups should be mapped.
// Properties without groups are always mapped; others need at least one
// group in common with the context.
func (c *Context) InGroups(groups []string) bool {
	if len(groups) == 0 {
		return true
	}

	return common.Intersects(groups, c.groups)
}

// IsAllowed applies the allowed and ignored attribute filters to property.
func (c *Context) IsAllowed(property string) bool {
	if c.ignored.IsLeaf(property) {
		return false
	}

	return c.allowed == nil || c.allowed.Has(property)
}

func (c *Context) AllowedAttributes() Attributes {
	return c.allowed
}

func (c *Context) DateFormat() string {
	return c.dateFormat
}

func (c *Context) SkipNull() bool {
	return c.skipNull
}

func (c *Context) AllowReadOnlyTargetToPopulate() bool {
	return c.allowReadOnlyTarget
}

// TargetToPopulate returns the instance given through WithTargetToPopulate.
func (c *Context) TargetToPopulate() (reflect.Value, bool) {
	return c.target, c.target.IsValid()
}

// ConstructorArgument returns the override for a constructor parameter of target.
func (c *Context) ConstructorArgument(target reflect.Type, param string) (any, bool) {
	args, ok := c.constructorArgs[target]
	if !ok {
		return nil, false
	}

	v, ok := args[param]

	return v, ok
}

func (c *Context) CircularReferenceLimit() int {
	return c.circularLimit
}

func (c *Context) References() *References {
	return c.refs
}

// Revisit looks up the target already produced for source. found is false
// when source has no identity or has not been seen during this call.
// Once the visit count exceeds the limit, or when source is still being
// constructed, the circular reference handler decides the result.
func (c *Context) Revisit(source reflect.Value, target reflect.Type) (reflect.Value, bool, error) {
	key, ok := c.refs.key(source, target)
	if !ok {
		return reflect.Value{}, false, nil
	}

	ref, ok := c.refs.entries[key]
	if !ok {
		return reflect.Value{}, false, nil
	}

	ref.visits++

	if ref.building || (c.circularLimit > 0 && ref.visits > c.circularLimit) {
		v, err := c.handler()(source, target, c)
		return v, true, err
	}

	return ref.target, true, nil
}

// Building marks source as being constructed for target. A revisit before
// Remember is a cycle that cannot be satisfied.
func (c *Context) Building(source reflect.Value, target reflect.Type) {
	if key, ok := c.refs.key(source, target); ok {
		c.refs.entries[key] = &reference{building: true}
	}
}

// Remember records out as the target produced for source.
func (c *Context) Remember(source reflect.Value, target reflect.Type, out reflect.Value) {
	if key, ok := c.refs.key(source, target); ok {
		if ref, exists := c.refs.entries[key]; exists {
			ref.target = out
			ref.building = false

			return
		}

		c.refs.entries[key] = &reference{target: out}
	}
}

func (c *Context) handler() CircularReferenceHandler {
	if c.circularHandler != nil {
		return c.circularHandler
	}

	return DefaultCircularReferenceHandler
}

// DefaultCircularReferenceHandler fails with a CircularReferenceError.
func DefaultCircularReferenceHandler(source reflect.Value, target reflect.Type, ctx *Context) (reflect.Value, error) {
	return reflect.Value{}, &diagnostic.CircularReferenceError{
		Source: common.TypeName(source.Type()),
		Target: common.TypeName(target),
		Limit:  ctx.circularLimit,
	}
}

func WithGroups(groups ...string) Option {
	return func(c *Context) {
		c.groups = slices.Clone(groups)
	}
}

// WithAllowedAttributes restricts mapping to the given dotted property paths.
func WithAllowedAttributes(paths ...string) Option {
	return func(c *Context) {
		c.allowed = ParseAttributes(paths...)
		if c.allowed == nil {
			c.allowed = Attributes{}
		}
	}
}

// WithIgnoredAttributes excludes the given dotted property paths.
func WithIgnoredAttributes(paths ...string) Option {
	return func(c *Context) {
		c.ignored = ParseAttributes(paths...)
	}
}

// WithTargetToPopulate makes the mapper write into target instead of
// constructing a new instance. target must be a non-nil pointer.
func WithTargetToPopulate(target any) Option {
	return func(c *Context) {
		c.target = reflect.ValueOf(target)
	}
}

// WithConstructorArgument overrides the value of a constructor parameter of
// target. The override wins over the value read from the source.
func WithConstructorArgument(target reflect.Type, param string, value any) Option {
	return func(c *Context) {
		args := maps.Clone(c.constructorArgs)
		if args == nil {
			args = make(map[reflect.Type]map[string]any)
		}

		forType := maps.Clone(args[target])
		if forType == nil {
			forType = make(map[string]any)
		}

		forType[param] = value
		args[target] = forType
		c.constructorArgs = args
	}
}

// WithDateTimeFormat overrides the layout used by date/time transformers.
func WithDateTimeFormat(layout string) Option {
	return func(c *Context) {
		c.dateFormat = layout
	}
}

// WithCircularReferenceLimit sets how many times an already mapped object may
// be revisited before the handler is called. Zero means unlimited.
func WithCircularReferenceLimit(limit int) Option {
	return func(c *Context) {
		c.circularLimit = limit
	}
}

func WithCircularReferenceHandler(handler CircularReferenceHandler) Option {
	return func(c *Context) {
		c.circularHandler = handler
	}
}

// WithSkipNullValues leaves target properties untouched when the source value is nil.
func WithSkipNullValues() Option {
	return func(c *Context) {
		c.skipNull = true
	}
}

func WithAllowReadOnlyTargetToPopulate() Option {
	return func(c *Context) {
		c.allowReadOnlyTarget = true
	}
}
