package plan

import (
	"slices"
	"strings"

	"mapper-generator/internal/access"
	"mapper-generator/internal/analyze"
	"mapper-generator/internal/common"
	"mapper-generator/internal/diagnostic"
	"mapper-generator/internal/mapping"
	"mapper-generator/internal/transform"
)

// Shape classifies one side of a type pair.
type Shape int

const (
	// ShapeValue - scalars and collections.
	ShapeValue Shape = iota
	// ShapeObject - structs with declared properties.
	ShapeObject
	// ShapeMap - string keyed maps.
	ShapeMap
	// ShapeMixed - any: no declared shape.
	ShapeMixed
	// ShapePolymorphic - non-empty interfaces.
	ShapePolymorphic
)

// String returns a human-readable shape name.
func (s Shape) String() string {
	switch s {
	case ShapeValue:
		return "value"
	case ShapeObject:
		return "object"
	case ShapeMap:
		return "map"
	case ShapeMixed:
		return "mixed"
	case ShapePolymorphic:
		return "polymorphic"
	default:
		return common.UnknownStr
	}
}

// ShapeOf classifies a type descriptor.
func ShapeOf(d *analyze.TypeDescriptor) Shape {
	switch {
	case d.IsObject():
		return ShapeObject
	case d.Interface:
		return ShapePolymorphic
	case d.IsGenericMap():
		return ShapeMap
	case d.IsMixed():
		return ShapeMixed
	default:
		return ShapeValue
	}
}

// MappingSource indicates where a mapping rule originated.
type MappingSource int

const (
	// MappingSourceYAML121 - from YAML 121 shorthand (highest priority).
	MappingSourceYAML121 MappingSource = iota
	// MappingSourceYAMLFields - from YAML explicit fields section.
	MappingSourceYAMLFields
	// MappingSourceYAMLIgnore - from YAML ignore list.
	MappingSourceYAMLIgnore
	// MappingSourceTag - from the struct tag.
	MappingSourceTag
	// MappingSourceName - matched by property name.
	MappingSourceName
)

// String returns a human-readable source name.
func (s MappingSource) String() string {
	switch s {
	case MappingSourceYAML121:
		return "yaml:121"
	case MappingSourceYAMLFields:
		return "yaml:fields"
	case MappingSourceYAMLIgnore:
		return "yaml:ignore"
	case MappingSourceTag:
		return "tag"
	case MappingSourceName:
		return "name"
	default:
		return common.UnknownStr
	}
}

func originOf(p mapping.MappingPriority) MappingSource {
	switch p {
	case mapping.PriorityOneToOne:
		return MappingSourceYAML121
	case mapping.PriorityFields:
		return MappingSourceYAMLFields
	case mapping.PriorityIgnore:
		return MappingSourceYAMLIgnore
	default:
		return MappingSourceName
	}
}

// PropertyMapping is the fill rule of one target property.
type PropertyMapping struct {
	// Property is the target property name.
	Property string
	// SourcePath is the source property path read.
	SourcePath []string
	SourceType *analyze.TypeDescriptor
	TargetType *analyze.TypeDescriptor

	Read access.Reader
	// Write is nil for constructor-only properties.
	Write access.Writer
	// Argument binds the property to a constructor parameter.
	Argument    *access.Argument
	Transformer transform.Transformer

	SourceGroups []string
	TargetGroups []string
	// MaxDepth is the deepest nesting level the property is mapped at, 0 for any.
	MaxDepth int
	// CheckExists gates the property on the presence of a map key.
	CheckExists bool
	Ignored     bool
	Origin      MappingSource
}

// IsConstructorBound reports properties fed to the constructor.
func (p *PropertyMapping) IsConstructorBound() bool {
	return p.Argument != nil
}

// String returns "Property <- Source.Path".
func (p *PropertyMapping) String() string {
	if p.Ignored {
		return p.Property + " (ignored)"
	}

	return p.Property + " <- " + strings.Join(p.SourcePath, ".")
}

// UnmappedProperty is a target property left to its constructed value.
type UnmappedProperty struct {
	Property    string
	Reason      string
	Suggestions []string
}

// Discriminator selects the concrete target of a polymorphic target type.
type Discriminator struct {
	Property    string
	Read        access.Reader
	CheckExists bool
	// Targets maps discriminator values to concrete target shapes.
	Targets map[string]*analyze.TypeDescriptor
}

// Values returns the known discriminator values in order.
func (d *Discriminator) Values() []string {
	values := make([]string, 0, len(d.Targets))
	for v := range d.Targets {
		values = append(values, v)
	}

	slices.Sort(values)

	return values
}

// ResolvedMapping is the resolved property list of one type pair.
type ResolvedMapping struct {
	Source      *analyze.TypeDescriptor
	Target      *analyze.TypeDescriptor
	SourceShape Shape
	TargetShape Shape

	// Properties holds one entry per target property, in declaration order.
	Properties  []PropertyMapping
	Constructor *analyze.Constructor
	ReadOnly    bool

	// Discriminator is set for polymorphic targets.
	Discriminator *Discriminator
	// Transformer is set for pairs without properties: scalars, collections, any.
	Transformer transform.Transformer

	Unmapped    []UnmappedProperty
	Diagnostics diagnostic.Diagnostics
}

// Pair returns "Source->Target".
func (m *ResolvedMapping) Pair() string {
	return m.Source.String() + "->" + m.Target.String()
}

// Tracked reports whether produced targets take part in circular
// reference detection. Maps and values have no identity worth tracking.
func (m *ResolvedMapping) Tracked() bool {
	return m.TargetShape == ShapeObject
}

// Dependencies lists the nested mappers the pair needs.
func (m *ResolvedMapping) Dependencies() []transform.Dependency {
	var deps []transform.Dependency

	if m.Transformer != nil {
		deps = append(deps, transform.Dependencies(m.Transformer)...)
	}

	for _, p := range m.Properties {
		if p.Transformer != nil {
			deps = append(deps, transform.Dependencies(p.Transformer)...)
		}
	}

	if d := m.Discriminator; d != nil {
		for _, v := range d.Values() {
			deps = append(deps, transform.Dependency{Source: m.Source, Target: d.Targets[v]})
		}
	}

	return deps
}

// Property returns the mapping of a target property.
func (m *ResolvedMapping) Property(name string) (*PropertyMapping, bool) {
	for i := range m.Properties {
		if m.Properties[i].Property == name {
			return &m.Properties[i], true
		}
	}

	return nil, false
}
