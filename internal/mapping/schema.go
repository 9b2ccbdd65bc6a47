package mapping

import (
	"fmt"

	"mapper-generator/internal/common"
)

// MappingFile represents the root of a YAML mapping definition file.
type MappingFile struct {
	// Version of the mapping schema.
	Version string `yaml:"version,omitempty"`

	// TypeMappings is a list of type pair overrides.
	TypeMappings []TypeMapping `yaml:"mappings,omitempty"`

	// Discriminators select concrete targets for polymorphic target types.
	Discriminators []Discriminator `yaml:"discriminators,omitempty"`
}

// TypeMapping overrides the property resolution of one type pair.
type TypeMapping struct {
	// Source type name, "alias.Name" or "import/path.Name".
	Source string `yaml:"source"`
	// Target type name.
	Target string `yaml:"target"`

	// OneToOne renames: keys are source properties, values target properties.
	OneToOne map[string]string `yaml:"121,omitempty"`

	Fields []FieldMapping `yaml:"fields,omitempty"`

	// Ignore lists target properties that are never written.
	Ignore []string `yaml:"ignore,omitempty"`
}

// FieldMapping configures one target property.
type FieldMapping struct {
	Target string `yaml:"target"`
	// Source is a dotted path read instead of the same-named property.
	Source         string    `yaml:"source,omitempty"`
	Ignore         bool      `yaml:"ignore,omitempty"`
	Groups         GroupList `yaml:"groups,omitempty"`
	MaxDepth       int       `yaml:"maxDepth,omitempty"`
	DateTimeFormat string    `yaml:"dateTimeFormat,omitempty"`
}

// Discriminator maps the values of a source property to concrete target types.
type Discriminator struct {
	// Target is the polymorphic target type, usually an interface.
	Target string `yaml:"target"`
	// Property is read from the source to pick the concrete type.
	Property string `yaml:"property"`
	// Types maps property values to concrete target type names.
	Types map[string]string `yaml:"types"`
}

// MappingPriority represents the priority level of a mapping rule.
type MappingPriority int

const (
	PriorityNone     MappingPriority = iota // not configured
	PriorityIgnore                          // Third: explicitly ignored
	PriorityFields                          // Second: explicit field overrides
	PriorityOneToOne                        // Highest: 121 shorthand renames
)

// String returns a human-readable representation of the priority.
func (p MappingPriority) String() string {
	switch p {
	case PriorityOneToOne:
		return "121"
	case PriorityFields:
		return "fields"
	case PriorityIgnore:
		return "ignore"
	case PriorityNone:
		return "none"
	default:
		return common.UnknownStr
	}
}

// Override is the effective configuration of one target property.
type Override struct {
	Property string
	// Source is empty unless the source property differs from Property.
	Source         FieldPath
	Ignore         bool
	Groups         []string
	MaxDepth       int
	DateTimeFormat string
	Priority       MappingPriority
}

// Overrides merges 121, fields and ignore entries into one override per
// target property, the higher priority entry winning.
func (tm *TypeMapping) Overrides() (map[string]Override, error) {
	result := make(map[string]Override)

	put := func(o Override) {
		if existing, ok := result[o.Property]; ok && existing.Priority > o.Priority {
			return
		}

		result[o.Property] = o
	}

	for _, name := range tm.Ignore {
		put(Override{Property: name, Ignore: true, Priority: PriorityIgnore})
	}

	for _, fm := range tm.Fields {
		o := Override{
			Property:       fm.Target,
			Ignore:         fm.Ignore,
			Groups:         fm.Groups,
			MaxDepth:       fm.MaxDepth,
			DateTimeFormat: fm.DateTimeFormat,
			Priority:       PriorityFields,
		}

		if fm.Source != "" {
			path, err := ParsePath(fm.Source)
			if err != nil {
				return nil, fmt.Errorf("%s->%s property %s: %w", tm.Source, tm.Target, fm.Target, err)
			}

			o.Source = path
		}

		put(o)
	}

	for source, target := range tm.OneToOne {
		path, err := ParsePath(source)
		if err != nil {
			return nil, fmt.Errorf("%s->%s property %s: %w", tm.Source, tm.Target, target, err)
		}

		o := Override{Property: target, Source: path, Priority: PriorityOneToOne}

		// a rename keeps the metadata of a fields entry for the same property
		if existing, ok := result[target]; ok && existing.Priority == PriorityFields {
			o.Groups = existing.Groups
			o.MaxDepth = existing.MaxDepth
			o.DateTimeFormat = existing.DateTimeFormat
		}

		put(o)
	}

	return result, nil
}

// Find returns the mapping declared for the (source, target) type names.
func (mf *MappingFile) Find(source, target string) *TypeMapping {
	for i := range mf.TypeMappings {
		tm := &mf.TypeMappings[i]
		if tm.Source == source && tm.Target == target {
			return tm
		}
	}

	return nil
}

// FindDiscriminator returns the discriminator declared for a target type name.
func (mf *MappingFile) FindDiscriminator(target string) *Discriminator {
	for i := range mf.Discriminators {
		if mf.Discriminators[i].Target == target {
			return &mf.Discriminators[i]
		}
	}

	return nil
}

// Merge appends the declarations of other.
func (mf *MappingFile) Merge(other *MappingFile) {
	if other == nil {
		return
	}

	mf.TypeMappings = append(mf.TypeMappings, other.TypeMappings...)
	mf.Discriminators = append(mf.Discriminators, other.Discriminators...)
}
