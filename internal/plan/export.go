package plan

import (
	"strings"

	"mapper-generator/internal/mapping"
)

// Export renders resolved mappings as a mapping configuration skeleton.
// Configured overrides are kept, unmapped properties with a suggestion are
// bound to the best one and the rest are listed as ignored, so that the
// file resolves without warnings once reviewed.
func Export(mappings ...*ResolvedMapping) *mapping.MappingFile {
	mf := &mapping.MappingFile{Version: "1"}

	for _, m := range mappings {
		if m == nil {
			continue
		}

		if d := m.Discriminator; d != nil {
			types := make(map[string]string, len(d.Targets))
			for value, td := range d.Targets {
				types[value] = td.Name
			}

			mf.Discriminators = append(mf.Discriminators, mapping.Discriminator{
				Target:   m.Target.Name,
				Property: d.Property,
				Types:    types,
			})

			continue
		}

		if m.TargetShape != ShapeObject {
			continue
		}

		tm := exportTypeMapping(m)
		if len(tm.OneToOne) == 0 && len(tm.Fields) == 0 && len(tm.Ignore) == 0 {
			continue
		}

		mf.TypeMappings = append(mf.TypeMappings, tm)
	}

	return mf
}

func exportTypeMapping(m *ResolvedMapping) mapping.TypeMapping {
	tm := mapping.TypeMapping{Source: m.Source.Name, Target: m.Target.Name}

	for _, p := range m.Properties {
		switch {
		case p.Ignored && p.Origin == MappingSourceYAMLIgnore:
			tm.Ignore = append(tm.Ignore, p.Property)
		case p.Origin == MappingSourceYAML121:
			if tm.OneToOne == nil {
				tm.OneToOne = make(map[string]string)
			}

			tm.OneToOne[strings.Join(p.SourcePath, ".")] = p.Property
		case p.Origin == MappingSourceYAMLFields:
			fm := mapping.FieldMapping{
				Target:   p.Property,
				Ignore:   p.Ignored,
				Groups:   p.TargetGroups,
				MaxDepth: p.MaxDepth,
			}

			if source := strings.Join(p.SourcePath, "."); source != p.Property {
				fm.Source = source
			}

			tm.Fields = append(tm.Fields, fm)
		}
	}

	for _, u := range m.Unmapped {
		if len(u.Suggestions) > 0 {
			if _, err := mapping.ParsePath(u.Suggestions[0]); err == nil {
				tm.Fields = append(tm.Fields, mapping.FieldMapping{Target: u.Property, Source: u.Suggestions[0]})
				continue
			}
		}

		tm.Ignore = append(tm.Ignore, u.Property)
	}

	return tm
}
