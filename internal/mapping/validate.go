package mapping

import (
	"fmt"

	"mapper-generator/internal/diagnostic"
)

// Validate checks a mapping file structurally. Type names are checked later,
// against the types known to the registry or the loaded packages.
func Validate(mf *MappingFile) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if mf == nil {
		res.AddError("mapping_is_nil", "mapping file is nil", "", "")
		return res
	}

	if mf.Version != "1" {
		res.AddError("unsupported_version", fmt.Sprintf("unsupported mapping version %q", mf.Version), "", "")
	}

	pairs := make(map[string]bool)

	for i := range mf.TypeMappings {
		tm := &mf.TypeMappings[i]
		pair := tm.Source + "->" + tm.Target

		if tm.Source == "" || tm.Target == "" {
			res.AddError("missing_type", "mapping needs both source and target", pair, "")
			continue
		}

		if pairs[pair] {
			res.AddError("duplicate_mapping", "type pair declared twice", pair, "")
		}

		pairs[pair] = true

		validateTypeMapping(tm, pair, res)
	}

	targets := make(map[string]bool)

	for _, d := range mf.Discriminators {
		switch {
		case d.Target == "":
			res.AddError("missing_type", "discriminator needs a target", "", d.Property)
		case d.Property == "":
			res.AddError("missing_property", "discriminator needs a property", d.Target, "")
		case len(d.Types) == 0:
			res.AddError("empty_discriminator", "discriminator maps no values", d.Target, d.Property)
		case targets[d.Target]:
			res.AddError("duplicate_discriminator", "discriminator declared twice", d.Target, d.Property)
		}

		targets[d.Target] = true

		for value, typeName := range d.Types {
			if typeName == "" {
				res.AddError("missing_type", fmt.Sprintf("value %q maps to no type", value), d.Target, d.Property)
			}
		}
	}

	return res
}

func validateTypeMapping(tm *TypeMapping, pair string, res *diagnostic.Diagnostics) {
	seen := make(map[string]bool)

	for _, fm := range tm.Fields {
		if fm.Target == "" {
			res.AddError("missing_property", "field override needs a target property", pair, "")
			continue
		}

		if seen[fm.Target] {
			res.AddError("duplicate_property", "property configured twice in fields", pair, fm.Target)
		}

		seen[fm.Target] = true

		if fm.MaxDepth < 0 {
			res.AddError("invalid_max_depth", fmt.Sprintf("maxDepth %d is negative", fm.MaxDepth), pair, fm.Target)
		}

		if fm.Ignore && fm.Source != "" {
			res.AddWarning("ignored_source", "source is unused on an ignored property", pair, fm.Target)
		}

		if fm.Source != "" {
			if _, err := ParsePath(fm.Source); err != nil {
				res.AddError("invalid_path", err.Error(), pair, fm.Target)
			}
		}
	}

	for source, target := range tm.OneToOne {
		if _, err := ParsePath(source); err != nil {
			res.AddError("invalid_path", err.Error(), pair, target)
		}

		if target == "" {
			res.AddError("missing_property", fmt.Sprintf("rename of %q has no target", source), pair, "")
		}
	}

	for _, name := range tm.Ignore {
		if seen[name] {
			res.AddInfo("shadowed_ignore", "fields entry takes priority over ignore", pair, name)
		}
	}
}
