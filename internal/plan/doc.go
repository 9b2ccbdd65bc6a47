// Package plan resolves, for a (source, target) type pair, which source
// property feeds every target property and how its value is transformed.
//
// Resolution pipeline:
//  1. Classify both shapes: object, string keyed map, any, polymorphic, value
//  2. Load per pair overrides from the mapping configuration
//  3. For each target property:
//     - Skip ignored properties (tag "-", YAML ignore)
//     - Pick the write accessor: constructor parameter, setter, adder/remover, field
//     - Find the source property by exact name or override path
//     - Resolve the transformer from the declared source and target types
//  4. Emit diagnostics (unmapped properties with suggestions, unknown overrides)
//
// The result is a ResolvedMapping consumed by the generator.
package plan
