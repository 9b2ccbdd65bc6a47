// Package transform converts one property value from its source shape to
// its target shape.
//
// A Resolver holds a chain of factories tried in priority order:
//
//  1. Custom     caster functions registered by the caller
//  2. Nullable   strips and restores pointers around an inner transformer
//  3. Unique     one source, several candidate targets, first success wins
//  4. Multiple   several candidate sources, chosen by runtime type
//  5. DateTime   string <-> time.Time with a layout
//  6. Builtin    scalar casts from the primitive table, scalar -> slice wrap
//  7. Collection slices, arrays, iterators and maps, element by element
//  8. Copy       deep copy into any, or between identical types
//  9. Dynamic    resolves by the concrete type behind an any value
//  10. Object    delegates to the nested mapper of the pair
//
// Factories of equal priority are tried in registration order.
package transform
