// Package analyze describes the shapes being mapped.
//
// A TypeDescriptor is the normalized view of a Go type: scalar kind, named
// class, collection of T, nullable T. Providers turn types into descriptors
// and list the fields and constructor parameters of struct shapes:
//   - ReflectProvider works on reflect.Type and backs the runtime mappers
//   - StaticProvider works on go/types loaded with golang.org/x/tools/go/packages
//     and backs the plan report of the command line tool
//
// Property metadata comes from the `automap` struct tag.
package analyze
