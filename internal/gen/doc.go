// Package gen turns a resolved mapping into an executable procedure.
//
// Procedures are closure trees built once per type pair:
//   - Value pairs run a single transformer
//   - Keyed targets (maps, any) collect one entry per source property
//   - Polymorphic targets read the discriminator and dispatch to the
//     mapper of the concrete type
//   - Object targets construct the instance, through the constructor when
//     there is one, then write every post-construction property
//
// Nested mappers are linked lazily through transform.Linker on first use.
package gen
