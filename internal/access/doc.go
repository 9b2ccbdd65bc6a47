// Package access reads and writes single properties of source and target
// values: struct fields through precomputed offsets, getter and setter
// methods, map keys, adder/remover method pairs, dotted paths and caller
// supplied callbacks.
//
// Struct accessors take a pointer to the struct. Map accessors take the map.
package access
