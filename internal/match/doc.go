// Package match ranks property names by similarity. Properties are matched
// by exact name only; similarity is used to suggest what a caller probably
// meant when a target property finds no source.
package match
