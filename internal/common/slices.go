package common

import "slices"

// Intersects reports whether a and b share at least one element.
func Intersects[S ~[]E, E comparable](a, b S) bool {
	return slices.ContainsFunc(a, func(v E) bool { return slices.Contains(b, v) })
}
