package common

import (
	"path"
	"reflect"
)

// UnknownStr is the String() fallback for enum values outside their range.
const UnknownStr = "unknown"

// PkgAlias returns the package alias (last element of path) for a given package path.
// Returns empty string if pkgPath is empty.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	return path.Base(pkgPath)
}

// TypeName returns "alias.Name" for named types and the reflect notation otherwise.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}

	if t.Name() != "" && t.PkgPath() != "" {
		return PkgAlias(t.PkgPath()) + "." + t.Name()
	}

	return t.String()
}
