package mapping

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var errEmptyPath = errors.New("empty path")

// FieldPath is a dotted chain of source property names, such as address.city.
type FieldPath []string

// ParsePath splits path at dots and checks every property name.
func ParsePath(path string) (FieldPath, error) {
	if path == "" {
		return nil, errEmptyPath
	}

	p := FieldPath(strings.Split(path, "."))

	for _, name := range p {
		switch {
		case name == "":
			return nil, fmt.Errorf("invalid path %q: empty segment", path)
		case strings.HasSuffix(name, "[]"):
			return nil, fmt.Errorf("invalid path %q: collection element paths are not supported", path)
		case !isPropertyName(name):
			return nil, fmt.Errorf("invalid path %q: invalid property name %q", path, name)
		}
	}

	return p, nil
}

func (p FieldPath) String() string  { return strings.Join(p, ".") }
func (p FieldPath) IsEmpty() bool   { return len(p) == 0 }
func (p FieldPath) IsSimple() bool  { return len(p) == 1 }
func (p FieldPath) Names() []string { return append([]string(nil), p...) }

// Root returns the first property name, or "" for an empty path.
func (p FieldPath) Root() string {
	if p.IsEmpty() {
		return ""
	}

	return p[0]
}

// isPropertyName accepts identifiers and the '-' of serialized names.
func isPropertyName(name string) bool {
	for i, r := range name {
		if unicode.IsLetter(r) || r == '_' {
			continue
		}

		if i == 0 || !(unicode.IsDigit(r) || r == '-') {
			return false
		}
	}

	return true
}
