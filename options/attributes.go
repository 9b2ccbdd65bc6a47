package options

import (
	"slices"
	"strings"
)

// Attributes is a tree of property names built from dotted paths.
// A nil subtree means the whole property, including everything below it.
type Attributes map[string]Attributes

// ParseAttributes builds a tree from paths like "name" or "address.city".
func ParseAttributes(paths ...string) Attributes {
	if len(paths) == 0 {
		return nil
	}

	root := Attributes{}

	for _, path := range paths {
		node := root
		parts := strings.Split(path, ".")

		for i, part := range parts {
			if part == "" {
				break
			}

			child, exists := node[part]
			if i == len(parts)-1 {
				// the shorter path wins: "address" covers "address.city"
				node[part] = nil
				break
			}

			if exists && child == nil {
				break
			}

			if child == nil {
				child = Attributes{}
				node[part] = child
			}

			node = child
		}
	}

	return root
}

// Has reports whether property is present at this level.
func (a Attributes) Has(property string) bool {
	_, ok := a[property]
	return ok
}

// IsLeaf reports whether property is present and covers its whole subtree.
func (a Attributes) IsLeaf(property string) bool {
	child, ok := a[property]
	return ok && child == nil
}

// Child returns the subtree of property.
func (a Attributes) Child(property string) Attributes {
	return a[property]
}

// Paths returns the dotted paths of the tree in sorted order.
func (a Attributes) Paths() []string {
	var paths []string

	for name, child := range a {
		if child == nil {
			paths = append(paths, name)
			continue
		}

		for _, sub := range child.Paths() {
			paths = append(paths, name+"."+sub)
		}
	}

	slices.Sort(paths)

	return paths
}
