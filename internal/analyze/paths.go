package analyze

// PropertyPaths lists the property paths reachable from root, keyed by the
// dotted path without the root name. Elements of object collections appear
// under "name[]". Nesting stops after maxDepth levels, which also bounds
// recursive types.
func PropertyPaths(provider Provider, root *TypeDescriptor, maxDepth int) map[string]FieldDescriptor {
	paths := make(map[string]FieldDescriptor)
	if root == nil || !root.Base().IsObject() {
		return paths
	}

	var walk func(t *TypeDescriptor, prefix string, depth int)
	walk = func(t *TypeDescriptor, prefix string, depth int) {
		for _, field := range provider.ListFields(t) {
			path := prefix + field.Name
			paths[path] = field

			if depth == maxDepth {
				continue
			}

			if elem := objectOf(field.Type); elem != nil {
				if field.Type.Base().Kind == KindArray {
					path += "[]"
				}

				walk(elem, path+".", depth+1)
			}
		}
	}

	walk(root.Base(), "", 0)

	return paths
}

// objectOf returns the object behind t, or behind the elements of a
// collection t, or nil.
func objectOf(t *TypeDescriptor) *TypeDescriptor {
	base := t.Base()

	switch {
	case base.IsObject():
		return base
	case base.Kind == KindArray && base.ValueType != nil && base.ValueType.Base().IsObject():
		return base.ValueType.Base()
	default:
		return nil
	}
}
