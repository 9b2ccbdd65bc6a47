package mapping

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// GroupList is written either as a single group name or as a list of names.
type GroupList []string

func (g *GroupList) UnmarshalYAML(node *yaml.Node) error {
	var names []string

	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value != "" {
			names = []string{node.Value}
		}
	case yaml.SequenceNode:
		if err := node.Decode(&names); err != nil {
			return err
		}
	default:
		return fmt.Errorf("line %d: groups must be a name or a list of names", node.Line)
	}

	*g = names

	return nil
}

func (g GroupList) MarshalYAML() (any, error) {
	if len(g) == 1 {
		return g[0], nil
	}

	return []string(g), nil
}
