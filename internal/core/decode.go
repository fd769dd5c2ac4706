package core

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML decodes a group mapping. Scalars must be YAML strings:
// unquoted numbers or booleans in jobs, labels or targets are rejected
// rather than converted.
func (g *Group) UnmarshalYAML(node *yaml.Node) error {
	node = resolve(node)
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: group must be a mapping", node.Line)
	}

	var out Group
	seen := make(map[string]bool, 3)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := resolve(node.Content[i]), node.Content[i+1]
		if seen[key.Value] {
			return fmt.Errorf("line %d: field %s already set", key.Line, key.Value)
		}
		seen[key.Value] = true

		var err error
		switch key.Value {
		case "jobs":
			out.Jobs, err = decodeStrings(key.Value, value)
		case "labels":
			out.Labels, err = decodeLabels(value)
		case "targets":
			out.Targets, err = decodeStrings(key.Value, value)
		default:
			err = fmt.Errorf("line %d: field %s not found in type core.Group", key.Line, key.Value)
		}
		if err != nil {
			return err
		}
	}

	*g = out
	return nil
}

func decodeStrings(field string, node *yaml.Node) ([]string, error) {
	node = resolve(node)
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: %s must be a list of strings", node.Line, field)
	}

	out := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		s, err := decodeString(field, item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeLabels(node *yaml.Node) (map[string]string, error) {
	node = resolve(node)
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: labels must be a map of strings", node.Line)
	}

	out := make(map[string]string, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, err := decodeString("labels", node.Content[i])
		if err != nil {
			return nil, err
		}
		v, err := decodeString("labels."+k, node.Content[i+1])
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func decodeString(field string, node *yaml.Node) (string, error) {
	node = resolve(node)
	if node.Kind != yaml.ScalarNode || node.ShortTag() != "!!str" {
		return "", fmt.Errorf("line %d: %s: expected a string, got %s", node.Line, field, describe(node))
	}
	return node.Value, nil
}

func resolve(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}

func describe(node *yaml.Node) string {
	switch node.Kind {
	case yaml.MappingNode:
		return "a map"
	case yaml.SequenceNode:
		return "a list"
	default:
		return fmt.Sprintf("%s %q", node.ShortTag(), node.Value)
	}
}
