package manifest

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// resolve follows alias nodes to the node they point at.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isMapping(n *yaml.Node) bool {
	n = resolve(n)
	return n != nil && n.Kind == yaml.MappingNode
}

func isSequence(n *yaml.Node) bool {
	n = resolve(n)
	return n != nil && n.Kind == yaml.SequenceNode
}

// isNull reports whether n is an explicit or implicit null scalar.
func isNull(n *yaml.Node) bool {
	n = resolve(n)
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

// scalarValue returns the value of a scalar node.
func scalarValue(n *yaml.Node) (string, bool) {
	n = resolve(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		return "", false
	}
	return n.Value, true
}

// mappingEntry returns the key and value nodes stored under key.
func mappingEntry(m *yaml.Node, key string) (*yaml.Node, *yaml.Node, bool) {
	m = resolve(m)
	if m == nil || m.Kind != yaml.MappingNode {
		return nil, nil, false
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		k := m.Content[i]
		if k.Kind == yaml.ScalarNode && k.Value == key {
			return k, m.Content[i+1], true
		}
	}
	return nil, nil, false
}

// mappingValue returns the value node stored under key.
func mappingValue(m *yaml.Node, key string) (*yaml.Node, bool) {
	_, v, ok := mappingEntry(m, key)
	return v, ok
}

// lookupPath walks nested mappings and returns the node at path.
// Every segment must exist and every intermediate node must be a mapping.
func lookupPath(root *yaml.Node, path ...string) (*yaml.Node, error) {
	current := resolve(root)
	for i, key := range path {
		if !isMapping(current) {
			return nil, badFormat(".%s is not a mapping", strings.Join(path[:i], "."))
		}
		next, ok := mappingValue(current, key)
		if !ok {
			return nil, badFormat(".%s is missing", strings.Join(path[:i+1], "."))
		}
		current = resolve(next)
	}
	return current, nil
}

// strNode builds a string scalar node.
func strNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// envEntryNode builds a {name, value} mapping node.
func envEntryNode(name, value string) *yaml.Node {
	return &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
		Content: []*yaml.Node{
			strNode("name"), newScalar(name),
			strNode("value"), newScalar(value),
		},
	}
}
