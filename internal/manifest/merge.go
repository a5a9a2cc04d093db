package manifest

import (
	"github.com/cameronsjo/deckhand/internal/envfile"
	"gopkg.in/yaml.v3"
)

// MergeEnv merges vars into the env list of one container of a Deployment
// manifest and returns the updated manifest.
//
// Variables that already exist in the container are overwritten in place when
// opts.AllowOverwrite is set; the remaining variables are appended in the order
// of vars. The caller's mapping is never modified.
func MergeEnv(raw []byte, vars *envfile.Mapping, opts MergeOptions) (*MergeResult, error) {
	doc, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	container, err := doc.SelectContainer(opts.ContainerName)
	if err != nil {
		return nil, err
	}
	if _, err := container.Env(); err != nil {
		return nil, err
	}

	return doc.mergeEnv(container, vars.Clone(), opts.AllowOverwrite)
}

func (d *Document) mergeEnv(c Container, pending *envfile.Mapping, allowOverwrite bool) (*MergeResult, error) {
	if pending == nil {
		pending = envfile.NewMapping()
	}
	s := newSurgeon(d.raw)
	result := &MergeResult{Container: c.Name}

	// Tree edits run after every byte patch is planned, since planning reads
	// the original scalar values.
	var edits []func()

	envKey, envNode, hasEnv := mappingEntry(c.node, "env")
	if hasEnv && isSequence(envNode) {
		if envNode.Kind == yaml.AliasNode {
			s.fail("env list of container %q is an alias", c.Name)
		}
		for _, item := range resolve(envNode).Content {
			entry := resolve(item)
			name, _ := scalarValue(mustValue(entry, "name"))
			value, ok := pending.Get(name)
			if !ok {
				continue
			}
			if !allowOverwrite {
				return nil, &OverwriteDisabledError{Variable: name}
			}
			if item.Kind == yaml.AliasNode {
				s.fail("env entry %q is an alias", name)
			}
			edits = append(edits, setEnvValue(s, entry, value))
			pending.Delete(name)
			result.Overwritten = append(result.Overwritten, name)
		}
	}

	additions := make([]EnvVar, 0, pending.Len())
	items := make([]*yaml.Node, 0, pending.Len())
	for _, name := range pending.Keys() {
		value, _ := pending.Get(name)
		additions = append(additions, EnvVar{Name: name, Value: value})
		items = append(items, envEntryNode(name, value))
		result.Appended = append(result.Appended, name)
	}

	switch {
	case !hasEnv:
		s.createEnv(c.node, additions, s.sequenceIndent(d.containersEntry()))
		c.node.Content = append(c.node.Content, strNode("env"), blockSeq(items))
	case isNull(envNode) || len(resolve(envNode).Content) == 0:
		s.fillEnv(envKey, envNode, additions, s.sequenceIndent(d.containersEntry()))
		replaceValue(c.node, envKey, blockSeq(items))
	case len(items) > 0:
		seq := resolve(envNode)
		s.appendItems(seq, additions)
		seq.Content = append(seq.Content, items...)
	}
	for _, edit := range edits {
		edit()
	}

	out, preserved, err := d.render(s)
	if err != nil {
		return nil, err
	}
	result.Output = out
	result.Preserved = preserved
	return result, nil
}

// setEnvValue plans the patch that replaces the value of an existing env
// entry, adding the value key when the entry has none. The returned func
// applies the same change to the tree.
func setEnvValue(s *surgeon, entry *yaml.Node, value string) func() {
	valueNode, ok := mappingValue(entry, "value")
	if !ok {
		s.addKey(entry, "value", value)
		return func() {
			entry.Content = append(entry.Content, strNode("value"), newScalar(value))
		}
	}
	if valueNode.Kind != yaml.ScalarNode {
		s.fail("value of env entry at line %d is not a plain scalar", valueNode.Line)
	} else {
		s.replaceScalar(entry, valueNode, value)
	}
	return func() { setScalar(valueNode, value) }
}

// render returns the patched original bytes when they decode to the mutated
// tree, and a full re-encode otherwise.
func (d *Document) render(s *surgeon) ([]byte, bool, error) {
	if out, err := s.apply(); err == nil && sameContent(d.root, out) {
		return out, true, nil
	}
	out, err := d.encode()
	if err != nil {
		return nil, false, err
	}
	return out, false, nil
}

// containersEntry returns the containers key and its list.
func (d *Document) containersEntry() (*yaml.Node, *yaml.Node) {
	spec, err := lookupPath(d.Root(), ContainersPath[:len(ContainersPath)-1]...)
	if err != nil {
		return nil, nil
	}
	key, value, _ := mappingEntry(spec, ContainersPath[len(ContainersPath)-1])
	return key, value
}

func mustValue(m *yaml.Node, key string) *yaml.Node {
	v, _ := mappingValue(m, key)
	return v
}

func replaceValue(m, key, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i] == key {
			m.Content[i+1] = value
			return
		}
	}
}

func blockSeq(items []*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: items}
}
