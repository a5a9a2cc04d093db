package envfile

import (
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"
)

// Mapping is an insertion-ordered set of environment variables.
// Overwriting a name keeps the position of its first definition.
type Mapping struct {
	keys   []string
	values map[string]string
}

// NewMapping creates an empty Mapping.
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]string)}
}

// FromPairs builds a Mapping from alternating name, value arguments.
// A trailing name without a value is ignored.
func FromPairs(pairs ...string) *Mapping {
	m := NewMapping()
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i], pairs[i+1])
	}
	return m
}

// Set stores value under name.
func (m *Mapping) Set(name, value string) {
	if _, exists := m.values[name]; !exists {
		m.keys = append(m.keys, name)
	}
	m.values[name] = value
}

// Get returns the value stored under name.
func (m *Mapping) Get(name string) (string, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Has reports whether name is present.
func (m *Mapping) Has(name string) bool {
	_, ok := m.values[name]
	return ok
}

// Delete removes name. Deleting a missing name is a no-op.
func (m *Mapping) Delete(name string) {
	if _, ok := m.values[name]; !ok {
		return
	}
	delete(m.values, name)
	for i, k := range m.keys {
		if k == name {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of variables.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the variable names in insertion order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Clone returns an independent copy.
func (m *Mapping) Clone() *Mapping {
	out := NewMapping()
	if m == nil {
		return out
	}
	for _, k := range m.keys {
		out.Set(k, m.values[k])
	}
	return out
}

// Filter returns a new Mapping holding only names that start with prefix.
func (m *Mapping) Filter(prefix string) *Mapping {
	out := NewMapping()
	for _, k := range m.keys {
		if strings.HasPrefix(k, prefix) {
			out.Set(k, m.values[k])
		}
	}
	return out
}

// Map returns the variables as a plain map.
func (m *Mapping) Map() map[string]string {
	out := make(map[string]string, m.Len())
	if m == nil {
		return out
	}
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// InvalidNames lists names that Kubernetes would reject as env var names.
// Each entry is formatted as "NAME: reason".
func (m *Mapping) InvalidNames() []string {
	var invalid []string
	for _, k := range m.Keys() {
		if errs := validation.IsEnvVarName(k); len(errs) > 0 {
			invalid = append(invalid, k+": "+strings.Join(errs, "; "))
		}
	}
	return invalid
}
