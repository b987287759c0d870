package format

import (
	"github.com/matzehuels/masktower/pkg/errors"
)

// Entry is one named rule of a LayerMap.
type Entry struct {
	Name string
	Rule LayerRule
}

// LayerMap is an ordered mapping from symbolic layer names ("mesa",
// "top electrode") to rules. It is a value: With and Map return new maps
// and leave the receiver untouched.
type LayerMap struct {
	names []string
	rules map[string]LayerRule
}

// NewLayerMap builds a map from entries in order. Duplicate or empty names
// are configuration errors.
func NewLayerMap(entries ...Entry) (LayerMap, error) {
	m := LayerMap{rules: make(map[string]LayerRule, len(entries))}
	for _, e := range entries {
		if e.Name == "" {
			return LayerMap{}, errors.New(errors.ErrCodeConfiguration, "layer name cannot be empty")
		}
		if _, ok := m.rules[e.Name]; ok {
			return LayerMap{}, errors.New(errors.ErrCodeConfiguration, "layer %q defined twice", e.Name)
		}
		m.names = append(m.names, e.Name)
		m.rules[e.Name] = e.Rule
	}
	return m, nil
}

// Rule returns the rule for name.
func (m LayerMap) Rule(name string) (LayerRule, error) {
	r, ok := m.rules[name]
	if !ok {
		return LayerRule{}, errors.New(errors.ErrCodeConfiguration, "unknown layer %q", name)
	}
	return r, nil
}

// Has reports whether name is defined.
func (m LayerMap) Has(name string) bool {
	_, ok := m.rules[name]
	return ok
}

// Names returns the layer names in definition order.
func (m LayerMap) Names() []string { return append([]string(nil), m.names...) }

// Len returns the number of layers.
func (m LayerMap) Len() int { return len(m.names) }

// Entries returns the rules in definition order.
func (m LayerMap) Entries() []Entry {
	out := make([]Entry, len(m.names))
	for i, n := range m.names {
		out[i] = Entry{Name: n, Rule: m.rules[n]}
	}
	return out
}

// With returns a copy of m with name set to rule. New names are appended.
func (m LayerMap) With(name string, rule LayerRule) LayerMap {
	out := m.clone()
	if _, ok := out.rules[name]; !ok {
		out.names = append(out.names, name)
	}
	out.rules[name] = rule
	return out
}

// Map returns a copy of m with every rule replaced by fn(name, rule).
func (m LayerMap) Map(fn func(name string, r LayerRule) LayerRule) LayerMap {
	out := m.clone()
	for _, n := range out.names {
		out.rules[n] = fn(n, out.rules[n])
	}
	return out
}

func (m LayerMap) clone() LayerMap {
	out := LayerMap{
		names: append([]string(nil), m.names...),
		rules: make(map[string]LayerRule, len(m.rules)),
	}
	for k, v := range m.rules {
		out.rules[k] = v
	}
	return out
}
