package rename

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"batchren/internal/source"
)

// ResultMap is a destination to input table that keeps insertion order.
type ResultMap struct {
	keys   []string
	values map[string]string
}

// NewResultMap returns an empty map.
func NewResultMap() *ResultMap {
	return &ResultMap{values: make(map[string]string)}
}

// ResultMapFrom builds a map from mapping entries (Key destination, Value input).
func ResultMapFrom(entries []source.Entry) *ResultMap {
	m := NewResultMap()
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

// Set records dst as renamed from src. Re-setting a destination keeps its
// original position.
func (m *ResultMap) Set(dst, src string) {
	if _, ok := m.values[dst]; !ok {
		m.keys = append(m.keys, dst)
	}
	m.values[dst] = src
}

// Get returns the input recorded for dst.
func (m *ResultMap) Get(dst string) (string, bool) {
	src, ok := m.values[dst]
	return src, ok
}

// Len returns the number of destinations.
func (m *ResultMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Entries returns the map as mapping entries in insertion order.
func (m *ResultMap) Entries() []source.Entry {
	if m == nil {
		return nil
	}
	out := make([]source.Entry, len(m.keys))
	for i, k := range m.keys {
		out[i] = source.Entry{Key: k, Value: m.values[k]}
	}
	return out
}

// Inverted swaps destinations and inputs and reverses the order, which is the
// mapping that undoes the recorded renames.
func (m *ResultMap) Inverted() *ResultMap {
	out := NewResultMap()
	if m == nil {
		return out
	}
	for _, k := range slices.Backward(m.keys) {
		out.Set(m.values[k], k)
	}
	return out
}

// MarshalJSON writes the map as a JSON object in insertion order.
func (m *ResultMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML returns a mapping node in insertion order.
func (m *ResultMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range m.keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.values[k]},
		)
	}
	return node, nil
}

// Encode renders the map as YAML when name ends in .yaml or .yml and as
// two-space indented JSON otherwise.
func (m *ResultMap) Encode(name string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return nil, fmt.Errorf("encode result map: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode result map: %w", err)
		}
		return buf.Bytes(), nil
	default:
		raw, err := m.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encode result map: %w", err)
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return nil, fmt.Errorf("encode result map: %w", err)
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	}
}

// WriteFile encodes the map and writes it to path.
func (m *ResultMap) WriteFile(path string) error {
	data, err := m.Encode(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write result map: %w", err)
	}
	return nil
}
