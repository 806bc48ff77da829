package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// FromMapping reads a flat new-name to old-name table from path. Files ending
// in .yaml or .yml are parsed as YAML, everything else as JSON. Entries keep
// the order they have in the file and keys must be unique.
func FromMapping(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &MappingIOError{Path: path, Err: err}
	}
	entries, err := ParseMapping(path, data)
	if err != nil {
		return nil, err
	}
	return &Source{Kind: KindMapping, Pairs: entries}, nil
}

// ParseMapping decodes mapping data. name selects the format by extension and
// is used in error messages.
func ParseMapping(name string, data []byte) ([]Entry, error) {
	if !utf8.Valid(data) {
		return nil, &MappingParseError{Path: name, Reason: "file is not valid UTF-8"}
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return parseYAMLMapping(name, data)
	default:
		return parseJSONMapping(name, data)
	}
}

func parseJSONMapping(name string, data []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	fail := func(reason string, err error) ([]Entry, error) {
		return nil, &MappingParseError{Path: name, Reason: reason, Err: err}
	}

	tok, err := dec.Token()
	if err != nil {
		return fail("expected an object", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fail("expected an object", nil)
	}

	var entries []Entry
	seen := make(map[string]struct{})
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fail("read key", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fail("expected a string key", nil)
		}
		valueTok, err := dec.Token()
		if err != nil {
			return fail(fmt.Sprintf("read value for %q", key), err)
		}
		value, ok := valueTok.(string)
		if !ok {
			return fail(fmt.Sprintf("value for %q is not a string", key), nil)
		}
		if _, dup := seen[key]; dup {
			return fail(fmt.Sprintf("duplicate key %q", key), nil)
		}
		seen[key] = struct{}{}
		entries = append(entries, Entry{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return fail("unterminated object", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fail("unexpected data after object", nil)
	}
	return entries, nil
}

func parseYAMLMapping(name string, data []byte) ([]Entry, error) {
	fail := func(reason string, err error) ([]Entry, error) {
		return nil, &MappingParseError{Path: name, Reason: reason, Err: err}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fail("invalid yaml", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return fail("expected a mapping", nil)
	}

	entries := make([]Entry, 0, len(root.Content)/2)
	seen := make(map[string]struct{}, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valueNode := root.Content[i], root.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode || keyNode.ShortTag() != "!!str" {
			return fail(fmt.Sprintf("line %d: expected a string key", keyNode.Line), nil)
		}
		key := keyNode.Value
		if valueNode.Kind != yaml.ScalarNode || valueNode.ShortTag() != "!!str" {
			return fail(fmt.Sprintf("line %d: value for %q is not a string", valueNode.Line, key), nil)
		}
		if _, dup := seen[key]; dup {
			return fail(fmt.Sprintf("line %d: duplicate key %q", keyNode.Line, key), nil)
		}
		seen[key] = struct{}{}
		entries = append(entries, Entry{Key: key, Value: valueNode.Value})
	}
	return entries, nil
}
