package source_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"batchren/internal/source"
)

func TestFromPatternDerivesDepthFromSeparators(t *testing.T) {
	sep := string(os.PathSeparator)
	tests := []struct {
		pattern string
		want    int
	}{
		{pattern: `(\w+)\.txt`, want: 1},
		{pattern: `(\w+)` + sep + `(\w+)\.txt`, want: 2},
		{pattern: `a` + sep + `b` + sep + `(.*)`, want: 3},
	}
	for _, tt := range tests {
		src, err := source.FromPattern(tt.pattern, 0, 0)
		if err != nil {
			t.Fatalf("FromPattern(%q): %v", tt.pattern, err)
		}
		if src.Kind != source.KindPattern {
			t.Fatalf("unexpected kind %v", src.Kind)
		}
		if src.Depth != tt.want {
			t.Fatalf("FromPattern(%q) depth = %d, want %d", tt.pattern, src.Depth, tt.want)
		}
		if src.MaxDepth != 0 {
			t.Fatalf("expected unbounded max depth, got %d", src.MaxDepth)
		}
	}
}

func TestFromPatternExplicitDepth(t *testing.T) {
	src, err := source.FromPattern(`(.*)\.txt`, 3, 5)
	if err != nil {
		t.Fatalf("FromPattern: %v", err)
	}
	if src.Depth != 3 || src.MaxDepth != 5 {
		t.Fatalf("unexpected depth bounds %d..%d", src.Depth, src.MaxDepth)
	}
}

func TestFromPatternRejectsInvalidPattern(t *testing.T) {
	_, err := source.FromPattern(`(unclosed`, 0, 0)
	var patternErr *source.PatternError
	if !errors.As(err, &patternErr) {
		t.Fatalf("expected PatternError, got %v", err)
	}
	if patternErr.Pattern != "(unclosed" {
		t.Fatalf("unexpected pattern in error: %q", patternErr.Pattern)
	}
}

func TestFromSortIsCaseInsensitive(t *testing.T) {
	for _, token := range []string{"ASC", "asc", "Asc"} {
		src, err := source.FromSort(token)
		if err != nil {
			t.Fatalf("FromSort(%q): %v", token, err)
		}
		if src.Kind != source.KindSort || src.Order != source.Ascending {
			t.Fatalf("FromSort(%q) = %+v", token, src)
		}
	}
	src, err := source.FromSort("DeSc")
	if err != nil {
		t.Fatalf("FromSort(DeSc): %v", err)
	}
	if src.Order != source.Descending {
		t.Fatalf("expected descending order, got %v", src.Order)
	}
}

func TestFromSortEchoesInvalidToken(t *testing.T) {
	for _, token := range []string{"ascending", "", " asc", "Zyx"} {
		_, err := source.FromSort(token)
		var orderErr *source.SortOrderError
		if !errors.As(err, &orderErr) {
			t.Fatalf("FromSort(%q): expected SortOrderError, got %v", token, err)
		}
		if orderErr.Token != token {
			t.Fatalf("expected token %q, got %q", token, orderErr.Token)
		}
		if !strings.Contains(err.Error(), `"`+token+`"`) {
			t.Fatalf("error message should echo token: %q", err.Error())
		}
	}
}

func TestFromMappingPreservesFileOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	contents := `{
  "zeta.txt": "one.txt",
  "alpha.txt": "two.txt",
  "mid/dle.txt": "three.txt"
}`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write mapping: %v", err)
	}

	src, err := source.FromMapping(path)
	if err != nil {
		t.Fatalf("FromMapping: %v", err)
	}
	want := []source.Entry{
		{Key: "zeta.txt", Value: "one.txt"},
		{Key: "alpha.txt", Value: "two.txt"},
		{Key: "mid/dle.txt", Value: "three.txt"},
	}
	if src.Kind != source.KindMapping {
		t.Fatalf("unexpected kind %v", src.Kind)
	}
	if !reflect.DeepEqual(src.Pairs, want) {
		t.Fatalf("unexpected pairs:\n got %+v\nwant %+v", src.Pairs, want)
	}
}

func TestFromMappingYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.yaml")
	contents := "b.txt: old-b.txt\n\"01.txt\": \"00.txt\"\na.txt: old-a.txt\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write mapping: %v", err)
	}

	src, err := source.FromMapping(path)
	if err != nil {
		t.Fatalf("FromMapping: %v", err)
	}
	want := []source.Entry{
		{Key: "b.txt", Value: "old-b.txt"},
		{Key: "01.txt", Value: "00.txt"},
		{Key: "a.txt", Value: "old-a.txt"},
	}
	if !reflect.DeepEqual(src.Pairs, want) {
		t.Fatalf("unexpected pairs:\n got %+v\nwant %+v", src.Pairs, want)
	}
}

func TestFromMappingErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := source.FromMapping(filepath.Join(dir, "missing.json"))
	var ioErr *source.MappingIOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected MappingIOError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped not-exist error, got %v", err)
	}

	cases := map[string]string{
		"array.json":     `["a", "b"]`,
		"number.json":    `{"a.txt": 1}`,
		"nested.json":    `{"a.txt": {"b": "c"}}`,
		"duplicate.json": `{"a.txt": "x", "a.txt": "y"}`,
		"trailing.json":  `{"a.txt": "x"} {}`,
		"truncated.json": `{"a.txt": "x"`,
		"empty.json":     ``,
		"list.yaml":      "- a\n- b\n",
		"int.yml":        "a.txt: 12\n",
		"nested.yaml":    "a.txt:\n  b: c\n",
		"latin1.json":    "{\"a\xe9\": \"b\"}",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		_, err := source.FromMapping(path)
		var parseErr *source.MappingParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("%s: expected MappingParseError, got %v", name, err)
		}
	}
}

func TestFromPairsCopiesEntries(t *testing.T) {
	entries := []source.Entry{{Key: "new", Value: "old"}}
	src := source.FromPairs(entries)
	entries[0].Key = "mutated"
	if src.Pairs[0].Key != "new" {
		t.Fatalf("source should not alias caller slice: %+v", src.Pairs)
	}
}
