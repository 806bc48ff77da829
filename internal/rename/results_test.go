package rename_test

import (
	"path/filepath"
	"reflect"
	"testing"

	"batchren/internal/rename"
	"batchren/internal/source"
	"batchren/internal/testsupport"
)

func sampleResults() *rename.ResultMap {
	m := rename.NewResultMap()
	m.Set("z.txt", "a.txt")
	m.Set("b.txt", "c.txt")
	m.Set("dir/\"q\".txt", "d.txt")
	return m
}

func TestResultMapJSONKeepsOrder(t *testing.T) {
	data, err := sampleResults().Encode("map.json")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := "{\n  \"z.txt\": \"a.txt\",\n  \"b.txt\": \"c.txt\",\n  \"dir/\\\"q\\\".txt\": \"d.txt\"\n}\n"
	if string(data) != want {
		t.Fatalf("json =\n%s\nwant\n%s", data, want)
	}
}

func TestResultMapEmptyJSON(t *testing.T) {
	data, err := rename.NewResultMap().Encode("map.json")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(data) != "{}\n" {
		t.Fatalf("unexpected json %q", data)
	}
}

func TestResultMapFilesParseBackAsMappings(t *testing.T) {
	dir := t.TempDir()
	want := sampleResults().Entries()
	for _, name := range []string{"out.json", "out.yaml"} {
		path := filepath.Join(dir, name)
		if err := sampleResults().WriteFile(path); err != nil {
			t.Fatalf("WriteFile(%s): %v", name, err)
		}
		src, err := source.FromMapping(path)
		if err != nil {
			t.Fatalf("FromMapping(%s): %v\n%s", name, err, testsupport.ReadFile(t, path))
		}
		if !reflect.DeepEqual(src.Pairs, want) {
			t.Fatalf("%s: pairs = %v, want %v", name, src.Pairs, want)
		}
	}
}

func TestResultMapSetKeepsFirstPosition(t *testing.T) {
	m := rename.NewResultMap()
	m.Set("a", "1")
	m.Set("b", "2")
	m.Set("a", "3")
	want := []source.Entry{{Key: "a", Value: "3"}, {Key: "b", Value: "2"}}
	if got := m.Entries(); !reflect.DeepEqual(got, want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}
}

func TestInvertedReversesAndSwaps(t *testing.T) {
	got := sampleResults().Inverted().Entries()
	want := []source.Entry{
		{Key: "d.txt", Value: "dir/\"q\".txt"},
		{Key: "c.txt", Value: "b.txt"},
		{Key: "a.txt", Value: "z.txt"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("inverted = %v, want %v", got, want)
	}
	if round := rename.ResultMapFrom(got).Inverted().Entries(); !reflect.DeepEqual(round, sampleResults().Entries()) {
		t.Fatalf("double inversion = %v", round)
	}
}
