package pairing_test

import (
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"github.com/spf13/afero"

	"batchren/internal/fsys"
	"batchren/internal/pairing"
	"batchren/internal/source"
	"batchren/internal/template"
)

func memTree(t *testing.T, files ...string) *fsys.FS {
	t.Helper()
	root := fsys.Memory("/work")
	for _, name := range files {
		if err := afero.WriteFile(root.Afero(), filepath.Join("/work", name), []byte(name), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return root
}

func TestSortPairsUseIndex(t *testing.T) {
	root := memTree(t, "b.jpg", "a.jpg", "c.png")
	src, err := source.FromSort("desc")
	if err != nil {
		t.Fatalf("FromSort: %v", err)
	}
	f, err := template.Parse("img-{:02}", pairing.Scope(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ctx, err := pairing.New(src, root, f, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := slices.Collect(ctx.All())
	want := []pairing.Pair{
		{Input: "c.png", Output: "img-00.png"},
		{Input: "b.jpg", Output: "img-01.jpg"},
		{Input: "a.jpg", Output: "img-02.jpg"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("pairs = %+v, want %+v", got, want)
	}
}

func TestPatternPairsWithoutExtension(t *testing.T) {
	root := memTree(t, "show-2.mkv", "show-10.mkv")
	src, err := source.FromPattern(`(\w+)-(\d+)\.mkv`, 0, 0)
	if err != nil {
		t.Fatalf("FromPattern: %v", err)
	}
	f, err := template.Parse("{1} E{2:03}", pairing.Scope(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ctx, err := pairing.New(src, root, f, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := slices.Collect(ctx.All())
	want := []pairing.Pair{
		{Input: "show-10.mkv", Output: "show E010"},
		{Input: "show-2.mkv", Output: "show E002"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("pairs = %+v, want %+v", got, want)
	}
}

func TestDefaultTemplateConcatenatesGroups(t *testing.T) {
	root := memTree(t, "ab-12.txt")
	src, err := source.FromPattern(`(\w+)-(\d+)`, 0, 0)
	if err != nil {
		t.Fatalf("FromPattern: %v", err)
	}
	ctx, err := pairing.New(src, root, nil, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pair, ok := ctx.Next()
	if !ok {
		t.Fatal("expected a pair")
	}
	if pair.Output != "ab12.txt" {
		t.Fatalf("unexpected output %q", pair.Output)
	}
}

func TestMappingPairsAreLiteral(t *testing.T) {
	root := memTree(t)
	src := source.FromPairs([]source.Entry{
		{Key: "new-name", Value: "old.txt"},
		{Key: "z.txt", Value: "a.txt"},
	})
	ctx, err := pairing.New(src, root, nil, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := slices.Collect(ctx.All())
	want := []pairing.Pair{
		{Input: "old.txt", Output: "new-name"},
		{Input: "a.txt", Output: "z.txt"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("pairs = %+v, want %+v", got, want)
	}
}

func TestContextIsSingleUse(t *testing.T) {
	root := memTree(t, "a.txt", "b.txt")
	src, err := source.FromSort("asc")
	if err != nil {
		t.Fatalf("FromSort: %v", err)
	}
	ctx, err := pairing.New(src, root, nil, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ctx.Len() != 2 {
		t.Fatalf("Len = %d, want 2", ctx.Len())
	}
	if first := slices.Collect(ctx.All()); len(first) != 2 {
		t.Fatalf("first pass yielded %d pairs", len(first))
	}
	if second := slices.Collect(ctx.All()); len(second) != 0 {
		t.Fatalf("second pass yielded %d pairs", len(second))
	}
	if _, ok := ctx.Next(); ok {
		t.Fatal("Next after exhaustion should report false")
	}
}

func TestCollectionHappensOnce(t *testing.T) {
	root := memTree(t, "a.txt")
	src, err := source.FromSort("asc")
	if err != nil {
		t.Fatalf("FromSort: %v", err)
	}
	ctx, err := pairing.New(src, root, nil, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := afero.WriteFile(root.Afero(), "/work/b.txt", nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := slices.Collect(ctx.All()); len(got) != 1 {
		t.Fatalf("files added after New must not appear, got %+v", got)
	}
}
