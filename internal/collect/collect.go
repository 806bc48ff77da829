// Package collect enumerates the input files a source selects.
//
// Pattern sources walk the working directory depth-first with names sorted at
// every level, so the candidate order only depends on what is on disk. Sort
// sources list the regular files directly inside the working directory and
// order them by name. Mapping sources never reach this package.
package collect

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"batchren/internal/fsys"
	"batchren/internal/source"
)

// Candidate is a selected input file. Path is relative to the working directory.
type Candidate struct {
	Path string
	// Groups holds the capture groups of a pattern match, Groups[0] being the
	// whole match. Nil for sort candidates.
	Groups []string
	// Index is the 0-based position of a sort candidate.
	Index int
}

// ErrUnsupportedSource reports a source kind the collector does not enumerate.
var ErrUnsupportedSource = errors.New("source kind has no collector")

// Collect returns the candidates src selects under root.
func Collect(root *fsys.FS, src *source.Source) ([]Candidate, error) {
	switch src.Kind {
	case source.KindPattern:
		return Pattern(root, src)
	case source.KindSort:
		return Sorted(root, src.Order)
	default:
		return nil, fmt.Errorf("collect %s: %w", src.Kind, ErrUnsupportedSource)
	}
}

// Pattern walks root and returns the regular files whose relative path matches
// src.Matcher and whose depth lies within src.Depth and src.MaxDepth. Files
// directly under root have depth 1.
func Pattern(root *fsys.FS, src *source.Source) ([]Candidate, error) {
	if src == nil || src.Matcher == nil {
		return nil, fmt.Errorf("collect pattern: %w", ErrUnsupportedSource)
	}
	base := root.Root()
	var out []Candidate
	err := afero.Walk(root.Afero(), base, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			if path == base {
				return err
			}
			// Unreadable subtrees are skipped rather than failing the whole walk.
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(base, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		depth := Depth(rel)
		if info.IsDir() {
			if src.MaxDepth > 0 && depth >= src.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() || depth < src.Depth {
			return nil
		}
		if src.MaxDepth > 0 && depth > src.MaxDepth {
			return nil
		}
		groups := src.Matcher.FindStringSubmatch(rel)
		if groups == nil {
			return nil
		}
		out = append(out, Candidate{Path: rel, Groups: groups, Index: len(out)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", base, err)
	}
	return out, nil
}

// Sorted lists the regular files directly under root ordered by name.
func Sorted(root *fsys.FS, order source.Order) ([]Candidate, error) {
	entries, err := afero.ReadDir(root.Afero(), root.Root())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", root.Root(), err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Mode().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)
	if order == source.Descending {
		slices.Reverse(names)
	}
	out := make([]Candidate, len(names))
	for i, name := range names {
		out[i] = Candidate{Path: name, Index: i}
	}
	return out, nil
}

// Depth counts the path elements of a path relative to the working directory.
func Depth(rel string) int {
	rel = filepath.Clean(rel)
	if rel == "." || rel == "" {
		return 0
	}
	return strings.Count(rel, string(os.PathSeparator)) + 1
}
