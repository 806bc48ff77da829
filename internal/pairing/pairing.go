// Package pairing turns a source into the ordered stream of renames a batch
// performs. A Context is consumed once: after the last pair has been handed out
// it stays exhausted.
package pairing

import (
	"fmt"
	"iter"

	"batchren/internal/collect"
	"batchren/internal/fsys"
	"batchren/internal/source"
	"batchren/internal/template"
)

// Pair is one planned rename.
type Pair struct {
	Input  string
	Output string
}

// Context yields the pairs of a batch in order.
type Context struct {
	kind       source.Kind
	candidates []collect.Candidate
	entries    []source.Entry
	formatter  *template.Formatter
	extension  bool
	pos        int
}

// Scope describes what an output template may reference for src.
func Scope(src *source.Source) template.Scope {
	if src.Kind == source.KindSort {
		return template.Scope{Indexed: true}
	}
	if src.Kind == source.KindPattern && src.Matcher != nil {
		return template.Scope{Groups: src.Matcher.NumSubexp() + 1, Names: src.Matcher.SubexpNames()}
	}
	return template.Scope{}
}

// New collects the candidates of src from root. formatter may be nil to use
// the default template for the source. extension appends the input extension
// to rendered names that lack one. Mapping sources bypass both: their entries
// are renamed literally.
func New(src *source.Source, root *fsys.FS, formatter *template.Formatter, extension bool) (*Context, error) {
	if src == nil {
		return nil, fmt.Errorf("pairing: nil source")
	}
	ctx := &Context{kind: src.Kind, extension: extension}
	if src.Kind == source.KindMapping {
		ctx.entries = src.Pairs
		return ctx, nil
	}
	if formatter == nil {
		formatter = template.Default(Scope(src))
	}
	candidates, err := collect.Collect(root, src)
	if err != nil {
		return nil, err
	}
	ctx.candidates = candidates
	ctx.formatter = formatter
	return ctx, nil
}

// Len returns the number of pairs the context held when it was created.
func (c *Context) Len() int {
	if c.kind == source.KindMapping {
		return len(c.entries)
	}
	return len(c.candidates)
}

// Next returns the following pair, or false once the context is exhausted.
func (c *Context) Next() (Pair, bool) {
	if c.pos >= c.Len() {
		return Pair{}, false
	}
	i := c.pos
	c.pos++
	if c.kind == source.KindMapping {
		entry := c.entries[i]
		return Pair{Input: entry.Value, Output: entry.Key}, true
	}
	cand := c.candidates[i]
	out := c.formatter.Render(template.Value{Groups: cand.Groups, Index: cand.Index})
	if c.extension {
		out = template.AppendExtension(out, cand.Path)
	}
	return Pair{Input: cand.Path, Output: out}, true
}

// All drains the context as a sequence.
func (c *Context) All() iter.Seq[Pair] {
	return func(yield func(Pair) bool) {
		for {
			pair, ok := c.Next()
			if !ok || !yield(pair) {
				return
			}
		}
	}
}
