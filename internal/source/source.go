package source

import (
	"os"
	"regexp"
	"strings"
)

// Kind identifies which strategy a Source uses.
type Kind int

const (
	KindPattern Kind = iota + 1
	KindMapping
	KindSort
)

func (k Kind) String() string {
	switch k {
	case KindPattern:
		return "pattern"
	case KindMapping:
		return "mapping"
	case KindSort:
		return "sort"
	default:
		return "unknown"
	}
}

// Order is the direction of a Sort source.
type Order int

const (
	Ascending Order = iota
	Descending
)

func (o Order) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

// Entry is one line of a mapping: Key is the new name, Value the existing one.
type Entry struct {
	Key   string
	Value string
}

// Source is a resolved input selection strategy. Only the fields for Kind are set.
type Source struct {
	Kind Kind

	// Pattern
	Matcher  *regexp.Regexp
	Depth    int
	MaxDepth int // 0 means unbounded

	// Mapping
	Pairs []Entry

	// Sort
	Order Order
}

// FromPattern compiles text and derives the minimum search depth from the
// number of path separators it contains. depth <= 0 requests the derived
// value; maxDepth <= 0 leaves the upper bound open.
func FromPattern(text string, depth, maxDepth int) (*Source, error) {
	matcher, err := regexp.Compile(text)
	if err != nil {
		return nil, &PatternError{Pattern: text, Err: err}
	}
	if depth <= 0 {
		depth = strings.Count(text, string(os.PathSeparator)) + 1
	}
	if maxDepth < 0 {
		maxDepth = 0
	}
	return &Source{
		Kind:     KindPattern,
		Matcher:  matcher,
		Depth:    depth,
		MaxDepth: maxDepth,
	}, nil
}

// FromSort parses an order token case-insensitively.
func FromSort(token string) (*Source, error) {
	var order Order
	switch strings.ToLower(token) {
	case "asc":
		order = Ascending
	case "desc":
		order = Descending
	default:
		return nil, &SortOrderError{Token: token}
	}
	return &Source{Kind: KindSort, Order: order}, nil
}

// FromPairs builds a Mapping source from entries that are already in memory.
func FromPairs(entries []Entry) *Source {
	return &Source{Kind: KindMapping, Pairs: append([]Entry(nil), entries...)}
}
