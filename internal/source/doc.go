// Package source resolves the three ways a batch can select its inputs.
//
// A Pattern source matches a regular expression against paths relative to
// the working directory. A Mapping source reads a literal table of new name to
// old name from a JSON or YAML file, in file order. A Sort source enumerates
// the working directory in lexicographic order.
//
// Sources are immutable once built. Construction errors are typed so callers
// can tell a bad pattern from an unreadable mapping file.
package source
