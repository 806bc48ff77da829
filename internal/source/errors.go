package source

import "fmt"

// PatternError reports a pattern that failed to compile.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// SortOrderError reports an unrecognized sort order token. Token is echoed verbatim.
type SortOrderError struct {
	Token string
}

func (e *SortOrderError) Error() string {
	return fmt.Sprintf("invalid sort order %q: expected asc or desc", e.Token)
}

// MappingIOError reports a mapping file that could not be read.
type MappingIOError struct {
	Path string
	Err  error
}

func (e *MappingIOError) Error() string {
	return fmt.Sprintf("read mapping %s: %v", e.Path, e.Err)
}

func (e *MappingIOError) Unwrap() error { return e.Err }

// MappingParseError reports a mapping file that is not a flat object of strings.
type MappingParseError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MappingParseError) Error() string {
	msg := fmt.Sprintf("parse mapping %s: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MappingParseError) Unwrap() error { return e.Err }
