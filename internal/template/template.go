// Package template renders destination paths from output templates.
//
// A template is literal text with placeholders in braces:
//
//	{}        next positional value (next capture group, or the sort index)
//	{2}       capture group 2 (0 is the whole match)
//	{name}    named capture group
//	{1:upper} case modifier: upper, lower or title
//	{:>04}    padding: [[fill]align][0][width] with align one of < > ^
//
// Modifiers chain with further colons ({1:lower:<8}). "{{" and "}}" are
// literal braces. Templates are validated against a Scope when parsed, so a
// reference that cannot exist is reported before anything is renamed.
package template

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Scope describes the values a template may reference.
type Scope struct {
	// Groups is the number of capture groups including the whole match.
	Groups int
	// Names holds the capture group names aligned with group indexes.
	Names []string
	// Indexed marks a sort scope: only {} placeholders, rendered as the index.
	Indexed bool
}

// Value is the data a single candidate contributes to rendering.
type Value struct {
	Groups []string
	Index  int
}

// Error reports an invalid template.
type Error struct {
	Template string
	Pos      int
	Reason   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid output template %q at offset %d: %s", e.Template, e.Pos, e.Reason)
}

type segmentKind int

const (
	segLiteral segmentKind = iota
	segGroup
	segIndex
)

type caseMode int

const (
	caseNone caseMode = iota
	caseUpper
	caseLower
	caseTitle
)

type format struct {
	caseMode caseMode
	fill     rune
	align    byte
	width    int
}

type segment struct {
	kind    segmentKind
	literal string
	group   int
	format  format
}

// Formatter is a parsed template. It is immutable and safe to reuse.
type Formatter struct {
	text     string
	segments []segment
}

// Parse validates text against scope and returns a reusable Formatter.
func Parse(text string, scope Scope) (*Formatter, error) {
	p := parser{text: text, scope: scope, next: 1}
	if err := p.run(); err != nil {
		return nil, err
	}
	return &Formatter{text: text, segments: p.segments}, nil
}

// Default returns the template used when none is supplied: the sort index, or
// every capture group concatenated (the whole match when there are none).
func Default(scope Scope) *Formatter {
	text := "{}"
	if !scope.Indexed {
		if scope.Groups <= 1 {
			text = "{0}"
		} else {
			text = strings.Repeat("{}", scope.Groups-1)
		}
	}
	f, err := Parse(text, scope)
	if err != nil {
		// Unreachable: the default text only references groups the scope has.
		panic(err)
	}
	return f
}

// String returns the template text.
func (f *Formatter) String() string {
	return f.text
}

// Render substitutes v into the template.
func (f *Formatter) Render(v Value) string {
	var b strings.Builder
	for _, seg := range f.segments {
		switch seg.kind {
		case segLiteral:
			b.WriteString(seg.literal)
		case segGroup:
			var s string
			if seg.group < len(v.Groups) {
				s = v.Groups[seg.group]
			}
			b.WriteString(seg.format.apply(s, false))
		case segIndex:
			b.WriteString(seg.format.apply(strconv.Itoa(v.Index), true))
		}
	}
	return b.String()
}

// AppendExtension returns rendered with the extension of input appended when
// rendered has none of its own.
func AppendExtension(rendered, input string) string {
	if Ext(rendered) != "" {
		return rendered
	}
	return rendered + Ext(input)
}

// Ext is filepath.Ext except that a leading-dot name such as ".env" has no
// extension.
func Ext(path string) string {
	ext := filepath.Ext(path)
	if ext == filepath.Base(path) {
		return ""
	}
	return ext
}

func (f format) apply(s string, numeric bool) string {
	switch f.caseMode {
	case caseUpper:
		s = cases.Upper(language.Und).String(s)
	case caseLower:
		s = cases.Lower(language.Und).String(s)
	case caseTitle:
		s = cases.Title(language.Und).String(s)
	}
	pad := f.width - utf8.RuneCountInString(s)
	if pad <= 0 {
		return s
	}
	fill := f.fill
	if fill == 0 {
		fill = ' '
	}
	align := f.align
	if align == 0 {
		align = '<'
		if numeric {
			align = '>'
		}
	}
	switch align {
	case '>':
		return strings.Repeat(string(fill), pad) + s
	case '^':
		left := pad / 2
		return strings.Repeat(string(fill), left) + s + strings.Repeat(string(fill), pad-left)
	default:
		return s + strings.Repeat(string(fill), pad)
	}
}

type parser struct {
	text     string
	scope    Scope
	segments []segment
	literal  strings.Builder
	next     int
}

func (p *parser) fail(pos int, format string, args ...any) error {
	return &Error{Template: p.text, Pos: pos, Reason: fmt.Sprintf(format, args...)}
}

func (p *parser) flush() {
	if p.literal.Len() == 0 {
		return
	}
	p.segments = append(p.segments, segment{kind: segLiteral, literal: p.literal.String()})
	p.literal.Reset()
}

func (p *parser) run() error {
	text := p.text
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				p.literal.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return p.fail(i, "unclosed placeholder")
			}
			body := text[i+1 : i+1+end]
			if strings.ContainsRune(body, '{') {
				return p.fail(i, "nested placeholder")
			}
			seg, err := p.placeholder(i, body)
			if err != nil {
				return err
			}
			p.flush()
			p.segments = append(p.segments, seg)
			i += end + 1
		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				p.literal.WriteByte('}')
				i++
				continue
			}
			return p.fail(i, "unmatched }")
		default:
			p.literal.WriteByte(c)
		}
	}
	p.flush()
	return nil
}

func (p *parser) placeholder(pos int, body string) (segment, error) {
	ref, specs, _ := strings.Cut(body, ":")
	var fmtSpec format
	if body != ref {
		for _, part := range strings.Split(specs, ":") {
			if err := parseSpec(&fmtSpec, part); err != nil {
				return segment{}, p.fail(pos, "%s", err.Error())
			}
		}
	}

	ref = strings.TrimSpace(ref)
	if p.scope.Indexed {
		if ref != "" {
			return segment{}, p.fail(pos, "capture reference {%s} is not available when sorting; use {}", ref)
		}
		return segment{kind: segIndex, format: fmtSpec}, nil
	}

	switch {
	case ref == "":
		group := p.next
		p.next++
		if group >= p.scope.Groups {
			return segment{}, p.fail(pos, "positional placeholder %d exceeds the %d capture group(s) in the pattern", group, p.scope.Groups-1)
		}
		return segment{kind: segGroup, group: group, format: fmtSpec}, nil
	case isDigits(ref):
		group, err := strconv.Atoi(ref)
		if err != nil || group >= p.scope.Groups {
			return segment{}, p.fail(pos, "capture group %s does not exist (pattern has %d)", ref, p.scope.Groups-1)
		}
		return segment{kind: segGroup, group: group, format: fmtSpec}, nil
	case isIdentifier(ref):
		for i, name := range p.scope.Names {
			if i > 0 && name == ref {
				return segment{kind: segGroup, group: i, format: fmtSpec}, nil
			}
		}
		return segment{}, p.fail(pos, "named capture group %q does not exist", ref)
	default:
		return segment{}, p.fail(pos, "invalid placeholder {%s}", body)
	}
}

func parseSpec(f *format, spec string) error {
	switch strings.ToLower(spec) {
	case "":
		return nil
	case "upper":
		f.caseMode = caseUpper
		return nil
	case "lower":
		f.caseMode = caseLower
		return nil
	case "title":
		f.caseMode = caseTitle
		return nil
	}

	runes := []rune(spec)
	switch {
	case len(runes) >= 2 && isAlign(runes[1]):
		f.fill, f.align = runes[0], byte(runes[1])
		runes = runes[2:]
	case len(runes) >= 1 && isAlign(runes[0]):
		f.align = byte(runes[0])
		runes = runes[1:]
	}
	if len(runes) > 0 && runes[0] == '0' && f.fill == 0 {
		f.fill = '0'
		if f.align == 0 {
			f.align = '>'
		}
		runes = runes[1:]
	}
	if len(runes) == 0 {
		return nil
	}
	width, err := strconv.Atoi(string(runes))
	if err != nil || width < 0 {
		return fmt.Errorf("invalid format spec %q", spec)
	}
	f.width = width
	return nil
}

func isAlign(r rune) bool {
	return r == '<' || r == '>' || r == '^'
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func isIdentifier(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
