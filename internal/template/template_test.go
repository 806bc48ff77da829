package template_test

import (
	"errors"
	"regexp"
	"testing"

	"batchren/internal/template"
)

func patternScope(expr string) template.Scope {
	re := regexp.MustCompile(expr)
	return template.Scope{Groups: re.NumSubexp() + 1, Names: re.SubexpNames()}
}

func TestRenderCaptureGroups(t *testing.T) {
	scope := patternScope(`(?P<show>\w+)-(\d+)\.(\w+)`)
	value := template.Value{Groups: []string{"tiny-7.mkv", "tiny", "7", "mkv"}}

	tests := []struct {
		tmpl string
		want string
	}{
		{tmpl: "{}_{}.{}", want: "tiny_7.mkv"},
		{tmpl: "{2}-{1}", want: "7-tiny"},
		{tmpl: "{0}", want: "tiny-7.mkv"},
		{tmpl: "{show}/E{2:03}", want: "tiny/E007"},
		{tmpl: "{show:upper}", want: "TINY"},
		{tmpl: "{1:title}", want: "Tiny"},
		{tmpl: "[{1:^8}]", want: "[  tiny  ]"},
		{tmpl: "[{1:*>6}]", want: "[**tiny]"},
		{tmpl: "[{1:lower:<6}]", want: "[tiny  ]"},
		{tmpl: "{{{1}}}", want: "{tiny}"},
		{tmpl: "plain.txt", want: "plain.txt"},
	}
	for _, tt := range tests {
		f, err := template.Parse(tt.tmpl, scope)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.tmpl, err)
		}
		if got := f.Render(value); got != tt.want {
			t.Fatalf("Render(%q) = %q, want %q", tt.tmpl, got, tt.want)
		}
		if f.String() != tt.tmpl {
			t.Fatalf("String() = %q, want %q", f.String(), tt.tmpl)
		}
	}
}

func TestRenderIndex(t *testing.T) {
	scope := template.Scope{Indexed: true}
	tests := []struct {
		tmpl  string
		index int
		want  string
	}{
		{tmpl: "{}", index: 0, want: "0"},
		{tmpl: "img-{:03}.png", index: 7, want: "img-007.png"},
		{tmpl: "{:4}|", index: 12, want: "  12|"},
		{tmpl: "{:<4}|", index: 12, want: "12  |"},
		{tmpl: "{:>04}", index: 7, want: "0007"},
		{tmpl: "{:x>04}", index: 7, want: "xxx7"},
		{tmpl: "{}-{}", index: 3, want: "3-3"},
	}
	for _, tt := range tests {
		f, err := template.Parse(tt.tmpl, scope)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.tmpl, err)
		}
		if got := f.Render(template.Value{Index: tt.index}); got != tt.want {
			t.Fatalf("Render(%q, %d) = %q, want %q", tt.tmpl, tt.index, got, tt.want)
		}
	}
}

func TestParseRejectsImpossibleReferences(t *testing.T) {
	pattern := patternScope(`(\w+)-(\d+)`)
	sorted := template.Scope{Indexed: true}

	tests := []struct {
		name  string
		tmpl  string
		scope template.Scope
	}{
		{name: "group index equals group count", tmpl: "{3}", scope: pattern},
		{name: "too many positional", tmpl: "{}{}{}", scope: pattern},
		{name: "unknown name", tmpl: "{show}", scope: pattern},
		{name: "sort with numeric reference", tmpl: "{1}", scope: sorted},
		{name: "sort with group zero", tmpl: "{0}", scope: sorted},
		{name: "sort with named reference", tmpl: "{name}", scope: sorted},
		{name: "unclosed", tmpl: "{1", scope: pattern},
		{name: "unmatched close", tmpl: "a}b", scope: pattern},
		{name: "bad spec", tmpl: "{1:wide}", scope: pattern},
		{name: "bad reference", tmpl: "{1a}", scope: pattern},
		{name: "escaped brace then stray close", tmpl: "{{1}", scope: pattern},
	}
	for _, tt := range tests {
		_, err := template.Parse(tt.tmpl, tt.scope)
		var tmplErr *template.Error
		if !errors.As(err, &tmplErr) {
			t.Fatalf("%s: Parse(%q) expected template error, got %v", tt.name, tt.tmpl, err)
		}
	}
}

func TestParseAllowsHighestGroup(t *testing.T) {
	if _, err := template.Parse("{2}", patternScope(`(\w+)-(\d+)`)); err != nil {
		t.Fatalf("expected group 2 to be valid: %v", err)
	}
}

func TestUnmatchedOptionalGroupRendersEmpty(t *testing.T) {
	f, err := template.Parse("{1}[{2}]", patternScope(`(a)(b)?`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := f.Render(template.Value{Groups: []string{"a", "a", ""}}); got != "a[]" {
		t.Fatalf("unexpected render %q", got)
	}
}

func TestDefaultTemplates(t *testing.T) {
	if got := template.Default(template.Scope{Indexed: true}).String(); got != "{}" {
		t.Fatalf("sort default = %q", got)
	}
	if got := template.Default(patternScope(`(a)(b)(c)`)).String(); got != "{}{}{}" {
		t.Fatalf("pattern default = %q", got)
	}
	if got := template.Default(patternScope(`abc`)).String(); got != "{0}" {
		t.Fatalf("group-less default = %q", got)
	}
}

func TestAppendExtension(t *testing.T) {
	tests := []struct {
		rendered string
		input    string
		want     string
	}{
		{rendered: "001", input: "photo.jpg", want: "001.jpg"},
		{rendered: "001.png", input: "photo.jpg", want: "001.png"},
		{rendered: "dir.d/name", input: "a.txt", want: "dir.d/name.txt"},
		{rendered: "name", input: "Makefile", want: "name"},
		{rendered: "0", input: ".env", want: "0"},
		{rendered: "0", input: "conf/.env", want: "0"},
		{rendered: "out/.env", input: "a.txt", want: "out/.env.txt"},
	}
	for _, tt := range tests {
		if got := template.AppendExtension(tt.rendered, tt.input); got != tt.want {
			t.Fatalf("AppendExtension(%q, %q) = %q, want %q", tt.rendered, tt.input, got, tt.want)
		}
	}
}
