package sourcemap

import (
	"errors"
	"reflect"
	"testing"
)

func TestMappings_KnownVectors(t *testing.T) {
	cases := []struct {
		in   string
		want [][]Segment
	}{
		{"AAAA", [][]Segment{{{0, 0, 0, 0, -1}}}},
		{"AAAA;AACA,EAAE", [][]Segment{
			{{0, 0, 0, 0, -1}},
			{{0, 0, 1, 0, -1}, {2, 0, 1, 2, -1}},
		}},
		{"AAAAA,gBAAAC", [][]Segment{{{0, 0, 0, 0, 0}, {16, 0, 0, 0, 1}}}},
		{";;AAAA", [][]Segment{nil, nil, {{0, 0, 0, 0, -1}}}},
		{"E", [][]Segment{{{2, -1, 0, 0, -1}}}},
	}
	for _, c := range cases {
		got, err := DecodeMappings(c.in)
		if err != nil {
			t.Fatalf("decode %q: %v", c.in, err)
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("decode %q: want %v, got %v", c.in, c.want, got)
		}
		if enc := EncodeMappings(got); enc != c.in {
			t.Fatalf("encode: want %q, got %q", c.in, enc)
		}
	}
}

func TestDecodeMappings_Invalid(t *testing.T) {
	for _, in := range []string{"AA", "A!AA", "g", "AAAAAA"} {
		if _, err := DecodeMappings(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestParse(t *testing.T) {
	m, err := Parse([]byte(`{"version":3,"sources":["a.js"],"names":[],"mappings":"AAAA"}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(m.Sources) != 1 || m.Sources[0] != "a.js" {
		t.Fatalf("unexpected sources: %v", m.Sources)
	}

	if _, err := Parse([]byte(`{"version":2,"sources":[],"mappings":""}`)); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("want ErrUnsupported for version 2, got %v", err)
	}
	if _, err := Parse([]byte(`{"version":3,"sections":[{"offset":{"line":0,"column":0}}]}`)); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("want ErrUnsupported for index map, got %v", err)
	}
}

func TestSourceNames_AppliesRoot(t *testing.T) {
	m := &Map{SourceRoot: "src", Sources: []string{"a.js", "/abs/b.js", "webpack://c.js"}}
	want := []string{"src/a.js", "/abs/b.js", "webpack://c.js"}
	if got := m.SourceNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestMerger_LineOffsets(t *testing.T) {
	g := NewMerger()
	if err := g.Add(&Map{Version: 3, Sources: []string{"a.js"}, Mappings: "AAAA;AACA"}, "a.js", 0, 0); err != nil {
		t.Fatalf("add a: %v", err)
	}
	if err := g.Add(&Map{Version: 3, Sources: []string{"b.js"}, Mappings: "AAAA"}, "b.js", 2, 0); err != nil {
		t.Fatalf("add b: %v", err)
	}
	out := g.Map("all.js")
	if out.File != "all.js" || out.Version != 3 {
		t.Fatalf("unexpected header: %+v", out)
	}
	if !reflect.DeepEqual(out.Sources, []string{"a.js", "b.js"}) {
		t.Fatalf("unexpected sources: %v", out.Sources)
	}
	if out.Mappings != "AAAA;AACA;ACDA" {
		t.Fatalf("unexpected mappings: %q", out.Mappings)
	}
}

func TestMerger_ColumnOffsetAndFallbackSource(t *testing.T) {
	g := NewMerger()
	_ = g.Add(&Map{Version: 3, Mappings: "AAAA"}, "a.js", 0, 0)
	_ = g.Add(&Map{Version: 3, Mappings: "AAAA,CAAC"}, "b.js", 0, 5)

	out := g.Map("all.js")
	if !reflect.DeepEqual(out.Sources, []string{"a.js", "b.js"}) {
		t.Fatalf("unexpected sources: %v", out.Sources)
	}
	lines, err := DecodeMappings(out.Mappings)
	if err != nil {
		t.Fatalf("decode merged: %v", err)
	}
	want := [][]Segment{{{0, 0, 0, 0, -1}, {5, 1, 0, 0, -1}, {6, 1, 0, 1, -1}}}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("want %v, got %v", want, lines)
	}
}

func TestMerger_NamesAndContent(t *testing.T) {
	a, b := "var a;", "var b;"
	g := NewMerger()
	_ = g.Add(&Map{Version: 3, Sources: []string{"a.js"}, SourcesContent: []*string{&a}, Names: []string{"a"}, Mappings: "AAAAA"}, "a.js", 0, 0)
	_ = g.Add(&Map{Version: 3, Sources: []string{"b.js"}, SourcesContent: []*string{&b}, Names: []string{"b", "a"}, Mappings: "AAAAA,CAAAC"}, "b.js", 1, 0)

	out := g.Map("all.js")
	if !reflect.DeepEqual(out.Names, []string{"a", "b"}) {
		t.Fatalf("unexpected names: %v", out.Names)
	}
	if len(out.SourcesContent) != 2 || *out.SourcesContent[1] != b {
		t.Fatalf("unexpected sourcesContent: %v", out.SourcesContent)
	}
	lines, _ := DecodeMappings(out.Mappings)
	if lines[1][0].Name != 1 || lines[1][1].Name != 0 {
		t.Fatalf("names not remapped: %v", lines[1])
	}
}

func TestMerger_SourceIndexOutOfRange(t *testing.T) {
	g := NewMerger()
	err := g.Add(&Map{Version: 3, Sources: []string{"a.js"}, Mappings: "ACAA"}, "a.js", 0, 0)
	if err == nil {
		t.Fatal("expected out of range error")
	}
}
