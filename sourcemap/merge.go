package sourcemap

import (
	"fmt"
	"sort"
)

// Merger combines the maps of fragments laid out one after another in a
// single generated file. Fragments must be added in output order.
type Merger struct {
	sources    []string
	sourceIdx  map[string]int
	contents   []*string
	hasContent bool
	names      []string
	nameIdx    map[string]int
	lines      [][]Segment
}

func NewMerger() *Merger {
	return &Merger{
		sourceIdx: make(map[string]int),
		nameIdx:   make(map[string]int),
	}
}

// Add merges m as a fragment whose first byte sits at line/column of the
// generated output (both zero based). fallback names the source when m
// lists none.
func (g *Merger) Add(m *Map, fallback string, line, column int) error {
	if m == nil {
		return nil
	}
	segs, err := DecodeMappings(m.Mappings)
	if err != nil {
		return fmt.Errorf("merge %s: %w", fallback, err)
	}

	srcNames := m.SourceNames()
	if len(srcNames) == 0 {
		srcNames = []string{fallback}
	}
	srcMap := make([]int, len(srcNames))
	for i, name := range srcNames {
		var content *string
		if i < len(m.SourcesContent) {
			content = m.SourcesContent[i]
		}
		srcMap[i] = g.source(name, content)
	}
	nameMap := make([]int, len(m.Names))
	for i, name := range m.Names {
		nameMap[i] = g.name(name)
	}

	for li, segLine := range segs {
		target := line + li
		for len(g.lines) <= target {
			g.lines = append(g.lines, nil)
		}
		for _, seg := range segLine {
			if li == 0 {
				seg.GenColumn += column
			}
			if seg.Source >= 0 {
				if seg.Source >= len(srcMap) {
					return fmt.Errorf("merge %s: source index %d out of range", fallback, seg.Source)
				}
				seg.Source = srcMap[seg.Source]
			}
			if seg.Name >= 0 {
				if seg.Name >= len(nameMap) {
					return fmt.Errorf("merge %s: name index %d out of range", fallback, seg.Name)
				}
				seg.Name = nameMap[seg.Name]
			}
			g.lines[target] = append(g.lines[target], seg)
		}
	}
	return nil
}

// Empty reports whether no map has been added.
func (g *Merger) Empty() bool { return len(g.sources) == 0 && len(g.lines) == 0 }

// Map renders the merged map and attributes it to file.
func (g *Merger) Map(file string) *Map {
	for _, l := range g.lines {
		sort.SliceStable(l, func(i, j int) bool { return l[i].GenColumn < l[j].GenColumn })
	}
	out := &Map{
		Version:  Version,
		File:     file,
		Sources:  append([]string{}, g.sources...),
		Names:    append([]string{}, g.names...),
		Mappings: EncodeMappings(g.lines),
	}
	if g.hasContent {
		out.SourcesContent = append([]*string(nil), g.contents...)
	}
	return out
}

func (g *Merger) source(name string, content *string) int {
	if i, ok := g.sourceIdx[name]; ok {
		if g.contents[i] == nil && content != nil {
			g.contents[i] = content
			g.hasContent = true
		}
		return i
	}
	i := len(g.sources)
	g.sourceIdx[name] = i
	g.sources = append(g.sources, name)
	g.contents = append(g.contents, content)
	if content != nil {
		g.hasContent = true
	}
	return i
}

func (g *Merger) name(n string) int {
	if i, ok := g.nameIdx[n]; ok {
		return i
	}
	i := len(g.names)
	g.nameIdx[n] = i
	g.names = append(g.names, n)
	return i
}
