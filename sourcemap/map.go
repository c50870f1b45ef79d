// Package sourcemap models revision 3 source maps and merges the maps of
// concatenated fragments into one.
package sourcemap

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
)

const Version = 3

// ErrUnsupported is returned by Parse for maps this package cannot merge,
// such as index maps with sections.
var ErrUnsupported = errors.New("sourcemap: unsupported map")

// Map is the JSON document described by the Source Map Revision 3 proposal.
type Map struct {
	Version        int       `json:"version"`
	File           string    `json:"file,omitempty"`
	SourceRoot     string    `json:"sourceRoot,omitempty"`
	Sources        []string  `json:"sources"`
	SourcesContent []*string `json:"sourcesContent,omitempty"`
	Names          []string  `json:"names"`
	Mappings       string    `json:"mappings"`
}

// Parse decodes a JSON source map and validates its version and mappings.
func Parse(data []byte) (*Map, error) {
	var raw struct {
		Map
		Sections json.RawMessage `json:"sections"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("sourcemap: %w", err)
	}
	if len(raw.Sections) > 0 {
		return nil, fmt.Errorf("%w: index map with sections", ErrUnsupported)
	}
	m := raw.Map
	if m.Version != Version {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupported, m.Version)
	}
	if _, err := DecodeMappings(m.Mappings); err != nil {
		return nil, err
	}
	return &m, nil
}

// Marshal encodes the map as JSON.
func (m *Map) Marshal() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	out := *m
	if out.Sources == nil {
		out.Sources = []string{}
	}
	if out.Names == nil {
		out.Names = []string{}
	}
	return json.Marshal(&out)
}

// SourceNames returns the sources with sourceRoot applied.
func (m *Map) SourceNames() []string {
	names := make([]string, len(m.Sources))
	for i, s := range m.Sources {
		if m.SourceRoot != "" && !path.IsAbs(s) && !hasScheme(s) {
			s = path.Join(m.SourceRoot, s)
		}
		names[i] = s
	}
	return names
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	c := *m
	c.Sources = append([]string(nil), m.Sources...)
	c.Names = append([]string(nil), m.Names...)
	if m.SourcesContent != nil {
		c.SourcesContent = make([]*string, len(m.SourcesContent))
		for i, sc := range m.SourcesContent {
			if sc != nil {
				v := *sc
				c.SourcesContent[i] = &v
			}
		}
	}
	return &c
}

func hasScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == ':':
			return i > 0
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return false
}
