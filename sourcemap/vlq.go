package sourcemap

import (
	"fmt"
	"strings"
)

const (
	vlqBaseShift = 5
	vlqBase      = 1 << vlqBaseShift
	vlqMask      = vlqBase - 1
	vlqContinue  = vlqBase

	b64 = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
)

var b64Index [256]int8

func init() {
	for i := range b64Index {
		b64Index[i] = -1
	}
	for i := 0; i < len(b64); i++ {
		b64Index[b64[i]] = int8(i)
	}
}

// Segment is one decoded mapping on a generated line. Source and Name are -1
// when the segment does not carry them.
type Segment struct {
	GenColumn  int
	Source     int
	OrigLine   int
	OrigColumn int
	Name       int
}

func appendVLQ(sb *strings.Builder, v int) {
	u := v << 1
	if v < 0 {
		u = (-v << 1) | 1
	}
	for {
		digit := u & vlqMask
		u >>= vlqBaseShift
		if u > 0 {
			digit |= vlqContinue
		}
		sb.WriteByte(b64[digit])
		if u == 0 {
			return
		}
	}
}

func readVLQ(s string, pos int) (int, int, error) {
	var result, shift int
	for {
		if pos >= len(s) {
			return 0, pos, fmt.Errorf("sourcemap: truncated vlq at %d", pos)
		}
		d := b64Index[s[pos]]
		if d < 0 {
			return 0, pos, fmt.Errorf("sourcemap: invalid base64 %q at %d", s[pos], pos)
		}
		pos++
		result += int(d&vlqMask) << shift
		if d&vlqContinue == 0 {
			break
		}
		shift += vlqBaseShift
		if shift > 60 {
			return 0, pos, fmt.Errorf("sourcemap: vlq overflow at %d", pos)
		}
	}
	neg := result&1 == 1
	result >>= 1
	if neg {
		result = -result
	}
	return result, pos, nil
}

// DecodeMappings expands a mappings string into absolute segments, one slice
// per generated line.
func DecodeMappings(mappings string) ([][]Segment, error) {
	var (
		lines                        [][]Segment
		cur                          []Segment
		src, origLine, origCol, name int
		genCol                       int
	)
	pos := 0
	for pos <= len(mappings) {
		if pos == len(mappings) || mappings[pos] == ';' {
			lines = append(lines, cur)
			cur = nil
			genCol = 0
			pos++
			continue
		}
		if mappings[pos] == ',' {
			pos++
			continue
		}
		var fields [5]int
		n := 0
		for n < 5 && pos < len(mappings) && mappings[pos] != ',' && mappings[pos] != ';' {
			v, next, err := readVLQ(mappings, pos)
			if err != nil {
				return nil, err
			}
			fields[n] = v
			n++
			pos = next
		}
		if n == 5 && pos < len(mappings) && mappings[pos] != ',' && mappings[pos] != ';' {
			return nil, fmt.Errorf("sourcemap: segment with more than 5 fields at %d", pos)
		}
		if n != 1 && n != 4 && n != 5 {
			return nil, fmt.Errorf("sourcemap: segment with %d fields at %d", n, pos)
		}
		genCol += fields[0]
		seg := Segment{GenColumn: genCol, Source: -1, Name: -1}
		if n >= 4 {
			src += fields[1]
			origLine += fields[2]
			origCol += fields[3]
			seg.Source, seg.OrigLine, seg.OrigColumn = src, origLine, origCol
		}
		if n == 5 {
			name += fields[4]
			seg.Name = name
		}
		cur = append(cur, seg)
	}
	for len(lines) > 0 && len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

// EncodeMappings is the inverse of DecodeMappings. Segments within a line
// must be sorted by GenColumn.
func EncodeMappings(lines [][]Segment) string {
	var (
		sb                           strings.Builder
		src, origLine, origCol, name int
	)
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte(';')
		}
		genCol := 0
		for j, seg := range line {
			if j > 0 {
				sb.WriteByte(',')
			}
			appendVLQ(&sb, seg.GenColumn-genCol)
			genCol = seg.GenColumn
			if seg.Source < 0 {
				continue
			}
			appendVLQ(&sb, seg.Source-src)
			appendVLQ(&sb, seg.OrigLine-origLine)
			appendVLQ(&sb, seg.OrigColumn-origCol)
			src, origLine, origCol = seg.Source, seg.OrigLine, seg.OrigColumn
			if seg.Name >= 0 {
				appendVLQ(&sb, seg.Name-name)
				name = seg.Name
			}
		}
	}
	return sb.String()
}
