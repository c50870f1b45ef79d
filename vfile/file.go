// Package vfile defines the in-memory file unit that flows through a splice
// pipeline.
package vfile

import (
	"io"
	"io/fs"
	"path/filepath"

	"splice/sourcemap"
)

// File is one unit of work. Exactly one of Contents and Stream is set for a
// real unit; a unit with neither is the null sentinel some producers emit.
type File struct {
	Cwd  string
	Base string // defaults to Cwd
	Path string

	Contents []byte
	Stream   io.Reader

	Mode      fs.FileMode
	SourceMap *sourcemap.Map
}

// IsNull reports whether f carries no contents at all.
func (f *File) IsNull() bool { return f == nil || (f.Contents == nil && f.Stream == nil) }

// IsStream reports whether f carries streamed contents.
func (f *File) IsStream() bool { return f != nil && f.Stream != nil }

// IsBuffer reports whether f carries an in-memory buffer.
func (f *File) IsBuffer() bool { return f != nil && f.Stream == nil && f.Contents != nil }

// BaseDir returns Base, falling back to Cwd.
func (f *File) BaseDir() string {
	if f.Base != "" {
		return f.Base
	}
	return f.Cwd
}

// Relative returns Path relative to BaseDir. Relative paths, and paths that
// cannot be expressed relative to the base, are returned as given.
func (f *File) Relative() string {
	base := f.BaseDir()
	if base == "" || !filepath.IsAbs(f.Path) {
		return f.Path
	}
	rel, err := filepath.Rel(base, f.Path)
	if err != nil {
		return f.Path
	}
	return rel
}

// Clone returns a deep copy. Streamed contents are shared, not copied.
func (f *File) Clone() *File {
	if f == nil {
		return nil
	}
	c := *f
	if f.Contents != nil {
		c.Contents = append(make([]byte, 0, len(f.Contents)), f.Contents...)
	}
	c.SourceMap = f.SourceMap.Clone()
	return &c
}
