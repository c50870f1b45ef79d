package concat

import (
	"bytes"
	"io/fs"
	"path/filepath"

	"splice/sourcemap"
	"splice/vfile"
)

// EmitFunc forwards a unit downstream.
type EmitFunc func(*vfile.File) error

// Stage accumulates units for one stream. It is not safe for concurrent use;
// the pipeline delivers units one at a time.
type Stage struct {
	cfg Config

	buf   bytes.Buffer
	seen  bool
	mode  *fs.FileMode
	base  string
	cwd   string
	line  int // newlines in buf
	col   int // bytes after the last newline in buf
	maps  *sourcemap.Merger
	err   error
	ended bool
}

// New builds a stage from the positional call shape.
func New(path string, fn Func, opts *Options) (*Stage, error) {
	cfg, err := Resolve(path, fn, opts)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg), nil
}

// NewFromOptions builds a stage from the object call shape.
func NewFromOptions(opts Options) (*Stage, error) {
	cfg, err := ResolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg), nil
}

// NewWithConfig builds a stage from an already resolved configuration.
func NewWithConfig(cfg Config) *Stage {
	s := &Stage{cfg: cfg, base: cfg.Base, cwd: cfg.Cwd}
	if s.base == "" {
		s.base = cfg.Cwd
	}
	if cfg.Mode != nil {
		m := *cfg.Mode
		s.mode = &m
	}
	return s
}

// Config returns the stage configuration.
func (s *Stage) Config() Config { return s.cfg }

// Seen reports whether at least one real unit has been accumulated.
func (s *Stage) Seen() bool { return s.seen }

// Err returns the error that failed the stage, if any.
func (s *Stage) Err() error { return s.err }

// Push accumulates f. Null units are forwarded through emit untouched.
// After an error the stage is failed and every later call returns it.
func (s *Stage) Push(f *vfile.File, emit EmitFunc) error {
	if s.err != nil {
		return s.err
	}
	if f.IsNull() {
		if emit == nil {
			return nil
		}
		return emit(f)
	}
	if f.IsStream() {
		return s.fail(&UnsupportedInputError{Path: f.Path})
	}

	out, err := s.cfg.Transform(append([]byte(nil), f.Contents...), f)
	if err != nil {
		return s.fail(&TransformError{Path: f.Path, Err: err})
	}

	if s.seen {
		s.write([]byte(s.cfg.NewLine))
	} else {
		s.seen = true
	}
	if s.mode == nil {
		m := f.Mode
		s.mode = &m
	}
	if s.base == "" {
		s.base = f.BaseDir()
	}
	if s.cwd == "" {
		s.cwd = f.Cwd
	}

	if f.SourceMap != nil {
		if s.maps == nil {
			s.maps = sourcemap.NewMerger()
		}
		if err := s.maps.Add(f.SourceMap, f.Relative(), s.line, s.col); err != nil {
			return s.fail(err)
		}
	}
	s.write(out)
	return nil
}

// End emits the output unit, if any real unit was accumulated. Calling End
// more than once emits nothing further.
func (s *Stage) End(emit EmitFunc) error {
	if s.err != nil {
		return s.err
	}
	if s.ended {
		return nil
	}
	s.ended = true
	if !s.seen {
		return nil
	}
	if emit == nil {
		return nil
	}
	return emit(s.output())
}

func (s *Stage) output() *vfile.File {
	out := &vfile.File{
		Contents: append([]byte{}, s.buf.Bytes()...),
		Mode:     DefaultMode,
	}
	if s.mode != nil && *s.mode != 0 {
		out.Mode = *s.mode
	}
	switch s.cfg.Shape {
	case Object:
		out.Path = s.cfg.Path
		out.Cwd = s.cfg.Cwd
		out.Base = s.cfg.Base
		if out.Cwd == "" && out.Base == "" {
			out.Cwd, out.Base = s.cwd, s.base
		}
	default:
		out.Cwd = s.cwd
		out.Base = s.base
		out.Path = s.cfg.Path
		if s.base != "" && !filepath.IsAbs(s.cfg.Path) {
			out.Path = filepath.Join(s.base, s.cfg.Path)
		}
	}
	if s.maps != nil {
		out.SourceMap = s.maps.Map(s.cfg.Path)
	}
	return out
}

func (s *Stage) write(p []byte) {
	s.buf.Write(p)
	if i := bytes.LastIndexByte(p, '\n'); i >= 0 {
		s.line += bytes.Count(p, []byte{'\n'})
		s.col = len(p) - i - 1
	} else {
		s.col += len(p)
	}
}

func (s *Stage) fail(err error) error {
	s.err = err
	return err
}

// Concat runs files through a fresh stage built from cfg and returns
// everything it emitted, null units included.
func Concat(cfg Config, files ...*vfile.File) ([]*vfile.File, error) {
	var out []*vfile.File
	emit := func(f *vfile.File) error {
		out = append(out, f)
		return nil
	}
	s := NewWithConfig(cfg)
	for _, f := range files {
		if err := s.Push(f, emit); err != nil {
			return nil, err
		}
	}
	if err := s.End(emit); err != nil {
		return nil, err
	}
	return out, nil
}
