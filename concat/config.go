package concat

import (
	"io/fs"

	"splice/vfile"
)

// DefaultNewLine separates fragments when no separator is configured.
const DefaultNewLine = "\n"

// DefaultMode is assigned to the output when neither the configuration nor
// the first unit provides one.
const DefaultMode fs.FileMode = 0o644

// Func maps a unit's contents to new contents. The unit is read only.
type Func func(contents []byte, f *vfile.File) ([]byte, error)

// Shape records which constructor produced a Config; it decides how the
// output path is derived.
type Shape int

const (
	// Positional: the output path is joined onto the base directory.
	Positional Shape = iota
	// Object: the output path is used verbatim and relative paths are
	// computed against Cwd.
	Object
)

// Options is the object form of the stage arguments. In the positional form
// only NewLine, Mode, Cwd and Base are consulted.
type Options struct {
	Path      string
	Transform Func
	Cwd       string
	Base      string
	// NewLine is nil for the default separator; a pointer to "" joins
	// fragments with nothing between them.
	NewLine *string
	Mode    *fs.FileMode
}

// Config is the canonical, validated stage configuration.
type Config struct {
	Shape     Shape
	Path      string
	Transform Func
	Cwd       string
	Base      string
	NewLine   string
	Mode      *fs.FileMode
}

// NewLine returns a pointer to s, for use in Options.
func NewLine(s string) *string { return &s }

// Mode returns a pointer to m, for use in Options.
func Mode(m fs.FileMode) *fs.FileMode { return &m }

// Resolve validates the positional call shape.
func Resolve(path string, fn Func, opts *Options) (Config, error) {
	if path == "" {
		return Config{}, &ConfigurationError{Field: "path", Msg: "missing file option"}
	}
	if fn == nil {
		return Config{}, errMissingTransform()
	}
	cfg := Config{Shape: Positional, Path: path, Transform: fn, NewLine: DefaultNewLine}
	if opts != nil {
		cfg.apply(opts)
	}
	return cfg, nil
}

// ResolveOptions validates the object call shape.
func ResolveOptions(opts Options) (Config, error) {
	if opts.Path == "" {
		return Config{}, &ConfigurationError{Field: "path", Msg: "missing path in file options"}
	}
	if opts.Transform == nil {
		return Config{}, errMissingTransform()
	}
	cfg := Config{Shape: Object, Path: opts.Path, Transform: opts.Transform, NewLine: DefaultNewLine}
	cfg.apply(&opts)
	return cfg, nil
}

func (c *Config) apply(o *Options) {
	if o.NewLine != nil {
		c.NewLine = *o.NewLine
	}
	if o.Mode != nil {
		m := *o.Mode
		c.Mode = &m
	}
	c.Cwd = o.Cwd
	c.Base = o.Base
}

func errMissingTransform() error {
	return &ConfigurationError{Field: "transform", Msg: "missing the transform function"}
}
