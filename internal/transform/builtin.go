package transform

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/yuin/goldmark"

	"splice/vfile"
)

var builtins = map[string]FuncTransformer{
	"identity": func(_ context.Context, c []byte, _ *vfile.File) ([]byte, error) { return c, nil },
	"upper":    upper,
	"trim":     func(_ context.Context, c []byte, _ *vfile.File) ([]byte, error) { return bytes.TrimSpace(c), nil },
	"markdown": markdown,
}

// upper leaves non-ASCII bytes alone when c is not valid UTF-8, so binary
// units pass through intact.
func upper(_ context.Context, c []byte, _ *vfile.File) ([]byte, error) {
	if utf8.Valid(c) {
		return bytes.ToUpper(c), nil
	}
	out := make([]byte, len(c))
	for i, b := range c {
		if 'a' <= b && b <= 'z' {
			b -= 'a' - 'A'
		}
		out[i] = b
	}
	return out, nil
}

var md = goldmark.New()

func markdown(_ context.Context, c []byte, f *vfile.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert(c, &buf); err != nil {
		return nil, fmt.Errorf("markdown %s: %w", f.Path, err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Builtin returns the named in-process transformer.
func Builtin(name string) (Transformer, error) {
	if fn, ok := builtins[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown builtin transformer %q (have %v)", name, BuiltinNames())
}

func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
