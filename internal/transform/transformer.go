package transform

import (
	"context"

	"splice/vfile"
)

// Transformer rewrites the contents of one unit. f is read only.
type Transformer interface {
	Transform(ctx context.Context, contents []byte, f *vfile.File) ([]byte, error)
	Close() error
}

// FuncTransformer adapts a plain function.
type FuncTransformer func(ctx context.Context, contents []byte, f *vfile.File) ([]byte, error)

func (fn FuncTransformer) Transform(ctx context.Context, contents []byte, f *vfile.File) ([]byte, error) {
	return fn(ctx, contents, f)
}
func (FuncTransformer) Close() error { return nil }
