package kafka

import (
	"context"

	"splice/internal/frame"
)

type Adapter interface {
	Configure(Config) error
	Run(context.Context, frame.EmitFunc) error
	Close() error
}
