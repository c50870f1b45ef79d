package sink

import (
	"fmt"

	"splice/internal/frame"
)

// Adapter is the common behaviour every sink exposes. Push receives the
// output frame of a bundle: the concatenated unit plus the checkpoint of the
// bundle's end-of-input record.
type Adapter interface {
	Configure(any) error     // driver-specific config ⇒ struct
	Push(*frame.Frame) error // consume one output frame
	Close() error            // idempotent
}

// AckAware is *optional*; sinks that confirm durable delivery implement it.
// The compiler wires the callback if present.
type AckAware interface {
	BindAck(frame.AckFunc)
}

/*──────── registry ───────*/

type factory = func() Adapter

var reg = map[string]factory{}

func Register(name string, f factory) { reg[name] = f }

func NewAdapter(name string) (Adapter, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown sink %q", name)
}
