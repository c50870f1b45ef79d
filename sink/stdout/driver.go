package stdout

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"splice/internal/frame"
	"splice/sink"
)

/* ────────── public config ────────── */
type Config struct {
	PrintContents bool      `yaml:"print_contents"`
	MaxBytes      int       `yaml:"max_bytes"` // 0 = unlimited
	PrintMap      bool      `yaml:"print_map"`
	Out           io.Writer `yaml:"-"` // defaults to os.Stdout
}

/* ────────── driver ────────── */
type driver struct {
	cfg Config
	ack frame.AckFunc

	mu sync.Mutex // serializes writes
}

var seq uint64

/* ────────── sink.Adapter ────────── */
func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("stdout-sink: expected Config, got %T", raw)
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	d.cfg = c
	return nil
}

func (d *driver) Push(fr *frame.Frame) error {
	f := fr.File
	if f == nil {
		return fmt.Errorf("stdout-sink: frame without unit")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	w := d.cfg.Out
	if _, err := fmt.Fprintf(w, "[sink %06d] %s (%d bytes, mode %#o)\n",
		atomic.AddUint64(&seq, 1), f.Relative(), len(f.Contents), f.Mode.Perm()); err != nil {
		return err
	}
	if d.cfg.PrintContents {
		body := f.Contents
		if d.cfg.MaxBytes > 0 && len(body) > d.cfg.MaxBytes {
			body = body[:d.cfg.MaxBytes]
		}
		if _, err := fmt.Fprintf(w, "%s\n", body); err != nil {
			return err
		}
	}
	if d.cfg.PrintMap && f.SourceMap != nil {
		raw, err := f.SourceMap.Marshal()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n", raw); err != nil {
			return err
		}
	}

	if d.ack != nil {
		d.ack(fr.Checkpoint)
	}
	return nil
}

func (d *driver) Close() error { return nil }

/* ────────── sink.AckAware ────────── */
func (d *driver) BindAck(fn frame.AckFunc) { d.ack = fn }

/* ────────── auto-register ────────── */
func init() {
	sink.Register("stdout", func() sink.Adapter { return &driver{} })
}
