package transform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"splice/concat"
	"splice/internal/logging"
	"splice/internal/telemetry"
	"splice/vfile"
)

type link struct {
	name     string
	impl     Transformer
	timeout  time.Duration
	attempts int // retries after the first call
	backoff  time.Duration
}

// Chain applies transformers in order. An empty chain is the identity.
type Chain struct {
	links   []link
	metrics *telemetry.Metrics
}

func NewChain(m *telemetry.Metrics) *Chain { return &Chain{metrics: m} }

func (c *Chain) Add(name string, t Transformer, timeout time.Duration, attempts int, backoff time.Duration) {
	c.links = append(c.links, link{name: name, impl: t, timeout: timeout, attempts: attempts, backoff: backoff})
}

func (c *Chain) Len() int { return len(c.links) }

// Func binds the chain to ctx for use as a concat stage transform.
func (c *Chain) Func(ctx context.Context) concat.Func {
	return func(contents []byte, f *vfile.File) ([]byte, error) {
		var err error
		for i := range c.links {
			if contents, err = c.apply(ctx, &c.links[i], contents, f); err != nil {
				return nil, err
			}
		}
		return contents, nil
	}
}

func (c *Chain) apply(ctx context.Context, l *link, contents []byte, f *vfile.File) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= l.attempts; attempt++ {
		if attempt > 0 && l.backoff > 0 {
			t := time.NewTimer(l.backoff)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return nil, ctx.Err()
			}
		}
		out, err := c.call(ctx, l, contents, f)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logging.For("transform").Warn("transformer failed", "transformer", l.name, "path", f.Path, "attempt", attempt+1, "err", err)
	}
	return nil, fmt.Errorf("transformer %s: %w", l.name, lastErr)
}

func (c *Chain) call(ctx context.Context, l *link, contents []byte, f *vfile.File) ([]byte, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	start := time.Now()
	out, err := l.impl.Transform(ctx, contents, f)
	if c.metrics != nil {
		c.metrics.TransformSeconds.WithLabelValues(l.name).Observe(time.Since(start).Seconds())
	}
	return out, err
}

func (c *Chain) Close() error {
	var errs []error
	for _, l := range c.links {
		if err := l.impl.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", l.name, err))
		}
	}
	return errors.Join(errs...)
}
