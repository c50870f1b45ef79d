package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"splice/concat"
	"splice/internal/frame"
	"splice/internal/logging"
	"splice/internal/telemetry"
	"splice/internal/transform"
	"splice/sink"
	"splice/vfile"
)

// Source feeds frames to the runner until ctx ends or it fails.
type Source interface {
	Run(context.Context, frame.EmitFunc) error
	Close() error
}

// Runner drives source → concat stage → sinks. Frames up to an end-of-input
// marker form a bundle; each bundle gets a fresh stage. Bundles are kept per
// topic partition, and handle may be called from one goroutine per partition.
type Runner struct {
	source   Source
	sinks    []sink.Adapter
	chain    *transform.Chain
	stageCfg concat.Config
	metrics  *telemetry.Metrics

	ctx context.Context

	hmu     sync.Mutex // serializes handle
	bundles map[bundleKey]*bundleState

	mu   sync.Mutex
	subs []frame.AckFunc
}

type bundleKey struct {
	topic     string
	partition int32
}

type bundleState struct {
	stage *concat.Stage
	units int
}

func keyOf(cp *frame.Checkpoint) bundleKey {
	if cp == nil {
		return bundleKey{}
	}
	return bundleKey{cp.Topic, cp.Partition}
}

func NewRunner(m *telemetry.Metrics) *Runner {
	return &Runner{
		chain:   transform.NewChain(m),
		metrics: m,
		ctx:     context.Background(),
		bundles: make(map[bundleKey]*bundleState),
	}
}

func (r *Runner) AddSink(s sink.Adapter) { r.sinks = append(r.sinks, s) }
func (r *Runner) SetSource(s Source)     { r.source = s }

// SetStage sets the configuration every bundle's stage is built from. The
// transform is replaced by the runner's transformer chain.
func (r *Runner) SetStage(cfg concat.Config) { r.stageCfg = cfg }

func (r *Runner) AddTransformer(name string, t transform.Transformer, timeout time.Duration, attempts int, backoff time.Duration) {
	r.chain.Add(name, t, timeout, attempts, backoff)
}

func (r *Runner) SubscribeAck(fn frame.AckFunc) {
	r.mu.Lock()
	r.subs = append(r.subs, fn)
	r.mu.Unlock()
}

func (r *Runner) Ack(cp *frame.Checkpoint) {
	if cp == nil {
		return
	}
	r.mu.Lock()
	handlers := append([]frame.AckFunc{}, r.subs...)
	r.mu.Unlock()

	for _, fn := range handlers {
		fn(cp)
	}
}

/*──────── frame routing ───────*/

func (r *Runner) handle(fr *frame.Frame) error {
	r.hmu.Lock()
	defer r.hmu.Unlock()

	key := keyOf(fr.Checkpoint)
	b := r.bundles[key]
	if b == nil {
		cfg := r.stageCfg
		cfg.Transform = r.chain.Func(r.ctx)
		b = &bundleState{stage: concat.NewWithConfig(cfg)}
		r.bundles[key] = b
	}
	if fr.EOF {
		delete(r.bundles, key)
		return r.finish(b, fr.Checkpoint)
	}
	if fr.File == nil {
		return nil
	}

	if b.stage.Err() != nil {
		r.count("rejected")
		return nil
	}
	f := fr.File
	err := b.stage.Push(f, func(null *vfile.File) error {
		r.count("passthrough")
		return r.pushSinks(&frame.Frame{File: null, Checkpoint: fr.Checkpoint})
	})
	if err != nil {
		if b.stage.Err() == nil {
			return err // sink failure
		}
		r.count("rejected")
		logging.For("runner").Error("bundle failed", "path", f.Path, "partition", key.partition, "err", err)
		return nil
	}
	if !f.IsNull() {
		b.units++
		r.count("accumulated")
		if r.metrics != nil {
			r.metrics.InputBytes.Add(float64(len(f.Contents)))
		}
	}
	return nil
}

func (r *Runner) finish(b *bundleState, cp *frame.Checkpoint) error {
	st := b.stage

	var emitted bool
	err := st.End(func(out *vfile.File) error {
		emitted = true
		if r.metrics != nil {
			r.metrics.OutputBytes.Add(float64(len(out.Contents)))
		}
		return r.pushSinks(&frame.Frame{File: out, EOF: true, Checkpoint: cp})
	})
	switch {
	case st.Err() != nil:
		r.countBundle("error")
		logging.For("runner").Warn("bundle dropped", "err", st.Err())
		// nothing will reach the sinks; release the end-of-input record
		r.Ack(cp)
		return nil
	case err != nil:
		r.countBundle("error")
		return fmt.Errorf("sink: %w", err)
	case !emitted:
		r.countBundle("empty")
		logging.For("runner").Debug("bundle had no units")
		r.Ack(cp)
		return nil
	}
	r.countBundle("emitted")
	logging.For("runner").Info("bundle emitted", "path", st.Config().Path, "units", b.units)
	return nil
}

func (r *Runner) pushSinks(fr *frame.Frame) error {
	for _, s := range r.sinks {
		if err := s.Push(fr); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) count(result string) {
	if r.metrics != nil {
		r.metrics.Units.WithLabelValues(result).Inc()
	}
}

func (r *Runner) countBundle(result string) {
	if r.metrics != nil {
		r.metrics.Bundles.WithLabelValues(result).Inc()
	}
}

// Run blocks until the source stops.
func (r *Runner) Run(ctx context.Context) error {
	if r.source == nil {
		return errors.New("runner: no source configured")
	}
	r.ctx = ctx
	return r.source.Run(ctx, r.handle)
}

func (r *Runner) Start(ctx context.Context) error {
	if r.source == nil {
		return errors.New("runner: no source configured")
	}
	go func() {
		if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.For("runner").Error("source stopped", "err", err)
		}
	}()
	return nil
}

func (r *Runner) Close() error {
	var errs []error
	if r.source != nil {
		errs = append(errs, r.source.Close())
	}
	for _, s := range r.sinks {
		errs = append(errs, s.Close())
	}
	errs = append(errs, r.chain.Close())
	return errors.Join(errs...)
}
