package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"splice/internal/frame"
	"splice/internal/logging"
)

type recordID struct {
	topic     string
	partition int32
	offset    int64
}

// SaramaDriver consumes unit records through a consumer group. Records of a
// bundle must share a partition (key them by bundle) so that committing the
// end-of-input record covers the whole bundle.
type SaramaDriver struct {
	cfg   Config
	mode  CommitMode
	cl    sarama.Client
	group sarama.ConsumerGroup

	mu         sync.Mutex
	pending    map[recordID]func() // e2e: end-of-input records awaiting an ack
	lastCommit time.Time

	ackCh chan recordID
}

func init() { Register("sarama", func() Adapter { return &SaramaDriver{} }) }

func (d *SaramaDriver) Configure(config Config) error {
	d.cfg, d.mode = config, config.CommitMode
	d.pending = make(map[recordID]func())
	d.ackCh = make(chan recordID, config.AckBuffer)

	ver, err := sarama.ParseKafkaVersion(config.Version)
	if err != nil {
		return err
	}
	sc := sarama.NewConfig()
	sc.Version = ver
	sc.Consumer.Return.Errors = true
	sc.Consumer.Offsets.AutoCommit.Enable = false
	if config.TLSEn {
		sc.Net.TLS.Enable = true
	}
	if config.SASLUser != "" {
		sc.Net.SASL.Enable = true
		sc.Net.SASL.User, sc.Net.SASL.Password = config.SASLUser, config.SASLPass
	}
	switch config.StartFrom {
	case "newest":
		sc.Consumer.Offsets.Initial = sarama.OffsetNewest
	default:
		sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	}

	if d.cl, err = sarama.NewClient(config.Brokers, sc); err != nil {
		return err
	}
	d.group, err = sarama.NewConsumerGroupFromClient(config.GroupID, d.cl)
	return err
}

func (d *SaramaDriver) Run(ctx context.Context, emit frame.EmitFunc) error {
	handler := &groupHandler{driver: d, emit: emit}

	for {
		if err := d.group.Consume(ctx, d.cfg.Topics, handler); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (d *SaramaDriver) Close() error {
	if d.group != nil {
		_ = d.group.Close()
	}
	if d.cl != nil {
		_ = d.cl.Close()
	}
	return nil
}

// OnAck is bound to sinks by the pipeline compiler.
func (d *SaramaDriver) OnAck(cp *frame.Checkpoint) {
	if cp == nil {
		return
	}
	rec := recordID{cp.Topic, cp.Partition, cp.Offset}

	select {
	case d.ackCh <- rec:
	default:
		logging.L().Warn("sarama-driver: ack channel full; dropping ack", "topic", rec.topic, "partition", rec.partition, "offset", rec.offset)
	}
}

// commitDue reports whether enough time has passed since the last commit.
func (d *SaramaDriver) commitDue(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if now.Sub(d.lastCommit) < d.cfg.Checkpoint.CommitInt {
		return false
	}
	d.lastCommit = now
	return true
}

// resolve runs and forgets the callback registered for rec, if any.
func (d *SaramaDriver) resolve(rec recordID) bool {
	d.mu.Lock()
	cb, ok := d.pending[rec]
	if ok {
		delete(d.pending, rec)
	}
	d.mu.Unlock()
	if ok {
		cb()
		logging.L().Info("kafka bundle committed", "topic", rec.topic, "partition", rec.partition, "offset", rec.offset)
	}
	return ok
}

type groupHandler struct {
	driver *SaramaDriver
	emit   frame.EmitFunc
}

func (*groupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) Cleanup(_ sarama.ConsumerGroupSession) error {
	h.driver.mu.Lock()
	defer h.driver.mu.Unlock()

	dropped := len(h.driver.pending)
	h.driver.pending = make(map[recordID]func())

	if dropped > 0 {
		logging.L().Info("sarama-driver: rebalance – cleared pending bundles", "count", dropped)
	}
	return nil
}

func (h *groupHandler) ConsumeClaim(
	sess sarama.ConsumerGroupSession,
	claim sarama.ConsumerGroupClaim,
) error {
	for {
		select {
		case <-sess.Context().Done():
			return sess.Context().Err()

		case rec := <-h.driver.ackCh:
			h.driver.resolve(rec)

		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.handle(sess, msg); err != nil {
				return err
			}
		}
	}
}

func (h *groupHandler) handle(sess sarama.ConsumerGroupSession, msg *sarama.ConsumerMessage) error {
	fr, err := frame.FromRecord(msg)
	if err != nil {
		// A malformed record cannot be turned into a unit; skip it so the
		// partition keeps moving.
		logging.L().Error("sarama-driver: dropping record", "err", err)
		return nil
	}
	rec := recordID{msg.Topic, msg.Partition, msg.Offset}
	e2e := fr.EOF && h.driver.mode == CommitE2E
	if e2e {
		// Registered before emit: sinks may ack from inside it.
		h.driver.mu.Lock()
		h.driver.pending[rec] = func() {
			sess.MarkMessage(msg, "")
			sess.Commit()
		}
		h.driver.mu.Unlock()
	}
	if err := h.emit(fr); err != nil {
		if e2e {
			h.driver.mu.Lock()
			delete(h.driver.pending, rec)
			h.driver.mu.Unlock()
		}
		return err
	}
	if !fr.EOF || e2e {
		return nil
	}
	sess.MarkMessage(msg, "")
	if h.driver.commitDue(time.Now()) {
		sess.Commit()
	}
	return nil
}
