package kafka

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/IBM/sarama"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"splice/internal/frame"
	"splice/internal/logging"
	"splice/sink"
)

type Config struct {
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
	Acks    int16    `koanf:"required_acks"` // 0,1,-1
	Version string   `koanf:"version"`
}

// LoadConfig reads the sink YAML and applies SPLICE_KAFKA_SINK__* overrides.
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	const prefix = "SPLICE_KAFKA_SINK__"
	_ = k.Load(env.Provider(prefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, prefix)), "__", ".")
	}), nil)

	cfg := Config{Acks: int16(sarama.WaitForAll), Version: "2.1.0"}
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return cfg, errors.New("kafka-sink: brokers and topic are required")
	}
	return cfg, nil
}

type driver struct {
	cfg Config
	p   sarama.SyncProducer
	ack frame.AckFunc
}

func (d *driver) Configure(c any) error {
	cfg, ok := c.(Config)
	if !ok {
		return fmt.Errorf("kafka-sink: want Config, got %T", c)
	}
	d.cfg = cfg

	ver, err := sarama.ParseKafkaVersion(cfg.Version)
	if err != nil {
		return err
	}
	sc := sarama.NewConfig()
	sc.Version = ver
	sc.Producer.RequiredAcks = sarama.RequiredAcks(cfg.Acks)
	sc.Producer.Return.Successes = true
	d.p, err = sarama.NewSyncProducer(cfg.Brokers, sc)
	return err
}

// Push publishes the output unit: key = relative path, value = contents.
func (d *driver) Push(fr *frame.Frame) error {
	f := fr.File
	if f == nil {
		return errors.New("kafka-sink: frame without unit")
	}
	headers, err := frame.Headers(f)
	if err != nil {
		return fmt.Errorf("kafka-sink: %w", err)
	}
	partition, offset, err := d.p.SendMessage(&sarama.ProducerMessage{
		Topic:   d.cfg.Topic,
		Key:     sarama.StringEncoder(f.Relative()),
		Value:   sarama.ByteEncoder(f.Contents),
		Headers: headers,
	})
	if err != nil {
		return fmt.Errorf("kafka-sink: publish %s: %w", f.Relative(), err)
	}
	logging.L().Debug("kafka-sink: published", "topic", d.cfg.Topic, "partition", partition, "offset", offset, "path", f.Relative())
	if d.ack != nil {
		d.ack(fr.Checkpoint)
	}
	return nil
}

func (d *driver) BindAck(fn frame.AckFunc) { d.ack = fn }

func (d *driver) Close() error {
	if d.p == nil {
		return nil
	}
	err := d.p.Close()
	d.p = nil
	return err
}

func init() { sink.Register("kafka", func() sink.Adapter { return &driver{} }) }
