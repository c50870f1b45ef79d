package kafka

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"splice/internal/frame"
	"splice/vfile"
)

func outputFrame() *frame.Frame {
	return &frame.Frame{
		File:       &vfile.File{Base: "/src", Path: "/src/all.js", Contents: []byte("a\nb"), Mode: 0o644},
		EOF:        true,
		Checkpoint: &frame.Checkpoint{Topic: "units", Partition: 0, Offset: 9},
	}
}

func TestDriver_PushPublishesAndAcks(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != "a\nb" {
			return errors.New("unexpected value " + string(val))
		}
		return nil
	})

	var acked *frame.Checkpoint
	d := &driver{cfg: Config{Topic: "bundles"}, p: sp}
	d.BindAck(func(cp *frame.Checkpoint) { acked = cp })

	if err := d.Push(outputFrame()); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if acked == nil || acked.Offset != 9 {
		t.Fatalf("want ack for offset 9, got %+v", acked)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestDriver_PushFailureDoesNotAck(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	acked := false
	d := &driver{cfg: Config{Topic: "bundles"}, p: sp}
	d.BindAck(func(*frame.Checkpoint) { acked = true })

	if err := d.Push(outputFrame()); !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("want ErrOutOfBrokers, got %v", err)
	}
	if acked {
		t.Fatal("failed publish must not ack")
	}
	_ = d.Close()
}

func TestDriver_ConfigureRejectsWrongType(t *testing.T) {
	if err := (&driver{}).Configure("nope"); err == nil {
		t.Fatal("expected type error")
	}
}

func TestLoadConfig(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sink.yml")
	if err := os.WriteFile(p, []byte("brokers: [k1:9092]\ntopic: bundles\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("SPLICE_KAFKA_SINK__REQUIRED_ACKS", "1")

	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Topic != "bundles" || cfg.Acks != 1 || cfg.Version != "2.1.0" {
		t.Fatalf("unexpected config %+v", cfg)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatal("expected error without brokers/topic")
	}
}
