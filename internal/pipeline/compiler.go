package pipeline

import (
	"fmt"
	"time"

	"splice/concat"
	"splice/internal/config"
	"splice/internal/frame"
	"splice/internal/spec"
	"splice/internal/telemetry"
	"splice/internal/transform"
	"splice/sink"
	"splice/sink/stdout"
	"splice/source/kafka"
	"splice/vfile"
)

func Compile(path string, m *telemetry.Metrics) (*Runner, error) {
	r := NewRunner(m)
	if err := LoadYAML(path, r); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

func LoadYAML(path string, r *Runner) error {
	cfg, confPath, err := config.LoadPipelineSpec(path)
	if err != nil {
		return err
	}

	stageCfg, err := stageConfig(cfg.Stage)
	if err != nil {
		return err
	}
	r.SetStage(stageCfg)

	if err := addTransformers(cfg.Transformers, r); err != nil {
		return err
	}

	if cfg.Source.Kind != "kafka" {
		return fmt.Errorf("unsupported source %q", cfg.Source.Kind)
	}
	kc, err := config.LoadKafkaConfig(confPath)
	if err != nil {
		return err
	}
	src, err := kafka.NewAdapter(cfg.Source.Driver)
	if err != nil {
		return err
	}
	if err = src.Configure(kc); err != nil {
		return err
	}
	r.SetSource(src)

	// driver may want acks from sinks
	if aw, ok := src.(interface{ OnAck(*frame.Checkpoint) }); ok {
		r.SubscribeAck(aw.OnAck)
	}

	return addSinks(cfg, r)
}

// placeholder satisfies validation; the runner swaps in its chain.
func placeholder(c []byte, _ *vfile.File) ([]byte, error) { return c, nil }

func stageConfig(s spec.StageSpec) (concat.Config, error) {
	mode, err := config.ParseMode(s.Mode)
	if err != nil {
		return concat.Config{}, err
	}
	opts := concat.Options{
		Path:      s.Path,
		Transform: placeholder,
		Cwd:       s.Cwd,
		Base:      s.Base,
		NewLine:   s.NewLine,
		Mode:      mode,
	}
	if s.Object {
		return concat.ResolveOptions(opts)
	}
	return concat.Resolve(s.Path, placeholder, &opts)
}

func addTransformers(specs []spec.TransformerSpec, r *Runner) error {
	for _, t := range specs {
		to := time.Duration(t.TimeoutMS) * time.Millisecond
		attempts := t.RetryPolicy.Attempts
		backoff := time.Duration(t.RetryPolicy.BackoffMS) * time.Millisecond

		switch t.Type {
		case "builtin", "":
			name := t.Builtin
			if name == "" {
				name = t.Name
			}
			impl, err := transform.Builtin(name)
			if err != nil {
				return fmt.Errorf("transform %s: %w", t.Name, err)
			}
			r.AddTransformer(t.Name, impl, to, attempts, backoff)
		case "grpc":
			cli, err := transform.NewGRPCClient(t.Address)
			if err != nil {
				return fmt.Errorf("transform %s: dial %s: %w", t.Name, t.Address, err)
			}
			r.AddTransformer(t.Name, cli, to, attempts, backoff)
		default:
			return fmt.Errorf("unsupported transformer type %q for %s", t.Type, t.Name)
		}
	}
	return nil
}

func addSinks(cfg spec.File, r *Runner) error {
	if len(cfg.Sinks) == 0 {
		return fmt.Errorf("pipeline declares no sinks")
	}
	for _, name := range cfg.Sinks {
		sDrv, err := sink.NewAdapter(name)
		if err != nil {
			return err
		}

		switch name {
		case "stdout":
			err = sDrv.Configure(stdout.Config{
				PrintContents: cfg.SinkConfigs.Stdout.PrintContents,
				MaxBytes:      cfg.SinkConfigs.Stdout.MaxBytes,
				PrintMap:      cfg.SinkConfigs.Stdout.PrintMap,
			})
		case "kafka":
			kc, lerr := config.LoadKafkaSinkConfig(cfg.SinkConfigs.Kafka)
			if lerr != nil {
				return lerr
			}
			err = sDrv.Configure(kc)
		default:
			err = fmt.Errorf("no config block for sink %q", name)
		}
		if err != nil {
			return err
		}

		// If the sink supports acks, bind it.
		if ackAware, ok := sDrv.(sink.AckAware); ok {
			ackAware.BindAck(r.Ack)
		}
		r.AddSink(sDrv)
	}
	return nil
}
