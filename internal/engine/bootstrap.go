package engine

import (
	"context"
	"fmt"

	"splice/internal/logging"
	"splice/internal/pipeline"
	"splice/internal/telemetry"
	"splice/internal/transport"
)

func Bootstrap(ctx context.Context, cfg Config) (*Engine, error) {
	// 1. transport server
	srv, err := transport.StartServer(cfg.GRPCPort)
	if err != nil {
		return nil, fmt.Errorf("transport: %w", err)
	}

	// 2. pipeline runner
	var runner *pipeline.Runner
	if cfg.PipelineYml != "" {
		runner, err = pipeline.Compile(cfg.PipelineYml, telemetry.Default())
		if err != nil {
			srv.Stop()
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		if err := runner.Start(ctx); err != nil {
			srv.Stop()
			_ = runner.Close()
			return nil, err
		}
		srv.SetPipelineServing(true)
	}

	// 3. metrics
	telemetry.Expose(cfg.MetricsPort)

	logging.For("engine").Info("engine started",
		"grpc_port", cfg.GRPCPort, "metrics_port", cfg.MetricsPort, "pipeline", cfg.PipelineYml)

	return &Engine{
		transport: srv,
		runner:    runner,
	}, nil
}
