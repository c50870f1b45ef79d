package engine

import (
	"context"

	"splice/internal/pipeline"
	"splice/internal/transport"
)

type Config struct {
	GRPCPort    int
	MetricsPort int
	PipelineYml string // optional; without it only health is served
}

type Engine struct {
	transport *transport.Server
	runner    *pipeline.Runner
}

func (e *Engine) Run(ctx context.Context) error {

	go func() {
		<-ctx.Done()
		e.transport.SetPipelineServing(false)
		e.transport.Stop()
		if e.runner != nil {
			_ = e.runner.Close()
		}
	}()

	return e.transport.Serve()
}
