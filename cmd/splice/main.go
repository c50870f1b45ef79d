package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"splice/internal/engine"
	"splice/internal/logging"
)

func main() {
	var cfg engine.Config
	opts := logging.FromEnv()

	pflag.StringVarP(&cfg.PipelineYml, "pipeline", "p", "pipeline.yml", "Pipeline spec to run (empty serves health only).")
	pflag.IntVar(&cfg.GRPCPort, "grpc-port", 7070, "Port for the engine gRPC health service.")
	pflag.IntVar(&cfg.MetricsPort, "metrics-port", 9100, "Port for Prometheus /metrics.")
	pflag.StringVar(&opts.Level, "log-level", opts.Level, "Log level: debug, info, warn, error.")
	pflag.BoolVar(&opts.JSON, "log-json", opts.JSON, "Emit JSON logs.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Concatenates bundles of file units from Kafka into one output unit per bundle.")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	logging.Configure(opts)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := engine.Bootstrap(ctx, cfg)
	if err != nil {
		logging.L().Error("bootstrap", "err", err)
		os.Exit(1)
	}

	if err := e.Run(ctx); err != nil {
		logging.L().Error("engine", "err", err)
		os.Exit(1)
	}
}
