// Package transform provides the per-unit transformers a pipeline chains in
// front of the concat stage: builtins compiled into the engine and external
// plugins reached over gRPC. A Chain turns them into a concat.Func with
// per-transformer timeouts, retries and latency metrics.
package transform
