package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writePipeline(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, "pipeline.yml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write pipeline: %v", err)
	}
	return p
}

func TestLoadPipelineSpec_ResolvesRelativeConfigsAndSchema(t *testing.T) {
	dir := t.TempDir()
	p := writePipeline(t, dir, `schema_version: v1
source:
  kind: kafka
  driver: sarama
  config: kafka_source.yml
stage:
  path: all.js
  mode: "0640"
transformers:
  - name: up
    type: builtin
    builtin: upper
sinks: [stdout, kafka]
sink_configs:
  kafka: kafka_sink.yml
`)

	cfg, abs, err := LoadPipelineSpec(p)
	if err != nil {
		t.Fatalf("LoadPipelineSpec: %v", err)
	}
	if cfg.SchemaVersion != SupportedSchema {
		t.Fatalf("want schema %s, got %s", SupportedSchema, cfg.SchemaVersion)
	}
	if abs != filepath.Join(dir, "kafka_source.yml") {
		t.Fatalf("want absolute kafka config path, got %q", abs)
	}
	if cfg.SinkConfigs.Kafka != filepath.Join(dir, "kafka_sink.yml") {
		t.Fatalf("want resolved sink config path, got %q", cfg.SinkConfigs.Kafka)
	}
	if cfg.Stage.NewLine != nil {
		t.Fatalf("absent new_line must stay nil, got %q", *cfg.Stage.NewLine)
	}
	if len(cfg.Transformers) != 1 || cfg.Transformers[0].Builtin != "upper" {
		t.Fatalf("unexpected transformers: %+v", cfg.Transformers)
	}
}

func TestLoadPipelineSpec_EmptyNewLineIsKept(t *testing.T) {
	p := writePipeline(t, t.TempDir(), `stage:
  path: all.js
  new_line: ""
sinks: [stdout]
`)
	cfg, _, err := LoadPipelineSpec(p)
	if err != nil {
		t.Fatalf("LoadPipelineSpec: %v", err)
	}
	if cfg.Stage.NewLine == nil || *cfg.Stage.NewLine != "" {
		t.Fatalf("want explicit empty new_line, got %v", cfg.Stage.NewLine)
	}
}

func TestLoadPipelineSpec_InvalidSchema(t *testing.T) {
	p := writePipeline(t, t.TempDir(), `schema_version: v999
source: { kind: kafka, driver: sarama, config: cf.yml }
stage: { path: all.js }
sinks: [stdout]
`)
	if _, _, err := LoadPipelineSpec(p); err == nil {
		t.Fatal("expected error for invalid schema_version")
	}
}

func TestLoadPipelineSpec_RequiresStagePath(t *testing.T) {
	p := writePipeline(t, t.TempDir(), "sinks: [stdout]\n")
	if _, _, err := LoadPipelineSpec(p); err == nil {
		t.Fatal("expected error for missing stage.path")
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != nil {
		t.Fatalf("empty mode: want nil, got %v (%v)", m, err)
	}
	for _, in := range []string{"0644", "644", "0o644"} {
		m, err := ParseMode(in)
		if err != nil || *m != 0o644 {
			t.Fatalf("ParseMode(%q) = %v, %v", in, m, err)
		}
	}
	for _, in := range []string{"abc", "0999", "17777"} {
		if _, err := ParseMode(in); err == nil {
			t.Fatalf("ParseMode(%q): expected error", in)
		}
	}
}
