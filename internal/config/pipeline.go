package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"splice/internal/spec"
)

const SupportedSchema = "v1"

// LoadPipelineSpec parses a pipeline YAML, validates schema_version and the
// stage block, and returns the parsed spec and an absolute path to the
// source config (if set). Sink config paths are resolved in place.
func LoadPipelineSpec(path string) (spec.File, string, error) {
	var cfg spec.File
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, "", err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, "", err
	}
	if cfg.SchemaVersion == "" {
		cfg.SchemaVersion = SupportedSchema
	}
	if cfg.SchemaVersion != SupportedSchema {
		return cfg, "", fmt.Errorf("pipeline schema_version %q not supported (want %q)", cfg.SchemaVersion, SupportedSchema)
	}
	if cfg.Stage.Path == "" {
		return cfg, "", fmt.Errorf("pipeline stage.path is required")
	}
	if _, err := ParseMode(cfg.Stage.Mode); err != nil {
		return cfg, "", err
	}
	dir := filepath.Dir(path)
	cfg.SinkConfigs.Kafka = resolve(dir, cfg.SinkConfigs.Kafka)
	return cfg, resolve(dir, cfg.Source.Config), nil
}

// ParseMode parses an octal permission string. An empty string yields nil.
func ParseMode(s string) (*fs.FileMode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0o"), 8, 32)
	if err != nil {
		return nil, fmt.Errorf("pipeline stage.mode %q: want octal permission bits", s)
	}
	if v > uint64(fs.ModePerm) {
		return nil, fmt.Errorf("pipeline stage.mode %q: out of range", s)
	}
	m := fs.FileMode(v)
	return &m, nil
}

func resolve(dir, p string) string {
	if p != "" && !filepath.IsAbs(p) {
		return filepath.Join(dir, p)
	}
	return p
}
