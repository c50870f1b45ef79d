package kafka

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type CommitMode string

const (
	CommitAuto CommitMode = "auto" // commit once the runner has taken the bundle
	CommitE2E  CommitMode = "e2e"  // commit when a sink acks the bundle output
)

type CheckpointCfg struct {
	CommitInt time.Duration `koanf:"commit_interval"` // minimum gap between commits in auto mode
}

type Config struct {
	Brokers   []string `koanf:"brokers"`
	Topics    []string `koanf:"topics"`
	GroupID   string   `koanf:"group_id"`
	StartFrom string   `koanf:"start_from"` // oldest|newest (default oldest)
	Version   string   `koanf:"version"`
	TLSEn     bool     `koanf:"tls_enabled"`
	SASLUser  string   `koanf:"sasl_user"`
	SASLPass  string   `koanf:"sasl_pass"`

	CommitMode CommitMode    `koanf:"commit_mode"` // auto|e2e
	Checkpoint CheckpointCfg `koanf:"checkpoint"`
	// AckBuffer bounds acks waiting for the consume loop.
	AckBuffer int `koanf:"ack_buffer"`
}

// LoadConfig merges YAML (if present) with env-vars
// (prefix `SPLICE_KAFKA__`, delimiter `__`).
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	// schema version check (only when YAML is present)
	sv := k.String("schema_version")
	if sv != "" && sv != "v1" {
		return Config{}, fmt.Errorf("kafka schema_version %q not supported (want v1)", sv)
	}

	_ = k.Load(env.Provider("SPLICE_KAFKA__", ".", envKey("SPLICE_KAFKA__")), nil)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	if len(cfg.Brokers) == 0 {
		return cfg, errors.New("kafka: no brokers configured")
	}
	if len(cfg.Topics) == 0 || cfg.GroupID == "" {
		return cfg, errors.New("kafka: topics and group_id are required")
	}
	return cfg, nil
}

func applyDefaults(c *Config) {
	if c.Checkpoint.CommitInt == 0 {
		c.Checkpoint.CommitInt = 5 * time.Second
	}
	if c.CommitMode != CommitAuto && c.CommitMode != CommitE2E {
		c.CommitMode = CommitAuto
	}
	if c.StartFrom == "" {
		c.StartFrom = "oldest"
	}
	if c.Version == "" {
		c.Version = "2.1.0"
	}
	if c.AckBuffer <= 0 {
		c.AckBuffer = 1024
	}
}

// envKey maps SPLICE_KAFKA__CHECKPOINT__COMMIT_INTERVAL to
// checkpoint.commit_interval.
func envKey(prefix string) func(string) string {
	return func(s string) string {
		s = strings.TrimPrefix(s, prefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}
}
