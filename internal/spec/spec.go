package spec

type sinkConfigs struct {
	Kafka  string       `yaml:"kafka"` // path to a koanf YAML file
	Stdout stdoutConfig `yaml:"stdout"`
}

type stdoutConfig struct {
	PrintContents bool `yaml:"print_contents"`
	MaxBytes      int  `yaml:"max_bytes"`
	PrintMap      bool `yaml:"print_map"`
}

// StageSpec configures the concat stage that is built for every bundle.
type StageSpec struct {
	Path string `yaml:"path"`
	Cwd  string `yaml:"cwd"`
	Base string `yaml:"base"`
	// NewLine stays nil when the key is absent so that new_line: "" can
	// select an empty separator.
	NewLine *string `yaml:"new_line"`
	Mode    string  `yaml:"mode"` // octal, e.g. "0644"
	// Object selects the object call shape (path used verbatim).
	Object bool `yaml:"object"`
}

type TransformerSpec struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`    // "builtin" or "grpc"
	Builtin     string `yaml:"builtin"` // identity, upper, trim, markdown
	Address     string `yaml:"address"` // e.g. "localhost:50051"
	TimeoutMS   int    `yaml:"timeout_ms"`
	RetryPolicy struct {
		Attempts  int `yaml:"attempts"`
		BackoffMS int `yaml:"backoff_ms"`
	} `yaml:"retry_policy"`
}

type File struct {
	SchemaVersion string `yaml:"schema_version"`

	Source struct {
		Kind   string `yaml:"kind"`
		Driver string `yaml:"driver"`
		Config string `yaml:"config"`
	} `yaml:"source"`

	Stage StageSpec `yaml:"stage"`

	// Ordered chain applied to every unit before concatenation.
	Transformers []TransformerSpec `yaml:"transformers"`

	Sinks       []string    `yaml:"sinks"`
	SinkConfigs sinkConfigs `yaml:"sink_configs"`
}
