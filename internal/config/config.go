package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds Verisight configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Projects  []ProjectConfig `yaml:"projects"`
	Layers    LayersConfig    `yaml:"layers"`
	Fusion    FusionConfig    `yaml:"fusion"`
	Batch     BatchConfig     `yaml:"batch"`
	Audit     AuditConfig     `yaml:"audit"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"` // HTTP listen address, e.g. ":8080"
}

type LoggingConfig struct {
	AuditLevel string `yaml:"audit_level"` // metadata | full
}

// ProjectConfig binds API keys to a named caller. When no projects are
// configured the analyze endpoints are open.
type ProjectConfig struct {
	ID      string   `yaml:"id"`
	APIKeys []string `yaml:"api_keys"`
}

type LayersConfig struct {
	Hash      HashLayerConfig      `yaml:"hash"`
	Metadata  MetadataLayerConfig  `yaml:"metadata"`
	Detection DetectionLayerConfig `yaml:"detection"`
}

type HashLayerConfig struct {
	Enabled    *bool  `yaml:"enabled"`
	CorpusPath string `yaml:"corpus_path"`
	TimeoutMS  int    `yaml:"timeout_ms"`
}

type MetadataLayerConfig struct {
	Enabled              *bool   `yaml:"enabled"`
	TimeoutMS            int     `yaml:"timeout_ms"`
	BaselineAuthenticity float64 `yaml:"baseline_authenticity"`
}

type DetectionLayerConfig struct {
	Enabled   *bool  `yaml:"enabled"`
	ModelDir  string `yaml:"model_dir"`
	InputSize int    `yaml:"input_size"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

// FusionConfig carries the decision constants. They are configurable so
// deployments can recalibrate, but the policy shape is fixed.
type FusionConfig struct {
	Weights  WeightsConfig        `yaml:"weights"`
	Bands    BandsConfig          `yaml:"bands"`
	HashBand HashBandConfig       `yaml:"hash_band"`
	Metadata FusionMetadataConfig `yaml:"metadata"`
	Conflict ConflictConfig       `yaml:"conflict"`
}

type WeightsConfig struct {
	Hash      float64 `yaml:"hash"`
	Metadata  float64 `yaml:"metadata"`
	Detection float64 `yaml:"detection"`
}

type BandsConfig struct {
	AI    float64 `yaml:"ai"`
	Human float64 `yaml:"human"`
}

type HashBandConfig struct {
	Match float64 `yaml:"match"`
	Floor float64 `yaml:"floor"`
}

type FusionMetadataConfig struct {
	SignatureFloor float64 `yaml:"signature_floor"`
	C2PACeiling    float64 `yaml:"c2pa_ceiling"`
}

type ConflictConfig struct {
	High float64 `yaml:"high"`
	Cap  float64 `yaml:"cap"`
}

type BatchConfig struct {
	MaxFiles int `yaml:"max_files"`
	Workers  int `yaml:"workers"`
}

type AuditConfig struct {
	QueueSize int               `yaml:"queue_size"`
	Workers   int               `yaml:"workers"`
	Sinks     []AuditSinkConfig `yaml:"sinks"`
}

type AuditSinkConfig struct {
	Type      string            `yaml:"type"` // stdout | file_jsonl | webhook
	Path      string            `yaml:"path"`
	URL       string            `yaml:"url"`
	Headers   map[string]string `yaml:"headers"`
	TimeoutMS int               `yaml:"timeout_ms"`
}

type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Protocol string `yaml:"protocol"` // grpc | http
}

// IsEnabled treats an unset flag as enabled; layers are opt-out.
func (c HashLayerConfig) IsEnabled() bool      { return c.Enabled == nil || *c.Enabled }
func (c MetadataLayerConfig) IsEnabled() bool  { return c.Enabled == nil || *c.Enabled }
func (c DetectionLayerConfig) IsEnabled() bool { return c.Enabled == nil || *c.Enabled }

// Load reads configuration from a YAML file.
// If the file doesn't exist, it returns a default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Logging.AuditLevel == "" {
		cfg.Logging.AuditLevel = "metadata"
	}

	if cfg.Layers.Hash.CorpusPath == "" {
		cfg.Layers.Hash.CorpusPath = "corpus/aihashes.txt"
	}
	if cfg.Layers.Hash.TimeoutMS <= 0 {
		cfg.Layers.Hash.TimeoutMS = 2000
	}
	if cfg.Layers.Metadata.TimeoutMS <= 0 {
		cfg.Layers.Metadata.TimeoutMS = 1000
	}
	if cfg.Layers.Metadata.BaselineAuthenticity <= 0 {
		cfg.Layers.Metadata.BaselineAuthenticity = 0.3
	}
	if cfg.Layers.Detection.ModelDir == "" {
		cfg.Layers.Detection.ModelDir = "models/verisight_v1"
	}
	if cfg.Layers.Detection.InputSize <= 0 {
		cfg.Layers.Detection.InputSize = 224
	}
	if cfg.Layers.Detection.TimeoutMS <= 0 {
		cfg.Layers.Detection.TimeoutMS = 8000
	}

	if cfg.Fusion.Weights.Hash <= 0 {
		cfg.Fusion.Weights.Hash = 0.3
	}
	if cfg.Fusion.Weights.Metadata <= 0 {
		cfg.Fusion.Weights.Metadata = 0.4
	}
	if cfg.Fusion.Weights.Detection <= 0 {
		cfg.Fusion.Weights.Detection = 0.3
	}
	if cfg.Fusion.Bands.AI <= 0 {
		cfg.Fusion.Bands.AI = 0.65
	}
	if cfg.Fusion.Bands.Human <= 0 {
		cfg.Fusion.Bands.Human = 0.35
	}
	if cfg.Fusion.HashBand.Match <= 0 {
		cfg.Fusion.HashBand.Match = 0.85
	}
	if cfg.Fusion.HashBand.Floor <= 0 {
		cfg.Fusion.HashBand.Floor = 0.70
	}
	if cfg.Fusion.Metadata.SignatureFloor <= 0 {
		cfg.Fusion.Metadata.SignatureFloor = 0.9
	}
	if cfg.Fusion.Metadata.C2PACeiling <= 0 {
		cfg.Fusion.Metadata.C2PACeiling = 0.2
	}
	if cfg.Fusion.Conflict.High <= 0 {
		cfg.Fusion.Conflict.High = 0.8
	}
	if cfg.Fusion.Conflict.Cap <= 0 {
		cfg.Fusion.Conflict.Cap = 0.6
	}

	if cfg.Batch.MaxFiles <= 0 {
		cfg.Batch.MaxFiles = 50
	}
	if cfg.Batch.Workers <= 0 {
		cfg.Batch.Workers = 4
	}

	if cfg.Audit.QueueSize <= 0 {
		cfg.Audit.QueueSize = 1000
	}
	if cfg.Audit.Workers <= 0 {
		cfg.Audit.Workers = 1
	}
	if len(cfg.Audit.Sinks) == 0 {
		cfg.Audit.Sinks = []AuditSinkConfig{{Type: "stdout"}}
	}

	if cfg.Telemetry.Protocol == "" {
		cfg.Telemetry.Protocol = "grpc"
	}
}
