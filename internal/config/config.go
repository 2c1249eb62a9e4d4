package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Output
	OutputDir    string
	OutputFormat string // json or yaml

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Figure extraction
	Snapshots             bool
	SnapshotWidth         int
	MaxAxisLabels         int
	ComplexDescriptionLen int
}

// SetDefaults registers every key with its default so env overrides and
// config files resolve through the same names.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8090")
	v.SetDefault("api_key", "")
	v.SetDefault("output_dir", "output")
	v.SetDefault("output_format", "json")
	v.SetDefault("worker_count", 4)
	v.SetDefault("max_queue_size", 100)
	v.SetDefault("max_upload_bytes", 52428800) // 50MB
	v.SetDefault("job_ttl", time.Hour)
	v.SetDefault("snapshots", true)
	v.SetDefault("snapshot_width", 640)
	v.SetDefault("max_axis_labels", 10)
	v.SetDefault("complex_description_len", 100)
}

// New returns a viper instance reading FIGGEST_* environment variables.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("FIGGEST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func Load(v *viper.Viper) Config {
	cfg := Config{
		Port: v.GetString("port"),

		APIKey: v.GetString("api_key"),

		OutputDir:    v.GetString("output_dir"),
		OutputFormat: strings.ToLower(v.GetString("output_format")),

		WorkerCount:  v.GetInt("worker_count"),
		MaxQueueSize: v.GetInt("max_queue_size"),

		MaxUploadBytes: v.GetInt64("max_upload_bytes"),

		JobTTL: v.GetDuration("job_ttl"),

		Snapshots:             v.GetBool("snapshots"),
		SnapshotWidth:         v.GetInt("snapshot_width"),
		MaxAxisLabels:         v.GetInt("max_axis_labels"),
		ComplexDescriptionLen: v.GetInt("complex_description_len"),
	}

	if cfg.Port == "" {
		cfg.Port = "8090"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output"
	}
	if cfg.OutputFormat != "yaml" {
		cfg.OutputFormat = "json"
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.SnapshotWidth <= 0 {
		cfg.SnapshotWidth = 640
	}
	if cfg.MaxAxisLabels <= 0 {
		cfg.MaxAxisLabels = 10
	}
	if cfg.ComplexDescriptionLen <= 0 {
		cfg.ComplexDescriptionLen = 100
	}

	return cfg
}

// Validate checks what the HTTP server needs; the CLI extract and rebuild
// commands run without an API key.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("FIGGEST_API_KEY is required")
	}
	return nil
}
