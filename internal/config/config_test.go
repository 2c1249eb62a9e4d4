package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load(New())

	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, 100, cfg.MaxQueueSize)
	assert.Equal(t, int64(52428800), cfg.MaxUploadBytes)
	assert.Equal(t, time.Hour, cfg.JobTTL)
	assert.True(t, cfg.Snapshots)
	assert.Equal(t, 640, cfg.SnapshotWidth)
	assert.Equal(t, 10, cfg.MaxAxisLabels)
	assert.Equal(t, 100, cfg.ComplexDescriptionLen)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FIGGEST_PORT", "9000")
	t.Setenv("FIGGEST_OUTPUT_FORMAT", "YAML")
	t.Setenv("FIGGEST_WORKER_COUNT", "8")
	t.Setenv("FIGGEST_JOB_TTL", "30m")
	t.Setenv("FIGGEST_SNAPSHOTS", "false")
	t.Setenv("FIGGEST_COMPLEX_DESCRIPTION_LEN", "60")

	cfg := Load(New())
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "yaml", cfg.OutputFormat)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.Equal(t, 30*time.Minute, cfg.JobTTL)
	assert.False(t, cfg.Snapshots)
	assert.Equal(t, 60, cfg.ComplexDescriptionLen)
}

func TestLoad_ClampsInvalidValues(t *testing.T) {
	v := New()
	v.Set("worker_count", -1)
	v.Set("max_queue_size", 0)
	v.Set("output_format", "xml")
	v.Set("max_axis_labels", -5)

	cfg := Load(v)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, 100, cfg.MaxQueueSize)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, 10, cfg.MaxAxisLabels)
}

func TestValidate(t *testing.T) {
	cfg := Load(New())
	cfg.APIKey = ""
	require.Error(t, cfg.Validate())

	cfg.APIKey = "secret"
	assert.NoError(t, cfg.Validate())
}
