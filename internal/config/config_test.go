package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "STR_TIME", cfg.Keys.CaptureStart)
	assert.Equal(t, "END_TIME", cfg.Keys.CaptureEnd)
	assert.Equal(t, 1.0, cfg.Stretch.Low)
	assert.Equal(t, 99.9, cfg.Stretch.High)
	assert.Equal(t, 0.03, cfg.Stretch.Expansion)

	s, err := cfg.NewStretcher()
	require.NoError(t, err)
	assert.Equal(t, "percentile", s.Name())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"minmax ok", func(c *Config) { c.Stretch.Method = "minmax" }, false},
		{"unknown method", func(c *Config) { c.Stretch.Method = "zscale" }, true},
		{"negative workers", func(c *Config) { c.Workers = -1 }, true},
		{"low above high", func(c *Config) { c.Stretch.Low = 99; c.Stretch.High = 1 }, true},
		{"high above 100", func(c *Config) { c.Stretch.High = 101 }, true},
		{"negative expansion", func(c *Config) { c.Stretch.Expansion = -0.1 }, true},
		{"no start key", func(c *Config) { c.Keys.CaptureStart = "" }, true},
		{"no frame ext", func(c *Config) { c.FrameExt = "" }, true},
		{"delete without video", func(c *Config) { c.ProduceVideo = false; c.DeleteFrames = true }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fits2ser.yaml")
	yaml := `
output_dir: /data/out
workers: 3
delete_frames: true
stretch:
  method: minmax
ser:
  telescope: CHASE
keys:
  capture_start: DATE-OBS
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	t.Setenv("FITS2SER_WORKERS", "5")
	t.Setenv("FITS2SER_OBSERVER", "BA7LFN")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/out", cfg.OutputDir)
	assert.Equal(t, 5, cfg.Workers)
	assert.True(t, cfg.ProduceVideo, "defaults survive partial files")
	assert.True(t, cfg.DeleteFrames)
	assert.Equal(t, "minmax", cfg.Stretch.Method)
	assert.Equal(t, 99.9, cfg.Stretch.High)
	assert.Equal(t, "CHASE", cfg.SER.Telescope)
	assert.Equal(t, "BA7LFN", cfg.SER.Observer)
	assert.Equal(t, "DATE-OBS", cfg.Keys.CaptureStart)
	assert.Equal(t, "END_TIME", cfg.Keys.CaptureEnd)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("workers: [1, 2"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)

	t.Setenv("FITS2SER_WORKERS", "many")
	_, err = Load("")
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.OutputDir = "/tmp/x"
	cfg.SER.Instrument = "RSM"
	require.NoError(t, cfg.Save(path))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}
