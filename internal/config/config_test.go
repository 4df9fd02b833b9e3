package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
input_dir: /data/in
output_dir: /data/out
log_level: debug
max_file_size_mb: 50
xlsx_output: true
max_concurrency: 2
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/in", cfg.InputDir)
	assert.Equal(t, "/data/out", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 50, cfg.MaxFileSizeMB)
	assert.True(t, cfg.XLSXOutput)
	assert.Equal(t, 2, cfg.MaxConcurrency)
	// Untouched settings keep their defaults.
	assert.True(t, cfg.ZipBundle)
	assert.True(t, cfg.ContinueOnError)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input_dir: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"defaults are valid", func(c *Config) {}, nil},
		{"missing input dir", func(c *Config) { c.InputDir = "" }, ErrMissingInputDir},
		{"missing output dir", func(c *Config) { c.OutputDir = "" }, ErrMissingOutputDir},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, ErrInvalidLogLevel},
		{"negative size gate", func(c *Config) { c.MaxFileSizeMB = -1 }, ErrInvalidMaxFileSize},
		{"zero concurrency", func(c *Config) { c.MaxConcurrency = 0 }, ErrInvalidConcurrency},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}
