// Package config loads the engine's TOML configuration, the way the
// teacher's shader loader decodes TOML manifests via go-toml/v2.
package config

import (
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// EngineConfig controls process-wide defaults; Load applies the env var
// overrides (spec.md §6.2) on top of them.
type EngineConfig struct {
	NumThreads       int    `toml:"num_threads"`
	VsyncDefault     bool   `toml:"vsync_default"`
	ValidationLayers bool   `toml:"validation_layers"`
	ShaderSourceDir  string `toml:"shader_source_dir"`
}

// Default returns the built-in configuration, the baseline Load starts
// from before applying a file and environment overrides.
func Default() *EngineConfig {
	return &EngineConfig{
		NumThreads:       4,
		VsyncDefault:     true,
		ValidationLayers: false,
		ShaderSourceDir:  "shaders",
	}
}

// Load reads path (if it exists) over the defaults, then applies the
// DVZ_NUM_THREADS and DVZ_DEBUG (-> enables validation layers) env vars
// from spec.md §6.2.
func Load(path string) (*EngineConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if v := os.Getenv("DVZ_NUM_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.NumThreads = n
		}
	}
	if os.Getenv("DVZ_DEBUG") != "" {
		cfg.ValidationLayers = true
	}
	return cfg, nil
}
