package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.NumThreads != Default().NumThreads {
		t.Fatalf("expected default NumThreads, got %d", cfg.NumThreads)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	os.WriteFile(path, []byte("num_threads = 8\nvalidation_layers = true\n"), 0o644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.NumThreads != 8 || !cfg.ValidationLayers {
		t.Fatalf("file values did not override defaults: %+v", cfg)
	}
}

func TestEnvOverridesNumThreads(t *testing.T) {
	t.Setenv("DVZ_NUM_THREADS", "16")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.NumThreads != 16 {
		t.Fatalf("expected DVZ_NUM_THREADS to override, got %d", cfg.NumThreads)
	}
}
