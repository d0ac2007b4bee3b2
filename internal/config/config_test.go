package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvPrefix+"CONFIG", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LandingWindow != 45 {
		t.Errorf("LandingWindow: want 45, got %d", cfg.LandingWindow)
	}
	if cfg.Workers != runtime.NumCPU() {
		t.Errorf("Workers: want %d, got %d", runtime.NumCPU(), cfg.Workers)
	}
	if cfg.DensityBins != 250 || cfg.MapExtent != 70000 {
		t.Errorf("density defaults: bins=%d extent=%v", cfg.DensityBins, cfg.MapExtent)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poi.yaml")
	yml := "landing_window: 60\nworkers: 3\ntop_cells: 5\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPrefix+"WORKERS", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LandingWindow != 60 {
		t.Errorf("file value: want 60, got %d", cfg.LandingWindow)
	}
	if cfg.Workers != 7 {
		t.Errorf("env should beat file: want 7, got %d", cfg.Workers)
	}
	if cfg.TopCells != 5 {
		t.Errorf("TopCells: want 5, got %d", cfg.TopCells)
	}
	if cfg.DensityBins != 250 {
		t.Errorf("unset key should keep default, got %d", cfg.DensityBins)
	}
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poi.yaml")
	if err := os.WriteFile(path, []byte("map_extent: 1000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPrefix+"CONFIG", path)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MapExtent != 1000 {
		t.Errorf("MapExtent: want 1000, got %v", cfg.MapExtent)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv(EnvPrefix+"CONFIG", "")
	t.Setenv(EnvPrefix+"LANDING_WINDOW", "0")
	_, err := Load("")
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("want ErrInvalidConfig, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
