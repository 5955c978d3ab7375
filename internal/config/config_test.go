package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Analysis.MaxDepth != 32 {
		t.Errorf("MaxDepth = %d, want 32", cfg.Analysis.MaxDepth)
	}
	if cfg.Complexity.Threshold != 10 {
		t.Errorf("Threshold = %d, want 10", cfg.Complexity.Threshold)
	}
	if cfg.Complexity.MIFloor != 20 {
		t.Errorf("MIFloor = %v, want 20", cfg.Complexity.MIFloor)
	}
	if cfg.Grouping.Depth != 2 {
		t.Errorf("Grouping.Depth = %d, want 2", cfg.Grouping.Depth)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Complexity.Threshold != 10 {
		t.Errorf("expected defaults, got threshold %d", cfg.Complexity.Threshold)
	}
}

func TestLoadConfig_JSON(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.json", `{
  "version": 1,
  "complexity": {"threshold": 15},
  "analysis": {"exclude": ["generated/**"]}
}`)

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Complexity.Threshold != 15 {
		t.Errorf("Threshold = %d, want 15", cfg.Complexity.Threshold)
	}
	if len(cfg.Analysis.Exclude) != 1 || cfg.Analysis.Exclude[0] != "generated/**" {
		t.Errorf("Exclude = %v", cfg.Analysis.Exclude)
	}
	// Unset keys keep their defaults.
	if cfg.Analysis.MaxDepth != 32 {
		t.Errorf("MaxDepth = %d, want default 32", cfg.Analysis.MaxDepth)
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.yaml", "version: 1\ncycles:\n  maxCycles: 5\n")

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Cycles.MaxCycles != 5 {
		t.Errorf("MaxCycles = %d, want 5", cfg.Cycles.MaxCycles)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.json", `{"version": 1, "complexity": {"threshold": 15}}`)
	t.Setenv("DEPSCOPE_COMPLEXITY_THRESHOLD", "25")

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Complexity.Threshold != 25 {
		t.Errorf("Threshold = %d, want env override 25", cfg.Complexity.Threshold)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.json", `{"version": 1, "grouping": {"depth": 0}}`)

	_, err := LoadConfig(root)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if _, ok := err.(*ConfigError); !ok {
		t.Errorf("expected *ConfigError, got %T", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(path, []byte("version = 1\n[grouping]\ndepth = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Grouping.Depth != 3 {
		t.Errorf("Depth = %d, want 3", cfg.Grouping.Depth)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("explicit missing file should fail")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.Cycles.MaxCycles = 7
	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Cycles.MaxCycles != 7 {
		t.Errorf("MaxCycles = %d, want 7", loaded.Cycles.MaxCycles)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadDotEnv(dir); err != nil {
		t.Errorf("missing .env should be ignored: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DEPSCOPE_TEST_DOTENV=yes\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DEPSCOPE_TEST_DOTENV", "")
	os.Unsetenv("DEPSCOPE_TEST_DOTENV")
	if err := LoadDotEnv(dir); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if os.Getenv("DEPSCOPE_TEST_DOTENV") != "yes" {
		t.Error("expected .env variable to be loaded")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad version", func(c *Config) { c.Version = 9 }, "version"},
		{"negative workers", func(c *Config) { c.Analysis.Workers = -1 }, "analysis.workers"},
		{"zero threshold", func(c *Config) { c.Complexity.Threshold = 0 }, "complexity.threshold"},
		{"unordered multipliers", func(c *Config) { c.Complexity.HighMultiplier = 5 }, "complexity"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			ce, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func writeConfig(t *testing.T, root, name, content string) {
	t.Helper()
	dir := filepath.Join(root, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
