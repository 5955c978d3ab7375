package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Dir is the per-repository configuration directory.
const Dir = ".depscope"

// EnvPrefix prefixes environment overrides, e.g. DEPSCOPE_COMPLEXITY_THRESHOLD.
const EnvPrefix = "DEPSCOPE"

// Config represents the complete depscope configuration
type Config struct {
	Version    int              `json:"version" mapstructure:"version"`
	Analysis   AnalysisConfig   `json:"analysis" mapstructure:"analysis"`
	Complexity ComplexityConfig `json:"complexity" mapstructure:"complexity"`
	Cycles     CyclesConfig     `json:"cycles" mapstructure:"cycles"`
	Grouping   GroupingConfig   `json:"grouping" mapstructure:"grouping"`
	Logging    LoggingConfig    `json:"logging" mapstructure:"logging"`
}

// AnalysisConfig controls file discovery and extraction.
type AnalysisConfig struct {
	Workers          int      `json:"workers" mapstructure:"workers"`
	MaxDepth         int      `json:"maxDepth" mapstructure:"maxDepth"`
	MaxFileSizeBytes int64    `json:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes"`
	Exclude          []string `json:"exclude" mapstructure:"exclude"`
	IncludeExternal  bool     `json:"includeExternal" mapstructure:"includeExternal"`
	CacheSize        int      `json:"cacheSize" mapstructure:"cacheSize"`
}

// ComplexityConfig holds hotspot thresholds.
type ComplexityConfig struct {
	Threshold          int     `json:"threshold" mapstructure:"threshold"`
	MIFloor            float64 `json:"miFloor" mapstructure:"miFloor"`
	MediumMultiplier   float64 `json:"mediumMultiplier" mapstructure:"mediumMultiplier"`
	HighMultiplier     float64 `json:"highMultiplier" mapstructure:"highMultiplier"`
	CriticalMultiplier float64 `json:"criticalMultiplier" mapstructure:"criticalMultiplier"`
}

// CyclesConfig limits cycle reporting. MaxCycles 0 means unlimited.
type CyclesConfig struct {
	MaxCycles int `json:"maxCycles" mapstructure:"maxCycles"`
}

// GroupingConfig controls module grouping.
type GroupingConfig struct {
	Depth          int      `json:"depth" mapstructure:"depth"`
	PackageMarkers []string `json:"packageMarkers" mapstructure:"packageMarkers"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Analysis: AnalysisConfig{
			Workers:          runtime.NumCPU(),
			MaxDepth:         32,
			MaxFileSizeBytes: 2 << 20,
			Exclude:          []string{},
			CacheSize:        4096,
		},
		Complexity: ComplexityConfig{
			Threshold:          10,
			MIFloor:            20,
			MediumMultiplier:   1.5,
			HighMultiplier:     2,
			CriticalMultiplier: 3,
		},
		Grouping: GroupingConfig{
			Depth: 2,
			PackageMarkers: []string{
				"package.json", "pyproject.toml", "setup.py", "__init__.py",
			},
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "warn",
		},
	}
}

// setDefaults registers every key so that environment overrides apply even
// when no configuration file exists.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("version", cfg.Version)

	v.SetDefault("analysis.workers", cfg.Analysis.Workers)
	v.SetDefault("analysis.maxDepth", cfg.Analysis.MaxDepth)
	v.SetDefault("analysis.maxFileSizeBytes", cfg.Analysis.MaxFileSizeBytes)
	v.SetDefault("analysis.exclude", cfg.Analysis.Exclude)
	v.SetDefault("analysis.includeExternal", cfg.Analysis.IncludeExternal)
	v.SetDefault("analysis.cacheSize", cfg.Analysis.CacheSize)

	v.SetDefault("complexity.threshold", cfg.Complexity.Threshold)
	v.SetDefault("complexity.miFloor", cfg.Complexity.MIFloor)
	v.SetDefault("complexity.mediumMultiplier", cfg.Complexity.MediumMultiplier)
	v.SetDefault("complexity.highMultiplier", cfg.Complexity.HighMultiplier)
	v.SetDefault("complexity.criticalMultiplier", cfg.Complexity.CriticalMultiplier)

	v.SetDefault("cycles.maxCycles", cfg.Cycles.MaxCycles)

	v.SetDefault("grouping.depth", cfg.Grouping.Depth)
	v.SetDefault("grouping.packageMarkers", cfg.Grouping.PackageMarkers)

	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// LoadDotEnv loads a .env file from dir into the process environment.
// A missing file is not an error. Variables already set are kept.
func LoadDotEnv(dir string) error {
	err := godotenv.Load(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// LoadConfig loads configuration from <repoRoot>/.depscope/config.{json,yaml,toml}
// and applies DEPSCOPE_* environment overrides.
func LoadConfig(repoRoot string) (*Config, error) {
	return load(repoRoot, "")
}

// LoadFile loads configuration from an explicit file path.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return nil, &ConfigError{Field: "path", Message: "empty config file path"}
	}
	return load("", path)
}

func load(repoRoot, file string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(repoRoot, Dir))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to <repoRoot>/.depscope/config.json
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch {
	case c.Version != 1:
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	case c.Analysis.Workers < 0:
		return &ConfigError{Field: "analysis.workers", Message: "must not be negative"}
	case c.Analysis.MaxDepth < 1:
		return &ConfigError{Field: "analysis.maxDepth", Message: "must be at least 1"}
	case c.Analysis.CacheSize < 0:
		return &ConfigError{Field: "analysis.cacheSize", Message: "must not be negative"}
	case c.Complexity.Threshold < 1:
		return &ConfigError{Field: "complexity.threshold", Message: "must be at least 1"}
	case c.Complexity.MIFloor < 0 || c.Complexity.MIFloor > 100:
		return &ConfigError{Field: "complexity.miFloor", Message: "must be within [0,100]"}
	case !(c.Complexity.MediumMultiplier <= c.Complexity.HighMultiplier &&
		c.Complexity.HighMultiplier <= c.Complexity.CriticalMultiplier):
		return &ConfigError{Field: "complexity", Message: "multipliers must be ordered medium <= high <= critical"}
	case c.Cycles.MaxCycles < 0:
		return &ConfigError{Field: "cycles.maxCycles", Message: "must not be negative"}
	case c.Grouping.Depth < 1:
		return &ConfigError{Field: "grouping.depth", Message: "must be at least 1"}
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be human or json"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
