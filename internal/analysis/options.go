package analysis

import (
	"depscope/internal/complexity"
	"depscope/internal/config"
	"depscope/internal/errors"
	"depscope/internal/grouping"
	"depscope/internal/lang"
	"depscope/internal/render"
)

// Options are the inputs shared by every operation. Zero values fall back
// to the analyzer's configuration.
type Options struct {
	// Path is the file or directory to analyse. Required.
	Path string
	// Language is typescript, javascript, python or auto (default).
	Language string
	// Exclude patterns are unioned with the default exclude set and the
	// configured excludes.
	Exclude []string
	// Format is the graph text format: mermaid (default), dot or json.
	Format string
	// Threshold is the complexity at which a function is a hotspot.
	Threshold int
	// GroupBy is directory (default), package, feature or layer.
	GroupBy string
	// Depth is the directory grouping depth.
	Depth int
	// MaxCycles caps reported cycles; 0 means the configured limit.
	MaxCycles       int
	IncludeExternal bool
	// IncludeUnresolved adds nodes for internal imports that matched no
	// file.
	IncludeUnresolved bool
	Workers           int
}

// settings are Options validated and merged with configuration.
type settings struct {
	path              string
	language          lang.Language
	exclude           []string
	format            render.Format
	thresholds        complexity.Thresholds
	groupBy           grouping.Strategy
	depth             int
	maxCycles         int
	includeExternal   bool
	includeUnresolved bool
	workers           int
	maxDepth          int
	maxFileSize       int64
	markers           []string
}

func (a *Analyzer) settings(opts Options) (*settings, error) {
	if opts.Path == "" {
		return nil, errors.Invalid("", "path is required")
	}
	l, err := lang.Parse(opts.Language)
	if err != nil {
		return nil, errors.Invalid(opts.Path, "%v", err)
	}
	format, err := render.ParseFormat(opts.Format)
	if err != nil {
		return nil, errors.Invalid(opts.Path, "%v", err)
	}
	groupBy, err := grouping.ParseStrategy(opts.GroupBy)
	if err != nil {
		return nil, errors.Invalid(opts.Path, "%v", err)
	}
	if opts.Threshold < 0 || opts.Depth < 0 || opts.MaxCycles < 0 || opts.Workers < 0 {
		return nil, errors.Invalid(opts.Path, "threshold, depth, maxCycles and workers must not be negative")
	}

	cfg := a.cfg
	s := &settings{
		path:              opts.Path,
		language:          l,
		exclude:           append(append([]string{}, cfg.Analysis.Exclude...), opts.Exclude...),
		format:            format,
		groupBy:           groupBy,
		depth:             firstPositive(opts.Depth, cfg.Grouping.Depth),
		maxCycles:         firstPositive(opts.MaxCycles, cfg.Cycles.MaxCycles),
		includeExternal:   opts.IncludeExternal || cfg.Analysis.IncludeExternal,
		includeUnresolved: opts.IncludeUnresolved,
		workers:           firstPositive(opts.Workers, cfg.Analysis.Workers),
		maxDepth:          cfg.Analysis.MaxDepth,
		maxFileSize:       cfg.Analysis.MaxFileSizeBytes,
		markers:           cfg.Grouping.PackageMarkers,
		thresholds: complexity.Thresholds{
			Threshold:          firstPositive(opts.Threshold, cfg.Complexity.Threshold),
			MIFloor:            cfg.Complexity.MIFloor,
			MediumMultiplier:   cfg.Complexity.MediumMultiplier,
			HighMultiplier:     cfg.Complexity.HighMultiplier,
			CriticalMultiplier: cfg.Complexity.CriticalMultiplier,
		},
	}
	if s.workers < 1 {
		s.workers = 1
	}
	return s, nil
}

func firstPositive(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

// configOrDefault returns cfg, or the defaults when cfg is nil.
func configOrDefault(cfg *config.Config) *config.Config {
	if cfg == nil {
		return config.DefaultConfig()
	}
	return cfg
}
