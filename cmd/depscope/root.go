package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"depscope/internal/analysis"
	"depscope/internal/config"
	"depscope/internal/errors"
	"depscope/internal/output"
	"depscope/internal/slogutil"
	"depscope/internal/version"
)

var (
	languageFlag        string
	excludeFlags        []string
	configFlag          string
	verbosityFlag       int
	quietFlag           bool
	outputFlag          string
	workersFlag         int
	includeExternalFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "depscope",
	Short: "depscope - source-aware dependency graph analysis",
	Long: `depscope scans TypeScript, JavaScript and Python projects, builds the
module dependency graph and reports circular dependencies, complexity
hotspots, coupling metrics and an architecture overview.`,
	Version:       version.Info(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("depscope version {{.Version}}\n")
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&languageFlag, "language", "l", "auto", "Source language: typescript, javascript, python or auto")
	pf.StringSliceVarP(&excludeFlags, "exclude", "e", nil, "Directory names or globs to exclude (repeatable)")
	pf.StringVar(&configFlag, "config", "", "Config file (default: <path>/.depscope/config.json)")
	pf.CountVarP(&verbosityFlag, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	pf.BoolVarP(&quietFlag, "quiet", "q", false, "Suppress all log output")
	pf.StringVarP(&outputFlag, "output", "o", "human", "Output format: human, json or yaml")
	pf.IntVar(&workersFlag, "workers", 0, "Parallel extraction workers (default: number of CPUs)")
	pf.BoolVar(&includeExternalFlag, "include-external", false, "Treat unresolvable imports as external packages and add external nodes to the graph")
}

// env is everything a command needs to run one analysis.
type env struct {
	ctx      context.Context
	cancel   context.CancelFunc
	analyzer *analysis.Analyzer
	opts     analysis.Options
	format   output.Format
	logger   *slog.Logger
	out      io.Writer
}

// newEnv loads configuration for the analysed path and builds the analyzer.
// Precedence is flag, then DEPSCOPE_* environment, then config file.
func newEnv(cmd *cobra.Command, args []string) (*env, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	format, err := output.ParseFormat(outputFlag)
	if err != nil {
		return nil, errors.Invalid("", "%v", err)
	}

	if wd, err := os.Getwd(); err == nil {
		if err := config.LoadDotEnv(wd); err != nil {
			return nil, err
		}
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cmd, cfg)
	a, err := analysis.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	return &env{
		ctx:      ctx,
		cancel:   cancel,
		analyzer: a,
		format:   format,
		logger:   logger,
		out:      cmd.OutOrStdout(),
		opts: analysis.Options{
			Path:            path,
			Language:        languageFlag,
			Exclude:         excludeFlags,
			Workers:         workersFlag,
			IncludeExternal: includeExternalFlag,
		},
	}, nil
}

func loadConfig(path string) (*config.Config, error) {
	if configFlag != "" {
		cfg, err := config.LoadFile(configFlag)
		if err != nil {
			return nil, errors.Invalid(configFlag, "%v", err)
		}
		return cfg, nil
	}
	root := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		root = filepath.Dir(path)
	}
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, errors.Invalid(root, "%v", err)
	}
	return cfg, nil
}

// newLogger logs to stderr. Without -v or --quiet the configured level
// applies.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level := slogutil.LevelFromString(cfg.Logging.Level)
	if quietFlag || verbosityFlag > 0 {
		level = slogutil.LevelFromVerbosity(verbosityFlag, quietFlag)
	}
	return slogutil.New(cmd.ErrOrStderr(), level, slogutil.Format(cfg.Logging.Format))
}

// emit writes v as JSON or YAML, or calls human for human output.
func (e *env) emit(v any, human func(io.Writer)) error {
	if e.format == output.FormatHuman {
		human(e.out)
		return nil
	}
	if err := output.Write(e.out, v, e.format); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
