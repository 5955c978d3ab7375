// Package analysis is the dependency engine: it scans a project, extracts
// and classifies imports, builds the module graph and answers the graph,
// cycle, complexity, coupling and architecture queries from it.
package analysis

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"depscope/internal/complexity"
	"depscope/internal/config"
	"depscope/internal/errors"
	"depscope/internal/extract"
	"depscope/internal/graph"
	"depscope/internal/lang"
	"depscope/internal/manifest"
	"depscope/internal/resolve"
	"depscope/internal/scanner"
	"depscope/internal/slogutil"
)

var tracer = otel.Tracer("depscope/analysis")

// Analyzer runs analyses. It owns the parse cache, so repeated operations
// on an unchanged tree skip re-parsing. Safe for concurrent use.
type Analyzer struct {
	cfg    *config.Config
	logger *slog.Logger
	cache  *extract.Cache
}

// New creates an Analyzer. A nil cfg means the defaults; a nil logger
// discards output.
func New(cfg *config.Config, logger *slog.Logger) (*Analyzer, error) {
	cfg = configOrDefault(cfg)
	cache, err := extract.NewCache(cfg.Analysis.CacheSize)
	if err != nil {
		return nil, errors.New(errors.InternalError, "failed to create parse cache", err)
	}
	return &Analyzer{
		cfg:    cfg,
		logger: slogutil.OrDiscard(logger),
		cache:  cache,
	}, nil
}

// Diagnostic is a recovered per-file problem.
type Diagnostic struct {
	Path    string           `json:"path"`
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// Scan is the shared intermediate result every operation starts from.
type Scan struct {
	ID       string        `json:"id"`
	Root     string        `json:"root"`
	Language lang.Language `json:"language"`
	// Files are the parsed files, which form the graph's node set.
	Files        []string                    `json:"files"`
	Modules      []extract.ModuleInfo        `json:"modules"`
	Complexity   []complexity.FileComplexity `json:"complexity"`
	Dependencies []resolve.Dependency        `json:"dependencies"`
	Manifests    []manifest.Manifest         `json:"manifests"`
	Skipped      []scanner.Skipped           `json:"skipped"`
	Diagnostics  []Diagnostic                `json:"diagnostics"`
	Graph        *graph.Graph                `json:"-"`
	StartedAt    time.Time                   `json:"startedAt"`
	Duration     time.Duration               `json:"duration"`

	settings *settings
}

// Scan runs the pipeline up to the graph.
func (a *Analyzer) Scan(ctx context.Context, opts Options) (*Scan, error) {
	s, err := a.settings(opts)
	if err != nil {
		return nil, err
	}
	return a.scan(ctx, s)
}

func (a *Analyzer) scan(ctx context.Context, s *settings) (*Scan, error) {
	ctx, span := tracer.Start(ctx, "Analyzer.Scan")
	defer span.End()

	started := time.Now()
	res := &Scan{
		ID:          uuid.New().String(),
		StartedAt:   started,
		Skipped:     []scanner.Skipped{},
		Diagnostics: []Diagnostic{},
		settings:    s,
	}

	if err := a.discover(ctx, s, res); err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(
		attribute.String("scan.id", res.ID),
		attribute.String("scan.language", string(res.Language)),
		attribute.Int("scan.candidates", len(res.Files)),
	)

	results, err := a.extractAll(ctx, res)
	if err != nil {
		return nil, fail(span, err)
	}
	a.collect(res, results)

	a.classify(ctx, res)
	a.build(ctx, res)
	a.loadManifests(res)

	res.Duration = time.Since(started)
	span.SetAttributes(
		attribute.Int("scan.files", len(res.Files)),
		attribute.Int("scan.edges", res.Graph.NumEdges()),
		attribute.Int("scan.diagnostics", len(res.Diagnostics)),
	)
	a.logger.Info("Scan completed",
		"id", res.ID,
		"root", res.Root,
		"language", res.Language,
		"files", len(res.Files),
		"edges", res.Graph.NumEdges(),
		"diagnostics", len(res.Diagnostics),
		"duration", res.Duration,
	)
	return res, nil
}

// discover resolves the input path, picks the language and lists the
// candidate files into res.Files.
func (a *Analyzer) discover(ctx context.Context, s *settings, res *Scan) error {
	_, span := tracer.Start(ctx, "Analyzer.discover")
	defer span.End()

	abs, err := filepath.Abs(s.path)
	if err != nil {
		return errors.Invalid(s.path, "cannot resolve path: %v", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Invalid(s.path, "path does not exist")
		}
		return errors.Invalid(s.path, "cannot access path: %v", err)
	}

	if !info.IsDir() {
		return discoverFile(s, abs, res)
	}

	res.Root = abs
	found, err := scanner.Scan(ctx, abs, scanner.Options{
		Exclude:     s.exclude,
		MaxDepth:    s.maxDepth,
		MaxFileSize: s.maxFileSize,
		Logger:      a.logger,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.New(errors.InvalidInput, "cannot scan directory", err).WithPath(s.path)
	}
	res.Skipped = append(res.Skipped, found.Skipped...)

	l := s.language
	if l == lang.Auto {
		l = lang.Detect(abs, func() map[string]int { return scanner.CountExtensions(found.Files) })
	}
	res.Language = l

	exts := l.Extensions()
	res.Files = make([]string, 0, len(found.Files))
	for _, f := range found.Files {
		if slices.Contains(exts, strings.ToLower(filepath.Ext(f))) {
			res.Files = append(res.Files, f)
		}
	}
	span.SetAttributes(attribute.Int("scan.files", len(res.Files)))
	return nil
}

func discoverFile(s *settings, abs string, res *Scan) error {
	fileLang, ok := lang.FromPath(abs)
	if !ok {
		return errors.Invalid(s.path, "unsupported file type %q", filepath.Ext(abs))
	}
	l := s.language
	if l == lang.Auto {
		l = fileLang
	}
	if !slices.Contains(l.Extensions(), strings.ToLower(filepath.Ext(abs))) {
		return errors.Invalid(s.path, "file is not a %s source file", l)
	}
	res.Root = filepath.Dir(abs)
	res.Language = l
	res.Files = []string{filepath.Base(abs)}
	return nil
}

type fileOutcome struct {
	result *extract.FileResult
	err    error
}

// extractAll parses every candidate through a bounded worker pool. Per-file
// failures are recorded, never returned; only cancellation aborts the run.
func (a *Analyzer) extractAll(ctx context.Context, res *Scan) ([]fileOutcome, error) {
	ctx, span := tracer.Start(ctx, "Analyzer.extract")
	defer span.End()

	set := extract.NewSet(a.cache)
	outcomes := make([]fileOutcome, len(res.Files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(res.settings.workers)
	for i, rel := range res.Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fr, err := set.Extract(gctx, res.Root, rel)
			if err != nil {
				a.logger.Warn("Skipping file",
					"path", rel,
					"error", err.Error(),
				)
			}
			outcomes[i] = fileOutcome{result: fr, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("extract.files", len(res.Files)),
		attribute.Int("extract.workers", res.settings.workers),
		attribute.Int("extract.cached", a.cache.Len()),
	)
	return outcomes, nil
}

// collect moves extraction outcomes into res, in file order. Files that
// failed to parse leave the node set and become diagnostics.
func (a *Analyzer) collect(res *Scan, outcomes []fileOutcome) {
	files := make([]string, 0, len(res.Files))
	res.Modules = make([]extract.ModuleInfo, 0, len(res.Files))
	res.Complexity = make([]complexity.FileComplexity, 0, len(res.Files))
	for i, o := range outcomes {
		if o.err != nil {
			res.Diagnostics = append(res.Diagnostics, diagnosticFor(res.Files[i], o.err))
			continue
		}
		files = append(files, res.Files[i])
		res.Modules = append(res.Modules, o.result.Module)
		res.Complexity = append(res.Complexity, o.result.Complexity)
	}
	res.Files = files
}

func diagnosticFor(path string, err error) Diagnostic {
	d := Diagnostic{Path: path, Code: errors.CodeOf(err), Message: err.Error()}
	var ae *errors.AnalysisError
	if stderrors.As(err, &ae) {
		if cause := stderrors.Unwrap(ae); cause != nil {
			d.Message = cause.Error()
		} else {
			d.Message = ae.Message
		}
	}
	return d
}

func (a *Analyzer) classify(ctx context.Context, res *Scan) {
	_, span := tracer.Start(ctx, "Analyzer.classify")
	defer span.End()

	r := resolve.New(res.Root, res.Language, resolve.Options{IncludeExternal: res.settings.includeExternal})
	res.Dependencies = []resolve.Dependency{}
	counts := map[resolve.Kind]int{}
	unresolved := 0
	for _, m := range res.Modules {
		for _, d := range r.ClassifyAll(m) {
			counts[d.Kind]++
			if !d.Resolved {
				unresolved++
			}
			res.Dependencies = append(res.Dependencies, d)
		}
	}
	span.SetAttributes(
		attribute.Int("classify.internal", counts[resolve.Internal]),
		attribute.Int("classify.external", counts[resolve.External]),
		attribute.Int("classify.builtin", counts[resolve.Builtin]),
		attribute.Int("classify.unresolved", unresolved),
	)
	a.logger.Debug("Classified dependencies",
		"internal", counts[resolve.Internal],
		"external", counts[resolve.External],
		"builtin", counts[resolve.Builtin],
		"unresolved", unresolved,
	)
}

func (a *Analyzer) build(ctx context.Context, res *Scan) {
	_, span := tracer.Start(ctx, "Analyzer.build")
	defer span.End()

	res.Graph = graph.Build(res.Files, res.Dependencies, graph.BuildOptions{
		IncludeExternal:   res.settings.includeExternal,
		IncludeUnresolved: res.settings.includeUnresolved,
	})
	span.SetAttributes(
		attribute.Int("graph.nodes", res.Graph.NumNodes()),
		attribute.Int("graph.edges", res.Graph.NumEdges()),
	)
}

// loadManifests reads declared dependencies at the project root. A broken
// manifest is a diagnostic, not a failure.
func (a *Analyzer) loadManifests(res *Scan) {
	ms, err := manifest.Load(res.Root)
	if err != nil {
		a.logger.Warn("Failed to read manifest", "root", res.Root, "error", err.Error())
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Code:    errors.FileParseError,
			Message: err.Error(),
		})
	}
	if ms == nil {
		ms = []manifest.Manifest{}
	}
	res.Manifests = ms
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	var ae *errors.AnalysisError
	if stderrors.As(err, &ae) || stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.New(errors.InternalError, fmt.Sprintf("analysis failed: %v", err), err)
}
