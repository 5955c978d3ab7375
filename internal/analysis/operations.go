package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"depscope/internal/complexity"
	"depscope/internal/errors"
	"depscope/internal/graph"
	"depscope/internal/grouping"
	"depscope/internal/lang"
	"depscope/internal/manifest"
	"depscope/internal/metrics"
	"depscope/internal/output"
	"depscope/internal/render"
	"depscope/internal/resolve"
)

// GraphResult is the rendered module graph.
type GraphResult struct {
	ScanID   string        `json:"scanId"`
	Root     string        `json:"root"`
	Language lang.Language `json:"language"`
	Format   render.Format `json:"format"`
	Text     string        `json:"text"`
	Stats    graph.Stats   `json:"stats"`
	// Order is a dependencies-first build order, present when the graph is
	// acyclic.
	Order []string `json:"order,omitempty"`
	// Central lists the most depended-upon files by PageRank.
	Central     []graph.Ranked `json:"central"`
	Diagnostics []Diagnostic   `json:"diagnostics"`
}

// Graph renders the module graph. Cycle members are highlighted.
func (a *Analyzer) Graph(ctx context.Context, opts Options) (*GraphResult, error) {
	scan, err := a.Scan(ctx, opts)
	if err != nil {
		return nil, err
	}
	return a.GraphOf(ctx, scan)
}

// GraphOf renders the module graph of an existing scan.
func (a *Analyzer) GraphOf(ctx context.Context, scan *Scan) (*GraphResult, error) {
	_, span := tracer.Start(ctx, "Analyzer.Graph")
	defer span.End()

	g := scan.Graph
	var highlight []string
	for _, c := range graph.FindCycles(g, graph.CycleOptions{}) {
		highlight = append(highlight, c.Nodes...)
	}
	text, err := render.Render(g, scan.settings.format, render.Options{Highlight: highlight})
	if err != nil {
		return nil, errors.New(errors.InternalError, "failed to render graph", err)
	}

	stats := g.Stats()
	stats.Density = output.RoundFloat(stats.Density)
	stats.AvgDegree = output.RoundFloat(stats.AvgDegree)

	res := &GraphResult{
		ScanID:      scan.ID,
		Root:        scan.Root,
		Language:    scan.Language,
		Format:      scan.settings.format,
		Text:        text,
		Stats:       stats,
		Central:     roundRanked(g.Rank(graph.DefaultRankOptions())),
		Diagnostics: scan.Diagnostics,
	}
	if !stats.Cyclic {
		if order, err := graph.TopologicalOrder(g); err == nil {
			res.Order = order
		}
	}
	span.SetAttributes(attribute.Int("graph.nodes", stats.Nodes), attribute.Bool("graph.cyclic", stats.Cyclic))
	return res, nil
}

func roundRanked(in []graph.Ranked) []graph.Ranked {
	out := make([]graph.Ranked, len(in))
	for i, r := range in {
		r.Score = output.RoundFloat(r.Score)
		out[i] = r
	}
	return out
}

// CycleSummary counts cycles by severity.
type CycleSummary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

func (s *CycleSummary) add(sev graph.Severity) {
	s.Total++
	switch sev {
	case graph.SeverityCritical:
		s.Critical++
	case graph.SeverityHigh:
		s.High++
	case graph.SeverityMedium:
		s.Medium++
	default:
		s.Low++
	}
}

// CycleResult reports circular dependencies.
type CycleResult struct {
	ScanID string        `json:"scanId"`
	Cycles []graph.Cycle `json:"cycles"`
	// Summary counts every cycle, including those cut by MaxCycles.
	Summary   CycleSummary `json:"summary"`
	Truncated bool         `json:"truncated"`
	// AffectedFiles are the members of every cycle, sorted.
	AffectedFiles   []string     `json:"affectedFiles"`
	Recommendations []string     `json:"recommendations"`
	Diagnostics     []Diagnostic `json:"diagnostics"`
}

// Cycles finds the circular dependencies of a project.
func (a *Analyzer) Cycles(ctx context.Context, opts Options) (*CycleResult, error) {
	scan, err := a.Scan(ctx, opts)
	if err != nil {
		return nil, err
	}
	return a.CyclesOf(ctx, scan), nil
}

// CyclesOf finds the circular dependencies of an existing scan.
func (a *Analyzer) CyclesOf(ctx context.Context, scan *Scan) *CycleResult {
	_, span := tracer.Start(ctx, "Analyzer.cycles")
	defer span.End()

	all := graph.FindCycles(scan.Graph, graph.CycleOptions{})
	res := &CycleResult{
		ScanID:        scan.ID,
		Cycles:        all,
		AffectedFiles: []string{},
		Diagnostics:   scan.Diagnostics,
	}
	seen := make(map[string]bool)
	for _, c := range all {
		res.Summary.add(c.Severity)
		for _, n := range c.Nodes {
			if !seen[n] {
				seen[n] = true
				res.AffectedFiles = append(res.AffectedFiles, n)
			}
		}
	}
	sort.Strings(res.AffectedFiles)

	if limit := scan.settings.maxCycles; limit > 0 && len(all) > limit {
		res.Cycles = all[:limit]
		res.Truncated = true
	}
	res.Recommendations = cycleRecommendations(all, res.Summary)

	span.SetAttributes(
		attribute.Int("cycles.total", res.Summary.Total),
		attribute.Int("cycles.critical", res.Summary.Critical),
	)
	a.logger.Debug("Cycle detection completed",
		"cycles", res.Summary.Total,
		"affected", len(res.AffectedFiles),
	)
	return res
}

func cycleRecommendations(cycles []graph.Cycle, s CycleSummary) []string {
	if s.Total == 0 {
		return []string{"No circular dependencies found"}
	}
	var recs []string
	if s.Critical+s.High > 0 {
		recs = append(recs, fmt.Sprintf("Resolve the %d critical and high severity cycles first; they tie together the most modules", s.Critical+s.High))
	}
	// Cycles are sorted by severity, so the first one is the worst.
	worst := cycles[0]
	if worst.WeakestLink != nil {
		recs = append(recs, fmt.Sprintf("In the largest problem cycle, start with %s -> %s", worst.WeakestLink.From, worst.WeakestLink.To))
	}
	twoNode := 0
	for _, c := range cycles {
		if c.Length == 2 {
			twoNode++
		}
	}
	if twoNode > 0 {
		recs = append(recs, fmt.Sprintf("%d cycles are mutual imports between two modules; merging or splitting those pairs is usually the quickest fix", twoNode))
	}
	recs = append(recs, "Add a cycle check to CI so new circular imports are caught early")
	return recs
}

// ComplexityResult reports function and file complexity.
type ComplexityResult struct {
	ScanID           string                       `json:"scanId"`
	Threshold        int                          `json:"threshold"`
	Files            []complexity.FileComplexity  `json:"files"`
	FunctionHotspots []complexity.FunctionHotspot `json:"functionHotspots"`
	FileHotspots     []complexity.FileHotspot     `json:"fileHotspots"`
	Summary          complexity.Summary           `json:"summary"`
	Diagnostics      []Diagnostic                 `json:"diagnostics"`
}

// Complexity measures the functions and files of a project.
func (a *Analyzer) Complexity(ctx context.Context, opts Options) (*ComplexityResult, error) {
	scan, err := a.Scan(ctx, opts)
	if err != nil {
		return nil, err
	}
	return a.ComplexityOf(ctx, scan), nil
}

// ComplexityOf measures the functions and files of an existing scan.
func (a *Analyzer) ComplexityOf(ctx context.Context, scan *Scan) *ComplexityResult {
	_, span := tracer.Start(ctx, "Analyzer.complexity")
	defer span.End()

	t := scan.settings.thresholds
	files := make([]complexity.FileComplexity, len(scan.Complexity))
	for i, fc := range scan.Complexity {
		fc.Average = output.RoundFloat(fc.Average)
		fc.MaintainabilityIndex = output.RoundFloat(fc.MaintainabilityIndex)
		files[i] = fc
	}

	fileHotspots := complexity.FileHotspots(files, t)
	functionHotspots := complexity.FunctionHotspots(files, t)
	summary := complexity.Summarize(files, t)
	summary.AverageMI = output.RoundFloat(summary.AverageMI)

	span.SetAttributes(
		attribute.Int("complexity.functions", summary.Functions),
		attribute.Int("complexity.hotspots", len(functionHotspots)),
	)
	return &ComplexityResult{
		ScanID:           scan.ID,
		Threshold:        t.Threshold,
		Files:            files,
		FunctionHotspots: orEmpty(functionHotspots),
		FileHotspots:     orEmpty(fileHotspots),
		Summary:          summary,
		Diagnostics:      scan.Diagnostics,
	}
}

// CouplingResult reports per-module coupling and per-group cohesion.
type CouplingResult struct {
	ScanID      string                 `json:"scanId"`
	GroupBy     grouping.Strategy      `json:"groupBy"`
	Modules     []metrics.Coupling     `json:"modules"`
	Summary     metrics.Summary        `json:"summary"`
	Groups      []metrics.GroupMetrics `json:"groups"`
	Diagnostics []Diagnostic           `json:"diagnostics"`
}

// Coupling computes coupling metrics for every file and module group.
func (a *Analyzer) Coupling(ctx context.Context, opts Options) (*CouplingResult, error) {
	scan, err := a.Scan(ctx, opts)
	if err != nil {
		return nil, err
	}
	return a.CouplingOf(ctx, scan), nil
}

// CouplingOf computes coupling metrics for an existing scan.
func (a *Analyzer) CouplingOf(ctx context.Context, scan *Scan) *CouplingResult {
	_, span := tracer.Start(ctx, "Analyzer.metrics")
	defer span.End()

	modules := metrics.ForGraph(scan.Graph)
	summary := metrics.Summarize(modules)
	for i := range modules {
		modules[i].Instability = output.RoundFloat(modules[i].Instability)
		modules[i].Abstractness = output.RoundFloat(modules[i].Abstractness)
		modules[i].Distance = output.RoundFloat(modules[i].Distance)
	}
	summary.AvgInstability = output.RoundFloat(summary.AvgInstability)
	summary.AvgDistance = output.RoundFloat(summary.AvgDistance)

	groups := metrics.ForGroups(scan.Graph, Groups(scan, scan.settings.groupBy, scan.settings.depth))
	for i := range groups {
		groups[i].Cohesion = output.RoundFloat(groups[i].Cohesion)
		groups[i].Coupling = output.RoundFloat(groups[i].Coupling)
	}

	span.SetAttributes(
		attribute.Int("metrics.modules", len(modules)),
		attribute.Int("metrics.groups", len(groups)),
	)
	return &CouplingResult{
		ScanID:      scan.ID,
		GroupBy:     scan.settings.groupBy,
		Modules:     modules,
		Summary:     summary,
		Groups:      groups,
		Diagnostics: scan.Diagnostics,
	}
}

// Groups partitions the parsed files of a scan with the given strategy.
func Groups(scan *Scan, strategy grouping.Strategy, depth int) []grouping.Group {
	switch strategy {
	case grouping.StrategyPackage:
		var markers []string
		if scan.settings != nil {
			markers = scan.settings.markers
		}
		return grouping.ByPackage(scan.Root, scan.Files, markers)
	case grouping.StrategyFeature:
		return grouping.ByFeature(scan.Files)
	case grouping.StrategyLayer:
		return grouping.ByLayer(scan.Files)
	default:
		return grouping.ByDirectory(scan.Files, depth)
	}
}

// Layer is one architectural layer and the layers it imports.
type Layer struct {
	Name      string   `json:"name"`
	Files     int      `json:"files"`
	DependsOn []string `json:"dependsOn"`
}

// ExternalDependency is one third-party package the project imports.
type ExternalDependency struct {
	Name string `json:"name"`
	// Importers is the number of files importing the package.
	Importers int `json:"importers"`
	// Version and Scope come from the project's manifests; Declared is false
	// when no manifest lists the package.
	Version  string         `json:"version,omitempty"`
	Scope    manifest.Scope `json:"scope,omitempty"`
	Declared bool           `json:"declared"`
}

// ArchitectureResult is a high-level overview of a project.
type ArchitectureResult struct {
	ScanID   string               `json:"scanId"`
	Language lang.Language        `json:"language"`
	Style    grouping.Style       `json:"style"`
	Files    int                  `json:"files"`
	Layers   []Layer              `json:"layers"`
	External []ExternalDependency `json:"external"`
	// Unused lists declared runtime dependencies no file imports.
	Unused      []string     `json:"unused"`
	Diagram     string       `json:"diagram"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Architecture summarizes layers, external dependencies and style.
func (a *Analyzer) Architecture(ctx context.Context, opts Options) (*ArchitectureResult, error) {
	scan, err := a.Scan(ctx, opts)
	if err != nil {
		return nil, err
	}
	return a.ArchitectureOf(ctx, scan)
}

// ArchitectureOf summarizes an existing scan.
func (a *Analyzer) ArchitectureOf(ctx context.Context, scan *Scan) (*ArchitectureResult, error) {
	_, span := tracer.Start(ctx, "Analyzer.architecture")
	defer span.End()

	layers := grouping.ByLayer(scan.Files)
	layerGraph := scan.Graph.Condense(func(n graph.Node) string {
		if !n.IsFile() {
			return ""
		}
		return grouping.LayerOf(n.ID)
	})
	diagram, err := render.Render(layerGraph, render.FormatMermaid, render.Options{Direction: "TD"})
	if err != nil {
		return nil, errors.New(errors.InternalError, "failed to render layer diagram", err)
	}

	res := &ArchitectureResult{
		ScanID:      scan.ID,
		Language:    scan.Language,
		Style:       grouping.DetectStyle(scan.Files, layers),
		Files:       len(scan.Files),
		Layers:      make([]Layer, 0, len(layers)),
		Diagram:     diagram,
		Diagnostics: scan.Diagnostics,
	}
	for _, l := range layers {
		deps := orEmpty(layerGraph.Successors(l.Name))
		sort.Strings(deps)
		res.Layers = append(res.Layers, Layer{Name: l.Name, Files: len(l.Members), DependsOn: deps})
	}
	res.External, res.Unused = externalDependencies(scan)

	span.SetAttributes(
		attribute.String("architecture.style", string(res.Style)),
		attribute.Int("architecture.external", len(res.External)),
	)
	return res, nil
}

// externalDependencies counts importers per external package and joins
// them with the declared manifest entries.
func externalDependencies(scan *Scan) ([]ExternalDependency, []string) {
	importers := make(map[string]map[string]bool)
	for _, d := range scan.Dependencies {
		if d.Kind != resolve.External || strings.HasPrefix(d.Target, ".") || strings.HasPrefix(d.Target, "/") {
			continue
		}
		if importers[d.Target] == nil {
			importers[d.Target] = make(map[string]bool)
		}
		importers[d.Target][d.Source] = true
	}

	idx := manifest.NewIndex(scan.Manifests)
	out := make([]ExternalDependency, 0, len(importers))
	used := make(map[string]bool)
	for name, files := range importers {
		ext := ExternalDependency{Name: name, Importers: len(files)}
		if decl, ok := idx.Lookup(name); ok {
			ext.Version, ext.Scope, ext.Declared = decl.Version, decl.Scope, true
			used[manifest.NormalizeName(decl.Name)] = true
		}
		out = append(out, ext)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Importers != out[j].Importers {
			return out[i].Importers > out[j].Importers
		}
		return out[i].Name < out[j].Name
	})

	unused := []string{}
	seen := make(map[string]bool)
	for _, m := range scan.Manifests {
		for _, d := range m.Dependencies {
			key := manifest.NormalizeName(d.Name)
			if d.Scope != manifest.ScopeRuntime || used[key] || seen[key] {
				continue
			}
			seen[key] = true
			unused = append(unused, d.Name)
		}
	}
	sort.Strings(unused)
	return out, unused
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
