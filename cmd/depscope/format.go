package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"depscope/internal/analysis"
	"depscope/internal/graph"
	"depscope/internal/output"
)

func header(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", 60))
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func limited(n, limit int) int {
	if limit > 0 && n > limit {
		return limit
	}
	return n
}

func writeDiagnostics(w io.Writer, diags []analysis.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	fmt.Fprintf(w, "\nSkipped %d files:\n", len(diags))
	for _, d := range diags {
		path := d.Path
		if path == "" {
			path = "(project)"
		}
		fmt.Fprintf(w, "  %s: %s\n", path, d.Message)
	}
}

func writeGraphStats(w io.Writer, s graph.Stats) {
	header(w, "Graph statistics")
	tw := table(w)
	fmt.Fprintf(tw, "Files\t%d\n", s.Files)
	if s.External > 0 {
		fmt.Fprintf(tw, "External packages\t%d\n", s.External)
	}
	if s.Unresolved > 0 {
		fmt.Fprintf(tw, "Unresolved imports\t%d\n", s.Unresolved)
	}
	fmt.Fprintf(tw, "Edges\t%d\n", s.Edges)
	fmt.Fprintf(tw, "Isolated\t%d\n", s.Isolated)
	fmt.Fprintf(tw, "Entry points\t%d\n", s.EntryPoints)
	fmt.Fprintf(tw, "Leaves\t%d\n", s.Leaves)
	fmt.Fprintf(tw, "Density\t%s\n", output.FormatFloat(s.Density))
	fmt.Fprintf(tw, "Average degree\t%s\n", output.FormatFloat(s.AvgDegree))
	fmt.Fprintf(tw, "Cyclic\t%v\n", s.Cyclic)
	tw.Flush()
}

func writeCycles(w io.Writer, res *analysis.CycleResult) {
	header(w, "Circular dependencies")
	s := res.Summary
	if s.Total == 0 {
		fmt.Fprintln(w, "No circular dependencies found.")
		writeDiagnostics(w, res.Diagnostics)
		return
	}
	fmt.Fprintf(w, "%d cycles (critical %d, high %d, medium %d, low %d) across %d files\n",
		s.Total, s.Critical, s.High, s.Medium, s.Low, len(res.AffectedFiles))
	if res.Truncated {
		fmt.Fprintf(w, "Showing the %d most severe.\n", len(res.Cycles))
	}

	for i, c := range res.Cycles {
		fmt.Fprintf(w, "\n%d. [%s] %s\n", i+1, strings.ToUpper(string(c.Severity)), c.Description)
		if c.WeakestLink != nil {
			fmt.Fprintf(w, "   Weakest link: %s -> %s (weight %d)\n", c.WeakestLink.From, c.WeakestLink.To, c.WeakestLink.Weight)
		}
		for _, sug := range c.Suggestions {
			fmt.Fprintf(w, "   - %s\n", sug)
		}
	}

	fmt.Fprintln(w, "\nRecommendations:")
	for _, r := range res.Recommendations {
		fmt.Fprintf(w, "  * %s\n", r)
	}
	writeDiagnostics(w, res.Diagnostics)
}

func writeComplexity(w io.Writer, res *analysis.ComplexityResult, limit int) {
	header(w, "Complexity")
	s := res.Summary
	fmt.Fprintf(w, "%d files, %d functions, %d lines of code\n", s.Files, s.Functions, s.TotalLOC)
	fmt.Fprintf(w, "Functions by complexity: low %d, moderate %d, high %d, very high %d (threshold %d)\n",
		s.Low, s.Moderate, s.High, s.VeryHigh, res.Threshold)
	fmt.Fprintf(w, "Average maintainability index: %s\n", output.FormatFloat(s.AverageMI))

	if len(res.FunctionHotspots) > 0 {
		fmt.Fprintln(w, "\nFunction hotspots:")
		tw := table(w)
		fmt.Fprintln(tw, "  PRIORITY\tCC\tFUNCTION\tLOCATION")
		for _, h := range res.FunctionHotspots[:limited(len(res.FunctionHotspots), limit)] {
			fmt.Fprintf(tw, "  %s\t%d\t%s\t%s:%d\n", h.Priority, h.Cyclomatic, h.Name, h.Path, h.Line)
		}
		tw.Flush()
	}
	if len(res.FileHotspots) > 0 {
		fmt.Fprintln(w, "\nFile hotspots:")
		tw := table(w)
		fmt.Fprintln(tw, "  PRIORITY\tTOTAL\tMI\tFILE\tREASONS")
		for _, h := range res.FileHotspots[:limited(len(res.FileHotspots), limit)] {
			fmt.Fprintf(tw, "  %s\t%d\t%s\t%s\t%s\n", h.Priority, h.Total,
				output.FormatFloat(h.MaintainabilityIndex), h.Path, strings.Join(h.Reasons, ", "))
		}
		tw.Flush()
	}
	if len(res.FunctionHotspots) == 0 && len(res.FileHotspots) == 0 {
		fmt.Fprintln(w, "\nNo hotspots.")
	}
	writeDiagnostics(w, res.Diagnostics)
}

func writeCoupling(w io.Writer, res *analysis.CouplingResult, limit int) {
	header(w, "Coupling")
	s := res.Summary
	fmt.Fprintf(w, "%d modules, average instability %s, average distance %s\n",
		s.Modules, output.FormatFloat(s.AvgInstability), output.FormatFloat(s.AvgDistance))
	fmt.Fprintf(w, "Stable %d, unstable %d\n", s.Stable, s.Unstable)
	if s.MostDepended != "" {
		fmt.Fprintf(w, "Most depended upon: %s\n", s.MostDepended)
	}
	if s.MostDependent != "" {
		fmt.Fprintf(w, "Most dependencies:  %s\n", s.MostDependent)
	}

	modules := res.Modules
	if len(modules) > 0 {
		fmt.Fprintln(w, "\nModules:")
		tw := table(w)
		fmt.Fprintln(tw, "  MODULE\tCa\tCe\tI\tA\tD")
		for _, m := range modules[:limited(len(modules), limit)] {
			fmt.Fprintf(tw, "  %s\t%d\t%d\t%s\t%s\t%s\n", m.Node, m.Afferent, m.Efferent,
				output.FormatFloat(m.Instability), output.FormatFloat(m.Abstractness), output.FormatFloat(m.Distance))
		}
		tw.Flush()
	}

	if len(res.Groups) > 0 {
		fmt.Fprintf(w, "\nGroups (by %s):\n", res.GroupBy)
		tw := table(w)
		fmt.Fprintln(tw, "  GROUP\tFILES\tCOHESION\tCOUPLING\tLEVEL")
		for _, g := range res.Groups {
			fmt.Fprintf(tw, "  %s\t%d\t%s\t%s\t%s\n", g.Name, g.Size,
				output.FormatFloat(g.Cohesion), output.FormatFloat(g.Coupling), g.Level)
		}
		tw.Flush()
	}
	writeDiagnostics(w, res.Diagnostics)
}

func writeArchitecture(w io.Writer, res *analysis.ArchitectureResult) {
	header(w, "Architecture")
	fmt.Fprintf(w, "Language: %s\nStyle: %s\nFiles: %d\n", res.Language, res.Style, res.Files)

	fmt.Fprintln(w, "\nLayers:")
	for _, l := range res.Layers {
		deps := "-"
		if len(l.DependsOn) > 0 {
			deps = strings.Join(l.DependsOn, ", ")
		}
		fmt.Fprintf(w, "  %-16s %4d files  -> %s\n", l.Name, l.Files, deps)
	}

	if len(res.External) > 0 {
		fmt.Fprintln(w, "\nExternal packages:")
		tw := table(w)
		fmt.Fprintln(tw, "  PACKAGE\tIMPORTERS\tVERSION\tSCOPE")
		for _, e := range res.External {
			ver, scope := e.Version, string(e.Scope)
			if !e.Declared {
				ver, scope = "(undeclared)", "-"
			} else if ver == "" {
				ver = "*"
			}
			fmt.Fprintf(tw, "  %s\t%d\t%s\t%s\n", e.Name, e.Importers, ver, scope)
		}
		tw.Flush()
	}
	if len(res.Unused) > 0 {
		fmt.Fprintf(w, "\nDeclared but never imported: %s\n", strings.Join(res.Unused, ", "))
	}

	fmt.Fprintln(w, "\nLayer diagram:")
	fmt.Fprintln(w, res.Diagram)
	writeDiagnostics(w, res.Diagnostics)
}
