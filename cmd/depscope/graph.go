package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var (
	graphFormat            string
	graphIncludeUnresolved bool
	graphStatsOnly         bool
)

var graphCmd = &cobra.Command{
	Use:   "graph [path]",
	Short: "Render the module dependency graph",
	Long: `Render the module dependency graph as Mermaid, Graphviz DOT or JSON.

Cycle members are highlighted. Acyclic graphs also report a build order
(dependencies first) in JSON/YAML output.

Examples:
  depscope graph
  depscope graph ./src --format=dot | dot -Tsvg > deps.svg
  depscope graph --include-external --format=json -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().StringVarP(&graphFormat, "format", "f", "mermaid", "Graph format: mermaid, dot or json")
	graphCmd.Flags().BoolVar(&graphIncludeUnresolved, "include-unresolved", false, "Add nodes for internal imports that match no file")
	graphCmd.Flags().BoolVar(&graphStatsOnly, "stats", false, "Print statistics only")
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, args)
	if err != nil {
		return err
	}
	defer e.cancel()

	e.opts.Format = graphFormat
	e.opts.IncludeUnresolved = graphIncludeUnresolved
	res, err := e.analyzer.Graph(e.ctx, e.opts)
	if err != nil {
		return err
	}
	if graphStatsOnly {
		return e.emit(res.Stats, func(w io.Writer) { writeGraphStats(w, res.Stats) })
	}
	return e.emit(res, func(w io.Writer) {
		fmt.Fprintln(w, res.Text)
		// Keep stdout pipeable into dot or mermaid tooling.
		writeDiagnostics(cmd.ErrOrStderr(), res.Diagnostics)
	})
}
