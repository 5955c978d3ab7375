package main

import (
	"io"

	"github.com/spf13/cobra"
)

var (
	complexityThreshold int
	complexityLimit     int
)

var complexityCmd = &cobra.Command{
	Use:   "complexity [path]",
	Short: "Report function and file complexity hotspots",
	Long: `Report cyclomatic complexity per function, file totals, the
maintainability index and hotspots.

A function is a hotspot at or above the threshold; its priority grows
with the multiple of the threshold it reaches. Files are hotspots when
their total reaches twice the threshold or their maintainability index
falls below the configured floor.

Examples:
  depscope complexity
  depscope complexity src/server.ts
  depscope complexity --threshold=15 --limit=20 -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runComplexity,
}

func init() {
	complexityCmd.Flags().IntVarP(&complexityThreshold, "threshold", "t", 0, "Hotspot threshold (default from config, 10)")
	complexityCmd.Flags().IntVar(&complexityLimit, "limit", 10, "Hotspots shown in human output (0 for all)")
	rootCmd.AddCommand(complexityCmd)
}

func runComplexity(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, args)
	if err != nil {
		return err
	}
	defer e.cancel()

	e.opts.Threshold = complexityThreshold
	res, err := e.analyzer.Complexity(e.ctx, e.opts)
	if err != nil {
		return err
	}
	return e.emit(res, func(w io.Writer) { writeComplexity(w, res, complexityLimit) })
}
