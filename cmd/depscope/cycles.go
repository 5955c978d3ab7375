package main

import (
	"io"

	"github.com/spf13/cobra"

	"depscope/internal/analysis"
	"depscope/internal/errors"
	"depscope/internal/graph"
)

var (
	cyclesMax    int
	cyclesFailOn string
)

var cyclesCmd = &cobra.Command{
	Use:   "cycles [path]",
	Short: "Detect circular dependencies",
	Long: `Detect circular dependencies with strongly connected component analysis.

Each cycle gets a severity from its size and the number of modules that
depend on it, the weakest link to cut, and suggestions for breaking it.
Direct self imports are not reported.

Examples:
  depscope cycles
  depscope cycles ./packages/api --max-cycles=5
  depscope cycles --fail-on=high   # exit 3 when a high or critical cycle exists`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCycles,
}

func init() {
	cyclesCmd.Flags().IntVar(&cyclesMax, "max-cycles", 0, "Maximum cycles to report (0 = config default, unlimited)")
	cyclesCmd.Flags().StringVar(&cyclesFailOn, "fail-on", "", "Exit with status 3 when a cycle of this severity or worse exists: low, medium, high, critical")
	rootCmd.AddCommand(cyclesCmd)
}

func runCycles(cmd *cobra.Command, args []string) error {
	failOn, err := parseSeverity(cyclesFailOn)
	if err != nil {
		return err
	}
	e, err := newEnv(cmd, args)
	if err != nil {
		return err
	}
	defer e.cancel()

	e.opts.MaxCycles = cyclesMax
	res, err := e.analyzer.Cycles(e.ctx, e.opts)
	if err != nil {
		return err
	}
	if err := e.emit(res, func(w io.Writer) { writeCycles(w, res) }); err != nil {
		return err
	}

	if failOn != "" && atLeast(res.Summary, failOn) {
		return errCheckFailed
	}
	return nil
}

func parseSeverity(s string) (graph.Severity, error) {
	if s == "" {
		return "", nil
	}
	for _, sev := range graph.Severities {
		if string(sev) == s {
			return sev, nil
		}
	}
	return "", errors.Invalid("", "invalid severity %q (want low, medium, high or critical)", s)
}

// atLeast reports whether any cycle is as severe as min or worse.
func atLeast(s analysis.CycleSummary, min graph.Severity) bool {
	counts := map[graph.Severity]int{
		graph.SeverityCritical: s.Critical,
		graph.SeverityHigh:     s.High,
		graph.SeverityMedium:   s.Medium,
		graph.SeverityLow:      s.Low,
	}
	for _, sev := range graph.Severities {
		if counts[sev] > 0 {
			return true
		}
		if sev == min {
			break
		}
	}
	return false
}
