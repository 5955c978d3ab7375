package main

import (
	"io"

	"github.com/spf13/cobra"
)

var (
	couplingGroupBy string
	couplingDepth   int
	couplingLimit   int
)

var couplingCmd = &cobra.Command{
	Use:   "coupling [path]",
	Short: "Compute coupling and cohesion metrics",
	Long: `Compute afferent/efferent coupling, instability, abstractness and
distance from the main sequence for every file, plus cohesion and
coupling for module groups.

Examples:
  depscope coupling
  depscope coupling --group-by=package
  depscope coupling --group-by=directory --depth=3 -o yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCoupling,
}

func init() {
	couplingCmd.Flags().StringVarP(&couplingGroupBy, "group-by", "g", "directory", "Grouping: directory, package, feature or layer")
	couplingCmd.Flags().IntVar(&couplingDepth, "depth", 0, "Directory grouping depth (default from config, 2)")
	couplingCmd.Flags().IntVar(&couplingLimit, "limit", 15, "Modules shown in human output (0 for all)")
	rootCmd.AddCommand(couplingCmd)
}

func runCoupling(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, args)
	if err != nil {
		return err
	}
	defer e.cancel()

	e.opts.GroupBy = couplingGroupBy
	e.opts.Depth = couplingDepth
	res, err := e.analyzer.Coupling(e.ctx, e.opts)
	if err != nil {
		return err
	}
	return e.emit(res, func(w io.Writer) { writeCoupling(w, res, couplingLimit) })
}
