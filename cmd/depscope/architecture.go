package main

import (
	"io"

	"github.com/spf13/cobra"
)

var architectureCmd = &cobra.Command{
	Use:     "architecture [path]",
	Aliases: []string{"arch"},
	Short:   "Summarize layers, external dependencies and style",
	Long: `Summarize the project's architecture: files grouped into layers with
the layers each one imports, third-party packages with the versions
declared in package.json, pyproject.toml, Pipfile or requirements.txt,
and a coarse style label.

Examples:
  depscope architecture
  depscope arch ./backend -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runArchitecture,
}

func init() {
	rootCmd.AddCommand(architectureCmd)
}

func runArchitecture(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, args)
	if err != nil {
		return err
	}
	defer e.cancel()

	res, err := e.analyzer.Architecture(e.ctx, e.opts)
	if err != nil {
		return err
	}
	return e.emit(res, func(w io.Writer) { writeArchitecture(w, res) })
}
