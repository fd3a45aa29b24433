package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/starburst997/charts-library/internal/config"
	"github.com/starburst997/charts-library/internal/preflight"
	"github.com/starburst997/charts-library/internal/ui"
)

// doctorCmd checks the environment and values files.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check values files and local tooling",
	Long: `Run pre-flight checks before rendering.

Checks:
  - every values file exists and is readable
  - encrypted files have a local sops key available
  - kubectl is installed (needed only to apply the output)`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	files := cfg.Files(valuesFiles)

	ui.Header("Project")
	ui.Item("root: %s", cfg.Root)
	if len(files) == 0 {
		ui.Item("no values files")
	}
	for i, f := range files {
		ui.Step(i+1, "%s", f)
	}

	warnings, errors := preflight.CheckAll(files)
	for _, w := range warnings {
		ui.Warning("%s", w)
	}
	for _, e := range errors {
		ui.Error("%s", e)
	}
	if len(errors) > 0 {
		return fmt.Errorf("%d pre-flight checks failed", len(errors))
	}

	ui.Success("All checks passed")
	return nil
}
