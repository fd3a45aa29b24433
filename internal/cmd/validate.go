package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/api/meta"

	"github.com/starburst997/charts-library/internal/ui"
	"github.com/starburst997/charts-library/internal/values"
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate values without rendering",
	Long: `Resolve values and run every generator without printing manifests.

Reports the resources the bundle would contain, or the first offending
value with its path.

Examples:
  chartlib validate -f values.yaml
  chartlib validate -f values.yaml -f prod.sops.yaml`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	_, stream, err := compose(cmd.Context())
	if err != nil {
		var fe *values.FieldError
		if errors.As(err, &fe) {
			ui.Error("Invalid value at %s", fe.Path)
		}
		return err
	}

	ui.Header("Bundle")
	for _, r := range stream {
		name := ""
		if accessor, err := meta.Accessor(r.Object); err == nil {
			name = accessor.GetName()
		}
		if r.Priority != nil {
			ui.Item("%s/%s (%s, priority %d)", r.Kind(), name, r.Generator, *r.Priority)
			continue
		}
		ui.Item("%s/%s (%s)", r.Kind(), name, r.Generator)
	}
	ui.Success("Valid: %d resources", len(stream))
	return nil
}
