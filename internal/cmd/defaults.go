package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/starburst997/charts-library/internal/generator"
	"github.com/starburst997/charts-library/internal/values"
)

// defaultsCmd prints the built-in defaults.
var defaultsCmd = &cobra.Command{
	Use:   "defaults [generator]",
	Short: "Show the built-in default values",
	Long: `Print the default values every generator starts from, as YAML.

With a generator name only that generator's defaults are shown.

Examples:
  chartlib defaults
  chartlib defaults ingress`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeGeneratorNames,
	RunE:              runDefaults,
}

func init() {
	rootCmd.AddCommand(defaultsCmd)
}

func runDefaults(cmd *cobra.Command, args []string) error {
	var defaults values.Values
	if len(args) == 0 {
		defaults = newComposer().Defaults()
	} else {
		g, ok := generator.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown generator %q (known: %v)", args[0], generator.Names())
		}
		defaults = g.Defaults()
	}

	data, err := defaults.ToYAML()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
