// Package cmd provides the CLI commands for chartlib.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/starburst997/charts-library/internal/ui"
)

const version = "0.1.0"

var (
	valuesFiles []string
	setValues   []string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "chartlib",
	Short: "Render Kubernetes bundles from layered values",
	Long: `chartlib - a chart library without the chart

Resolves layered values (project files, -f overlays, --set parameters) into
a bundle of Kubernetes resources for a single web application:
Namespace, Service, Deployment, Ingress and ExternalSecrets for
application and registry credentials.

VALUES
  chartlib.yaml, values.yaml   Picked up from the project root
  $CHARTLIB_VALUES             Extra files, path-list separated
  -f, --values <file>          Overlay files, applied in order
  --set a.b=c                  Call-site parameters, applied last

Files named *.sops.yaml, or carrying sops metadata, are decrypted with sops.

COMMANDS
  render                Print or write the rendered bundle
  validate              Check values without rendering
  defaults [generator]  Show the built-in defaults`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.Error("%v", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringArrayVarP(&valuesFiles, "values", "f", nil, "Values file to apply (repeatable, later wins)")
	flags.StringArrayVar(&setValues, "set", nil, "Set values on the command line (a.b=1,c[0]=x)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log generator decisions")

	_ = rootCmd.RegisterFlagCompletionFunc("values", completeValuesFiles)

	rootCmd.SetVersionTemplate("chartlib version {{.Version}}\n")
}
