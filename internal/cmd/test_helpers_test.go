package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/starburst997/charts-library/internal/config"
	"github.com/starburst997/charts-library/internal/ui"
)

// resetFlags puts every flag of cmd and its children back to its default.
// Cobra keeps flag state on the global commands between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeCmd executes the root command with the given args and returns
// everything written to the command output and to ui.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	prevOutput, prevNoColor := ui.Output, color.NoColor
	ui.Output = buf
	color.NoColor = true
	t.Cleanup(func() {
		ui.Output = prevOutput
		color.NoColor = prevNoColor
	})

	rootCmd.SetArgs(args)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

const projectValues = `name: web
image:
  repository: ghcr.io/acme/web
  tag: 1.0.0
ingress:
  host: web.example.com
`

// setupProject creates a project directory holding values.yaml and makes
// it the working directory.
func setupProject(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ValuesFile), []byte(content), 0644))
	t.Setenv(config.EnvValues, "")
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
