package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestCompleteGeneratorNames(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		toComplete string
		want       []string
	}{
		{
			name:       "empty prefix returns all",
			toComplete: "",
			want:       []string{"namespace", "endpoint", "workload", "ingress", "application-secrets", "registry-secrets"},
		},
		{
			name:       "prefix match",
			toComplete: "re",
			want:       []string{"registry-secrets"},
		},
		{
			name:       "no match",
			toComplete: "cron",
			want:       nil,
		},
		{
			name:       "already has argument",
			args:       []string{"ingress"},
			toComplete: "",
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, directive := completeGeneratorNames(defaultsCmd, tt.args, tt.toComplete)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
		})
	}
}

func TestCompleteValuesFiles(t *testing.T) {
	got, directive := completeValuesFiles(rootCmd, nil, "")
	assert.Equal(t, []string{"yaml", "yml"}, got)
	assert.Equal(t, cobra.ShellCompDirectiveFilterFileExt, directive)
}
