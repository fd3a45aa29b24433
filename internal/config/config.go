// Package config handles project discovery and configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ProjectFile marks a project root and holds project-wide values.
	ProjectFile = "chartlib.yaml"

	// ValuesFile is the conventional values file at the project root.
	ValuesFile = "values.yaml"

	// EnvValues lists extra values files, separated by the OS path list
	// separator. They are applied after the project files and before any
	// files given on the command line.
	EnvValues = "CHARTLIB_VALUES"

	// OutputDirName is the default output directory under the root.
	OutputDirName = "rendered"
)

// ErrNoProject indicates no project root was found.
var ErrNoProject = errors.New("project root not found (no chartlib.yaml or values.yaml)")

// Config holds the chartlib project configuration.
type Config struct {
	// Root is the project root directory.
	Root string

	// ValuesFiles are the values files applied by default, in order.
	ValuesFiles []string

	// OutputDir is where render writes when asked to write files.
	OutputDir string
}

// FindRoot searches upward from dir for a directory containing
// chartlib.yaml or values.yaml.
func FindRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve directory: %w", err)
	}

	for {
		for _, name := range []string{ProjectFile, ValuesFile} {
			if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoProject
		}
		dir = parent
	}
}

// Load discovers the project from the working directory. Outside a project
// the working directory is used as root with no default values files.
func Load() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	return LoadFrom(wd)
}

// LoadFrom discovers the project starting at dir.
func LoadFrom(dir string) (*Config, error) {
	root, err := FindRoot(dir)
	switch {
	case errors.Is(err, ErrNoProject):
		if root, err = filepath.Abs(dir); err != nil {
			return nil, fmt.Errorf("resolve directory: %w", err)
		}
	case err != nil:
		return nil, err
	}

	cfg := &Config{
		Root:      root,
		OutputDir: filepath.Join(root, OutputDirName),
	}

	for _, name := range []string{ProjectFile, ValuesFile} {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err == nil {
			cfg.ValuesFiles = append(cfg.ValuesFiles, path)
		}
	}
	cfg.ValuesFiles = append(cfg.ValuesFiles, envValuesFiles()...)

	return cfg, nil
}

func envValuesFiles() []string {
	raw := os.Getenv(EnvValues)
	if raw == "" {
		return nil
	}
	var files []string
	for _, f := range filepath.SplitList(raw) {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}
	return files
}

// Files returns the default values files followed by extra, skipping
// duplicates.
func (c *Config) Files(extra []string) []string {
	seen := make(map[string]bool)
	var files []string
	for _, f := range append(append([]string{}, c.ValuesFiles...), extra...) {
		key := f
		if abs, err := filepath.Abs(f); err == nil {
			key = abs
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		files = append(files, f)
	}
	return files
}
