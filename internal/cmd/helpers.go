package cmd

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"

	"github.com/starburst997/charts-library/internal/bundle"
	"github.com/starburst997/charts-library/internal/config"
	"github.com/starburst997/charts-library/internal/secrets"
	"github.com/starburst997/charts-library/internal/ui"
	"github.com/starburst997/charts-library/internal/values"
)

// newLogger returns a logger printing through ui when --verbose is set.
func newLogger() logr.Logger {
	if !verbose {
		return logr.Discard()
	}
	return funcr.New(ui.LogLine, funcr.Options{Verbosity: 1})
}

// newComposer builds the composer used by every command.
func newComposer() *bundle.Composer {
	return bundle.New(bundle.WithLogger(newLogger()))
}

// loadValues resolves the caller's override document: project files,
// $CHARTLIB_VALUES, -f files and --set parameters, in that order.
func loadValues(ctx context.Context) (*config.Config, values.Values, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log := newLogger()
	files := cfg.Files(valuesFiles)
	for _, f := range files {
		log.V(1).Info("loading values", "file", f)
	}

	fromFiles, err := secrets.NewLoader(nil).LoadAll(ctx, files)
	if err != nil {
		return nil, nil, fmt.Errorf("load values: %w", err)
	}

	params, err := values.ParseSet(setValues)
	if err != nil {
		return nil, nil, err
	}

	return cfg, values.MergeAll(fromFiles, params), nil
}

// compose loads values and composes the bundle.
func compose(ctx context.Context) (*config.Config, bundle.Stream, error) {
	cfg, vals, err := loadValues(ctx)
	if err != nil {
		return nil, nil, err
	}
	stream, err := newComposer().Compose(vals)
	if err != nil {
		return nil, nil, err
	}
	return cfg, stream, nil
}
