// Package secrets loads values files that may be SOPS-encrypted.
package secrets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/getsops/sops/v3/decrypt"

	"github.com/starburst997/charts-library/internal/values"
)

// Decryptor decrypts the contents of an encrypted values file.
type Decryptor interface {
	Decrypt(ctx context.Context, path string, data []byte) ([]byte, error)
}

// SOPS decrypts files in-process with the keys available to sops (age,
// PGP, cloud KMS) from the environment.
type SOPS struct{}

// NewSOPS creates a SOPS decryptor.
func NewSOPS() *SOPS {
	return &SOPS{}
}

// Decrypt decrypts data. The format is derived from the path's extension.
func (s *SOPS) Decrypt(ctx context.Context, path string, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	plain, err := decrypt.Data(data, formatOf(path))
	if err != nil {
		return nil, fmt.Errorf("sops decrypt %s: %w", path, err)
	}
	return plain, nil
}

func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "yaml"
}

// IsEncrypted reports whether a values file is SOPS-encrypted: either it is
// named *.sops.yaml (or .yml, .json) or it carries top-level sops metadata.
func IsEncrypted(path string, data []byte) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, suffix := range []string{".sops.yaml", ".sops.yml", ".sops.json"} {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}

	doc, err := values.FromYAML(data)
	if err != nil {
		return false
	}
	return doc.Has("sops.mac")
}

// Loader reads values files, decrypting encrypted ones.
type Loader struct {
	decryptor Decryptor
}

// NewLoader creates a Loader. A nil decryptor uses SOPS.
func NewLoader(d Decryptor) *Loader {
	if d == nil {
		d = NewSOPS()
	}
	return &Loader{decryptor: d}
}

// Load reads and parses one values file.
func (l *Loader) Load(ctx context.Context, path string) (values.Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values file: %w", err)
	}

	if IsEncrypted(path, data) {
		if data, err = l.decryptor.Decrypt(ctx, path, data); err != nil {
			return nil, err
		}
	}

	v, err := values.FromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// LoadAll loads files in order and merges them, later files winning.
func (l *Loader) LoadAll(ctx context.Context, paths []string) (values.Values, error) {
	layers := make([]values.Values, 0, len(paths))
	for _, path := range paths {
		v, err := l.Load(ctx, path)
		if err != nil {
			return nil, err
		}
		layers = append(layers, v)
	}
	return values.MergeAll(layers...), nil
}
