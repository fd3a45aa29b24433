// Package fileutil provides atomic file writes for rendered output.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrSymlinkNotSupported indicates the target is a symlink.
var ErrSymlinkNotSupported = errors.New("symlinks are not supported")

// WriteFile writes data to path through a temp file and rename, so readers
// never see a partial file. Parent directories are created as needed.
// Returns ErrSymlinkNotSupported if path is an existing symlink.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("%s: %w", path, ErrSymlinkNotSupported)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create parent directories: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to destination: %w", err)
	}

	success = true
	return nil
}

// SyncDir makes dir hold exactly files (name to content) among the entries
// matching ext. Each file is written atomically. Other files with the same
// extension are removed; everything else in dir is left alone. It returns
// the removed names, sorted.
func SyncDir(dir, ext string, files map[string][]byte) (removed []string, err error) {
	for name := range files {
		if filepath.Base(name) != name {
			return nil, fmt.Errorf("invalid file name %q", name)
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	for name, data := range files {
		if err := WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read output directory: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}
		if _, keep := files[name]; keep {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return nil, fmt.Errorf("remove stale %s: %w", name, err)
		}
		removed = append(removed, name)
	}

	slices.Sort(removed)
	return removed, nil
}
