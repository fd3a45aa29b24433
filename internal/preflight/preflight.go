// Package preflight checks the local environment before rendering.
package preflight

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/starburst997/charts-library/internal/secrets"
)

// BinaryCheck represents a binary the workflow around chartlib relies on.
type BinaryCheck struct {
	Name        string
	Required    bool   // false = warning only
	InstallHint string // e.g., "brew install kubectl" or "https://..."
}

// binaries are looked up in PATH. Rendering itself needs none of them.
var binaries = []BinaryCheck{
	{
		Name:        "kubectl",
		Required:    false,
		InstallHint: "Install kubectl: https://kubernetes.io/docs/tasks/tools/",
	},
}

// KeyEnv lists the environment variables sops reads local keys from.
var KeyEnv = []string{
	"SOPS_AGE_KEY",
	"SOPS_AGE_KEY_FILE",
	"SOPS_AGE_SSH_PRIVATE_KEY_FILE",
	"SOPS_PGP_FP",
}

// CheckBinaries returns the binaries missing from PATH.
func CheckBinaries() []BinaryCheck {
	var missing []BinaryCheck
	for _, bin := range binaries {
		if !IsBinaryAvailable(bin.Name) {
			missing = append(missing, bin)
		}
	}
	return missing
}

// IsBinaryAvailable checks if a specific binary is available in PATH.
func IsBinaryAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// HasDecryptionKey reports whether a local sops key is configured, either
// through KeyEnv or the default age key file. Cloud KMS keys are not
// detected.
func HasDecryptionKey() bool {
	for _, name := range KeyEnv {
		if os.Getenv(name) != "" {
			return true
		}
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return false
	}
	_, err = os.Stat(filepath.Join(dir, "sops", "age", "keys.txt"))
	return err == nil
}

// CheckFiles reads every values file. It returns one error per unreadable
// file and the paths of the encrypted ones.
func CheckFiles(files []string) (encrypted []string, errors []string) {
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			errors = append(errors, f+": "+err.Error())
			continue
		}
		if secrets.IsEncrypted(f, data) {
			encrypted = append(encrypted, f)
		}
	}
	return encrypted, errors
}

// CheckAll performs all pre-flight checks for the given values files.
// Errors are for unreadable or missing files and required binaries,
// warnings for optional binaries and encrypted files without a local key.
func CheckAll(files []string) (warnings []string, errors []string) {
	encrypted, errors := CheckFiles(files)

	for _, bin := range CheckBinaries() {
		if bin.Required {
			errors = append(errors, bin.Name+": "+bin.InstallHint)
			continue
		}
		warnings = append(warnings, bin.Name+": "+bin.InstallHint)
	}

	if len(encrypted) > 0 && !HasDecryptionKey() {
		for _, f := range encrypted {
			warnings = append(warnings, f+": encrypted but no local sops key found (set SOPS_AGE_KEY_FILE)")
		}
	}

	return warnings, errors
}

// GetBinaries returns all configured binaries.
func GetBinaries() []BinaryCheck {
	return binaries
}
