// Package security guards the one place this module writes files named by
// an external caller: internal/gridmap/dump's RadarMap export/import paths.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// validatePathWithinDirectory rejects filePath unless its resolved absolute
// form stays inside safeDir, closing off ../ traversal and symlink escapes.
func validatePathWithinDirectory(filePath, safeDir string) error {
	cleanPath := filepath.Clean(filePath)

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}

	absSafeDir, err := filepath.Abs(safeDir)
	if err != nil {
		return fmt.Errorf("resolve safe directory: %w", err)
	}

	if resolved, err := filepath.EvalSymlinks(absSafeDir); err == nil {
		absSafeDir = resolved
	}
	existing, rest := absPath, ""
	for {
		if resolved, err := filepath.EvalSymlinks(existing); err == nil {
			absPath = filepath.Join(resolved, rest)
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			break
		}
		rest, existing = filepath.Join(filepath.Base(existing), rest), parent
	}

	relPath, err := filepath.Rel(absSafeDir, absPath)
	if err != nil {
		return fmt.Errorf("path is outside safe directory: %w", err)
	}

	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) || filepath.IsAbs(relPath) {
		return fmt.Errorf("path traversal detected: %s attempts to escape %s", filePath, safeDir)
	}

	return nil
}

// validatePathWithinAllowedDirs accepts filePath if it resolves inside any
// one of allowedDirs.
func validatePathWithinAllowedDirs(filePath string, allowedDirs []string) error {
	for _, dir := range allowedDirs {
		if err := validatePathWithinDirectory(filePath, dir); err == nil {
			return nil
		}
	}
	return fmt.Errorf("path must be within one of the allowed directories: %v", allowedDirs)
}

// ValidateExportPath is the check internal/gridmap/dump runs before writing
// or reading a RadarMap snapshot at a caller-supplied path: it must resolve
// inside either the OS temp directory or the current working directory, so
// a grid-map dump path can never be used to read or clobber an arbitrary
// file elsewhere on disk.
func ValidateExportPath(filePath string) error {
	tempDir := os.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	return validatePathWithinAllowedDirs(filePath, []string{tempDir, cwd})
}
