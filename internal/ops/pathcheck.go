package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/tome/internal/errors"
)

// ExportExt is the required extension for export files.
const ExportExt = ".md"

// ValidateExportPath checks a destination for ExportEntries.
// It rejects:
// 1. Path traversal (.. components)
// 2. Any extension other than .md
// 3. A missing or symlinked parent directory
// 4. A symlink at the destination itself
func ValidateExportPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.NewInvalidRequest("path is required")
	}
	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if filepath.Ext(cleaned) != ExportExt {
		return errors.NewInvalidRequest(fmt.Sprintf("path must have %s extension", ExportExt))
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	parentDir := filepath.Dir(absPath)
	info, err := os.Lstat(parentDir)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("directory does not exist: %s", parentDir))
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("parent directory must not be a symlink")
	}
	if !info.IsDir() {
		return errors.NewInvalidRequest(fmt.Sprintf("not a directory: %s", parentDir))
	}

	if info, err := os.Lstat(absPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("path must not be a symlink")
	}
	return nil
}

// containsTraversal checks if path contains ".." directory traversal.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	// Forward slashes count on every platform.
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}
