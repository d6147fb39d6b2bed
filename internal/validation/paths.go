package validation

import (
	"fmt"
	"os"
	"path/filepath"
)

// PathHandler resolves the on-disk locations mailcal writes to.
type PathHandler struct {
	validator *FilePathValidator
}

func NewSecurePathHandler() *PathHandler {
	return &PathHandler{validator: NewFilePathValidator()}
}

func NewPermissivePathHandler() *PathHandler {
	return &PathHandler{validator: NewPermissiveFilePathValidator()}
}

// GetSecureDBPath validates the prefs database path, defaulting to ~/.mailcal/mailcal.db.
func (ph *PathHandler) GetSecureDBPath(userPath string) (string, error) {
	if userPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		userPath = filepath.Join(homeDir, ".mailcal", "mailcal.db")
	}
	return ph.validator.ValidateFile(userPath)
}

// GetExportPath validates an mbox export target and creates its parent directory.
func (ph *PathHandler) GetExportPath(userPath string) (string, error) {
	path, err := ph.validator.ValidateFile(userPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	return path, nil
}
