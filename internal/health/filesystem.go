package health

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

var errFolderMissing = errors.New("folder does not exist")

// FilesystemChecker checks the folders the scraper files are written to.
type FilesystemChecker struct{}

// NewFilesystemChecker creates a new filesystem checker.
func NewFilesystemChecker() *FilesystemChecker {
	return &FilesystemChecker{}
}

// CheckFolderAccessible verifies that a path exists and is a directory.
func (c *FilesystemChecker) CheckFolderAccessible(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", errFolderMissing, path)
		}
		if os.IsPermission(err) {
			return fmt.Errorf("permission denied: %s", path)
		}
		return fmt.Errorf("cannot access path: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	return nil
}

// CheckFolderWritable verifies that a directory is writable by creating and
// removing a probe file.
func (c *FilesystemChecker) CheckFolderWritable(path string) error {
	probe := filepath.Join(path, fmt.Sprintf(".imdbplus_health_check_%s", uuid.New().String()[:8]))

	file, err := os.Create(probe)
	if err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("folder is read-only: %s", path)
		}
		return fmt.Errorf("cannot write to folder: %w", err)
	}

	if _, err := file.Write([]byte("health check")); err != nil {
		file.Close()
		os.Remove(probe)
		return fmt.Errorf("cannot write data: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(probe)
		return fmt.Errorf("cannot close file: %w", err)
	}
	if err := os.Remove(probe); err != nil {
		return fmt.Errorf("cannot remove test file: %w", err)
	}

	return nil
}

// CheckFolderHealth combines the accessibility and writability checks. A
// missing folder is only a warning since the synchronizer creates it.
func (c *FilesystemChecker) CheckFolderHealth(path string) (HealthStatus, string) {
	if err := c.CheckFolderAccessible(path); err != nil {
		if errors.Is(err, errFolderMissing) {
			return StatusWarning, err.Error()
		}
		return StatusError, err.Error()
	}
	if err := c.CheckFolderWritable(path); err != nil {
		return StatusError, err.Error()
	}
	return StatusOK, ""
}
