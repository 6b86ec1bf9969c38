package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// CreateFolder creates every directory in the list, parents included.
func CreateFolder(folders ...string) error {
	for _, folder := range folders {
		if err := os.MkdirAll(folder, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", folder, err)
		}
	}
	return nil
}

// RemoveFile deletes the given files, ignoring ones that are already gone.
func RemoveFile(paths ...string) error {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove file %s: %w", path, err)
		}
	}
	return nil
}

// EnsureCacheDirectories creates the on-disk layout for the media cache root.
func EnsureCacheDirectories(cacheRoot string) error {
	return CreateFolder(
		cacheRoot,
		filepath.Join(cacheRoot, "images"),
		filepath.Join(cacheRoot, "videos"),
	)
}
