// Package fileutils provides the file operations shared by the history store, the
// report generator and the storage manager.
package fileutils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileExists checks if a file exists and is not a directory
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirectoryExists checks if a directory exists
func DirectoryExists(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDirectoryExists creates a directory if it doesn't exist
func EnsureDirectoryExists(dirPath string) error {
	if !DirectoryExists(dirPath) {
		if err := os.MkdirAll(dirPath, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return nil
}

// WriteAtomic publishes the output of write at filePath. Content goes to a
// temporary file in the same directory which is synced, closed and renamed over
// filePath, so readers see either the old file or the complete new one. On any
// failure the temporary file is removed and filePath is left untouched.
func WriteAtomic(filePath string, perm os.FileMode, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(filePath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				err = errors.Join(err, fmt.Errorf("failed to remove temporary file: %w", rmErr))
			}
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err = os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err = os.Rename(tmpPath, filePath); err != nil {
		return fmt.Errorf("failed to publish file: %w", err)
	}
	return nil
}

// WriteFileAtomic writes data to filePath with WriteAtomic.
func WriteFileAtomic(filePath string, data []byte, perm os.FileMode) error {
	return WriteAtomic(filePath, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// CopyFileAtomic copies src to dst with WriteAtomic.
func CopyFileAtomic(src, dst string, perm os.FileMode) error {
	source, err := os.Open(src) // #nosec G304 -- src is a published artifact in the output directory
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = source.Close() }()

	return WriteAtomic(dst, perm, func(w io.Writer) error {
		_, err := io.Copy(w, source)
		return err
	})
}

// ListFilesWithExtension returns the regular files directly inside dirPath whose
// extension matches one of extensions (case-insensitive), sorted by name.
// Temporary files from WriteAtomic are skipped.
func ListFilesWithExtension(dirPath string, extensions ...string) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		wanted[strings.ToLower(ext)] = true
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if wanted[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(dirPath, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
