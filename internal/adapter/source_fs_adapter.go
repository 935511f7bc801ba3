package adapter

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	m "autodoc.dev/pkg/autodoc/internal/model"
)

// SourceFSAdapter abstracts the filesystem operations the domain layer relies
// on. It hides direct `os` access so processing logic can be tested without
// touching the disk.
type SourceFSAdapter interface {
	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// WriteFile writes content to a file with the given permissions.
	WriteFile(path m.Path, content []byte, perm os.FileMode) error

	// HashFile returns a stable fingerprint (SHA-256) for the file at path.
	HashFile(path m.Path) (string, error)

	// FileInfo returns metadata for a path so the domain can check existence.
	FileInfo(path m.Path) (os.FileInfo, error)

	// WalkPythonFiles traverses root and invokes fn for every Python source
	// file found. When recursive is false only the root directory is scanned.
	WalkPythonFiles(root m.Path, recursive bool, fn func(path m.Path) error) error
}

// LocalSourceFSAdapter is the concrete implementation backed by the os
// package.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// WriteFile writes content to disk.
func (a *LocalSourceFSAdapter) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	return os.WriteFile(string(path), content, perm)
}

// HashFile returns the SHA-256 hash of the file at the provided path.
func (a *LocalSourceFSAdapter) HashFile(path m.Path) (string, error) {
	f, err := os.Open(string(path))
	if err != nil {
		return "", err
	}

	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// FileInfo returns metadata for the provided path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// WalkPythonFiles iterates over Python files under root, optionally
// descending into subdirectories.
func (a *LocalSourceFSAdapter) WalkPythonFiles(root m.Path, recursive bool, fn func(path m.Path) error) error {
	rootStr := string(root)

	info, err := os.Stat(rootStr)
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}

	if !info.IsDir() {
		if filepath.Ext(rootStr) == m.PythonFileExtension {
			return fn(root)
		}

		return nil
	}

	return filepath.Walk(rootStr, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if !recursive && path != rootStr {
				return filepath.SkipDir
			}

			return nil
		}

		if filepath.Ext(path) != m.PythonFileExtension {
			return nil
		}

		return fn(m.Path(path))
	})
}
