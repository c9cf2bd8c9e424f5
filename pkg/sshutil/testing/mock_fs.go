// Package testing provides SSH mock utilities for testing.
// It simulates a remote host with an in-memory filesystem and records every
// call a session makes, so tests can assert on remote side effects and order.
package testing

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

// MockFS simulates an in-memory remote filesystem.
// Paths are POSIX paths regardless of the local OS.
type MockFS struct {
	mu    sync.RWMutex
	files map[string][]byte   // path -> content
	dirs  map[string]struct{} // directories
}

// NewMockFS creates a new empty mock filesystem.
func NewMockFS() *MockFS {
	return &MockFS{
		files: make(map[string][]byte),
		dirs:  make(map[string]struct{}),
	}
}

// Mkdir creates a directory. Returns error if directory already exists.
func (mfs *MockFS) Mkdir(p string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	p = path.Clean(p)
	if _, exists := mfs.dirs[p]; exists {
		return errors.New("directory already exists")
	}
	if _, exists := mfs.files[p]; exists {
		return errors.New("file exists at path")
	}

	mfs.dirs[p] = struct{}{}
	return nil
}

// MkdirAll creates a directory and all parent directories.
func (mfs *MockFS) MkdirAll(p string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	mfs.mkdirAllLocked(path.Clean(p))
	return nil
}

func (mfs *MockFS) mkdirAllLocked(p string) {
	for p != "/" && p != "." && p != "" {
		mfs.dirs[p] = struct{}{}
		p = path.Dir(p)
	}
}

// WriteFile writes content to a file, creating parent directories as needed.
func (mfs *MockFS) WriteFile(p string, content []byte) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	p = path.Clean(p)
	if _, isDir := mfs.dirs[p]; isDir {
		return fmt.Errorf("%s: is a directory", p)
	}
	mfs.mkdirAllLocked(path.Dir(p))

	stored := make([]byte, len(content))
	copy(stored, content)
	mfs.files[p] = stored
	return nil
}

// ReadFile reads the content of a file. The error wraps fs.ErrNotExist
// when the file is missing.
func (mfs *MockFS) ReadFile(p string) ([]byte, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	content, exists := mfs.files[path.Clean(p)]
	if !exists {
		return nil, fmt.Errorf("%s: file not found: %w", p, fs.ErrNotExist)
	}
	return content, nil
}

// Remove removes a file or directory and all its contents, like rm -rf.
func (mfs *MockFS) Remove(p string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	p = path.Clean(p)
	delete(mfs.files, p)
	delete(mfs.dirs, p)

	prefix := p + "/"
	for f := range mfs.files {
		if strings.HasPrefix(f, prefix) {
			delete(mfs.files, f)
		}
	}
	for d := range mfs.dirs {
		if strings.HasPrefix(d, prefix) {
			delete(mfs.dirs, d)
		}
	}
	return nil
}

// Exists returns true if the path exists (file or directory).
func (mfs *MockFS) Exists(p string) bool {
	return mfs.IsDir(p) || mfs.IsFile(p)
}

// IsDir returns true if the path exists and is a directory.
func (mfs *MockFS) IsDir(p string) bool {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	_, exists := mfs.dirs[path.Clean(p)]
	return exists
}

// IsFile returns true if the path exists and is a file.
func (mfs *MockFS) IsFile(p string) bool {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	_, exists := mfs.files[path.Clean(p)]
	return exists
}

// Files lists every file under dir, sorted. Useful for asserting that
// temporary files were cleaned up.
func (mfs *MockFS) Files(dir string) []string {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	prefix := strings.TrimSuffix(path.Clean(dir), "/") + "/"
	var out []string
	for f := range mfs.files {
		if strings.HasPrefix(f, prefix) {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}
