package testutil

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"mo-go/internal/mo"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Content []byte
	ModTime time.Time
}

// MockFilesystemManager is an in-memory filesystem for testing. It records
// every Copy and Remove so tests can assert on the side effects the engine
// applied.
type MockFilesystemManager struct {
	mu    sync.Mutex
	files map[string]*MockFile
	dirs  map[string]bool

	// FailCopy and FailRemove inject errors for specific source paths.
	FailCopy   map[string]bool
	FailRemove map[string]bool

	Copies  [][2]string // recorded (src, dst) pairs
	Removes []string    // recorded removed paths
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:      make(map[string]*MockFile),
		dirs:       make(map[string]bool),
		FailCopy:   make(map[string]bool),
		FailRemove: make(map[string]bool),
	}
}

// AddFile adds a file to the mock filesystem, creating parent directories.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = &MockFile{Content: content, ModTime: time.Now()}
	for dir := filepath.Dir(path); dir != "/" && dir != "."; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
	}
}

// AddDirectory adds a directory to the mock filesystem.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[path] = true
}

// Content returns a file's content and whether it exists.
func (m *MockFilesystemManager) Content(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[path]
	if !ok {
		return nil, false
	}
	return f.Content, true
}

// Resolve validates a path against the mock state.
func (m *MockFilesystemManager) Resolve(rawPath string) (*mo.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dirs[absPath] {
		return mo.NewPath(absPath, true, nil), nil
	}
	if _, ok := m.files[absPath]; ok {
		return mo.NewPath(absPath, false, nil), nil
	}
	return nil, fmt.Errorf("path not found: %s", absPath)
}

// WalkFiles visits every file under root in sorted order.
func (m *MockFilesystemManager) WalkFiles(root string, fn func(path string, size int64) error) error {
	m.mu.Lock()
	var paths []string
	prefix := strings.TrimSuffix(root, "/") + "/"
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	m.mu.Unlock()

	sort.Strings(paths)
	for _, p := range paths {
		content, _ := m.Content(p)
		if err := fn(p, int64(len(content))); err != nil {
			return err
		}
	}
	return nil
}

// Copy duplicates src's content at dst, recording the pair.
func (m *MockFilesystemManager) Copy(src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCopy[src] {
		return fmt.Errorf("injected copy failure: %s", src)
	}
	f, ok := m.files[src]
	if !ok {
		return fmt.Errorf("source not found: %s", src)
	}
	m.files[dst] = &MockFile{Content: append([]byte(nil), f.Content...), ModTime: f.ModTime}
	m.Copies = append(m.Copies, [2]string{src, dst})
	return nil
}

// Remove deletes a file, recording the path.
func (m *MockFilesystemManager) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailRemove[path] {
		return fmt.Errorf("injected remove failure: %s", path)
	}
	if _, ok := m.files[path]; !ok {
		return fmt.Errorf("file not found: %s", path)
	}
	delete(m.files, path)
	m.Removes = append(m.Removes, path)
	return nil
}

// Exists reports whether a file or directory exists.
func (m *MockFilesystemManager) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path]; ok {
		return true
	}
	return m.dirs[path]
}

// MkdirAll records a directory.
func (m *MockFilesystemManager) MkdirAll(path string) error {
	m.AddDirectory(path)
	return nil
}

// Compile-time check that MockFilesystemManager implements mo.FilesystemManager.
var _ mo.FilesystemManager = (*MockFilesystemManager)(nil)
