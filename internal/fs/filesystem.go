// Package fs provides the real-filesystem implementation of the engine's
// filesystem manager: walking with directory pruning, copy-via-temp, and
// removal.
package fs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"mo-go/internal/mo"
)

// OSFilesystemManager is the real filesystem implementation of
// mo.FilesystemManager. It performs actual filesystem operations using the
// os package, pruning skip-listed directories during walks.
type OSFilesystemManager struct {
	skip *SkipMatcher
}

// NewOSFilesystemManager creates a filesystem manager that operates on the
// real filesystem. extraSkip names are added to the default skip list.
func NewOSFilesystemManager(extraSkip []string) *OSFilesystemManager {
	return &OSFilesystemManager{skip: NewSkipMatcher(extraSkip)}
}

// Resolve validates a raw path and returns a Path object.
func (m *OSFilesystemManager) Resolve(rawPath string) (*mo.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	if mode&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("symlinks not supported: %s", absPath)
	}
	if mode&os.ModeDevice != 0 {
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	}
	if mode&os.ModeNamedPipe != 0 {
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	}
	if mode&os.ModeSocket != 0 {
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return mo.NewPath(absPath, info.IsDir(), info), nil
}

// WalkFiles calls fn for every regular file under root. Skip-listed
// directories are pruned; entries that disappear or cannot be stat'd
// mid-walk are passed over so one bad entry never aborts a scan.
func (m *OSFilesystemManager) WalkFiles(root string, fn func(path string, size int64) error) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directory or vanished entry: keep walking.
			return nil
		}
		if d.IsDir() {
			if p != root && m.skip.Match(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		return fn(p, info.Size())
	})
}

// Copy writes src's content to dst via a temporary file in dst's directory
// followed by a rename, so a crash mid-copy never leaves a half-written
// file at the destination name. Permissions and modification time are
// carried over from src.
func (m *OSFilesystemManager) Copy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".mo-copy-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("copying content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Chtimes(tmpPath, info.ModTime(), info.ModTime()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting times: %w", err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}

// Remove deletes a file.
func (m *OSFilesystemManager) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing file: %w", err)
	}
	return nil
}

// Exists reports whether a path exists.
func (m *OSFilesystemManager) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// MkdirAll creates a directory and any missing parents.
func (m *OSFilesystemManager) MkdirAll(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return nil
}

// Compile-time check that OSFilesystemManager implements mo.FilesystemManager.
var _ mo.FilesystemManager = (*OSFilesystemManager)(nil)
