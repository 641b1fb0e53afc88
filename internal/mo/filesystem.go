package mo

import "io/fs"

// Path represents a validated filesystem path with cached metadata.
// Path objects are created by FilesystemManager.Resolve() which validates
// the path exists, resolves it to an absolute path, and caches stat info.
type Path struct {
	absPath string
	isDir   bool
	info    fs.FileInfo
}

// NewPath creates a Path from its components.
// This is primarily for use by FilesystemManager implementations.
func NewPath(absPath string, isDir bool, info fs.FileInfo) *Path {
	return &Path{
		absPath: absPath,
		isDir:   isDir,
		info:    info,
	}
}

// String returns the absolute path as a string.
func (p *Path) String() string {
	return p.absPath
}

// IsDir returns true if this path points to a directory.
func (p *Path) IsDir() bool {
	return p.isDir
}

// Info returns the cached file info from when the path was resolved.
func (p *Path) Info() fs.FileInfo {
	return p.info
}

// FilesystemManager abstracts every filesystem operation the engine needs,
// so tests can run against an in-memory implementation.
type FilesystemManager interface {
	// Resolve validates a raw path and returns a Path object.
	Resolve(rawPath string) (*Path, error)

	// WalkFiles calls fn for every regular file under root, in a stable
	// order, with skip-listed directories pruned. Unreadable entries are
	// passed over; an error from fn aborts the walk.
	WalkFiles(root string, fn func(path string, size int64) error) error

	// Copy writes src's content to dst via a temporary file in dst's
	// directory followed by a rename, so dst never exists half-written.
	Copy(src, dst string) error

	// Remove deletes a file.
	Remove(path string) error

	// Exists reports whether a path exists.
	Exists(path string) bool

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path string) error
}
