package mo

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Planner computes collision-free destination paths per file type.
// Images land in the destination base itself; videos and archives get
// their own subtrees.
type Planner struct {
	fsmgr FilesystemManager
}

// NewPlanner creates a Planner operating through the given filesystem manager.
func NewPlanner(fsmgr FilesystemManager) *Planner {
	return &Planner{fsmgr: fsmgr}
}

// DestinationRoot returns the destination directory for a file type under
// base, creating it if absent.
func (p *Planner) DestinationRoot(base string, ft FileType) (string, error) {
	dir := base
	switch ft {
	case TypeVideo:
		dir = filepath.Join(base, "mp4")
	case TypeArchive:
		dir = filepath.Join(base, "zip")
	}
	if err := p.fsmgr.MkdirAll(dir); err != nil {
		return "", fmt.Errorf("creating destination directory: %w", err)
	}
	return dir, nil
}

// ResolveCollision returns a destination path for filename in dir that does
// not clash with an existing file: the name as-is when free, otherwise
// name_1.ext, name_2.ext, ... until a free name is found.
//
// The check and the later create are not atomic. The effect phase runs
// single-threaded over the filesystem, so the window is accepted rather
// than locked around.
func (p *Planner) ResolveCollision(dir, filename string) string {
	candidate := filepath.Join(dir, filename)
	if !p.fsmgr.Exists(candidate) {
		return candidate
	}

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	for i := 1; ; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if !p.fsmgr.Exists(candidate) {
			return candidate
		}
	}
}
