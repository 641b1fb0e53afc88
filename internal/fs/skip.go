package fs

import "strings"

// defaultSkipNames are directory names never descended into: NAS/OS junk
// directories plus the mp4/ and zip/ destination subtrees, which hold
// already-placed files.
var defaultSkipNames = []string{
	"@eaDir",
	".DS_Store",
	"Thumbs.db",
	"@Recycle",
	"#recycle",
	".thumbnail",
	"mp4",
	"zip",
}

// SkipMatcher decides whether a directory should be pruned from a walk.
// Any directory whose name starts with '.' is skipped regardless of the
// configured names.
type SkipMatcher struct {
	names map[string]bool
}

// NewSkipMatcher creates a SkipMatcher from the default skip list plus any
// extra names. Blank entries are dropped.
func NewSkipMatcher(extra []string) *SkipMatcher {
	names := make(map[string]bool, len(defaultSkipNames)+len(extra))
	for _, n := range defaultSkipNames {
		names[n] = true
	}
	for _, n := range extra {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		names[n] = true
	}
	return &SkipMatcher{names: names}
}

// Match reports whether a directory with the given basename should be skipped.
func (m *SkipMatcher) Match(name string) bool {
	return m.names[name] || strings.HasPrefix(name, ".")
}
