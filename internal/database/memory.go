package database

import (
	"sort"
	"sync"

	"mo-go/internal/mo"
)

// MemoryInventory is an in-memory implementation of mo.Inventory for small
// trees and tests. Safe for concurrent use; grouping order matches the
// SQLite backend exactly.
type MemoryInventory struct {
	mu    sync.Mutex
	files map[string]*mo.FileRecord
	runs  []*mo.Run
	runID int64
	clock mo.Clock
	ids   mo.IDGenerator
}

// NewMemoryInventory creates an empty in-memory inventory.
func NewMemoryInventory() *MemoryInventory {
	return &MemoryInventory{
		files: make(map[string]*mo.FileRecord),
		clock: mo.RealClock{},
		ids:   mo.UUIDGenerator{},
	}
}

// Insert records a file; a path already present is ignored.
func (m *MemoryInventory) Insert(rec *mo.FileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertLocked(rec)
	return nil
}

// InsertBatch records many files with first-writer-wins per record.
func (m *MemoryInventory) InsertBatch(recs []*mo.FileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range recs {
		m.insertLocked(rec)
	}
	return nil
}

func (m *MemoryInventory) insertLocked(rec *mo.FileRecord) {
	if _, exists := m.files[rec.Path]; exists {
		return
	}
	clone := *rec
	m.files[rec.Path] = &clone
}

// Get returns a copy of the record for a path, or nil if not inventoried.
func (m *MemoryInventory) Get(path string) (*mo.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.files[path]
	if !ok {
		return nil, nil
	}
	clone := *rec
	return &clone, nil
}

// DistinctHashes returns every distinct non-empty hash for one type in one
// hash space, sorted for deterministic iteration.
func (m *MemoryInventory) DistinctHashes(ft mo.FileType, space mo.HashSpace) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool)
	for _, rec := range m.files {
		if rec.FileType != ft {
			continue
		}
		h := hashFor(rec, space)
		if h != "" {
			seen[h] = true
		}
	}

	hashes := make([]string, 0, len(seen))
	for h := range seen {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)
	return hashes, nil
}

// Group returns copies of the records sharing one hash, largest first with
// target origin winning size ties.
func (m *MemoryInventory) Group(ft mo.FileType, space mo.HashSpace, hash string) ([]*mo.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var group []*mo.FileRecord
	for _, rec := range m.files {
		if rec.FileType != ft || hashFor(rec, space) != hash {
			continue
		}
		clone := *rec
		group = append(group, &clone)
	}

	sort.Slice(group, func(i, j int) bool {
		a, b := group[i], group[j]
		if a.Size != b.Size {
			return a.Size > b.Size
		}
		if a.Origin != b.Origin {
			return a.Origin == mo.OriginTarget
		}
		return a.Path < b.Path
	})
	return group, nil
}

// MarkProcessed sets the processed flag for a path. Unknown paths are a no-op.
func (m *MemoryInventory) MarkProcessed(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.files[path]; ok {
		rec.Processed = true
	}
	return nil
}

// CountByType returns per-type record counts for one origin.
func (m *MemoryInventory) CountByType(origin mo.Origin) (map[mo.FileType]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[mo.FileType]int64)
	for _, rec := range m.files {
		if rec.Origin == origin {
			counts[rec.FileType]++
		}
	}
	return counts, nil
}

// Clear removes every file record; run records are kept.
func (m *MemoryInventory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = make(map[string]*mo.FileRecord)
	return nil
}

// CreateRun records the start of a reconcile run.
func (m *MemoryInventory) CreateRun(operation, parameters string) (*mo.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runID++
	run := &mo.Run{
		ID:         m.runID,
		UUID:       m.ids.New(),
		Operation:  operation,
		Parameters: parameters,
		StartedAt:  m.clock.Now(),
		Status:     "started",
	}
	m.runs = append(m.runs, run)

	clone := *run
	return &clone, nil
}

// FinishRun records the outcome and counters of a run.
func (m *MemoryInventory) FinishRun(id int64, status string, counts mo.Counts) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, run := range m.runs {
		if run.ID == id {
			now := m.clock.Now()
			run.FinishedAt = &now
			run.Status = status
			run.Counts = counts
			return nil
		}
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (m *MemoryInventory) ListRuns(limit int) ([]*mo.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var runs []*mo.Run
	for i := len(m.runs) - 1; i >= 0 && len(runs) < limit; i-- {
		clone := *m.runs[i]
		runs = append(runs, &clone)
	}
	return runs, nil
}

// Close is a no-op for the in-memory backend.
func (m *MemoryInventory) Close() error {
	return nil
}

func hashFor(rec *mo.FileRecord, space mo.HashSpace) string {
	if space == mo.SpaceContent {
		return rec.ContentHash
	}
	return rec.ExactHash
}

// Compile-time check that MemoryInventory implements mo.Inventory.
var _ mo.Inventory = (*MemoryInventory)(nil)
