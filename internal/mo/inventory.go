package mo

// Inventory provides an interface for the durable, hash-indexed file store.
// Implementations must support tens of thousands of records; group retrieval
// is two-step (hash list, then one group per hash) so the full inventory is
// never materialized at once.
type Inventory interface {
	// Insert records a file. Idempotent: a record whose path already exists
	// is ignored (first writer wins, processed state preserved).
	Insert(rec *FileRecord) error

	// InsertBatch records many files in one transaction, with the same
	// first-writer-wins semantics per record.
	InsertBatch(recs []*FileRecord) error

	// Get returns the record for a path, or nil if not inventoried.
	Get(path string) (*FileRecord, error)

	// DistinctHashes returns every distinct non-empty hash value for one
	// file type in one hash space.
	DistinctHashes(ft FileType, space HashSpace) ([]string, error)

	// Group returns the records sharing one hash value, ordered by size
	// descending with target origin before source origin on ties, so the
	// designated winner is always first.
	Group(ft FileType, space HashSpace, hash string) ([]*FileRecord, error)

	// MarkProcessed sets the processed flag for a path. Idempotent and
	// atomic; the flag never transitions back to false.
	MarkProcessed(path string) error

	// CountByType returns per-type record counts for one origin.
	CountByType(origin Origin) (map[FileType]int64, error)

	// Clear removes every file record. The inventory is working state, not
	// an archive; run records are kept.
	Clear() error

	// CreateRun persists the start of a reconcile run and returns it with
	// its assigned ID.
	CreateRun(operation, parameters string) (*Run, error)

	// FinishRun records the outcome and counters of a run.
	FinishRun(id int64, status string, counts Counts) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*Run, error)

	// Close closes the underlying store.
	Close() error
}
