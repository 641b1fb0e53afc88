// Package database provides the Inventory backends: a durable SQLite store
// for large trees and an in-memory store for small ones and tests.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mo-go/internal/database/migrations"
	"mo-go/internal/mo"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteInventory implements mo.Inventory using SQLite. Hash groups are
// served off the exact_hash/content_hash indexes, so retrieval is paged
// per hash value and never loads the whole inventory.
type SQLiteInventory struct {
	db    *sql.DB
	path  string
	clock mo.Clock
	ids   mo.IDGenerator
}

// NewSQLiteInventory opens (or creates) the inventory database at path and
// migrates it to the latest schema. path can be ":memory:" for tests.
func NewSQLiteInventory(path string) (*SQLiteInventory, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating inventory schema: %w", err)
	}

	return &SQLiteInventory{
		db:    db,
		path:  path,
		clock: mo.RealClock{},
		ids:   mo.UUIDGenerator{},
	}, nil
}

// OpenConnection opens and configures a SQLite database connection with
// appropriate PRAGMAs. Exported for tools and tests that need a properly
// configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Hashing workers feed a single insert collector, but MarkProcessed and
	// group reads interleave during resolution; wait on locks instead of
	// failing fast.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Every :memory: connection is its own database; the pool must never
	// open a second one.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	return db, nil
}

const fileColumns = "path, filename, file_type, size, exact_hash, content_hash, origin, processed"

// Insert records a file, ignoring it if the path is already inventoried.
func (s *SQLiteInventory) Insert(rec *mo.FileRecord) error {
	_, err := s.db.ExecContext(context.Background(), `
		INSERT OR IGNORE INTO files (`+fileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Path, rec.Filename, string(rec.FileType), rec.Size,
		rec.ExactHash, nullString(rec.ContentHash), string(rec.Origin), rec.Processed)
	if err != nil {
		return fmt.Errorf("inserting file record: %w", err)
	}
	return nil
}

// InsertBatch records many files in a single transaction with the same
// first-writer-wins semantics as Insert.
func (s *SQLiteInventory) InsertBatch(recs []*mo.FileRecord) error {
	if len(recs) == 0 {
		return nil
	}
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO files (`+fileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		_, err := stmt.ExecContext(ctx,
			rec.Path, rec.Filename, string(rec.FileType), rec.Size,
			rec.ExactHash, nullString(rec.ContentHash), string(rec.Origin), rec.Processed)
		if err != nil {
			return fmt.Errorf("inserting file record %s: %w", rec.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Get returns the record for a path, or nil if not inventoried.
func (s *SQLiteInventory) Get(path string) (*mo.FileRecord, error) {
	row := s.db.QueryRowContext(context.Background(), `
		SELECT `+fileColumns+` FROM files WHERE path = ?`, path)

	rec, err := scanFileRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding file by path: %w", err)
	}
	return rec, nil
}

// DistinctHashes returns every distinct non-empty hash for one type in one
// hash space.
func (s *SQLiteInventory) DistinctHashes(ft mo.FileType, space mo.HashSpace) ([]string, error) {
	col, err := hashColumn(space)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(context.Background(), `
		SELECT DISTINCT `+col+` FROM files
		WHERE file_type = ? AND `+col+` IS NOT NULL AND `+col+` != ''
		ORDER BY `+col, string(ft))
	if err != nil {
		return nil, fmt.Errorf("listing distinct hashes: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scanning hash: %w", err)
		}
		hashes = append(hashes, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hashes: %w", err)
	}
	return hashes, nil
}

// Group returns the records sharing one hash, largest first with target
// origin winning size ties.
func (s *SQLiteInventory) Group(ft mo.FileType, space mo.HashSpace, hash string) ([]*mo.FileRecord, error) {
	col, err := hashColumn(space)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(context.Background(), `
		SELECT `+fileColumns+` FROM files
		WHERE file_type = ? AND `+col+` = ?
		ORDER BY size DESC, (origin = 'target') DESC, path ASC`, string(ft), hash)
	if err != nil {
		return nil, fmt.Errorf("loading hash group: %w", err)
	}
	defer rows.Close()

	var group []*mo.FileRecord
	for rows.Next() {
		rec, err := scanFileRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning file record: %w", err)
		}
		group = append(group, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating group: %w", err)
	}
	return group, nil
}

// MarkProcessed sets the processed flag for a path. Idempotent; the flag
// never goes back to false.
func (s *SQLiteInventory) MarkProcessed(path string) error {
	_, err := s.db.ExecContext(context.Background(),
		`UPDATE files SET processed = TRUE WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("marking processed: %w", err)
	}
	return nil
}

// CountByType returns per-type record counts for one origin.
func (s *SQLiteInventory) CountByType(origin mo.Origin) (map[mo.FileType]int64, error) {
	rows, err := s.db.QueryContext(context.Background(), `
		SELECT file_type, COUNT(*) FROM files
		WHERE origin = ? GROUP BY file_type`, string(origin))
	if err != nil {
		return nil, fmt.Errorf("counting files: %w", err)
	}
	defer rows.Close()

	counts := make(map[mo.FileType]int64)
	for rows.Next() {
		var ft string
		var n int64
		if err := rows.Scan(&ft, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[mo.FileType(ft)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating counts: %w", err)
	}
	return counts, nil
}

// Clear removes every file record. Run records are kept for the audit trail.
func (s *SQLiteInventory) Clear() error {
	if _, err := s.db.ExecContext(context.Background(), `DELETE FROM files`); err != nil {
		return fmt.Errorf("clearing inventory: %w", err)
	}
	return nil
}

// Run tracking

// CreateRun persists the start of a reconcile run.
func (s *SQLiteInventory) CreateRun(operation, parameters string) (*mo.Run, error) {
	run := &mo.Run{
		UUID:       s.ids.New(),
		Operation:  operation,
		Parameters: parameters,
		StartedAt:  s.clock.Now(),
		Status:     "started",
	}

	res, err := s.db.ExecContext(context.Background(), `
		INSERT INTO runs (uuid, operation, parameters, started_at, status)
		VALUES (?, ?, ?, ?, ?)`,
		run.UUID, run.Operation, run.Parameters, run.StartedAt, run.Status)
	if err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}

	run.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading run id: %w", err)
	}
	return run, nil
}

// FinishRun records the outcome and counters of a run.
func (s *SQLiteInventory) FinishRun(id int64, status string, counts mo.Counts) error {
	_, err := s.db.ExecContext(context.Background(), `
		UPDATE runs SET finished_at = ?, status = ?, copied = ?, skipped = ?, deleted = ?
		WHERE id = ?`,
		s.clock.Now(), status, counts.Copied, counts.Skipped, counts.Deleted, id)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteInventory) ListRuns(limit int) ([]*mo.Run, error) {
	rows, err := s.db.QueryContext(context.Background(), `
		SELECT id, uuid, operation, parameters, started_at, finished_at, status, copied, skipped, deleted
		FROM runs ORDER BY id DESC LIMIT ?`, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*mo.Run
	for rows.Next() {
		var run mo.Run
		var finished sql.NullTime
		err := rows.Scan(&run.ID, &run.UUID, &run.Operation, &run.Parameters,
			&run.StartedAt, &finished, &run.Status,
			&run.Counts.Copied, &run.Counts.Skipped, &run.Counts.Deleted)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteInventory) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteInventory) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Close closes the database connection.
func (s *SQLiteInventory) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanFileRecord(row scanner) (*mo.FileRecord, error) {
	var rec mo.FileRecord
	var ft, origin string
	var contentHash sql.NullString
	err := row.Scan(&rec.Path, &rec.Filename, &ft, &rec.Size,
		&rec.ExactHash, &contentHash, &origin, &rec.Processed)
	if err != nil {
		return nil, err
	}
	rec.FileType = mo.FileType(ft)
	rec.ContentHash = contentHash.String
	rec.Origin = mo.Origin(origin)
	return &rec, nil
}

func hashColumn(space mo.HashSpace) (string, error) {
	switch space {
	case mo.SpaceExact:
		return "exact_hash", nil
	case mo.SpaceContent:
		return "content_hash", nil
	default:
		return "", fmt.Errorf("unknown hash space: %s", space)
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Compile-time check that SQLiteInventory implements mo.Inventory.
var _ mo.Inventory = (*SQLiteInventory)(nil)
