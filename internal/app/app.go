// Package app is the application layer between the CLI and the Reconciler.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and manages the store lifecycle on Close.
package app

import (
	"fmt"
	"os"
	"time"

	"mo-go/internal/classify"
	"mo-go/internal/config"
	"mo-go/internal/database"
	"mo-go/internal/fs"
	"mo-go/internal/hash"
	"mo-go/internal/mo"
)

// MOApp wires the engine together for one CLI invocation.
// The caller must call Close when done.
type MOApp struct {
	cfg     *config.Config
	inv     mo.Inventory
	fsmgr   mo.FilesystemManager
	service *mo.Reconciler
	run     *ReconcileRun
	logFile *os.File
}

// NewMOApp creates a fully wired MOApp from the given config.
// operation identifies the CLI command being run (e.g. "Organize", "History").
func NewMOApp(cfg *config.Config, operation string) (*MOApp, error) {
	fsmgr := fs.NewOSFilesystemManager(cfg.Filesystem.SkipDirs)

	inv, err := database.NewInventoryFromConfig(cfg.Database, cfg.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("creating inventory: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		inv.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc := mo.NewReconciler(inv, fsmgr, hash.NewFileHasher(), classify.NewExtClassifier(),
		&slogAdapter{l: logger}, cfg.Hashing.Workers)
	run := NewReconcileRun(operation, "")

	return &MOApp{
		cfg:     cfg,
		inv:     inv,
		fsmgr:   fsmgr,
		service: svc,
		run:     run,
		logFile: logFile,
	}, nil
}

// persistRun saves the run to the store, giving it an auto-increment ID.
// This should only be called for inventory-mutating commands.
func (a *MOApp) persistRun(parameters string) error {
	if a.run.Persisted() {
		return nil // already persisted
	}
	a.run.Parameters = parameters
	stored, err := a.inv.CreateRun(a.run.Operation, a.run.Parameters)
	if err != nil {
		return fmt.Errorf("persisting run: %w", err)
	}
	a.run.ID = stored.ID
	return nil
}

// Organize reconciles the source tree against the target tree.
// When fast is true (or the config default says so), perceptual hashing is
// skipped and images are grouped by exact hash only. When fresh is true the
// inventory is cleared first, discarding processed state from earlier runs.
func (a *MOApp) Organize(sourceRoot, targetRoot string, fast, fresh bool) (mo.Counts, error) {
	params := fmt.Sprintf("source=%s target=%s fast=%t fresh=%t", sourceRoot, targetRoot, fast, fresh)
	if err := a.persistRun(params); err != nil {
		return mo.Counts{}, err
	}

	if fresh {
		if err := a.inv.Clear(); err != nil {
			a.run.Status = "error"
			return mo.Counts{}, fmt.Errorf("clearing inventory: %w", err)
		}
	}

	useContentHash := !fast && !a.cfg.Hashing.Fast
	counts, err := a.service.Reconcile(sourceRoot, targetRoot, useContentHash)
	a.run.Counts = counts
	if err != nil {
		a.run.Status = "error"
		return counts, err
	}
	return counts, nil
}

// History returns the most recent reconcile runs.
func (a *MOApp) History(limit int) ([]*mo.Run, error) {
	return a.inv.ListRuns(limit)
}

// Close finalizes the run record and closes all resources.
func (a *MOApp) Close() error {
	var firstErr error

	if a.run.Persisted() {
		if err := a.inv.FinishRun(a.run.ID, a.run.Status, a.run.Counts); err != nil {
			firstErr = fmt.Errorf("finishing run: %w", err)
		}
	}

	if err := a.inv.Close(); err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("closing inventory: %w", err)
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
