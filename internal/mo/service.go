package mo

import (
	"fmt"
)

// mediaTypes are the categories the engine reconciles, in processing order.
// TypeOther files are never inventoried.
var mediaTypes = []FileType{TypeImage, TypeVideo, TypeArchive}

// Reconciler is the orchestration layer that drives the whole pipeline:
// scan target, scan source, resolve duplicate groups per type, and apply
// copy/delete side effects through the placement planner.
type Reconciler struct {
	inv        Inventory
	fsmgr      FilesystemManager
	hasher     Hasher
	classifier Classifier
	planner    *Planner
	logger     Logger
	workers    int
}

// NewReconciler creates a Reconciler with the provided dependencies.
// workers bounds the hashing pool; values below 1 are treated as 1.
func NewReconciler(inv Inventory, fsmgr FilesystemManager, hasher Hasher, classifier Classifier, logger Logger, workers int) *Reconciler {
	if workers < 1 {
		workers = 1
	}
	return &Reconciler{
		inv:        inv,
		fsmgr:      fsmgr,
		hasher:     hasher,
		classifier: classifier,
		planner:    NewPlanner(fsmgr),
		logger:     logger,
		workers:    workers,
	}
}

// Reconcile inventories both trees and resolves every duplicate group,
// returning the copy/skip/delete counters.
//
// The target tree doubles as the destination: unique and winning source
// files are placed under it per type (images at the root, videos under
// mp4/, archives under zip/). When useContentHash is false, perceptual
// hashing is skipped and images are grouped by exact hash only.
//
// Processed records from an earlier run over the same store are left
// untouched, so re-running after a successful run applies no further
// side effects.
func (r *Reconciler) Reconcile(sourceRoot, targetRoot string, useContentHash bool) (Counts, error) {
	var counts Counts

	src, err := r.fsmgr.Resolve(sourceRoot)
	if err != nil {
		return counts, fmt.Errorf("resolving source root: %w", err)
	}
	if !src.IsDir() {
		return counts, fmt.Errorf("source root is not a directory: %s", src.String())
	}

	tgt, err := r.fsmgr.Resolve(targetRoot)
	if err != nil {
		return counts, fmt.Errorf("resolving target root: %w", err)
	}
	if !tgt.IsDir() {
		return counts, fmt.Errorf("target root is not a directory: %s", tgt.String())
	}

	// Resolution must never observe a partially populated inventory, so
	// both scans complete before any group is visited.
	if err := r.scanTree(tgt.String(), OriginTarget, useContentHash); err != nil {
		return counts, fmt.Errorf("scanning target tree: %w", err)
	}
	if err := r.scanTree(src.String(), OriginSource, useContentHash); err != nil {
		return counts, fmt.Errorf("scanning source tree: %w", err)
	}

	for _, ft := range mediaTypes {
		if err := r.resolveType(ft, tgt.String(), useContentHash, &counts); err != nil {
			return counts, fmt.Errorf("resolving %s files: %w", ft, err)
		}
	}

	r.logger.Info("reconcile complete",
		"copied", counts.Copied,
		"skipped", counts.Skipped,
		"deleted", counts.Deleted)
	return counts, nil
}
