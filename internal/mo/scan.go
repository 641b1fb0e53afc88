package mo

import (
	"fmt"
	"path/filepath"

	"mo-go/internal/worker"
)

// insertBatchSize bounds how many hashed records accumulate before a
// transactional flush into the inventory.
const insertBatchSize = 500

// scanTree inventories every media file under root: the walk classifies and
// validates candidates, a bounded pool hashes them, and a single collector
// goroutine batch-inserts the results so all store writes stay serialized.
func (r *Reconciler) scanTree(root string, origin Origin, useContentHash bool) error {
	r.logger.Info("scanning tree", "root", root, "origin", origin)

	pool := worker.NewPool(r.workers, r.hasher)
	pool.Start()

	done := make(chan error, 1)
	go func() {
		done <- r.collectResults(pool.Results(), origin)
	}()

	walkErr := r.fsmgr.WalkFiles(root, func(path string, size int64) error {
		ft := r.classifier.Classify(path)
		if ft == TypeOther {
			return nil
		}
		if ft == TypeImage && !r.classifier.IsValidImage(path) {
			r.logger.Debug("invalid image excluded", "path", path)
			return nil
		}
		pool.Submit(worker.Job{
			Path:       path,
			Type:       string(ft),
			Size:       size,
			Perceptual: ft == TypeImage && useContentHash,
		})
		return nil
	})

	pool.Shutdown()
	collectErr := <-done

	if walkErr != nil {
		return fmt.Errorf("walking %s: %w", root, walkErr)
	}
	if collectErr != nil {
		return collectErr
	}

	counts, err := r.inv.CountByType(origin)
	if err != nil {
		return fmt.Errorf("counting inventory: %w", err)
	}
	r.logger.Info("scan complete",
		"root", root,
		"images", counts[TypeImage],
		"videos", counts[TypeVideo],
		"archives", counts[TypeArchive])
	return nil
}

// collectResults drains the hashing results into batched inserts. On an
// insert failure it keeps draining (so the pool never blocks on a full
// results channel) and reports the first error.
func (r *Reconciler) collectResults(results <-chan worker.Result, origin Origin) error {
	batch := make([]*FileRecord, 0, insertBatchSize)
	var firstErr error

	flush := func() {
		if len(batch) == 0 || firstErr != nil {
			return
		}
		if err := r.inv.InsertBatch(batch); err != nil {
			firstErr = fmt.Errorf("recording inventory: %w", err)
		}
		batch = batch[:0]
	}

	for res := range results {
		if res.Err != nil {
			// IO failure: the file is excluded, the scan continues.
			r.logger.Warn("hashing failed, file excluded", "path", res.Job.Path, "error", res.Err)
			continue
		}
		if res.PerceptualErr != nil {
			// Decode failure after a good exact hash: only the
			// perceptual key is omitted.
			r.logger.Debug("content hash unavailable", "path", res.Job.Path, "error", res.PerceptualErr)
		}
		batch = append(batch, &FileRecord{
			Path:        res.Job.Path,
			Filename:    filepath.Base(res.Job.Path),
			FileType:    FileType(res.Job.Type),
			Size:        res.Job.Size,
			ExactHash:   res.ExactHash,
			ContentHash: res.ContentHash,
			Origin:      origin,
		})
		if len(batch) >= insertBatchSize {
			flush()
		}
	}
	flush()
	return firstErr
}
