package mo

import (
	"fmt"
)

// resolveType walks every duplicate group of one file type and applies the
// survivor policy. Images are walked through both hash spaces when content
// hashing is enabled; a path already processed via one space is passed over
// when it reappears in the other.
func (r *Reconciler) resolveType(ft FileType, destBase string, useContentHash bool, counts *Counts) error {
	destDir, err := r.planner.DestinationRoot(destBase, ft)
	if err != nil {
		return err
	}

	spaces := []HashSpace{SpaceExact}
	if ft == TypeImage && useContentHash {
		spaces = append(spaces, SpaceContent)
	}

	for _, space := range spaces {
		hashes, err := r.inv.DistinctHashes(ft, space)
		if err != nil {
			return fmt.Errorf("listing %s hashes: %w", space, err)
		}
		r.logger.Info("resolving hash groups", "type", ft, "space", space, "groups", len(hashes))

		for _, h := range hashes {
			group, err := r.inv.Group(ft, space, h)
			if err != nil {
				return fmt.Errorf("loading group %s: %w", h, err)
			}
			r.resolveGroup(group, destDir, counts)
		}
	}
	return nil
}

// resolveGroup applies the survivor policy to one hash group. The group
// arrives ordered by size descending with target origin winning ties, so
// the designated survivor is always the first member.
//
// Only an applied disposition (copy, delete, skip) marks a record
// processed. A surviving target file is merely left in place, never
// marked, so the other hash space can still claim it for a better group.
// Side-effect failures are logged and leave that member unprocessed; a
// later run retries it without disturbing members already processed.
func (r *Reconciler) resolveGroup(group []*FileRecord, destDir string, counts *Counts) {
	if len(group) == 0 {
		return
	}

	if len(group) == 1 {
		rec := group[0]
		if rec.Origin == OriginSource && !rec.Processed {
			// Unique incoming file: place it in the destination.
			if err := r.copyToDestination(rec, destDir); err != nil {
				r.logger.Error("copy failed", "path", rec.Path, "error", err)
				return
			}
			counts.Copied++
			r.markProcessed(rec)
		}
		// A target-only file is already correctly placed. It stays
		// unprocessed: the same path may yet be superseded by a larger
		// member of its content-hash group.
		return
	}

	winner := group[0]
	if winner.Origin == OriginTarget {
		r.keepTargetWinner(winner, group, counts)
	} else {
		r.promoteSourceWinner(winner, group, destDir, counts)
	}
}

// keepTargetWinner handles a group whose largest member already lives in the
// destination tree: smaller target copies are deleted, source copies are
// redundant and skipped. The winner itself receives no disposition and is
// left unprocessed, so a larger copy found through the other hash space can
// still supersede it.
func (r *Reconciler) keepTargetWinner(winner *FileRecord, group []*FileRecord, counts *Counts) {
	for _, rec := range group[1:] {
		if rec.Processed || rec.Origin != OriginTarget {
			continue
		}
		if err := r.fsmgr.Remove(rec.Path); err != nil {
			r.logger.Error("delete failed", "path", rec.Path, "error", err)
			continue
		}
		r.logger.Info("deleted smaller duplicate", "path", rec.Path, "size", rec.Size)
		counts.Deleted++
		r.markProcessed(rec)
	}

	for _, rec := range group {
		if rec.Processed || rec.Origin != OriginSource {
			continue
		}
		r.logger.Debug("skipped duplicate", "path", rec.Path, "size", rec.Size)
		counts.Skipped++
		r.markProcessed(rec)
	}
}

// promoteSourceWinner handles a group whose largest member is incoming: the
// winner is copied first, then superseded target copies are deleted, then
// the remaining source copies are skipped. Copy-before-delete means the
// destination never loses its last copy of the content; if the copy fails
// the whole group is left unprocessed for a retry run.
func (r *Reconciler) promoteSourceWinner(winner *FileRecord, group []*FileRecord, destDir string, counts *Counts) {
	if !winner.Processed {
		if err := r.copyToDestination(winner, destDir); err != nil {
			r.logger.Error("copy failed", "path", winner.Path, "error", err)
			return
		}
		counts.Copied++
		r.markProcessed(winner)
	}

	for _, rec := range group {
		if rec.Processed || rec.Origin != OriginTarget {
			continue
		}
		if err := r.fsmgr.Remove(rec.Path); err != nil {
			r.logger.Error("delete failed", "path", rec.Path, "error", err)
			continue
		}
		r.logger.Info("deleted superseded duplicate", "path", rec.Path, "size", rec.Size)
		counts.Deleted++
		r.markProcessed(rec)
	}

	for _, rec := range group[1:] {
		if rec.Processed || rec.Origin != OriginSource {
			continue
		}
		r.logger.Debug("skipped smaller duplicate", "path", rec.Path, "size", rec.Size)
		counts.Skipped++
		r.markProcessed(rec)
	}
}

// copyToDestination places rec under destDir at a collision-free name.
func (r *Reconciler) copyToDestination(rec *FileRecord, destDir string) error {
	dst := r.planner.ResolveCollision(destDir, rec.Filename)
	if err := r.fsmgr.Copy(rec.Path, dst); err != nil {
		return err
	}
	r.logger.Info("copied file", "from", rec.Path, "to", dst, "size", rec.Size)
	return nil
}

// markProcessed flags a record's final disposition in the store and mirrors
// it on the in-memory copy so a second visit within the same run is a no-op.
func (r *Reconciler) markProcessed(rec *FileRecord) {
	if rec.Processed {
		return
	}
	if err := r.inv.MarkProcessed(rec.Path); err != nil {
		r.logger.Error("marking processed failed", "path", rec.Path, "error", err)
		return
	}
	rec.Processed = true
}
