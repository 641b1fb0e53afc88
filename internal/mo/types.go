package mo

import "time"

// FileType is the semantic category of a media file, derived from its extension.
type FileType string

const (
	TypeImage   FileType = "image"
	TypeVideo   FileType = "video"
	TypeArchive FileType = "archive"
	TypeOther   FileType = "other"
)

// Origin identifies which of the two reconciled trees a file was discovered in.
type Origin string

const (
	// OriginTarget is the authoritative destination tree.
	OriginTarget Origin = "target"
	// OriginSource is the incoming candidate tree.
	OriginSource Origin = "source"
)

// HashSpace selects which hash key the inventory groups records under.
type HashSpace string

const (
	// SpaceExact groups by the full-content digest. Every record has one.
	SpaceExact HashSpace = "exact"
	// SpaceContent groups by the perceptual image digest. Images only, optional.
	SpaceContent HashSpace = "content"
)

// FileRecord is one inventoried file.
type FileRecord struct {
	Path        string   // Absolute path, unique across both trees
	Filename    string   // Basename, used for destination naming
	FileType    FileType // Immutable once set
	Size        int64    // Byte length at scan time
	ExactHash   string   // SHA-256 hex; required before resolution
	ContentHash string   // 16-hex average hash; images only, empty if decode failed
	Origin      Origin
	Processed   bool // false until a final disposition has been applied
}

// Counts reports the side effects of one reconcile run.
type Counts struct {
	Copied  int // source files written to the destination
	Skipped int // redundant source files never written
	Deleted int // superseded target files removed
}

// Run is the persisted audit record of one reconcile invocation.
type Run struct {
	ID         int64
	UUID       string
	Operation  string
	Parameters string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string // "started", "success" or "error"
	Counts     Counts
}
