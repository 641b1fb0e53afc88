package mo

// Hasher computes the two identity keys used for duplicate grouping.
type Hasher interface {
	// ExactHash returns the hex digest of the file's full byte content,
	// streamed so memory use is constant in file size.
	ExactHash(path string) (string, error)

	// PerceptualHash returns the fixed-width perceptual digest of an image.
	// Failure is non-fatal to the caller: the file keeps its exact hash and
	// participates only in exact-match grouping.
	PerceptualHash(path string) (string, error)
}

// Classifier maps paths to semantic categories and validates images.
type Classifier interface {
	// Classify returns the file's category from its extension alone.
	Classify(path string) FileType

	// IsValidImage attempts a full decode. A file classified as an image
	// that fails this check is excluded from the inventory entirely.
	IsValidImage(path string) bool
}
