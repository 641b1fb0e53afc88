// Package classify maps paths to media categories by extension and probes
// image validity with a full decode.
package classify

import (
	"image"
	"os"
	"path/filepath"
	"strings"

	"mo-go/internal/mo"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true,
	".tiff": true, ".webp": true, ".heic": true, ".heif": true,
}

var videoExts = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true, ".mkv": true, ".wmv": true,
	".flv": true, ".webm": true, ".m4v": true, ".3gp": true, ".mpg": true,
	".mpeg": true,
}

var archiveExts = map[string]bool{
	".zip": true, ".rar": true, ".7z": true, ".tar": true, ".gz": true,
	".bz2": true, ".xz": true,
}

// ByExtension returns the category for a path from its extension alone.
func ByExtension(path string) mo.FileType {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case imageExts[ext]:
		return mo.TypeImage
	case videoExts[ext]:
		return mo.TypeVideo
	case archiveExts[ext]:
		return mo.TypeArchive
	default:
		return mo.TypeOther
	}
}

// ExtClassifier implements mo.Classifier: extension tables for the
// category, a real decode for image validity. Videos and archives are
// trusted by extension alone.
type ExtClassifier struct{}

// NewExtClassifier creates an ExtClassifier.
func NewExtClassifier() *ExtClassifier {
	return &ExtClassifier{}
}

// Classify returns the file's category from its extension.
func (*ExtClassifier) Classify(path string) mo.FileType {
	return ByExtension(path)
}

// IsValidImage attempts a full decode of the file. Corrupt, truncated and
// unsupported-codec images all return false and are excluded from the
// inventory by the caller.
func (*ExtClassifier) IsValidImage(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	_, _, err = image.Decode(f)
	return err == nil
}

// Compile-time check that ExtClassifier implements mo.Classifier.
var _ mo.Classifier = (*ExtClassifier)(nil)
