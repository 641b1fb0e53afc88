package testutil

import (
	"mo-go/internal/classify"
	"mo-go/internal/mo"
)

// FakeClassifier classifies by the real extension tables but answers image
// validity from a configured set instead of decoding, so it works against
// the mock filesystem.
type FakeClassifier struct {
	// Invalid marks paths whose images should fail the validity probe.
	Invalid map[string]bool
}

// NewFakeClassifier creates a FakeClassifier with every image valid.
func NewFakeClassifier() *FakeClassifier {
	return &FakeClassifier{Invalid: make(map[string]bool)}
}

func (c *FakeClassifier) Classify(path string) mo.FileType {
	return classify.ByExtension(path)
}

func (c *FakeClassifier) IsValidImage(path string) bool {
	return !c.Invalid[path]
}

// Compile-time check that FakeClassifier implements mo.Classifier.
var _ mo.Classifier = (*FakeClassifier)(nil)
