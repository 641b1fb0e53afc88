package testutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"mo-go/internal/mo"
)

// SHA256Hex returns the SHA-256 checksum of data as a lowercase hex string.
// Matches the exact-hash format used by the real hasher.
func SHA256Hex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// FakeHasher computes exact hashes over mock filesystem content and serves
// perceptual digests from a configured map.
type FakeHasher struct {
	FS *MockFilesystemManager

	// Perceptual maps path -> digest. Paths absent from the map fail
	// perceptual hashing, mimicking an undecodable image.
	Perceptual map[string]string

	// FailExact injects exact-hash failures for specific paths.
	FailExact map[string]bool
}

// NewFakeHasher creates a FakeHasher over the given mock filesystem.
func NewFakeHasher(fs *MockFilesystemManager) *FakeHasher {
	return &FakeHasher{
		FS:         fs,
		Perceptual: make(map[string]string),
		FailExact:  make(map[string]bool),
	}
}

func (h *FakeHasher) ExactHash(path string) (string, error) {
	if h.FailExact[path] {
		return "", fmt.Errorf("injected hash failure: %s", path)
	}
	content, ok := h.FS.Content(path)
	if !ok {
		return "", fmt.Errorf("file not found: %s", path)
	}
	return SHA256Hex(content), nil
}

func (h *FakeHasher) PerceptualHash(path string) (string, error) {
	digest, ok := h.Perceptual[path]
	if !ok {
		return "", fmt.Errorf("cannot decode image: %s", path)
	}
	return digest, nil
}

// Compile-time check that FakeHasher implements mo.Hasher.
var _ mo.Hasher = (*FakeHasher)(nil)
