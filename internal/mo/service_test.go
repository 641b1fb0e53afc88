package mo_test

import (
	"bytes"
	"testing"

	"mo-go/internal/database"
	"mo-go/internal/mo"
	"mo-go/internal/testutil"
)

type harness struct {
	inv        mo.Inventory
	fsmgr      *testutil.MockFilesystemManager
	hasher     *testutil.FakeHasher
	classifier *testutil.FakeClassifier
	rec        *mo.Reconciler
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	fsmgr := testutil.NewMockFilesystemManager()
	fsmgr.AddDirectory("/src")
	fsmgr.AddDirectory("/tgt")

	hasher := testutil.NewFakeHasher(fsmgr)
	classifier := testutil.NewFakeClassifier()
	inv := database.NewMemoryInventory()

	return &harness{
		inv:        inv,
		fsmgr:      fsmgr,
		hasher:     hasher,
		classifier: classifier,
		rec:        mo.NewReconciler(inv, fsmgr, hasher, classifier, mo.NewNopLogger(), 2),
	}
}

func TestReconciler_Reconcile_MissingRoots(t *testing.T) {
	t.Run("missing source root", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.rec.Reconcile("/nonexistent", "/tgt", true)
		if err == nil {
			t.Error("Reconcile() expected error for missing source root")
		}
	})

	t.Run("missing target root", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.rec.Reconcile("/src", "/nonexistent", true)
		if err == nil {
			t.Error("Reconcile() expected error for missing target root")
		}
	})

	t.Run("source root is a file", func(t *testing.T) {
		h := newHarness(t)
		h.fsmgr.AddFile("/notadir", []byte("x"))

		_, err := h.rec.Reconcile("/notadir", "/tgt", true)
		if err == nil {
			t.Error("Reconcile() expected error for non-directory source root")
		}
	})
}

func TestReconciler_Reconcile_ExactDuplicate(t *testing.T) {
	h := newHarness(t)

	// Identical bytes in both trees: same exact hash, same content hash.
	content := bytes.Repeat([]byte("p"), 500)
	h.fsmgr.AddFile("/tgt/photo.jpg", content)
	h.fsmgr.AddFile("/src/photo.jpg", content)
	h.hasher.Perceptual["/tgt/photo.jpg"] = "00ff00ff00ff00ff"
	h.hasher.Perceptual["/src/photo.jpg"] = "00ff00ff00ff00ff"

	counts, err := h.rec.Reconcile("/src", "/tgt", true)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	want := mo.Counts{Copied: 0, Skipped: 1, Deleted: 0}
	if counts != want {
		t.Errorf("Reconcile() counts = %+v, want %+v", counts, want)
	}
	if len(h.fsmgr.Copies) != 0 {
		t.Errorf("copies = %v, want none", h.fsmgr.Copies)
	}
	if len(h.fsmgr.Removes) != 0 {
		t.Errorf("removes = %v, want none", h.fsmgr.Removes)
	}
	if !h.fsmgr.Exists("/tgt/photo.jpg") {
		t.Error("target copy should be untouched")
	}
}

func TestReconciler_Reconcile_ContentDuplicate(t *testing.T) {
	h := newHarness(t)

	// Different bytes (a resized re-export), identical perceptual hash.
	// The larger source copy supersedes the smaller target copy.
	h.fsmgr.AddFile("/tgt/a.jpg", bytes.Repeat([]byte("a"), 100))
	h.fsmgr.AddFile("/src/b.jpg", bytes.Repeat([]byte("b"), 800))
	h.hasher.Perceptual["/tgt/a.jpg"] = "c3c3c3c3c3c3c3c3"
	h.hasher.Perceptual["/src/b.jpg"] = "c3c3c3c3c3c3c3c3"

	counts, err := h.rec.Reconcile("/src", "/tgt", true)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	want := mo.Counts{Copied: 1, Skipped: 0, Deleted: 1}
	if counts != want {
		t.Errorf("Reconcile() counts = %+v, want %+v", counts, want)
	}
	if h.fsmgr.Exists("/tgt/a.jpg") {
		t.Error("superseded target copy should be deleted")
	}
	if !h.fsmgr.Exists("/tgt/b.jpg") {
		t.Error("winning source copy should be placed in the destination")
	}
	if !h.fsmgr.Exists("/src/b.jpg") {
		t.Error("source file must never be removed")
	}
}

func TestReconciler_Reconcile_UniqueFiles(t *testing.T) {
	h := newHarness(t)

	h.fsmgr.AddFile("/src/c.mp4", []byte("video bytes"))
	h.fsmgr.AddFile("/src/d.zip", []byte("archive bytes"))

	counts, err := h.rec.Reconcile("/src", "/tgt", true)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	want := mo.Counts{Copied: 2, Skipped: 0, Deleted: 0}
	if counts != want {
		t.Errorf("Reconcile() counts = %+v, want %+v", counts, want)
	}
	if !h.fsmgr.Exists("/tgt/mp4/c.mp4") {
		t.Error("unique video should land under the mp4 subdirectory")
	}
	if !h.fsmgr.Exists("/tgt/zip/d.zip") {
		t.Error("unique archive should land under the zip subdirectory")
	}
}

func TestReconciler_Reconcile_InvalidImageExcluded(t *testing.T) {
	h := newHarness(t)

	h.fsmgr.AddFile("/src/bad.jpg", []byte("not really an image"))
	h.fsmgr.AddFile("/src/good.jpg", bytes.Repeat([]byte("g"), 300))
	h.classifier.Invalid["/src/bad.jpg"] = true
	h.hasher.Perceptual["/src/good.jpg"] = "1111222233334444"

	counts, err := h.rec.Reconcile("/src", "/tgt", true)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	want := mo.Counts{Copied: 1, Skipped: 0, Deleted: 0}
	if counts != want {
		t.Errorf("Reconcile() counts = %+v, want %+v", counts, want)
	}

	rec, err := h.inv.Get("/src/bad.jpg")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec != nil {
		t.Errorf("invalid image was inventoried: %+v", rec)
	}
}

func TestReconciler_Reconcile_PerceptualFailureDegrades(t *testing.T) {
	h := newHarness(t)

	// No perceptual digest configured: the hash attempt fails, but the
	// file stays inventoried under its exact hash and is still placed.
	h.fsmgr.AddFile("/src/odd.jpg", bytes.Repeat([]byte("o"), 200))

	counts, err := h.rec.Reconcile("/src", "/tgt", true)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	want := mo.Counts{Copied: 1, Skipped: 0, Deleted: 0}
	if counts != want {
		t.Errorf("Reconcile() counts = %+v, want %+v", counts, want)
	}

	rec, err := h.inv.Get("/src/odd.jpg")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec == nil {
		t.Fatal("file missing from inventory")
	}
	if rec.ContentHash != "" {
		t.Errorf("ContentHash = %q, want empty", rec.ContentHash)
	}
	if rec.ExactHash == "" {
		t.Error("ExactHash is empty")
	}
}

func TestReconciler_Reconcile_FastMode(t *testing.T) {
	h := newHarness(t)

	// Same perceptual content, but content hashing is off: the two files
	// only group by exact hash, so both survive.
	h.fsmgr.AddFile("/tgt/a.jpg", bytes.Repeat([]byte("a"), 100))
	h.fsmgr.AddFile("/src/b.jpg", bytes.Repeat([]byte("b"), 800))

	counts, err := h.rec.Reconcile("/src", "/tgt", false)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	want := mo.Counts{Copied: 1, Skipped: 0, Deleted: 0}
	if counts != want {
		t.Errorf("Reconcile() counts = %+v, want %+v", counts, want)
	}
	if !h.fsmgr.Exists("/tgt/a.jpg") {
		t.Error("target file should be untouched in fast mode")
	}

	rec, err := h.inv.Get("/src/b.jpg")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec == nil {
		t.Fatal("file missing from inventory")
	}
	if rec.ContentHash != "" {
		t.Errorf("ContentHash = %q, want empty in fast mode", rec.ContentHash)
	}
}

func TestReconciler_Reconcile_TargetWinnerDeletesSmaller(t *testing.T) {
	h := newHarness(t)

	// Two target copies of the same picture at different sizes: the
	// smaller one is a duplicate already inside the destination tree.
	h.fsmgr.AddFile("/tgt/big.jpg", bytes.Repeat([]byte("B"), 800))
	h.fsmgr.AddFile("/tgt/small.jpg", bytes.Repeat([]byte("s"), 100))
	h.hasher.Perceptual["/tgt/big.jpg"] = "f0f0f0f0f0f0f0f0"
	h.hasher.Perceptual["/tgt/small.jpg"] = "f0f0f0f0f0f0f0f0"

	counts, err := h.rec.Reconcile("/src", "/tgt", true)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	want := mo.Counts{Copied: 0, Skipped: 0, Deleted: 1}
	if counts != want {
		t.Errorf("Reconcile() counts = %+v, want %+v", counts, want)
	}
	if !h.fsmgr.Exists("/tgt/big.jpg") {
		t.Error("largest target copy should survive")
	}
	if h.fsmgr.Exists("/tgt/small.jpg") {
		t.Error("smaller target duplicate should be deleted")
	}
}

func TestReconciler_Reconcile_CollisionSuffix(t *testing.T) {
	h := newHarness(t)

	// Same filename, unrelated content: the incoming file must not
	// overwrite the pre-existing one.
	h.fsmgr.AddFile("/tgt/photo.jpg", []byte("existing"))
	h.fsmgr.AddFile("/src/photo.jpg", bytes.Repeat([]byte("n"), 200))
	h.hasher.Perceptual["/tgt/photo.jpg"] = "aaaaaaaaaaaaaaaa"
	h.hasher.Perceptual["/src/photo.jpg"] = "bbbbbbbbbbbbbbbb"

	counts, err := h.rec.Reconcile("/src", "/tgt", true)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	want := mo.Counts{Copied: 1, Skipped: 0, Deleted: 0}
	if counts != want {
		t.Errorf("Reconcile() counts = %+v, want %+v", counts, want)
	}

	got, _ := h.fsmgr.Content("/tgt/photo.jpg")
	if string(got) != "existing" {
		t.Errorf("pre-existing file content = %q, want %q", got, "existing")
	}
	if !h.fsmgr.Exists("/tgt/photo_1.jpg") {
		t.Error("incoming file should appear under a suffixed name")
	}
}

func TestReconciler_Reconcile_Idempotent(t *testing.T) {
	h := newHarness(t)

	h.fsmgr.AddFile("/tgt/a.jpg", bytes.Repeat([]byte("a"), 100))
	h.fsmgr.AddFile("/src/b.jpg", bytes.Repeat([]byte("b"), 800))
	h.fsmgr.AddFile("/src/photo.jpg", bytes.Repeat([]byte("p"), 300))
	h.hasher.Perceptual["/tgt/a.jpg"] = "c3c3c3c3c3c3c3c3"
	h.hasher.Perceptual["/src/b.jpg"] = "c3c3c3c3c3c3c3c3"
	h.hasher.Perceptual["/src/photo.jpg"] = "9999999999999999"

	first, err := h.rec.Reconcile("/src", "/tgt", true)
	if err != nil {
		t.Fatalf("first Reconcile() error = %v", err)
	}
	want := mo.Counts{Copied: 2, Skipped: 0, Deleted: 1}
	if first != want {
		t.Fatalf("first Reconcile() counts = %+v, want %+v", first, want)
	}

	// Copies created by the first run now live in the target tree and are
	// rescanned; processed flags keep the second run side-effect free.
	h.hasher.Perceptual["/tgt/b.jpg"] = "c3c3c3c3c3c3c3c3"
	h.hasher.Perceptual["/tgt/photo.jpg"] = "9999999999999999"

	second, err := h.rec.Reconcile("/src", "/tgt", true)
	if err != nil {
		t.Fatalf("second Reconcile() error = %v", err)
	}
	if second != (mo.Counts{}) {
		t.Errorf("second Reconcile() counts = %+v, want all zero", second)
	}
	if len(h.fsmgr.Copies) != 2 {
		t.Errorf("total copies = %d, want 2", len(h.fsmgr.Copies))
	}
	if len(h.fsmgr.Removes) != 1 {
		t.Errorf("total removes = %d, want 1", len(h.fsmgr.Removes))
	}
}

func TestReconciler_Reconcile_CopyFailureRetried(t *testing.T) {
	h := newHarness(t)

	h.fsmgr.AddFile("/tgt/a.jpg", bytes.Repeat([]byte("a"), 100))
	h.fsmgr.AddFile("/src/b.jpg", bytes.Repeat([]byte("b"), 800))
	h.hasher.Perceptual["/tgt/a.jpg"] = "c3c3c3c3c3c3c3c3"
	h.hasher.Perceptual["/src/b.jpg"] = "c3c3c3c3c3c3c3c3"
	h.fsmgr.FailCopy["/src/b.jpg"] = true

	counts, err := h.rec.Reconcile("/src", "/tgt", true)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if counts != (mo.Counts{}) {
		t.Errorf("Reconcile() counts = %+v, want all zero", counts)
	}
	// The superseded target must survive until its replacement is in place.
	if !h.fsmgr.Exists("/tgt/a.jpg") {
		t.Fatal("target copy deleted before replacement copy succeeded")
	}

	// The failed member was left unprocessed, so a later run retries it.
	h.fsmgr.FailCopy["/src/b.jpg"] = false

	counts, err = h.rec.Reconcile("/src", "/tgt", true)
	if err != nil {
		t.Fatalf("retry Reconcile() error = %v", err)
	}
	want := mo.Counts{Copied: 1, Skipped: 0, Deleted: 1}
	if counts != want {
		t.Errorf("retry Reconcile() counts = %+v, want %+v", counts, want)
	}
	if h.fsmgr.Exists("/tgt/a.jpg") {
		t.Error("superseded target copy should be deleted on retry")
	}
	if !h.fsmgr.Exists("/tgt/b.jpg") {
		t.Error("winning source copy should be placed on retry")
	}
}

func TestReconciler_Reconcile_DeleteFailureRetried(t *testing.T) {
	h := newHarness(t)

	h.fsmgr.AddFile("/tgt/big.jpg", bytes.Repeat([]byte("B"), 800))
	h.fsmgr.AddFile("/tgt/small.jpg", bytes.Repeat([]byte("s"), 100))
	h.hasher.Perceptual["/tgt/big.jpg"] = "f0f0f0f0f0f0f0f0"
	h.hasher.Perceptual["/tgt/small.jpg"] = "f0f0f0f0f0f0f0f0"
	h.fsmgr.FailRemove["/tgt/small.jpg"] = true

	counts, err := h.rec.Reconcile("/src", "/tgt", true)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if counts != (mo.Counts{}) {
		t.Errorf("Reconcile() counts = %+v, want all zero", counts)
	}

	h.fsmgr.FailRemove["/tgt/small.jpg"] = false

	counts, err = h.rec.Reconcile("/src", "/tgt", true)
	if err != nil {
		t.Fatalf("retry Reconcile() error = %v", err)
	}
	want := mo.Counts{Copied: 0, Skipped: 0, Deleted: 1}
	if counts != want {
		t.Errorf("retry Reconcile() counts = %+v, want %+v", counts, want)
	}
}

func TestReconciler_Reconcile_SQLiteInventory(t *testing.T) {
	// The content-duplicate scenario again, on the durable store instead
	// of the in-memory one.
	fsmgr := testutil.NewMockFilesystemManager()
	fsmgr.AddDirectory("/src")
	fsmgr.AddDirectory("/tgt")
	fsmgr.AddFile("/tgt/a.jpg", bytes.Repeat([]byte("a"), 100))
	fsmgr.AddFile("/src/b.jpg", bytes.Repeat([]byte("b"), 800))

	hasher := testutil.NewFakeHasher(fsmgr)
	hasher.Perceptual["/tgt/a.jpg"] = "c3c3c3c3c3c3c3c3"
	hasher.Perceptual["/src/b.jpg"] = "c3c3c3c3c3c3c3c3"

	inv := testutil.NewTestInventory(t)
	rec := mo.NewReconciler(inv, fsmgr, hasher, testutil.NewFakeClassifier(), mo.NewNopLogger(), 2)

	counts, err := rec.Reconcile("/src", "/tgt", true)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	want := mo.Counts{Copied: 1, Skipped: 0, Deleted: 1}
	if counts != want {
		t.Errorf("Reconcile() counts = %+v, want %+v", counts, want)
	}

	stored, err := inv.Get("/src/b.jpg")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored == nil || !stored.Processed {
		t.Errorf("winner record = %+v, want processed", stored)
	}
}

func TestReconciler_Reconcile_HashFailureExcluded(t *testing.T) {
	h := newHarness(t)

	h.fsmgr.AddFile("/src/broken.mp4", []byte("unreadable"))
	h.fsmgr.AddFile("/src/ok.mp4", []byte("fine"))
	h.hasher.FailExact["/src/broken.mp4"] = true

	counts, err := h.rec.Reconcile("/src", "/tgt", true)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	want := mo.Counts{Copied: 1, Skipped: 0, Deleted: 0}
	if counts != want {
		t.Errorf("Reconcile() counts = %+v, want %+v", counts, want)
	}

	rec, err := h.inv.Get("/src/broken.mp4")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec != nil {
		t.Errorf("unhashable file was inventoried: %+v", rec)
	}
}
