package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
)

// GrayImage builds a grayscale test image from a row-major slice of 8-bit
// luminance values. len(pixels) must equal w*h.
func GrayImage(w, h int, pixels []uint8) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := pixels[y*w+x]
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// EncodePNG returns the PNG encoding of an image.
func EncodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

// WriteFile writes data to path, failing the test on error.
func WriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
