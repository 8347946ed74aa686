package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func createTestJPEG(w, h int) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, solid(w, h, color.RGBA{255, 0, 0, 255}), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(w, h int) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, solid(w, h, color.RGBA{0, 0, 255, 255}))
	return buf.Bytes()
}

func dims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("expected jpeg output, got %s", format)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestProcessPhotoJPEG(t *testing.T) {
	p, err := ProcessPhoto(bytes.NewReader(createTestJPEG(100, 80)))
	if err != nil {
		t.Fatalf("ProcessPhoto: %v", err)
	}

	if w, h := dims(t, p.Full); w != 100 || h != 80 {
		t.Errorf("expected small photo kept at 100x80, got %dx%d", w, h)
	}
	if w, h := dims(t, p.Thumb); w != 100 || h != 80 {
		t.Errorf("expected small thumb kept at 100x80, got %dx%d", w, h)
	}
}

func TestProcessPhotoPNGBecomesJPEG(t *testing.T) {
	p, err := ProcessPhoto(bytes.NewReader(createTestPNG(64, 64)))
	if err != nil {
		t.Fatalf("ProcessPhoto: %v", err)
	}
	dims(t, p.Full)
}

func TestProcessPhotoDownscales(t *testing.T) {
	p, err := ProcessPhoto(bytes.NewReader(createTestJPEG(2000, 1000)))
	if err != nil {
		t.Fatalf("ProcessPhoto: %v", err)
	}

	if w, h := dims(t, p.Full); w != PhotoDimension || h != PhotoDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", PhotoDimension, PhotoDimension/2, w, h)
	}
	if w, h := dims(t, p.Thumb); w != ThumbDimension || h != ThumbDimension/2 {
		t.Errorf("expected thumb %dx%d, got %dx%d", ThumbDimension, ThumbDimension/2, w, h)
	}
}

func TestProcessPhotoPortrait(t *testing.T) {
	p, err := ProcessPhoto(bytes.NewReader(createTestPNG(300, 600)))
	if err != nil {
		t.Fatalf("ProcessPhoto: %v", err)
	}
	if w, h := dims(t, p.Thumb); w != ThumbDimension/2 || h != ThumbDimension {
		t.Errorf("expected thumb %dx%d, got %dx%d", ThumbDimension/2, ThumbDimension, w, h)
	}
}

func TestProcessPhotoRejectsNonImage(t *testing.T) {
	_, err := ProcessPhoto(bytes.NewReader([]byte("this is not an image")))
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestProcessPhotoRejectsTruncated(t *testing.T) {
	data := createTestPNG(50, 50)
	_, err := ProcessPhoto(bytes.NewReader(data[:len(data)/2]))
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported for truncated PNG, got %v", err)
	}
}

func TestProcessPhotoRejectsOversized(t *testing.T) {
	// A JPEG header followed by padding is enough; size is checked first.
	data := append([]byte{0xff, 0xd8, 0xff}, make([]byte, MaxUploadBytes)...)
	_, err := ProcessPhoto(bytes.NewReader(data))
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}
