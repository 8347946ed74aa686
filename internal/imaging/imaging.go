// Package imaging turns uploaded food photos into a bounded JPEG and a
// square-bounded thumbnail for the donation listings.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// MaxUploadBytes caps the size of an uploaded photo.
	MaxUploadBytes = 8 << 20

	// PhotoDimension bounds the longer side of the stored photo.
	PhotoDimension = 1280

	// ThumbDimension bounds the longer side of the thumbnail.
	ThumbDimension = 240

	// JPEGQuality is the compression quality for both outputs.
	JPEGQuality = 82
)

var (
	ErrTooLarge    = errors.New("photo too large")
	ErrUnsupported = errors.New("unsupported image format")
)

// accepted lists the sniffed MIME types we decode.
var accepted = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Photo is a processed upload.
type Photo struct {
	Full  []byte
	Thumb []byte
}

// MIME is the content type of both Photo outputs.
const MIME = "image/jpeg"

// ProcessPhoto reads at most MaxUploadBytes from r, checks the format by
// sniffing the bytes, and re-encodes the image as a downscaled JPEG plus a
// thumbnail.
func ProcessPhoto(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrTooLarge
	}

	// Client headers are not trusted.
	if detected := http.DetectContentType(data); !accepted[detected] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	full, err := encode(fit(img, PhotoDimension, draw.CatmullRom))
	if err != nil {
		return nil, err
	}
	thumb, err := encode(fit(img, ThumbDimension, draw.ApproxBiLinear))
	if err != nil {
		return nil, err
	}

	return &Photo{Full: full, Thumb: thumb}, nil
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// fit scales img so that neither side exceeds maxDim, keeping the aspect
// ratio. Smaller images are returned unchanged.
func fit(img image.Image, maxDim int, s draw.Scaler) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = max(1, h*maxDim/w)
	} else {
		newW = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	s.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
