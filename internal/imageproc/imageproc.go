package imageproc

// Package imageproc derives the two raster images stored for every product:
// a bounded full-size JPEG and a fixed-size cover-cropped thumbnail.

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	// MaxBounds is the bounding box for the full-size derivative. Images
	// already inside the box are re-encoded without scaling up.
	MaxBounds = 1024
	// ThumbSize is the exact edge length of the square thumbnail.
	ThumbSize = 200

	fullQuality  = 80
	thumbQuality = 70
)

// Derived holds the two JPEG outputs produced from one uploaded image.
type Derived struct {
	Full  []byte
	Thumb []byte
}

// Derive decodes the uploaded bytes and produces the full-size and thumbnail
// JPEGs. The source format can be anything the decoder understands; callers
// enforce the allowed upload MIME types before reaching this point.
func Derive(data []byte) (*Derived, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	// Fit scales down to the bounding box and returns a copy unchanged when
	// the source is already smaller, so small originals are never upscaled.
	full := imaging.Fit(src, MaxBounds, MaxBounds, imaging.Lanczos)
	thumb := imaging.Fill(src, ThumbSize, ThumbSize, imaging.Center, imaging.Lanczos)

	var fullBuf, thumbBuf bytes.Buffer
	if err := imaging.Encode(&fullBuf, full, imaging.JPEG, imaging.JPEGQuality(fullQuality)); err != nil {
		return nil, fmt.Errorf("encode full image: %w", err)
	}
	if err := imaging.Encode(&thumbBuf, thumb, imaging.JPEG, imaging.JPEGQuality(thumbQuality)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	return &Derived{Full: fullBuf.Bytes(), Thumb: thumbBuf.Bytes()}, nil
}
