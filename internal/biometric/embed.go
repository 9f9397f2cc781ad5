// Package biometric turns captured face images into templates and compares them.
//
// PixelEmbedder is a stand-in for a face recognition model: it produces a
// fixed-length, unit-norm template from the image pixels so the rest of the
// system can be exercised end to end. It does not detect or recognise faces.
package biometric

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultGrid is the side length of the grayscale grid a template is sampled from.
const DefaultGrid = 16

// DefaultMaxPixels caps the declared size of an image before it is decoded.
const DefaultMaxPixels = 4096 * 4096

var (
	// ErrNoFace is returned when no usable face could be extracted from an image.
	ErrNoFace = errors.New("no face detected")
	// ErrImageTooLarge is returned when an image declares more than MaxPixels pixels.
	ErrImageTooLarge = errors.New("image too large")
)

// Embedder extracts a face template from an encoded image.
type Embedder interface {
	Embed(img []byte) ([]float64, error)
}

// PixelEmbedder samples the image onto a Grid x Grid grayscale grid,
// mean-centres it and scales it to unit length. Images whose header declares
// more than MaxPixels pixels are rejected before any pixel buffer is allocated.
type PixelEmbedder struct {
	Grid      int
	MaxPixels int
}

// NewPixelEmbedder returns a PixelEmbedder with the default grid and pixel cap.
func NewPixelEmbedder() *PixelEmbedder {
	return &PixelEmbedder{Grid: DefaultGrid, MaxPixels: DefaultMaxPixels}
}

// Embed implements Embedder.
func (e *PixelEmbedder) Embed(data []byte) ([]float64, error) {
	if len(data) == 0 {
		return nil, ErrNoFace
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFace, err)
	}
	maxPixels := e.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxPixels/cfg.Height {
		return nil, fmt.Errorf("%w: %w: %dx%d", ErrNoFace, ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFace, err)
	}

	grid := e.Grid
	if grid <= 0 {
		grid = DefaultGrid
	}
	dst := image.NewGray(image.Rect(0, 0, grid, grid))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	vec := make([]float64, 0, grid*grid)
	var sum float64
	for y := 0; y < grid; y++ {
		for x := 0; x < grid; x++ {
			v := float64(dst.GrayAt(x, y).Y)
			vec = append(vec, v)
			sum += v
		}
	}
	mean := sum / float64(len(vec))

	var norm float64
	for i := range vec {
		vec[i] -= mean
		norm += vec[i] * vec[i]
	}
	if norm == 0 {
		// flat frame, nothing in front of the camera
		return nil, ErrNoFace
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}
