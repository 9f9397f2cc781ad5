// Package biometrictest builds synthetic capture images for tests.
package biometrictest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
)

// Size is the side length of generated images.
const Size = 64

// waves holds one spatial frequency pair per subject. Distinct pairs give
// near-orthogonal templates.
var waves = [][2]int{
	{1, 0}, {0, 1}, {1, 1}, {2, 0}, {0, 2}, {1, 2}, {2, 1}, {2, 2},
}

// Subjects is the number of distinct synthetic faces available.
var Subjects = len(waves)

// Face returns a PNG of the synthetic subject n.
func Face(n int) []byte {
	return FaceWithBrightness(n, 0)
}

// FaceWithBrightness returns subject n with every pixel shifted by delta.
func FaceWithBrightness(n, delta int) []byte {
	w := waves[n%len(waves)]
	img := image.NewGray(image.Rect(0, 0, Size, Size))
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			phase := 2 * math.Pi * float64(w[0]*x+w[1]*y) / Size
			v := 128 + 90*math.Sin(phase) + float64(delta)
			img.SetGray(x, y, color.Gray{Y: clamp(v)})
		}
	}
	return encode(img)
}

// Blank returns a uniform PNG with nothing to match against.
func Blank() []byte {
	img := image.NewGray(image.Rect(0, 0, Size, Size))
	for i := range img.Pix {
		img.Pix[i] = 40
	}
	return encode(img)
}

func clamp(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func encode(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
