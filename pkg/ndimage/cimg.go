package ndimage

import (
	"fmt"

	"github.com/bmharper/cimg/v2"
)

// Conversion between cimg's interleaved 8-bit images and our channel-first
// float64 arrays. This is the only place where the two layouts meet; the
// engine itself is channel-first throughout.

// FromImage converts an 8-bit image to a channel-first array with pixel
// values scaled into [0, 1].
func FromImage(img *cimg.Image) *Array {
	nchan := img.NChan()
	a := New(nchan, img.Height, img.Width)
	for y := 0; y < img.Height; y++ {
		row := img.Pixels[y*img.Stride:]
		for x := 0; x < img.Width; x++ {
			for c := 0; c < nchan; c++ {
				a.Set3(c, y, x, float64(row[x*nchan+c])/255)
			}
		}
	}
	return a
}

// ToImageRGB converts a 1- or 3-channel rank-3 array back to an interleaved
// RGB image, clamping values to [0, 1]. A single channel is replicated to
// all three planes.
func ToImageRGB(a *Array) (*cimg.Image, error) {
	if a.Rank() != 3 {
		return nil, fmt.Errorf("ToImageRGB needs a rank-3 array, got rank %v", a.Rank())
	}
	if a.Channels() != 1 && a.Channels() != 3 {
		return nil, fmt.Errorf("ToImageRGB needs 1 or 3 channels, got %v", a.Channels())
	}
	img := cimg.NewImage(a.Width(), a.Height(), cimg.PixelFormatRGB)
	for y := 0; y < a.Height(); y++ {
		row := img.Pixels[y*img.Stride:]
		for x := 0; x < a.Width(); x++ {
			for c := 0; c < 3; c++ {
				src := c
				if a.Channels() == 1 {
					src = 0
				}
				v := a.At3(src, y, x)
				if v < 0 {
					v = 0
				} else if v > 1 {
					v = 1
				}
				row[x*3+c] = uint8(v*255 + 0.5)
			}
		}
	}
	return img, nil
}
