// Package features extracts fixed-recipe local image descriptors (HOG, LBP,
// IGO, ES) from channel-first pixel arrays, for use as input to downstream
// pattern-recognition models. Every function here is a pure computation over
// immutable inputs; independent calls can run concurrently.
package features

import (
	"github.com/mkutny/menpo/pkg/ndimage"
)

// NoOp returns a copy of the input. Mutating the result never affects the
// source array.
func NoOp(img *ndimage.Array) *ndimage.Array {
	return img.Clone()
}

// SmoothFunc smooths a single spatial plane in place of the returned slice.
// Supplied by the caller; typically a Gaussian blur from an image library.
type SmoothFunc func(plane []float64, height, width int, sigma float64) []float64

// GaussianFilter applies the supplied smoothing capability to every channel
// of a channel + 2D image independently.
func GaussianFilter(img *ndimage.Array, sigma float64, smooth SmoothFunc) (*ndimage.Array, error) {
	if smooth == nil {
		return nil, configError("no smoothing routine supplied")
	}
	if img.Rank() != 3 {
		return nil, shapeError("gaussian filter needs a channel + 2D input, got rank %v", img.Rank())
	}
	if sigma <= 0 {
		return nil, configError("sigma must be > 0")
	}
	out := ndimage.New(img.Shape...)
	plane := img.PlaneLen()
	for c := 0; c < img.Channels(); c++ {
		src := make([]float64, plane)
		copy(src, img.Plane(c))
		smoothed := smooth(src, img.Height(), img.Width(), sigma)
		copy(out.Data[c*plane:(c+1)*plane], smoothed)
	}
	return out, nil
}
