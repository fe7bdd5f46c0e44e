package features

import (
	"math"
	"sort"

	"github.com/mkutny/menpo/pkg/ndimage"
)

// IGO computes image-gradient-orientation features of a channel + 2D image.
// Per input channel the gradient orientation phi = atan2(d_vertical,
// d_horizontal) is expanded to [sin(phi), cos(phi)], or to
// [sin(phi), cos(phi), sin(2*phi), cos(2*phi)] with doubleAngles.
// The interleave order is a descriptor-format contract; consumers index
// these channels directly.
func IGO(img *ndimage.Array, doubleAngles bool) (*ndimage.Array, error) {
	if img.Rank() != 3 {
		return nil, shapeError("IGO needs a channel + 2D input, got rank %v", img.Rank())
	}
	featChannels := 2
	if doubleAngles {
		featChannels = 4
	}
	grad, err := Gradient(img, true)
	if err != nil {
		return nil, err
	}
	height := img.Height()
	width := img.Width()
	plane := height * width
	out := ndimage.New(img.Channels()*featChannels, height, width)
	for c := 0; c < img.Channels(); c++ {
		dy := grad.Plane(2 * c)
		dx := grad.Plane(2*c + 1)
		base := c * featChannels * plane
		sinPlane := out.Data[base : base+plane]
		cosPlane := out.Data[base+plane : base+2*plane]
		for p := 0; p < plane; p++ {
			phi := math.Atan2(dy[p], dx[p])
			sinPlane[p] = math.Sin(phi)
			cosPlane[p] = math.Cos(phi)
		}
		if doubleAngles {
			sin2Plane := out.Data[base+2*plane : base+3*plane]
			cos2Plane := out.Data[base+3*plane : base+4*plane]
			for p := 0; p < plane; p++ {
				phi := math.Atan2(dy[p], dx[p])
				sin2Plane[p] = math.Sin(2 * phi)
				cos2Plane[p] = math.Cos(2 * phi)
			}
		}
	}
	return out, nil
}

// Median of an ascending slice. Even lengths average the middle pair, so a
// plane of [1,2,3,4] has median 2.5, not 2.
func medianSorted(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// ES computes edge-structure features of a channel + 2D image. Per input
// channel the two gradient components are divided by the gradient magnitude
// offset by the channel's median magnitude, which keeps near-zero-gradient
// regions from blowing up. Output channels per input channel:
// [d_vertical/m, d_horizontal/m].
func ES(img *ndimage.Array) (*ndimage.Array, error) {
	if img.Rank() != 3 {
		return nil, shapeError("ES needs a channel + 2D input, got rank %v", img.Rank())
	}
	grad, err := Gradient(img, true)
	if err != nil {
		return nil, err
	}
	height := img.Height()
	width := img.Width()
	plane := height * width
	out := ndimage.New(img.Channels()*2, height, width)
	mag := make([]float64, plane)
	sorted := make([]float64, plane)
	for c := 0; c < img.Channels(); c++ {
		dy := grad.Plane(2 * c)
		dx := grad.Plane(2*c + 1)
		for p := 0; p < plane; p++ {
			mag[p] = math.Hypot(dy[p], dx[p])
		}
		copy(sorted, mag)
		sort.Float64s(sorted)
		median := medianSorted(sorted)
		dyOut := out.Data[(2*c)*plane : (2*c+1)*plane]
		dxOut := out.Data[(2*c+1)*plane : (2*c+2)*plane]
		for p := 0; p < plane; p++ {
			m := mag[p] + median
			if m == 0 {
				// Flat channel with zero median: no edge structure
				continue
			}
			dyOut[p] = dy[p] / m
			dxOut[p] = dx[p] / m
		}
	}
	return out, nil
}
