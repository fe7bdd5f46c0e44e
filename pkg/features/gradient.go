package features

import (
	"github.com/mkutny/menpo/pkg/ndimage"
)

// Gradient computes the directional derivatives of every channel of img.
// For an input of shape (C, S0, ..., Sn) the result has shape
// (C*(n+1), S0, ..., Sn): one derivative plane per channel per spatial axis,
// ordered channel-major, axis-minor. So for a 2-channel 2D image the output
// channels are [ch0_d0, ch0_d1, ch1_d0, ch1_d1].
//
// Derivatives use central differences in the interior and one-sided
// differences at the boundaries. fast2d selects a specialized loop for the
// common channel+2D case; it produces identical results to the generic path.
func Gradient(img *ndimage.Array, fast2d bool) (*ndimage.Array, error) {
	if img.Rank() < 2 {
		return nil, shapeError("gradient needs at least one spatial axis, got rank %v", img.Rank())
	}
	if fast2d && img.Rank() == 3 {
		return gradient2D(img), nil
	}
	return gradientND(img), nil
}

// Specialized channel+2D path
func gradient2D(img *ndimage.Array) *ndimage.Array {
	channels := img.Channels()
	h := img.Height()
	w := img.Width()
	out := ndimage.New(channels*2, h, w)
	plane := h * w
	for c := 0; c < channels; c++ {
		src := img.Data[c*plane : (c+1)*plane]
		dy := out.Data[(2*c)*plane : (2*c+1)*plane]
		dx := out.Data[(2*c+1)*plane : (2*c+2)*plane]
		// vertical derivative
		for x := 0; x < w; x++ {
			if h == 1 {
				dy[x] = 0
				continue
			}
			dy[x] = src[w+x] - src[x]
			dy[(h-1)*w+x] = src[(h-1)*w+x] - src[(h-2)*w+x]
			for y := 1; y < h-1; y++ {
				dy[y*w+x] = (src[(y+1)*w+x] - src[(y-1)*w+x]) / 2
			}
		}
		// horizontal derivative
		for y := 0; y < h; y++ {
			row := src[y*w : (y+1)*w]
			drow := dx[y*w : (y+1)*w]
			if w == 1 {
				drow[0] = 0
				continue
			}
			drow[0] = row[1] - row[0]
			drow[w-1] = row[w-1] - row[w-2]
			for x := 1; x < w-1; x++ {
				drow[x] = (row[x+1] - row[x-1]) / 2
			}
		}
	}
	return out
}

// Generic path for arbitrary spatial rank
func gradientND(img *ndimage.Array) *ndimage.Array {
	spatial := img.SpatialShape()
	nAxes := len(spatial)
	channels := img.Channels()
	plane := img.PlaneLen()
	outShape := append([]int{channels * nAxes}, spatial...)
	out := ndimage.New(outShape...)
	for c := 0; c < channels; c++ {
		src := img.Data[c*plane : (c+1)*plane]
		for ax := 0; ax < nAxes; ax++ {
			o := c*nAxes + ax
			dst := out.Data[o*plane : (o+1)*plane]
			diffAxis(src, dst, spatial, ax)
		}
	}
	return out
}

// diffAxis writes the derivative of src along the given axis into dst.
// The array is treated as (outer, n, inner) where n is the axis length.
func diffAxis(src, dst []float64, shape []int, ax int) {
	n := shape[ax]
	inner := 1
	for i := ax + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	outer := 1
	for i := 0; i < ax; i++ {
		outer *= shape[i]
	}
	for o := 0; o < outer; o++ {
		base := o * n * inner
		for in := 0; in < inner; in++ {
			p := base + in
			if n == 1 {
				dst[p] = 0
				continue
			}
			dst[p] = src[p+inner] - src[p]
			last := p + (n-1)*inner
			dst[last] = src[last] - src[last-inner]
			for i := 1; i < n-1; i++ {
				q := p + i*inner
				dst[q] = (src[q+inner] - src[q-inner]) / 2
			}
		}
	}
}
