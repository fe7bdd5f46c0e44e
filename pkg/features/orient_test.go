package features

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/mkutny/menpo/pkg/ndimage"
	"github.com/stretchr/testify/require"
)

func TestIGOShapeAndInterleave(t *testing.T) {
	// Horizontal ramp: dy = 0, dx = 1, so phi = 0 everywhere and the
	// channels per input channel are [sin=0, cos=1]
	img := ndimage.New(1, 4, 5)
	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			img.Set3(0, y, x, float64(x))
		}
	}
	out, err := IGO(img, false)
	require.NoError(t, err)
	require.Equal(t, []int{2, 4, 5}, out.Shape)
	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			require.InDelta(t, 0.0, out.At3(0, y, x), 1e-12) // sin
			require.InDelta(t, 1.0, out.At3(1, y, x), 1e-12) // cos
		}
	}
}

func TestIGODoubleAngles(t *testing.T) {
	// Vertical ramp: phi = pi/2, so [sin, cos, sin 2phi, cos 2phi] is
	// [1, 0, 0, -1] per input channel
	img := ndimage.New(2, 4, 4)
	for c := 0; c < 2; c++ {
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				img.Set3(c, y, x, float64(y))
			}
		}
	}
	out, err := IGO(img, true)
	require.NoError(t, err)
	require.Equal(t, []int{8, 4, 4}, out.Shape)
	for c := 0; c < 2; c++ {
		require.InDelta(t, 1.0, out.At3(4*c+0, 2, 2), 1e-12)
		require.InDelta(t, 0.0, out.At3(4*c+1, 2, 2), 1e-12)
		require.InDelta(t, 0.0, out.At3(4*c+2, 2, 2), 1e-12)
		require.InDelta(t, -1.0, out.At3(4*c+3, 2, 2), 1e-12)
	}
}

func TestIGOUnitCircle(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	img := randomImage(rng, 1, 6, 6)
	out, err := IGO(img, false)
	require.NoError(t, err)
	for p := 0; p < 36; p++ {
		s := out.Data[p]
		c := out.Data[36+p]
		require.InDelta(t, 1.0, s*s+c*c, 1e-12)
	}
}

func TestIGOBadRank(t *testing.T) {
	_, err := IGO(ndimage.New(1, 4), false)
	require.True(t, errors.Is(err, ErrBadShape))
	_, err = IGO(ndimage.New(1, 2, 3, 4), false)
	require.True(t, errors.Is(err, ErrBadShape))
}

func TestESFlatImage(t *testing.T) {
	// Zero gradient and zero median: edge structure is zero, not NaN
	img := ndimage.New(1, 5, 5)
	for i := range img.Data {
		img.Data[i] = 0.7
	}
	out, err := ES(img)
	require.NoError(t, err)
	require.Equal(t, []int{2, 5, 5}, out.Shape)
	for _, v := range out.Data {
		require.Equal(t, 0.0, v)
	}
}

func TestESRamp(t *testing.T) {
	// pixels = x: dy = 0, dx = 1, magnitude 1 everywhere, median 1,
	// so the normalized components are [0, 0.5]
	img := ndimage.New(1, 4, 6)
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			img.Set3(0, y, x, float64(x))
		}
	}
	out, err := ES(img)
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			require.InDelta(t, 0.0, out.At3(0, y, x), 1e-12)
			require.InDelta(t, 0.5, out.At3(1, y, x), 1e-12)
		}
	}
}

func TestESMedianOffset(t *testing.T) {
	// 2x2 plane with four distinct gradient magnitudes. dy is 0 in the
	// left column and 2 in the right; dx is 1 in the top row and 3 in the
	// bottom. Magnitudes sorted: [1, sqrt5, 3, sqrt13], and the median of
	// an even count is the midpoint of the middle pair.
	img := ndimage.FromSlice([]float64{
		0, 1,
		0, 3,
	}, 1, 2, 2)
	median := (math.Sqrt(5) + 3) / 2
	out, err := ES(img)
	require.NoError(t, err)
	require.InDelta(t, 0.0/(1+median), out.At3(0, 0, 0), 1e-12)
	require.InDelta(t, 1.0/(1+median), out.At3(1, 0, 0), 1e-12)
	require.InDelta(t, 2.0/(math.Sqrt(5)+median), out.At3(0, 0, 1), 1e-12)
	require.InDelta(t, 1.0/(math.Sqrt(5)+median), out.At3(1, 0, 1), 1e-12)
	require.InDelta(t, 0.0/(3+median), out.At3(0, 1, 0), 1e-12)
	require.InDelta(t, 3.0/(3+median), out.At3(1, 1, 0), 1e-12)
	require.InDelta(t, 2.0/(math.Sqrt(13)+median), out.At3(0, 1, 1), 1e-12)
	require.InDelta(t, 3.0/(math.Sqrt(13)+median), out.At3(1, 1, 1), 1e-12)
}

func TestMedianSorted(t *testing.T) {
	require.Equal(t, 2.5, medianSorted([]float64{1, 2, 3, 4}))
	require.Equal(t, 3.0, medianSorted([]float64{1, 2, 3, 4, 5}))
	require.Equal(t, 7.0, medianSorted([]float64{7}))
}

func TestESFinite(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	img := randomImage(rng, 3, 8, 8)
	out, err := ES(img)
	require.NoError(t, err)
	require.Equal(t, []int{6, 8, 8}, out.Shape)
	for _, v := range out.Data {
		require.False(t, math.IsNaN(v))
		require.False(t, math.IsInf(v, 0))
	}
}

func TestESBadRank(t *testing.T) {
	_, err := ES(ndimage.New(2, 3, 4, 5))
	require.True(t, errors.Is(err, ErrBadShape))
}
