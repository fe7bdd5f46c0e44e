package features

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/mkutny/menpo/pkg/ndimage"
	"github.com/stretchr/testify/require"
)

func TestNoOpCopies(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	img := randomImage(rng, 2, 5, 5)
	out := NoOp(img)
	require.Equal(t, img.Shape, out.Shape)
	require.Equal(t, img.Data, out.Data)
	out.Data[0] += 1
	require.NotEqual(t, img.Data[0], out.Data[0])
}

func TestGaussianFilterAppliesPerChannel(t *testing.T) {
	img := ndimage.New(2, 3, 3)
	for i := range img.Data {
		img.Data[i] = float64(i)
	}
	calls := 0
	double := func(plane []float64, height, width int, sigma float64) []float64 {
		require.Equal(t, 3, height)
		require.Equal(t, 3, width)
		require.Equal(t, 1.5, sigma)
		calls++
		for i := range plane {
			plane[i] *= 2
		}
		return plane
	}
	out, err := GaussianFilter(img, 1.5, double)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	for i := range img.Data {
		require.Equal(t, float64(i), img.Data[i]) // source untouched
		require.Equal(t, 2*float64(i), out.Data[i])
	}
}

func TestGaussianFilterValidation(t *testing.T) {
	identity := func(plane []float64, height, width int, sigma float64) []float64 {
		return plane
	}
	_, err := GaussianFilter(ndimage.New(1, 4, 4), 1, nil)
	require.True(t, errors.Is(err, ErrInvalidConfiguration))
	_, err = GaussianFilter(ndimage.New(4, 4), 1, identity)
	require.True(t, errors.Is(err, ErrBadShape))
	_, err = GaussianFilter(ndimage.New(1, 4, 4), 0, identity)
	require.True(t, errors.Is(err, ErrInvalidConfiguration))
	_, err = GaussianFilter(ndimage.New(1, 4, 4), -2, identity)
	require.True(t, errors.Is(err, ErrInvalidConfiguration))
}
