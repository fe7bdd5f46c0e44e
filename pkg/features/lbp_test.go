package features

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/mkutny/menpo/pkg/ndimage"
	"github.com/stretchr/testify/require"
)

func TestMappingNone(t *testing.T) {
	m := buildMapping(8, MappingNone)
	require.Equal(t, 256, m.bins)
	for p, bin := range m.table {
		require.Equal(t, p, bin)
	}
}

func TestMappingU2(t *testing.T) {
	// 8 samples: 58 uniform patterns, each with its own bin, plus one bin
	// for everything else
	m := buildMapping(8, MappingU2)
	require.Equal(t, 8*7+3, m.bins)
	junk := 8*7 + 2
	uniform := 0
	for p, bin := range m.table {
		require.Less(t, bin, m.bins)
		if transitions(p, 8) <= 2 {
			require.NotEqual(t, junk, bin)
			uniform++
		} else {
			require.Equal(t, junk, bin)
		}
	}
	require.Equal(t, 58, uniform)
}

func TestMappingRI(t *testing.T) {
	m := buildMapping(8, MappingRI)
	require.Equal(t, 36, m.bins) // rotation classes of 8-bit necklaces
	// all rotations of a pattern share a bin
	for p := 0; p < 256; p++ {
		rotated := ((p >> 1) | (p << 7)) & 0xff
		require.Equal(t, m.table[p], m.table[rotated])
	}
}

func TestMappingRIU2(t *testing.T) {
	for _, s := range []int{4, 8} {
		m := buildMapping(s, MappingRIU2)
		require.Equal(t, s+2, m.bins)
		used := map[int]bool{}
		for p, bin := range m.table {
			used[bin] = true
			if transitions(p, s) <= 2 {
				require.Less(t, bin, s+1)
			} else {
				require.Equal(t, s+1, bin)
			}
		}
		// every bin is reachable
		require.Equal(t, s+2, len(used))
	}
}

func TestMappingCacheSharesTables(t *testing.T) {
	a := getMapping(8, MappingRIU2)
	b := getMapping(8, MappingRIU2)
	require.Same(t, a, b)
}

func TestLBPValidation(t *testing.T) {
	img := ndimage.New(1, 16, 16)
	cases := []func(o *LBPOptions){
		func(o *LBPOptions) { o.Radius = []int{1, 2}; o.Samples = []int{8} },
		func(o *LBPOptions) { o.Radius = []int{0}; o.Samples = []int{8} },
		func(o *LBPOptions) { o.Radius = []int{1}; o.Samples = []int{0} },
		func(o *LBPOptions) { o.Mapping = MappingType(42) },
		func(o *LBPOptions) { o.WindowStepHorizontal = 0 },
		func(o *LBPOptions) { o.WindowStepVertical = -1 },
		func(o *LBPOptions) { o.WindowStepUnit = StepUnitCells }, // not an LBP unit
		func(o *LBPOptions) { o.Radius = []int{}; o.Samples = []int{} },
		func(o *LBPOptions) { o.Radius = []int{20}; o.Samples = []int{8} }, // window 41 > image
	}
	for i, mutate := range cases {
		o := NewLBPOptions()
		mutate(o)
		_, err := LBP(img, o)
		require.Truef(t, errors.Is(err, ErrInvalidConfiguration), "case %v: got %v", i, err)
	}
}

func TestLBPBadRank(t *testing.T) {
	_, err := LBP(ndimage.New(1, 8), NewLBPOptions())
	require.True(t, errors.Is(err, ErrBadShape))
}

func TestLBPDefaults(t *testing.T) {
	// nil radius/samples is the standard 4-circle configuration:
	// window 2*4+1 = 9, riu2 with 8 samples is 10 bins per circle
	img := ndimage.New(2, 12, 12)
	desc, err := LBP(img, NewLBPOptions())
	require.NoError(t, err)
	require.Equal(t, 2*4*10, desc.Pixels.Shape[0])
	require.Equal(t, 12, desc.Rows) // padded, step 1
	require.Equal(t, 12, desc.Cols)
}

func TestLBPConstantImage(t *testing.T) {
	// On a constant image every sample equals its center, so every pixel
	// produces the same uniform pattern and each window's histogram is
	// concentrated in that single uniform bin.
	img := ndimage.New(1, 8, 8)
	for i := range img.Data {
		img.Data[i] = 0.5
	}
	o := NewLBPOptions()
	o.Radius = []int{1}
	o.Samples = []int{8}
	o.Mapping = MappingU2
	o.Padding = false
	desc, err := LBP(img, o)
	require.NoError(t, err)
	bins := getMapping(8, MappingU2).bins
	require.Equal(t, bins, desc.Pixels.Shape[0])
	// Every sample equals its center (border replication keeps edge pixels
	// constant too), so every pixel carries the same uniform pattern
	uniformBin := getMapping(8, MappingU2).table[0xff]
	n := desc.Rows * desc.Cols
	for w := 0; w < n; w++ {
		for f := 0; f < bins; f++ {
			want := 0.0
			if f == uniformBin {
				want = 9.0 // one vote per window pixel
			}
			require.Equal(t, want, desc.Pixels.Data[f*n+w])
		}
	}
}

func TestLBPRawPatternRange(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	img := randomImage(rng, 1, 10, 10)
	o := NewLBPOptions()
	o.Radius = []int{1}
	o.Samples = []int{4}
	o.Mapping = MappingNone
	o.Padding = false
	desc, err := LBP(img, o)
	require.NoError(t, err)
	// 2^4 bins, every vote lands inside them and each window holds one
	// vote per pixel
	require.Equal(t, 16, desc.Pixels.Shape[0])
	n := desc.Rows * desc.Cols
	for w := 0; w < n; w++ {
		total := 0.0
		for f := 0; f < 16; f++ {
			v := desc.Pixels.Data[f*n+w]
			require.GreaterOrEqual(t, v, 0.0)
			total += v
		}
		require.Equal(t, 9.0, total)
	}
}

func TestLBPStepUnitWindow(t *testing.T) {
	img := ndimage.New(1, 27, 27)
	o := NewLBPOptions()
	o.Radius = []int{4}
	o.Samples = []int{8}
	o.WindowStepUnit = StepUnitWindow
	// step = 1 window = 9px, padded: ceil(27/9) = 3
	desc, err := LBP(img, o)
	require.NoError(t, err)
	require.Equal(t, 3, desc.Rows)
	require.Equal(t, 3, desc.Cols)
}

func TestLBPMultiplePairs(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	img := randomImage(rng, 1, 12, 12)
	o := NewLBPOptions()
	o.Radius = []int{1, 2}
	o.Samples = []int{4, 8}
	o.Mapping = MappingRIU2
	desc, err := LBP(img, o)
	require.NoError(t, err)
	// 4+2 bins for the first circle, 8+2 for the second
	require.Equal(t, 6+10, desc.Pixels.Shape[0])
}

func TestLBPParallelMatchesSerial(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	img := randomImage(rng, 2, 20, 20)
	o := NewLBPOptions()
	o.NumWorkers = 1
	serial, err := LBP(img, o)
	require.NoError(t, err)
	o.NumWorkers = 8
	parallel, err := LBP(img, o)
	require.NoError(t, err)
	require.Equal(t, serial.Pixels.Data, parallel.Pixels.Data)
}
