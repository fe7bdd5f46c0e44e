package features

import (
	"gonum.org/v1/gonum/floats"
)

// Vector normalization routines shared by the descriptor algorithms.
// All operate in place. Degenerate all-zero vectors are left untouched,
// so a zero histogram stays zero instead of producing NaNs.

// L1 scales v to unit L1 norm.
func L1(v []float64) {
	n := floats.Norm(v, 1)
	if n == 0 {
		return
	}
	floats.Scale(1/n, v)
}

// L2 scales v to unit L2 norm.
func L2(v []float64) {
	n := floats.Norm(v, 2)
	if n == 0 {
		return
	}
	floats.Scale(1/n, v)
}

// L2Clip scales v to unit L2 norm, clamps every component to magnitude at
// most clip, then re-normalizes to unit L2 norm. This limits the influence
// any single histogram bin can have on the final descriptor.
func L2Clip(v []float64, clip float64) {
	L2(v)
	for i, x := range v {
		if x > clip {
			v[i] = clip
		} else if x < -clip {
			v[i] = -clip
		}
	}
	L2(v)
}
