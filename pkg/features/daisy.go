package features

import (
	"github.com/cyclopcam/logs"
	"github.com/mkutny/menpo/pkg/ndimage"
)

// DaisyNormalization selects the normalization applied inside the daisy
// routine.
type DaisyNormalization int

const (
	DaisyNormL1 DaisyNormalization = iota
	DaisyNormL2
	DaisyNormDaisy // L2 per individual histogram
	DaisyNormOff
)

func (n DaisyNormalization) String() string {
	switch n {
	case DaisyNormL1:
		return "l1"
	case DaisyNormL2:
		return "l2"
	case DaisyNormDaisy:
		return "daisy"
	case DaisyNormOff:
		return "off"
	}
	return "unknown"
}

// DaisyFunc is the external dense-descriptor routine. We validate and
// resolve the configuration, but the descriptor interior is somebody
// else's code.
type DaisyFunc func(img *ndimage.Array, step, radius, rings, histograms, orientations int,
	normalization DaisyNormalization, sigmas []float64, ringRadii []int) (*ndimage.Array, error)

// DaisyOptions configures a daisy computation. Daisy must be supplied by
// the caller; there is no built-in implementation.
type DaisyOptions struct {
	Step          int
	Radius        int
	Rings         int
	Histograms    int
	Orientations  int
	Normalization DaisyNormalization
	Sigmas        []float64
	RingRadii     []int
	Daisy         DaisyFunc
	Log           logs.Log
}

// Create a DaisyOptions with the standard defaults
func NewDaisyOptions() *DaisyOptions {
	return &DaisyOptions{
		Step:          1,
		Radius:        15,
		Rings:         2,
		Histograms:    2,
		Orientations:  8,
		Normalization: DaisyNormL1,
	}
}

// Daisy resolves the ring geometry (sigmas and ring radii override rings and
// radius) and invokes the injected routine. The output has
// (rings*histograms + 1) * orientations feature channels per input channel.
func Daisy(img *ndimage.Array, o *DaisyOptions) (*ndimage.Array, error) {
	if o.Daisy == nil {
		return nil, configError("no daisy routine supplied")
	}
	if img.Rank() != 3 {
		return nil, shapeError("daisy needs a channel + 2D input, got rank %v", img.Rank())
	}
	if o.Sigmas != nil && o.RingRadii != nil && len(o.Sigmas)-1 != len(o.RingRadii) {
		return nil, configError("len(sigmas)-1 != len(ring_radii)")
	}
	switch o.Normalization {
	case DaisyNormL1, DaisyNormL2, DaisyNormDaisy, DaisyNormOff:
	default:
		return nil, configError("invalid normalization method")
	}
	rings := o.Rings
	radius := o.Radius
	if o.RingRadii != nil {
		rings = len(o.RingRadii)
		radius = o.RingRadii[len(o.RingRadii)-1]
	}
	if o.Sigmas != nil {
		rings = len(o.Sigmas) - 1
	}
	sigmas := o.Sigmas
	if sigmas == nil {
		sigmas = make([]float64, rings)
		for i := range sigmas {
			sigmas[i] = float64(radius) * float64(i+1) / float64(2*rings)
		}
	}
	ringRadii := o.RingRadii
	if ringRadii == nil {
		ringRadii = make([]int, rings)
		for i := range ringRadii {
			ringRadii[i] = radius * (i + 1) / rings
		}
	}
	if o.Log != nil {
		o.Log.Infof("Daisy: step %v, radius %v, %v rings, %v histograms, %v orientations, %v normalization",
			o.Step, radius, rings, o.Histograms, o.Orientations, o.Normalization)
	}
	return o.Daisy(img, o.Step, radius, rings, o.Histograms, o.Orientations, o.Normalization, sigmas, ringRadii)
}
