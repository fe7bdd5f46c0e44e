package features

import (
	"math"

	"github.com/cyclopcam/logs"
	"github.com/mkutny/menpo/pkg/ndimage"
)

// LBPOptions configures an LBP computation. Radius and Samples are parallel
// slices: one histogram group is produced per (radius, samples) pair.
// Leaving both nil selects the standard four-circle configuration.
type LBPOptions struct {
	Radius               []int
	Samples              []int
	Mapping              MappingType
	WindowStepVertical   int
	WindowStepHorizontal int
	WindowStepUnit       StepUnit
	Padding              bool
	NumWorkers           int
	Log                  logs.Log
}

// Create an LBPOptions with the standard defaults
func NewLBPOptions() *LBPOptions {
	return &LBPOptions{
		Mapping:              MappingRIU2,
		WindowStepVertical:   1,
		WindowStepHorizontal: 1,
		WindowStepUnit:       StepUnitPixels,
		Padding:              true,
	}
}

// Circle configuration used when Radius/Samples are left nil
func defaultLBPRadius() []int {
	return []int{1, 2, 3, 4}
}

func defaultLBPSamples() []int {
	return []int{8, 8, 8, 8}
}

// Validate the options and resolve the window spec. The window is forced to
// a square of 2*max(radius)+1 pixels, so every pixel of a window sees its
// largest sampling circle.
func (o *LBPOptions) resolve(imgHeight, imgWidth int) (radius, samples []int, spec WindowSpec, err error) {
	radius = o.Radius
	samples = o.Samples
	if radius == nil {
		radius = defaultLBPRadius()
	}
	if samples == nil {
		samples = defaultLBPSamples()
	}
	if len(radius) != len(samples) {
		return nil, nil, spec, configError("radius and samples must have the same length")
	}
	if len(radius) == 0 {
		return nil, nil, spec, configError("at least one radius/samples pair is required")
	}
	maxRadius := 0
	for _, r := range radius {
		if r < 1 {
			return nil, nil, spec, configError("radius must be > 0")
		}
		maxRadius = max(maxRadius, r)
	}
	for _, s := range samples {
		if s < 1 {
			return nil, nil, spec, configError("samples must be > 0")
		}
	}
	switch o.Mapping {
	case MappingNone, MappingU2, MappingRI, MappingRIU2:
	default:
		return nil, nil, spec, configError("mapping type must be u2, ri, riu2 or none")
	}
	if o.WindowStepHorizontal <= 0 {
		return nil, nil, spec, configError("horizontal window step must be > 0")
	}
	if o.WindowStepVertical <= 0 {
		return nil, nil, spec, configError("vertical window step must be > 0")
	}
	window := 2*maxRadius + 1
	stepV := o.WindowStepVertical
	stepH := o.WindowStepHorizontal
	switch o.WindowStepUnit {
	case StepUnitPixels:
	case StepUnitWindow:
		stepV *= window
		stepH *= window
	default:
		return nil, nil, spec, configError("window step unit must be either pixels or window")
	}
	if window > imgHeight || window > imgWidth {
		return nil, nil, spec, configError("window (%vx%v) is larger than the image (%vx%v)", window, window, imgHeight, imgWidth)
	}
	spec = WindowSpec{
		Height:         window,
		Width:          window,
		StepVertical:   stepV,
		StepHorizontal: stepH,
		Padding:        o.Padding,
	}
	return radius, samples, spec, nil
}

// Precomputed sampling circle for one (radius, samples) pair
type lbpCircle struct {
	offY    []float64
	offX    []float64
	mapping *lbpMapping
}

func makeCircle(radius, samples int, mapping MappingType) lbpCircle {
	c := lbpCircle{
		offY:    make([]float64, samples),
		offX:    make([]float64, samples),
		mapping: getMapping(samples, mapping),
	}
	for k := 0; k < samples; k++ {
		angle := 2 * math.Pi * float64(k) / float64(samples)
		c.offY[k] = -float64(radius) * math.Sin(angle)
		c.offX[k] = float64(radius) * math.Cos(angle)
	}
	return c
}

// LBP computes a local-binary-pattern descriptor for every window of the
// lattice defined by the options. Each window yields, per channel and per
// (radius, samples) pair, a histogram of mapped patterns over the window's
// pixels; histograms are concatenated pair-innermost, channel-outermost.
//
// Patterns are computed once per image pixel, sampling the circle with
// bilinear interpolation and border replication at the image edge; windows
// then aggregate histograms over their in-bounds pixels. Out-of-bounds
// positions of a padded window carry no pattern and contribute no vote.
func LBP(img *ndimage.Array, o *LBPOptions) (*Descriptor, error) {
	if img.Rank() != 3 {
		return nil, shapeError("LBP needs a channel + 2D input, got rank %v", img.Rank())
	}
	radius, samples, spec, err := o.resolve(img.Height(), img.Width())
	if err != nil {
		return nil, err
	}
	circles := make([]lbpCircle, len(radius))
	binOffsets := make([]int, len(radius))
	perChannel := 0
	for i := range radius {
		circles[i] = makeCircle(radius[i], samples[i], o.Mapping)
		binOffsets[i] = perChannel
		perChannel += circles[i].mapping.bins
	}
	channels := img.Channels()
	featLen := channels * perChannel
	height := img.Height()
	width := img.Width()

	lat := newLattice(height, width, spec)
	if o.Log != nil {
		o.Log.Infof("LBP %v: %v circle(s), %vx%v windows, step %vx%v, lattice %vx%v, %v features per window",
			o.Mapping, len(radius), spec.Height, spec.Width, spec.StepVertical, spec.StepHorizontal, lat.rows, lat.cols, featLen)
	}

	// Mapped code planes, one per (channel, pair)
	codes := make([][]int, channels*len(circles))
	for c := 0; c < channels; c++ {
		plane := img.Plane(c)
		for p, circle := range circles {
			codes[c*len(circles)+p] = codePlane(plane, height, width, circle)
		}
	}

	out := ndimage.New(featLen, lat.rows, lat.cols)
	nWindows := lat.rows * lat.cols
	lat.forEachWindow(o.NumWorkers, func(i, j int) {
		y0, x0 := lat.topLeft(i, j)
		in := ndimage.Rect{X: x0, Y: y0, Width: spec.Width, Height: spec.Height}.Intersection(img.Bounds())
		vec := make([]float64, featLen)
		for c := 0; c < channels; c++ {
			base := c * perChannel
			for p, circle := range circles {
				hist := vec[base+binOffsets[p] : base+binOffsets[p]+circle.mapping.bins]
				code := codes[c*len(circles)+p]
				for y := in.Y; y < in.Y2(); y++ {
					for x := in.X; x < in.X2(); x++ {
						hist[code[y*width+x]]++
					}
				}
			}
		}
		slot := i*lat.cols + j
		for f := 0; f < featLen; f++ {
			out.Data[f*nWindows+slot] = vec[f]
		}
	})
	return &Descriptor{
		Pixels:  out,
		Centers: lat.centers(),
		Rows:    lat.rows,
		Cols:    lat.cols,
	}, nil
}

// Interpolated samples that tie the center must threshold to 1, but the
// interpolation weights can round the sample an ulp below an exactly equal
// center. The tolerance absorbs that.
const lbpTieEpsilon = 1e-10

// codePlane computes the mapped pattern of every pixel of one channel
func codePlane(plane []float64, h, w int, circle lbpCircle) []int {
	out := make([]int, h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := plane[y*w+x]
			pattern := 0
			for k := range circle.offY {
				v := bilinear(plane, h, w, float64(y)+circle.offY[k], float64(x)+circle.offX[k])
				if v-center >= -lbpTieEpsilon {
					pattern |= 1 << k
				}
			}
			out[y*w+x] = circle.mapping.table[pattern]
		}
	}
	return out
}

// Bilinear interpolation with border replication
func bilinear(plane []float64, h, w int, y, x float64) float64 {
	y0 := int(math.Floor(y))
	x0 := int(math.Floor(x))
	fy := y - float64(y0)
	fx := x - float64(x0)
	v00 := planeAt(plane, h, w, y0, x0)
	v01 := planeAt(plane, h, w, y0, x0+1)
	v10 := planeAt(plane, h, w, y0+1, x0)
	v11 := planeAt(plane, h, w, y0+1, x0+1)
	top := v00*(1-fx) + v01*fx
	bottom := v10*(1-fx) + v11*fx
	return top*(1-fy) + bottom*fy
}

func planeAt(plane []float64, h, w, y, x int) float64 {
	y = min(max(y, 0), h-1)
	x = min(max(x, 0), w-1)
	return plane[y*w+x]
}
