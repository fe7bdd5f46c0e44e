package features

import (
	"math"

	"github.com/cyclopcam/logs"
	"github.com/mkutny/menpo/pkg/ndimage"
	"gonum.org/v1/gonum/floats"
)

// HOGAlgorithm selects the aggregation geometry of the HOG descriptor
type HOGAlgorithm int

const (
	// DalalTriggs partitions each window into cells, groups cells into
	// overlapping blocks, and L2-clip normalizes each block vector.
	DalalTriggs HOGAlgorithm = iota
	// ZhuRamanan aggregates a fixed 3x3 grid of cells around the window
	// center and normalizes the whole window vector once.
	ZhuRamanan
)

func (a HOGAlgorithm) String() string {
	switch a {
	case DalalTriggs:
		return "dalaltriggs"
	case ZhuRamanan:
		return "zhuramanan"
	}
	return "unknown"
}

// HOGOptions configures a HOG computation. NumWorkers <= 0 means one worker
// per CPU. Log is optional.
type HOGOptions struct {
	Mode                 Mode
	Algorithm            HOGAlgorithm
	NumBins              int
	CellSize             int
	BlockSize            int
	SignedGradient       bool
	L2NormClip           float64
	WindowHeight         int
	WindowWidth          int
	WindowUnit           WindowUnit
	WindowStepVertical   int
	WindowStepHorizontal int
	WindowStepUnit       StepUnit
	Padding              bool
	NumWorkers           int
	Log                  logs.Log
}

// Create a HOGOptions with the standard defaults
func NewHOGOptions() *HOGOptions {
	return &HOGOptions{
		Mode:                 ModeDense,
		Algorithm:            DalalTriggs,
		NumBins:              9,
		CellSize:             8,
		BlockSize:            2,
		SignedGradient:       true,
		L2NormClip:           0.2,
		WindowHeight:         1,
		WindowWidth:          1,
		WindowUnit:           WindowUnitBlocks,
		WindowStepVertical:   1,
		WindowStepHorizontal: 1,
		WindowStepUnit:       StepUnitPixels,
		Padding:              true,
	}
}

// The pixel extent of one aggregation unit: a block of cells for
// DalalTriggs, the fixed 3x3 cell grid for ZhuRamanan.
func (o *HOGOptions) blockPixels() int {
	if o.Algorithm == ZhuRamanan {
		return 3 * o.CellSize
	}
	return o.BlockSize * o.CellSize
}

// Validate the options against the image extent and resolve every size to
// pixels. All configuration errors are reported here, before any pixel work.
func (o *HOGOptions) resolve(imgHeight, imgWidth int) (WindowSpec, error) {
	spec := WindowSpec{}
	switch o.Mode {
	case ModeDense, ModeSparse:
	default:
		return spec, configError("HOG features mode must be either dense or sparse")
	}
	switch o.Algorithm {
	case DalalTriggs, ZhuRamanan:
	default:
		return spec, configError("algorithm must be either dalaltriggs or zhuramanan")
	}
	if o.NumBins <= 0 {
		return spec, configError("number of orientation bins must be > 0")
	}
	if o.CellSize <= 0 {
		return spec, configError("cell size (in pixels) must be > 0")
	}
	if o.BlockSize <= 0 {
		return spec, configError("block size (in cells) must be > 0")
	}
	if o.L2NormClip <= 0 {
		return spec, configError("value for L2-norm clipping must be > 0.0")
	}
	unit := o.blockPixels()
	if o.Mode == ModeSparse {
		if unit > imgHeight || unit > imgWidth {
			return spec, configError("window (%vx%v) is larger than the image (%vx%v)", unit, unit, imgHeight, imgWidth)
		}
		return WindowSpec{
			Height:         unit,
			Width:          unit,
			StepVertical:   o.CellSize,
			StepHorizontal: o.CellSize,
			Padding:        false,
		}, nil
	}
	switch o.WindowUnit {
	case WindowUnitPixels, WindowUnitBlocks:
	default:
		return spec, configError("window unit must be either pixels or blocks")
	}
	height := o.WindowHeight
	width := o.WindowWidth
	if o.WindowUnit == WindowUnitBlocks {
		height *= unit
		width *= unit
	}
	if height < unit || height > imgHeight {
		return spec, configError("window height must be >= block size and <= image height")
	}
	if width < unit || width > imgWidth {
		return spec, configError("window width must be >= block size and <= image width")
	}
	if o.WindowStepHorizontal <= 0 {
		return spec, configError("horizontal window step must be > 0")
	}
	if o.WindowStepVertical <= 0 {
		return spec, configError("vertical window step must be > 0")
	}
	stepV := o.WindowStepVertical
	stepH := o.WindowStepHorizontal
	switch o.WindowStepUnit {
	case StepUnitPixels:
	case StepUnitCells:
		stepV *= o.CellSize
		stepH *= o.CellSize
	default:
		return spec, configError("window step unit must be either pixels or cells")
	}
	return WindowSpec{
		Height:         height,
		Width:          width,
		StepVertical:   stepV,
		StepHorizontal: stepH,
		Padding:        o.Padding,
	}, nil
}

// HOG computes a histogram-of-oriented-gradients descriptor for every window
// of the lattice defined by the options. The result holds one feature vector
// per window, shaped (features, rows, cols).
func HOG(img *ndimage.Array, o *HOGOptions) (*Descriptor, error) {
	if img.Rank() != 3 {
		return nil, shapeError("HOG needs a channel + 2D input, got rank %v", img.Rank())
	}
	spec, err := o.resolve(img.Height(), img.Width())
	if err != nil {
		return nil, err
	}
	// Rescale intensities into the 0-255 range that the classical HOG
	// formulas assume. The input itself is never modified.
	work := img.Clone()
	floats.Scale(255, work.Data)

	lat := newLattice(img.Height(), img.Width(), spec)
	window, featLen := o.windowFunc(spec, img.Channels())
	if o.Log != nil {
		o.Log.Infof("HOG %v/%v: %vx%v windows, step %vx%v, lattice %vx%v, %v features per window",
			o.Mode, o.Algorithm, spec.Height, spec.Width, spec.StepVertical, spec.StepHorizontal, lat.rows, lat.cols, featLen)
	}
	out := ndimage.New(featLen, lat.rows, lat.cols)
	nWindows := lat.rows * lat.cols
	lat.forEachWindow(o.NumWorkers, func(i, j int) {
		win := ndimage.New(img.Channels(), spec.Height, spec.Width)
		lat.extract(work, i, j, win.Data)
		vec := make([]float64, featLen)
		window(win, vec)
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

type hogWindowFunc func(win *ndimage.Array, vec []float64)

// Resolve the algorithm to a per-window closure and its feature count.
// Dispatch happens once here, not per pixel.
func (o *HOGOptions) windowFunc(spec WindowSpec, channels int) (hogWindowFunc, int) {
	if o.Algorithm == ZhuRamanan {
		return o.zhuRamananWindow(spec, channels)
	}
	return o.dalalTriggsWindow(spec, channels)
}

func (o *HOGOptions) dalalTriggsWindow(spec WindowSpec, channels int) (hogWindowFunc, int) {
	cell := o.CellSize
	block := o.BlockSize
	bins := o.NumBins
	cellsY := spec.Height / cell
	cellsX := spec.Width / cell
	blocksY := cellsY - block + 1
	blocksX := cellsX - block + 1
	blockLen := block * block * bins
	perChannel := blocksY * blocksX * blockLen
	featLen := channels * perChannel
	signed := o.SignedGradient
	clip := o.L2NormClip

	fn := func(win *ndimage.Array, vec []float64) {
		grad := gradient2D(win)
		hist := make([]float64, cellsY*cellsX*bins)
		for c := 0; c < channels; c++ {
			for i := range hist {
				hist[i] = 0
			}
			dy := grad.Plane(2 * c)
			dx := grad.Plane(2*c + 1)
			accumulateCellHistograms(dy, dx, spec.Width, cellsY, cellsX, cell, 0, 0, bins, signed, hist)
			base := c * perChannel
			for by := 0; by < blocksY; by++ {
				for bx := 0; bx < blocksX; bx++ {
					blockVec := vec[base : base+blockLen]
					k := 0
					for cy := by; cy < by+block; cy++ {
						for cx := bx; cx < bx+block; cx++ {
							copy(blockVec[k:k+bins], hist[(cy*cellsX+cx)*bins:])
							k += bins
						}
					}
					L2Clip(blockVec, clip)
					base += blockLen
				}
			}
		}
	}
	return fn, featLen
}

func (o *HOGOptions) zhuRamananWindow(spec WindowSpec, channels int) (hogWindowFunc, int) {
	cell := o.CellSize
	bins := o.NumBins
	perChannel := 9 * bins
	featLen := channels * perChannel
	signed := o.SignedGradient
	clip := o.L2NormClip
	// 3x3 cell grid centred in the window
	offY := (spec.Height - 3*cell) / 2
	offX := (spec.Width - 3*cell) / 2

	fn := func(win *ndimage.Array, vec []float64) {
		grad := gradient2D(win)
		for c := 0; c < channels; c++ {
			dy := grad.Plane(2 * c)
			dx := grad.Plane(2*c + 1)
			accumulateCellHistograms(dy, dx, spec.Width, 3, 3, cell, offY, offX, bins, signed, vec[c*perChannel:(c+1)*perChannel])
		}
		// One normalization pass over the whole window vector
		L2Clip(vec, clip)
	}
	return fn, featLen
}

// accumulateCellHistograms walks a cellsY x cellsX grid of cells whose
// top-left pixel is (offY, offX), accumulating a magnitude-weighted
// orientation histogram per cell into hist (cell-major, bins fastest).
// Each pixel's vote is spread linearly over the two nearest bins.
func accumulateCellHistograms(dy, dx []float64, stride, cellsY, cellsX, cell, offY, offX, bins int, signed bool, hist []float64) {
	orientRange := math.Pi
	if signed {
		orientRange = 2 * math.Pi
	}
	binWidth := orientRange / float64(bins)
	for cy := 0; cy < cellsY; cy++ {
		for cx := 0; cx < cellsX; cx++ {
			cellHist := hist[(cy*cellsX+cx)*bins : (cy*cellsX+cx+1)*bins]
			for py := 0; py < cell; py++ {
				row := (offY + cy*cell + py) * stride
				for px := 0; px < cell; px++ {
					p := row + offX + cx*cell + px
					gy := dy[p]
					gx := dx[p]
					mag := math.Hypot(gx, gy)
					if mag == 0 {
						// Undefined orientation contributes nothing
						continue
					}
					angle := math.Atan2(gy, gx)
					if angle < 0 {
						angle += orientRange
					}
					pos := angle/binWidth - 0.5
					lo := math.Floor(pos)
					frac := pos - lo
					b0 := ((int(lo) % bins) + bins) % bins
					b1 := (b0 + 1) % bins
					cellHist[b0] += mag * (1 - frac)
					cellHist[b1] += mag * frac
				}
			}
		}
	}
}
