package features

import (
	"runtime"
	"sync"

	"github.com/mkutny/menpo/pkg/ndimage"
)

// WindowSpec is the resolved configuration of a sliding-window pass, with
// all sizes already converted to pixels.
type WindowSpec struct {
	Height         int
	Width          int
	StepVertical   int
	StepHorizontal int
	Padding        bool
}

// Point is an image coordinate, vertical axis first.
type Point struct {
	Y float64
	X float64
}

// Descriptor is the result of a windowed feature computation: one feature
// vector per window, laid out as (features, rows, cols), plus the parallel
// row-major array of window centers.
type Descriptor struct {
	Pixels  *ndimage.Array
	Centers []Point
	Rows    int
	Cols    int
}

// lattice is the dense grid of window placements over an image.
// Without padding only fully in-bounds windows are kept. With padding,
// window (i,j) is centred on (i*stepV, j*stepH) and may hang off the image;
// out-of-bounds pixels read as zero during extraction.
type lattice struct {
	imgHeight int
	imgWidth  int
	spec      WindowSpec
	rows      int
	cols      int
}

func newLattice(imgHeight, imgWidth int, spec WindowSpec) *lattice {
	l := &lattice{
		imgHeight: imgHeight,
		imgWidth:  imgWidth,
		spec:      spec,
	}
	if spec.Padding {
		l.rows = ceilDiv(imgHeight, spec.StepVertical)
		l.cols = ceilDiv(imgWidth, spec.StepHorizontal)
	} else {
		if imgHeight >= spec.Height {
			l.rows = 1 + (imgHeight-spec.Height)/spec.StepVertical
		}
		if imgWidth >= spec.Width {
			l.cols = 1 + (imgWidth-spec.Width)/spec.StepHorizontal
		}
	}
	return l
}

// Top-left pixel offset of window (i,j). Negative under padding.
func (l *lattice) topLeft(i, j int) (y0, x0 int) {
	if l.spec.Padding {
		y0 = i*l.spec.StepVertical - (l.spec.Height-1)/2
		x0 = j*l.spec.StepHorizontal - (l.spec.Width-1)/2
	} else {
		y0 = i * l.spec.StepVertical
		x0 = j * l.spec.StepHorizontal
	}
	return
}

// Center coordinate of window (i,j), reproduced unmodified in the output
func (l *lattice) center(i, j int) Point {
	y0, x0 := l.topLeft(i, j)
	return Point{
		Y: float64(y0) + float64(l.spec.Height-1)/2,
		X: float64(x0) + float64(l.spec.Width-1)/2,
	}
}

func (l *lattice) centers() []Point {
	out := make([]Point, 0, l.rows*l.cols)
	for i := 0; i < l.rows; i++ {
		for j := 0; j < l.cols; j++ {
			out = append(out, l.center(i, j))
		}
	}
	return out
}

// extract copies window (i,j) of img into dst, which must hold
// channels*Height*Width values. Pixels outside the image are zero.
func (l *lattice) extract(img *ndimage.Array, i, j int, dst []float64) {
	y0, x0 := l.topLeft(i, j)
	h := l.spec.Height
	w := l.spec.Width
	in := ndimage.Rect{X: x0, Y: y0, Width: w, Height: h}.Intersection(img.Bounds())
	for k := range dst {
		dst[k] = 0
	}
	if in.Area() == 0 {
		return
	}
	channels := img.Channels()
	for c := 0; c < channels; c++ {
		src := img.Plane(c)
		for y := in.Y; y < in.Y2(); y++ {
			srcRow := src[y*img.Width()+in.X : y*img.Width()+in.X2()]
			dstOff := (c*h+(y-y0))*w + (in.X - x0)
			copy(dst[dstOff:dstOff+in.Width], srcRow)
		}
	}
}

// forEachWindow runs fn over every lattice placement, one job per lattice
// row, spread across nWorkers goroutines. Each invocation must write only
// its own window's output slots.
func (l *lattice) forEachWindow(nWorkers int, fn func(i, j int)) {
	if nWorkers <= 0 {
		nWorkers = runtime.NumCPU()
	}
	nWorkers = min(nWorkers, l.rows)
	if nWorkers <= 1 {
		for i := 0; i < l.rows; i++ {
			for j := 0; j < l.cols; j++ {
				fn(i, j)
			}
		}
		return
	}
	jobs := make(chan int, l.rows)
	for i := 0; i < l.rows; i++ {
		jobs <- i
	}
	close(jobs)
	wg := sync.WaitGroup{}
	for t := 0; t < nWorkers; t++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				for j := 0; j < l.cols; j++ {
					fn(i, j)
				}
			}
		}()
	}
	wg.Wait()
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
