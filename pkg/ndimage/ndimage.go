// Package ndimage holds the dense numeric array type that the descriptor
// engine operates on. Axis 0 is always the channel axis; the remaining axes
// are spatial. Data is row-major (last axis fastest).
package ndimage

import "fmt"

// Array is a dense multi-channel numeric array.
// A 2D image with C channels has Shape [C, height, width].
type Array struct {
	Shape []int
	Data  []float64
}

// Allocate a zero-filled array.
// Panics if any axis has size < 1, or if there is no channel axis.
func New(shape ...int) *Array {
	if len(shape) < 1 {
		panic("ndimage: array needs at least a channel axis")
	}
	n := 1
	for _, s := range shape {
		if s < 1 {
			panic(fmt.Sprintf("ndimage: invalid axis size %v", s))
		}
		n *= s
	}
	return &Array{
		Shape: append([]int{}, shape...),
		Data:  make([]float64, n),
	}
}

// Wrap an existing slice as an array. The slice is not copied.
// Panics if len(data) does not match the shape.
func FromSlice(data []float64, shape ...int) *Array {
	a := &Array{Shape: append([]int{}, shape...), Data: data}
	n := 1
	for _, s := range shape {
		n *= s
	}
	if n != len(data) {
		panic(fmt.Sprintf("ndimage: slice length %v does not match shape %v", len(data), shape))
	}
	return a
}

func (a *Array) Rank() int {
	return len(a.Shape)
}

func (a *Array) Channels() int {
	return a.Shape[0]
}

// The shape without the channel axis
func (a *Array) SpatialShape() []int {
	return a.Shape[1:]
}

// Number of elements in one channel
func (a *Array) PlaneLen() int {
	n := 1
	for _, s := range a.Shape[1:] {
		n *= s
	}
	return n
}

// Height of a rank-3 array
func (a *Array) Height() int {
	return a.Shape[1]
}

// Width of a rank-3 array
func (a *Array) Width() int {
	return a.Shape[2]
}

// Deep copy
func (a *Array) Clone() *Array {
	c := &Array{
		Shape: append([]int{}, a.Shape...),
		Data:  make([]float64, len(a.Data)),
	}
	copy(c.Data, a.Data)
	return c
}

func (a *Array) EqualShape(b *Array) bool {
	if len(a.Shape) != len(b.Shape) {
		return false
	}
	for i := range a.Shape {
		if a.Shape[i] != b.Shape[i] {
			return false
		}
	}
	return true
}

func (a *Array) At3(c, y, x int) float64 {
	return a.Data[(c*a.Shape[1]+y)*a.Shape[2]+x]
}

func (a *Array) Set3(c, y, x int, v float64) {
	a.Data[(c*a.Shape[1]+y)*a.Shape[2]+x] = v
}

// Plane returns the contiguous data of one channel of a rank-3 array
func (a *Array) Plane(c int) []float64 {
	n := a.PlaneLen()
	return a.Data[c*n : (c+1)*n]
}

// General element access. Slower than the rank-3 accessors.
func (a *Array) At(idx ...int) float64 {
	return a.Data[a.flatIndex(idx)]
}

func (a *Array) Set(v float64, idx ...int) {
	a.Data[a.flatIndex(idx)] = v
}

func (a *Array) flatIndex(idx []int) int {
	if len(idx) != len(a.Shape) {
		panic(fmt.Sprintf("ndimage: index rank %v does not match array rank %v", len(idx), len(a.Shape)))
	}
	flat := 0
	for i, v := range idx {
		flat = flat*a.Shape[i] + v
	}
	return flat
}
