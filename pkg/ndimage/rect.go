package ndimage

// Rect is an integer pixel rectangle, used to clip sample windows against
// image bounds. X/Y may be negative for windows that hang off the image.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) Area() int {
	return r.Width * r.Height
}

func (r Rect) X2() int {
	return r.X + r.Width
}

func (r Rect) Y2() int {
	return r.Y + r.Height
}

func (r Rect) Intersection(b Rect) Rect {
	x1 := max(r.X, b.X)
	y1 := max(r.Y, b.Y)
	x2 := min(r.X+r.Width, b.X+b.Width)
	y2 := min(r.Y+r.Height, b.Y+b.Height)
	return Rect{
		X:      x1,
		Y:      y1,
		Width:  max(0, x2-x1),
		Height: max(0, y2-y1),
	}
}

// Bounds of a rank-3 array
func (a *Array) Bounds() Rect {
	return Rect{X: 0, Y: 0, Width: a.Width(), Height: a.Height()}
}
