package features

// Mode selects how the window grid is built. Dense grids are fully
// configurable; sparse grids reproduce the classical non-overlapping
// descriptor layout (window = one aggregation unit, step = one cell,
// no padding).
type Mode int

const (
	ModeDense Mode = iota
	ModeSparse
)

func (m Mode) String() string {
	switch m {
	case ModeDense:
		return "dense"
	case ModeSparse:
		return "sparse"
	}
	return "unknown"
}

// WindowUnit is the unit of the requested window height/width
type WindowUnit int

const (
	WindowUnitPixels WindowUnit = iota
	WindowUnitBlocks
)

func (u WindowUnit) String() string {
	switch u {
	case WindowUnitPixels:
		return "pixels"
	case WindowUnitBlocks:
		return "blocks"
	}
	return "unknown"
}

// StepUnit is the unit of the window step. HOG accepts pixels or cells,
// LBP accepts pixels or whole windows.
type StepUnit int

const (
	StepUnitPixels StepUnit = iota
	StepUnitCells
	StepUnitWindow
)

func (u StepUnit) String() string {
	switch u {
	case StepUnitPixels:
		return "pixels"
	case StepUnitCells:
		return "cells"
	case StepUnitWindow:
		return "window"
	}
	return "unknown"
}
