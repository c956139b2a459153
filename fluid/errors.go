package fluid

import "errors"

var (
	// ErrInvalidExtent indicates a grid width or height below one cell.
	ErrInvalidExtent = errors.New("fluid: grid extents must be at least one cell")

	// ErrGridTooLarge indicates a grid whose storage cannot be allocated.
	ErrGridTooLarge = errors.New("fluid: grid too large to allocate")

	// ErrIndexOutOfRange indicates a flat index or coordinate outside a field.
	ErrIndexOutOfRange = errors.New("fluid: index out of range")

	// ErrDimensionMismatch indicates a linear system whose equation and
	// unknown counts differ.
	ErrDimensionMismatch = errors.New("fluid: dimension mismatch")
)
