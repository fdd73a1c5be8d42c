package qtc

import "errors"

var (
	// ErrInvalidDimensions is returned for a zero width or height, or a
	// raster shorter than its dimensions require.
	ErrInvalidDimensions = errors.New("qtc: invalid dimensions")
	// ErrAllocation is returned when the tree would exceed Options.MaxLevels.
	ErrAllocation = errors.New("qtc: tree too large")
	// ErrCorruptStream is returned when a stream is truncated or structurally invalid.
	ErrCorruptStream = errors.New("qtc: corrupt stream")
)
