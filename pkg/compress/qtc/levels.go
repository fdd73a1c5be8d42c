package qtc

import "fmt"

// DefaultMaxLevels covers every uint16 dimension.
const DefaultMaxLevels = 16

// Levels returns the tree depth for a w x h raster: the smallest r >= 1
// with 2^r >= max(w, h). Leaves are 2x2 pixel blocks at depth r-1.
func Levels(w, h uint16) (int, error) {
	if w == 0 || h == 0 {
		return 0, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}
	side := max(int(w), int(h))
	r := 1
	for 1<<r < side {
		r++
	}
	return r, nil
}

// NodeCount is the size of a complete tree with r levels, (4^r - 1) / 3.
func NodeCount(r int) int {
	return ((1 << (2 * r)) - 1) / 3
}

// LevelStart is the index of the first node at depth d. The root is depth 0.
func LevelStart(d int) int {
	return NodeCount(d)
}

// Stride is the number of bytes per raster row.
func Stride(w uint16) int {
	return (int(w) + 7) / 8
}

// firstChild is the index of child 0 of node i.
func firstChild(i int) int {
	return 4*i + 1
}
