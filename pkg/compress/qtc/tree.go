package qtc

import (
	"fmt"
	"log/slog"

	"github.com/jpfielding/qtc.go/pkg/morton"
	"github.com/jpfielding/qtc.go/pkg/nibble"
)

// Tree is a complete quadtree stored as a flat nibble array. Node i has
// children 4i+1..4i+4 in quadrant order NW, NE, SW, SE. Internal codes
// carry one "non-empty" bit per child, leaf codes carry the pixels of a
// 2x2 block (bit 0 = (x,y), 1 = (x+1,y), 2 = (x,y+1), 3 = (x+1,y+1)).
type Tree struct {
	Codes  nibble.Array
	Levels int
	Width  uint16
	Height uint16
}

// Len is the number of nodes.
func (t *Tree) Len() int {
	return NodeCount(t.Levels)
}

// LeafStart is the index of the first leaf.
func (t *Tree) LeafStart() int {
	return NodeCount(t.Levels - 1)
}

// IsLeaf reports whether node i is on the leaf level.
func (t *Tree) IsLeaf(i int) bool {
	return i >= t.LeafStart()
}

// Code returns the code of node i.
func (t *Tree) Code(i int) byte {
	return t.Codes.Get(i)
}

// Build constructs the complete quadtree of a packed 1-bit raster. Bits
// outside w x h, including row padding, are treated as background. With
// invert set, in-bounds pixels are complemented first.
func Build(pix []byte, w, h uint16, invert bool) (*Tree, error) {
	return build(pix, w, h, invert, DefaultMaxLevels)
}

func build(pix []byte, w, h uint16, invert bool, maxLevels int) (*Tree, error) {
	r, err := Levels(w, h)
	if err != nil {
		return nil, err
	}
	if r > maxLevels {
		return nil, fmt.Errorf("%w: %d levels for %dx%d exceeds %d", ErrAllocation, r, w, h, maxLevels)
	}
	stride := Stride(w)
	if len(pix) < stride*int(h) {
		return nil, fmt.Errorf("%w: raster has %d bytes, %dx%d needs %d", ErrInvalidDimensions, len(pix), w, h, stride*int(h))
	}

	t := &Tree{Codes: nibble.New(NodeCount(r)), Levels: r, Width: w, Height: h}
	leafStart := t.LeafStart()

	row := morton.Code(0)
	for y := 0; y < int(h); y += 2 {
		m := row
		for x := 0; x < int(w); x += 2 {
			if c := leafCode(pix, stride, int(w), int(h), x, y, invert); c != 0 {
				t.Codes.Set(leafStart+int(m), c)
			}
			m = m.IncX()
		}
		row = row.IncY()
	}

	// parents always precede their children, so one reverse scan suffices
	for i := leafStart - 1; i >= 0; i-- {
		c0 := firstChild(i)
		var code byte
		for q := 0; q < 4; q++ {
			if t.Codes.Get(c0+q) != 0 {
				code |= 1 << q
			}
		}
		t.Codes.Set(i, code)
	}
	slog.Debug("qtc: built tree", slog.Int("levels", r), slog.Int("nodes", t.Len()), slog.Bool("invert", invert))
	return t, nil
}

// leafCode reads the 2x2 block with top-left pixel (x, y); x is even.
func leafCode(pix []byte, stride, w, h, x, y int, invert bool) byte {
	mask := byte(3)
	if x+1 >= w {
		mask = 1
	}
	shift := x & 7
	top := pix[y*stride+x>>3] >> shift
	if invert {
		top = ^top
	}
	code := top & mask
	if y+1 < h {
		bot := pix[(y+1)*stride+x>>3] >> shift
		if invert {
			bot = ^bot
		}
		code |= (bot & mask) << 2
	}
	return code
}
