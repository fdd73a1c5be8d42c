// Package raster holds 1-bit and 8-bit rasters and reads them from disk.
// 1-bit pixels are packed LSB-first into rows of ceil(w/8) bytes; a set
// bit is foreground (black in PBM terms).
package raster

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/jpfielding/qtc.go/pkg/nibble"
)

var (
	// ErrFormat is returned for malformed or unsupported files.
	ErrFormat = errors.New("raster: unsupported format")
	// ErrTooLarge is returned for dimensions that do not fit in uint16.
	ErrTooLarge = errors.New("raster: dimensions exceed 65535")
)

// Raster is a packed 1-bit image.
type Raster struct {
	Pix    []byte
	Width  uint16
	Height uint16
}

// New allocates an empty w x h raster.
func New(w, h uint16) *Raster {
	return &Raster{Pix: make([]byte, Stride(w)*int(h)), Width: w, Height: h}
}

// Stride is the number of bytes per row of a w pixel wide raster.
func Stride(w uint16) int {
	return (int(w) + 7) / 8
}

// Stride is the number of bytes per row.
func (r *Raster) Stride() int {
	return Stride(r.Width)
}

func (r *Raster) bit(x, y int) int {
	return y*r.Stride()*8 + x
}

// At reports whether pixel (x, y) is set.
func (r *Raster) At(x, y int) bool {
	return nibble.Bit(r.Pix, r.bit(x, y))
}

// Set sets or clears pixel (x, y).
func (r *Raster) Set(x, y int, v bool) {
	nibble.SetBit(r.Pix, r.bit(x, y), v)
}

// rowMask is the mask of in-bounds bits in the last byte of a row.
func (r *Raster) rowMask() byte {
	if rem := r.Width % 8; rem != 0 {
		return byte(1)<<rem - 1
	}
	return 0xFF
}

// Invert complements every in-bounds pixel; row padding stays clear.
func (r *Raster) Invert() {
	stride, mask := r.Stride(), r.rowMask()
	for y := 0; y < int(r.Height); y++ {
		row := r.Pix[y*stride : (y+1)*stride]
		for i := range row {
			row[i] = ^row[i]
		}
		row[stride-1] &= mask
	}
}

// Equal compares in-bounds pixels only.
func (r *Raster) Equal(o *Raster) bool {
	if r.Width != o.Width || r.Height != o.Height {
		return false
	}
	stride, mask := r.Stride(), r.rowMask()
	for y := 0; y < int(r.Height); y++ {
		a, b := r.Pix[y*stride:(y+1)*stride], o.Pix[y*stride:(y+1)*stride]
		for i := 0; i < stride-1; i++ {
			if a[i] != b[i] {
				return false
			}
		}
		if (a[stride-1]^b[stride-1])&mask != 0 {
			return false
		}
	}
	return true
}

// SetCount is the number of set in-bounds pixels.
func (r *Raster) SetCount() int {
	stride, mask := r.Stride(), r.rowMask()
	n := 0
	for y := 0; y < int(r.Height); y++ {
		row := r.Pix[y*stride : (y+1)*stride]
		for i, b := range row {
			if i == stride-1 {
				b &= mask
			}
			n += bits.OnesCount8(b)
		}
	}
	return n
}

// Clone returns a deep copy.
func (r *Raster) Clone() *Raster {
	return &Raster{Pix: append([]byte(nil), r.Pix...), Width: r.Width, Height: r.Height}
}

// Gray is an 8-bit grayscale image, one byte per pixel, row-major.
type Gray struct {
	Pix    []byte
	Width  uint16
	Height uint16
}

// NewGray allocates a black w x h image.
func NewGray(w, h uint16) *Gray {
	return &Gray{Pix: make([]byte, int(w)*int(h)), Width: w, Height: h}
}

// Threshold marks every pixel darker than level as set.
func Threshold(g *Gray, level byte) *Raster {
	r := New(g.Width, g.Height)
	w := int(g.Width)
	for y := 0; y < int(g.Height); y++ {
		for x := 0; x < w; x++ {
			if g.Pix[y*w+x] < level {
				r.Set(x, y, true)
			}
		}
	}
	return r
}

func checkSize(w, h int) (uint16, uint16, error) {
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrFormat, w, h)
	}
	if w > 0xFFFF || h > 0xFFFF {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrTooLarge, w, h)
	}
	return uint16(w), uint16(h), nil
}
