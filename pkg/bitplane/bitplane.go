// Package bitplane splits 8-bit rasters into 1-bit planes and back.
//
// Plane b holds bit b of every pixel, packed LSB-first into rows of
// ceil(w/8) bytes. Each plane below the top one is XORed with the plane
// above it, which turns Gray-code-like neighbours into sparse planes.
package bitplane

import (
	"fmt"

	"github.com/jpfielding/qtc.go/pkg/nibble"
)

// Planes is the number of planes in an 8-bit raster.
const Planes = 8

// Size is the byte length of one w x h plane.
func Size(w, h uint16) int {
	return (int(w) + 7) / 8 * int(h)
}

// Slice splits pix (w*h bytes, row-major) into XOR-chained planes.
func Slice(pix []byte, w, h uint16) ([Planes][]byte, error) {
	var planes [Planes][]byte
	if len(pix) < int(w)*int(h) {
		return planes, fmt.Errorf("bitplane: %d bytes for %dx%d", len(pix), w, h)
	}
	size, rowBits := Size(w, h), (int(w)+7)/8*8
	for b := range planes {
		planes[b] = make([]byte, size)
	}
	for y := 0; y < int(h); y++ {
		row := pix[y*int(w) : (y+1)*int(w)]
		for x, v := range row {
			if v == 0 {
				continue
			}
			i := y*rowBits + x
			for b := 0; b < Planes; b++ {
				if v&(1<<b) != 0 {
					nibble.SetBit(planes[b], i, true)
				}
			}
		}
	}
	for b := 0; b < Planes-1; b++ {
		xor(planes[b], planes[b+1])
	}
	return planes, nil
}

// Unslice is the inverse of Slice. The planes are left unmodified.
func Unslice(planes [Planes][]byte, w, h uint16) ([]byte, error) {
	size, rowBits := Size(w, h), (int(w)+7)/8*8
	var plain [Planes][]byte
	for b := range planes {
		if len(planes[b]) < size {
			return nil, fmt.Errorf("bitplane: plane %d has %d bytes, want %d", b, len(planes[b]), size)
		}
		plain[b] = append([]byte(nil), planes[b][:size]...)
	}
	for b := Planes - 2; b >= 0; b-- {
		xor(plain[b], plain[b+1])
	}

	pix := make([]byte, int(w)*int(h))
	for y := 0; y < int(h); y++ {
		for x := 0; x < int(w); x++ {
			i := y*rowBits + x
			var v byte
			for b := 0; b < Planes; b++ {
				if nibble.Bit(plain[b], i) {
					v |= 1 << b
				}
			}
			pix[y*int(w)+x] = v
		}
	}
	return pix, nil
}

func xor(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}
