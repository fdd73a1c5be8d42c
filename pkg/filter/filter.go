// Package filter implements reversible byte predictors for 8-bit rasters.
// Each filter stores the difference between a pixel and its prediction,
// modulo 256; pixels outside the raster predict as zero.
package filter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknown is returned for an unrecognized filter name or kind.
var ErrUnknown = errors.New("filter: unknown kind")

// Kind selects a predictor.
type Kind byte

const (
	None Kind = iota
	Up
	Left
	Paeth
)

var names = [...]string{"none", "up", "left", "paeth"}

func (k Kind) String() string {
	if int(k) < len(names) {
		return names[k]
	}
	return fmt.Sprintf("Kind(%d)", byte(k))
}

// ParseKind maps a name such as "paeth" to its Kind.
func ParseKind(s string) (Kind, error) {
	for i, n := range names {
		if strings.EqualFold(s, n) {
			return Kind(i), nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknown, s)
}

// Apply returns the residuals of pix (w*h bytes, row-major).
func Apply(k Kind, pix []byte, w, h uint16) ([]byte, error) {
	if err := check(k, pix, w, h); err != nil {
		return nil, err
	}
	stride := int(w)
	out := make([]byte, stride*int(h))
	for y := 0; y < int(h); y++ {
		for x := 0; x < stride; x++ {
			i := y*stride + x
			out[i] = pix[i] - predict(k, pix, stride, x, y)
		}
	}
	return out, nil
}

// Remove undoes Apply.
func Remove(k Kind, res []byte, w, h uint16) ([]byte, error) {
	if err := check(k, res, w, h); err != nil {
		return nil, err
	}
	stride := int(w)
	out := make([]byte, stride*int(h))
	for y := 0; y < int(h); y++ {
		for x := 0; x < stride; x++ {
			i := y*stride + x
			out[i] = res[i] + predict(k, out, stride, x, y)
		}
	}
	return out, nil
}

func check(k Kind, pix []byte, w, h uint16) error {
	if k > Paeth {
		return fmt.Errorf("%w: %d", ErrUnknown, byte(k))
	}
	if len(pix) < int(w)*int(h) {
		return fmt.Errorf("filter: %d bytes for %dx%d", len(pix), w, h)
	}
	return nil
}

// predict reads only pixels before (x, y), so it works on partially
// reconstructed output.
func predict(k Kind, pix []byte, stride, x, y int) byte {
	var left, up, upLeft byte
	i := y*stride + x
	if x > 0 {
		left = pix[i-1]
	}
	if y > 0 {
		up = pix[i-stride]
		if x > 0 {
			upLeft = pix[i-stride-1]
		}
	}
	switch k {
	case Up:
		return up
	case Left:
		return left
	case Paeth:
		return paeth(left, up, upLeft)
	}
	return 0
}

// paeth picks the neighbour closest to left+up-upLeft, preferring left,
// then up.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	}
	return c
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
