// Package morton implements Z-order codes for 16-bit coordinates.
// X occupies the even bits of a code and Y the odd bits, so the code of
// (x, y) orders 2x2 blocks the same way a quadtree orders its children.
package morton

// Code is an interleaved (x, y) pair.
type Code uint32

const (
	xMask Code = 0x55555555
	yMask Code = 0xAAAAAAAA
)

func spread(v uint16) Code {
	c := Code(v)
	c = (c | c<<8) & 0x00FF00FF
	c = (c | c<<4) & 0x0F0F0F0F
	c = (c | c<<2) & 0x33333333
	c = (c | c<<1) & 0x55555555
	return c
}

func compact(c Code) uint16 {
	c &= 0x55555555
	c = (c | c>>1) & 0x33333333
	c = (c | c>>2) & 0x0F0F0F0F
	c = (c | c>>4) & 0x00FF00FF
	c = (c | c>>8) & 0x0000FFFF
	return uint16(c)
}

// Encode interleaves x and y.
func Encode(x, y uint16) Code {
	return spread(x) | spread(y)<<1
}

// Decode splits c back into its coordinates.
func (c Code) Decode() (x, y uint16) {
	return compact(c), compact(c >> 1)
}

// IncX returns the code of (x+1, y).
// Filling the y bits with ones lets the carry ripple across them.
func (c Code) IncX() Code {
	return ((c|yMask)+1)&xMask | c&yMask
}

// IncY returns the code of (x, y+1).
func (c Code) IncY() Code {
	return ((c|xMask)+2)&yMask | c&xMask
}

// ResetX returns the code of (0, y).
func (c Code) ResetX() Code {
	return c &^ xMask
}

// ResetY returns the code of (x, 0).
func (c Code) ResetY() Code {
	return c &^ yMask
}
