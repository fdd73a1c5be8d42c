// Package nibble provides packed 4-bit arrays and bit helpers over []byte.
// Nibble i lives in byte i/2, the low nibble holding the even index.
package nibble

import (
	bitmap "github.com/boljen/go-bitmap"
)

// Array is a packed sequence of 4-bit values.
type Array []byte

// New allocates room for n nibbles, all zero.
func New(n int) Array {
	return make(Array, (n+1)/2)
}

// Len is the nibble capacity.
func (a Array) Len() int {
	return len(a) * 2
}

// Get returns nibble i.
func (a Array) Get(i int) byte {
	return (a[i>>1] >> ((i & 1) << 2)) & 0xF
}

// Set stores the low 4 bits of v at nibble i.
func (a Array) Set(i int, v byte) {
	shift := (i & 1) << 2
	a[i>>1] = a[i>>1]&^(0xF<<shift) | (v&0xF)<<shift
}

// Fill stores v in nibbles [start, start+n).
func (a Array) Fill(start, n int, v byte) {
	v &= 0xF
	i, end := start, start+n
	for ; i < end && i&1 != 0; i++ {
		a.Set(i, v)
	}
	b := v | v<<4
	for ; i+1 < end; i += 2 {
		a[i>>1] = b
	}
	for ; i < end; i++ {
		a.Set(i, v)
	}
}

// Bit reports bit i of buf, LSB-first within each byte.
func Bit(buf []byte, i int) bool {
	return bitmap.Get(buf, i)
}

// SetBit sets or clears bit i of buf.
func SetBit(buf []byte, i int, v bool) {
	bitmap.Set(buf, i, v)
}
