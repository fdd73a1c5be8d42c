// Package bitio reads and writes LSB-first bit sequences over byte slices.
// The first bit written lands in bit 0 of the first byte, so 4-bit fields
// fill a byte low nibble first.
package bitio

import (
	"io"
)

// Writer accumulates bits into a growable buffer.
type Writer struct {
	buf  []byte
	acc  uint64 // pending bits, oldest in bit 0
	bits int    // number of valid bits in acc (0-63)
	n    int    // total bits written
}

// NewWriter creates a writer with room for sizeHint bytes.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// WriteBits writes the low n bits of val (n <= 32)
func (w *Writer) WriteBits(val uint32, n int) {
	if n == 0 {
		return
	}
	w.acc |= uint64(val&uint32(uint64(1)<<n-1)) << w.bits
	w.bits += n
	w.n += n
	for w.bits >= 8 {
		w.buf = append(w.buf, byte(w.acc))
		w.acc >>= 8
		w.bits -= 8
	}
}

// WriteNibble writes the low 4 bits of v
func (w *Writer) WriteNibble(v byte) {
	w.WriteBits(uint32(v), 4)
}

// align pads with zero bits up to the next byte boundary
func (w *Writer) align() {
	if w.bits > 0 {
		w.WriteBits(0, 8-w.bits)
	}
}

// Len is the number of bits written so far.
func (w *Writer) Len() int {
	return w.n
}

// Bytes returns the written data with the final partial byte zero padded.
// The writer stays usable; later writes continue after the padded byte.
func (w *Writer) Bytes() []byte {
	w.align()
	return w.buf
}

// Reader consumes bits from a byte slice.
type Reader struct {
	data []byte
	pos  int // bit position
}

// NewReader creates a reader positioned at the first bit of data
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadBits reads n bits (n <= 32), the first read bit in bit 0 of the result
func (r *Reader) ReadBits(n int) (uint32, error) {
	if r.pos+n > len(r.data)*8 {
		return 0, io.ErrUnexpectedEOF
	}
	var v uint32
	for i := 0; i < n; {
		byteIdx, off := r.pos>>3, r.pos&7
		take := min(8-off, n-i)
		chunk := uint32(r.data[byteIdx]>>off) & (1<<take - 1)
		v |= chunk << i
		i += take
		r.pos += take
	}
	return v, nil
}

// ReadNibble reads a 4-bit field
func (r *Reader) ReadNibble() (byte, error) {
	v, err := r.ReadBits(4)
	return byte(v), err
}

// Consumed is the number of bytes touched, counting a partial final byte.
func (r *Reader) Consumed() int {
	return (r.pos + 7) / 8
}
