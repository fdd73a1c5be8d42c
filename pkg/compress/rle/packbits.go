// Package rle implements PackBits run-length coding, the byte-oriented
// baseline the quadtree codec is measured against.
package rle

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrTruncated is returned when a stream ends inside a packet.
var ErrTruncated = errors.New("rle: compressed data truncated")

const maxPacket = 128

// Encode compresses data as PackBits packets: a header n in 0..127 is
// followed by n+1 literal bytes, a header in -127..-1 by one byte repeated
// 1-n times.
func Encode(data []byte) []byte {
	var buf bytes.Buffer
	for i := 0; i < len(data); {
		run := 1
		for i+run < len(data) && run < maxPacket && data[i+run] == data[i] {
			run++
		}
		if run > 1 {
			buf.WriteByte(byte(int8(1 - run)))
			buf.WriteByte(data[i])
			i += run
			continue
		}

		// literal until a run of three starts or the packet is full
		lit := 1
		for i+lit < len(data) && lit < maxPacket {
			if i+lit+2 < len(data) && data[i+lit] == data[i+lit+1] && data[i+lit] == data[i+lit+2] {
				break
			}
			lit++
		}
		buf.WriteByte(byte(lit - 1))
		buf.Write(data[i : i+lit])
		i += lit
	}
	return buf.Bytes()
}

// Decode expands packets until n bytes are produced and returns them with
// the number of input bytes consumed. A header of -128 is skipped.
func Decode(data []byte, n int) ([]byte, int, error) {
	out := make([]byte, 0, n)
	i := 0
	for len(out) < n {
		if i >= len(data) {
			return nil, 0, fmt.Errorf("%w: %d of %d bytes decoded", ErrTruncated, len(out), n)
		}
		hdr := int8(data[i])
		i++
		switch {
		case hdr == -128:
		case hdr >= 0:
			count := int(hdr) + 1
			if i+count > len(data) {
				return nil, 0, fmt.Errorf("%w: literal run (i=%d, count=%d, len=%d)", ErrTruncated, i, count, len(data))
			}
			out = append(out, data[i:i+count]...)
			i += count
		default:
			if i >= len(data) {
				return nil, 0, fmt.Errorf("%w: replicate run", ErrTruncated)
			}
			v := data[i]
			i++
			for k := 1 - int(hdr); k > 0; k-- {
				out = append(out, v)
			}
		}
	}
	if len(out) > n {
		return nil, 0, fmt.Errorf("rle: packet overruns %d bytes by %d", n, len(out)-n)
	}
	return out, i, nil
}
