package qtc

import (
	"errors"
	"fmt"
	"io"

	"github.com/jpfielding/qtc.go/pkg/bitio"
	"github.com/jpfielding/qtc.go/pkg/morton"
	"github.com/jpfielding/qtc.go/pkg/nibble"
)

type decoder struct {
	r     *bitio.Reader
	codes nibble.Array
}

// Decode reconstructs a w x h raster from a stream produced by Encode and
// reports how many bytes of data it consumed. The dimensions must match
// the ones used to encode; they are not stored in the stream.
func Decode(data []byte, w, h uint16) ([]byte, int, error) {
	r, err := Levels(w, h)
	if err != nil {
		return nil, 0, err
	}
	d := &decoder{r: bitio.NewReader(data), codes: nibble.New(NodeCount(r))}
	header, err := d.nibble()
	if err != nil {
		return nil, 0, err
	}
	if header&flagReserved != 0 {
		return nil, 0, fmt.Errorf("%w: reserved header bits 0x%x", ErrCorruptStream, header)
	}
	if header&flagEmpty == 0 {
		if err := d.tree(r); err != nil {
			return nil, 0, err
		}
	}
	t := &Tree{Codes: d.codes, Levels: r, Width: w, Height: h}
	return t.Raster(header&flagInverted != 0), d.r.Consumed(), nil
}

func (d *decoder) tree(r int) error {
	if err := d.entry(0, r-1); err != nil {
		return err
	}
	for lvl := 0; lvl < r-1; lvl++ {
		height := r - 2 - lvl
		for i := LevelStart(lvl); i < LevelStart(lvl+1); i++ {
			code := d.codes.Get(i)
			if code == 0 {
				continue
			}
			c0 := firstChild(i)
			for q := 0; q < 4; q++ {
				if code&(1<<q) != 0 && d.codes.Get(c0+q) == 0 {
					if err := d.entry(c0+q, height); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func (d *decoder) nibble() (byte, error) {
	v, err := d.r.ReadNibble()
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, fmt.Errorf("%w: truncated after %d bytes", ErrCorruptStream, d.r.Consumed())
	}
	return v, err
}

// entry reads the entry of pending node i at the given height.
func (d *decoder) entry(i, height int) error {
	code, err := d.nibble()
	if err != nil {
		return err
	}
	if code != 0 {
		d.codes.Set(i, code)
		return nil
	}
	tag, err := d.nibble()
	if err != nil {
		return err
	}
	switch {
	case tag == tagFill:
		d.fill(i, height, 0xF)
		return nil
	case tag == tagRun:
		return d.run(i, height)
	case tag > tagRun:
		return fmt.Errorf("%w: reserved tag 0x%x at node %d", ErrCorruptStream, tag, i)
	}

	if height == 0 {
		return fmt.Errorf("%w: pattern at leaf %d", ErrCorruptStream, i)
	}
	pat := Pattern{Tag: tag}
	if pat.X, err = d.nibble(); err != nil {
		return err
	}
	if pat.Values() == 2 {
		if pat.Y, err = d.nibble(); err != nil {
			return err
		}
	}
	if !pat.valid() {
		return fmt.Errorf("%w: inconsistent pattern 0x%x at node %d", ErrCorruptStream, tag, i)
	}
	children, parent := pat.Expand()
	d.codes.Set(i, parent)
	c0 := firstChild(i)
	for q, c := range children {
		d.codes.Set(c0+q, c)
	}
	return nil
}

func (d *decoder) run(i, height int) error {
	rn, err := d.nibble()
	if err != nil {
		return err
	}
	k := int(rn&0x7) + 1
	if k < 2 || k > height {
		return fmt.Errorf("%w: run of %d levels at node %d with height %d", ErrCorruptStream, k, i, height)
	}
	v := byte(0xF)
	if rn&runExplicit != 0 {
		if v, err = d.nibble(); err != nil {
			return err
		}
		if v == 0 {
			return fmt.Errorf("%w: empty run value at node %d", ErrCorruptStream, i)
		}
	}
	d.fill(i, k-1, 0xF)
	start, count := i, 1
	for lvl := 0; lvl < k; lvl++ {
		start, count = firstChild(start), count*4
	}
	d.codes.Fill(start, count, v)
	return nil
}

// fill sets node i and its descendants down to the given relative depth.
func (d *decoder) fill(i, depth int, v byte) {
	start, count := i, 1
	for lvl := 0; lvl <= depth; lvl++ {
		d.codes.Fill(start, count, v)
		start, count = firstChild(start), count*4
	}
}

// Raster packs the leaf level back into rows of Stride(w) bytes, LSB-first.
// With inverted set, in-bounds pixels are complemented.
func (t *Tree) Raster(inverted bool) []byte {
	w, h := int(t.Width), int(t.Height)
	stride := Stride(t.Width)
	out := make([]byte, stride*h)
	leafStart := t.LeafStart()

	row := morton.Code(0)
	for y := 0; y < h; y += 2 {
		m := row
		for x := 0; x < w; x += 2 {
			c := t.Codes.Get(leafStart + int(m))
			if inverted {
				c = ^c & 0xF
			}
			mask := byte(3)
			if x+1 >= w {
				mask = 1
			}
			shift := x & 7
			out[y*stride+x>>3] |= (c & mask) << shift
			if y+1 < h {
				out[(y+1)*stride+x>>3] |= (c >> 2 & mask) << shift
			}
			m = m.IncX()
		}
		row = row.IncY()
	}
	return out
}
