package raster

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/spakin/netpbm"
)

// bw indexes white as 0 and black as 1, matching the packed bit values.
var bw = color.Palette{color.White, color.Black}

// ReadPBM reads a portable bitmap. Black pixels are set.
func ReadPBM(rd io.Reader) (*Raster, error) {
	img, err := netpbm.Decode(rd, &netpbm.DecodeOptions{Target: netpbm.PBM, Exact: true})
	if err != nil {
		return nil, fmt.Errorf("%w: pbm: %v", ErrFormat, err)
	}
	return fromBitmap(img)
}

// fromBitmap packs a black and white image into LSB-first rows.
func fromBitmap(img image.Image) (*Raster, error) {
	b := img.Bounds()
	w, h, err := checkSize(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	r := New(w, h)
	for y := 0; y < int(h); y++ {
		for x := 0; x < int(w); x++ {
			if color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y < 0x80 {
				r.Set(x, y, true)
			}
		}
	}
	return r, nil
}

// WritePBM writes r as a raw (P4) portable bitmap.
func WritePBM(w io.Writer, r *Raster) error {
	img := image.NewPaletted(image.Rect(0, 0, int(r.Width), int(r.Height)), bw)
	for y := 0; y < int(r.Height); y++ {
		for x := 0; x < int(r.Width); x++ {
			if r.At(x, y) {
				img.SetColorIndex(x, y, 1)
			}
		}
	}
	return netpbm.Encode(w, img, &netpbm.EncodeOptions{Format: netpbm.PBM, MaxValue: 1})
}

// ReadPGM reads a portable graymap with a maxval of at most 255.
func ReadPGM(rd io.Reader) (*Gray, error) {
	img, err := netpbm.Decode(rd, &netpbm.DecodeOptions{Target: netpbm.PGM, Exact: true})
	if err != nil {
		return nil, fmt.Errorf("%w: pgm: %v", ErrFormat, err)
	}
	if img.MaxValue() > 255 {
		return nil, fmt.Errorf("%w: pgm maxval %d", ErrFormat, img.MaxValue())
	}
	return FromImage(img)
}

// WritePGM writes g as a raw (P5) graymap with maxval 255.
func WritePGM(w io.Writer, g *Gray) error {
	img := &image.Gray{
		Pix:    g.Pix,
		Stride: int(g.Width),
		Rect:   image.Rect(0, 0, int(g.Width), int(g.Height)),
	}
	return netpbm.Encode(w, img, &netpbm.EncodeOptions{Format: netpbm.PGM, MaxValue: 255})
}
