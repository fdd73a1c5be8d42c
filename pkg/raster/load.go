package raster

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"

	_ "image/gif"  // register gif
	_ "image/jpeg" // register jpeg
	_ "image/png"  // register png

	_ "github.com/lmittmann/ppm" // register ppm
	_ "github.com/xfmoulet/qoi"  // register qoi
	_ "golang.org/x/image/bmp"   // register bmp
	_ "golang.org/x/image/tiff"  // register tiff
)

// DecodeGray reads a PGM or any registered image format as 8-bit gray.
func DecodeGray(rd io.Reader) (*Gray, error) {
	br := bufio.NewReader(rd)
	if magic, _ := br.Peek(2); string(magic) == "P5" {
		return ReadPGM(br)
	}
	img, format, err := image.Decode(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	slog.Debug("raster: decoded image", slog.String("format", format), slog.Any("bounds", img.Bounds()))
	return FromImage(img)
}

// FromImage converts any image to 8-bit gray.
func FromImage(img image.Image) (*Gray, error) {
	b := img.Bounds()
	w, h, err := checkSize(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	g := NewGray(w, h)
	if src, ok := img.(*image.Gray); ok {
		for y := 0; y < int(h); y++ {
			copy(g.Pix[y*int(w):(y+1)*int(w)], src.Pix[y*src.Stride:])
		}
		return g, nil
	}
	for y := 0; y < int(h); y++ {
		for x := 0; x < int(w); x++ {
			g.Pix[y*int(w)+x] = color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
		}
	}
	return g, nil
}

// Decode reads a PBM directly, or thresholds any grayscale source at level.
func Decode(rd io.Reader, level byte) (*Raster, error) {
	br := bufio.NewReader(rd)
	if magic, _ := br.Peek(2); string(magic) == "P4" {
		return ReadPBM(br)
	}
	g, err := DecodeGray(br)
	if err != nil {
		return nil, err
	}
	return Threshold(g, level), nil
}

// Load opens path and decodes it as a 1-bit raster.
func Load(path string, level byte) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, level)
}

// LoadGray opens path and decodes it as 8-bit gray.
func LoadGray(path string) (*Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeGray(f)
}
