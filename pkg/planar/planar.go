// Package planar compresses 8-bit grayscale rasters as eight 1-bit planes.
//
// A stream is one header byte (filter kind in the low nibble, codec id in
// the high nibble) followed by the plane streams for bits 0 through 7,
// back to back. Pixels are delta filtered and the planes XOR-chained before
// each plane goes through the codec.
package planar

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jpfielding/qtc.go/pkg/bitplane"
	"github.com/jpfielding/qtc.go/pkg/filter"
)

var (
	// ErrCorrupt is returned for a malformed planar stream.
	ErrCorrupt = errors.New("planar: corrupt stream")
	// ErrUnknownCodec is returned for a codec name or id with no implementation.
	ErrUnknownCodec = errors.New("planar: unknown codec")
)

// Options selects the predictor and the plane codec.
type Options struct {
	Filter filter.Kind
	Codec  Codec
}

// DefaultOptions uses the Paeth predictor and the quadtree codec.
func DefaultOptions() *Options {
	return &Options{Filter: filter.Paeth, Codec: CodecQuadtree}
}

// Encode compresses pix (w*h bytes, row-major). A nil opts uses
// DefaultOptions.
func Encode(pix []byte, w, h uint16, opts *Options) ([]byte, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	codec := opts.Codec
	if codec == nil {
		codec = CodecQuadtree
	}
	filtered, err := filter.Apply(opts.Filter, pix, w, h)
	if err != nil {
		return nil, err
	}
	planes, err := bitplane.Slice(filtered, w, h)
	if err != nil {
		return nil, err
	}
	out := []byte{byte(opts.Filter) | codec.ID()<<4}
	for b, plane := range planes {
		enc, err := codec.Encode(plane, w, h)
		if err != nil {
			return nil, fmt.Errorf("plane %d: %w", b, err)
		}
		slog.Debug("planar: encoded plane", slog.Int("plane", b), slog.Int("size", len(enc)))
		out = append(out, enc...)
	}
	return out, nil
}

// Decode reconstructs w x h gray pixels and reports the bytes consumed.
func Decode(data []byte, w, h uint16) ([]byte, int, error) {
	if len(data) == 0 {
		return nil, 0, fmt.Errorf("%w: missing header", ErrCorrupt)
	}
	kind := filter.Kind(data[0] & 0xF)
	codec, ok := codecsByID[data[0]>>4]
	if !ok {
		return nil, 0, fmt.Errorf("%w: id %d", ErrUnknownCodec, data[0]>>4)
	}
	pos := 1
	var planes [bitplane.Planes][]byte
	for b := range planes {
		plane, n, err := codec.Decode(data[pos:], w, h)
		if err != nil {
			return nil, 0, fmt.Errorf("plane %d: %w", b, err)
		}
		planes[b] = plane
		pos += n
	}
	filtered, err := bitplane.Unslice(planes, w, h)
	if err != nil {
		return nil, 0, err
	}
	pix, err := filter.Remove(kind, filtered, w, h)
	if err != nil {
		return nil, 0, err
	}
	return pix, pos, nil
}

// CompareCompressionRatio encodes pix with each codec and returns the
// ratio of raw to compressed size per codec name. Higher is better.
func CompareCompressionRatio(pix []byte, w, h uint16, kind filter.Kind, codecs ...Codec) (map[string]float64, error) {
	if len(pix) == 0 {
		return nil, fmt.Errorf("data is empty")
	}
	ratios := make(map[string]float64, len(codecs))
	for _, c := range codecs {
		enc, err := Encode(pix, w, h, &Options{Filter: kind, Codec: c})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name(), err)
		}
		ratios[c.Name()] = float64(int(w)*int(h)) / float64(len(enc))
	}
	return ratios, nil
}
