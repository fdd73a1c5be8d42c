// Package qtc implements a lossless region-quadtree codec for 1-bit rasters.
//
// A raster of w x h pixels, packed LSB-first into rows of ceil(w/8) bytes,
// is mapped onto a complete quadtree whose leaves are 2x2 pixel blocks in
// Morton order. The tree is serialized as a nibble stream in level order,
// skipping empty subtrees and collapsing filled subtrees, fill runs and
// repeated sibling codes behind a 0000 escape. Streams start on a byte
// boundary and carry no length or dimensions, so several can be
// concatenated and walked with the consumed count Decode returns.
package qtc

import (
	"log/slog"
)

// Options selects the encoder features. Every combination produces a
// stream that Decode reads.
type Options struct {
	Patterns  bool // sibling patterns
	Runs      bool // fill runs spanning several levels
	Invert    bool // also try the complemented raster, keep the smaller
	MaxLevels int  // tree depth limit, DefaultMaxLevels when zero
}

// DefaultOptions enables every feature.
func DefaultOptions() *Options {
	return &Options{Patterns: true, Runs: true, Invert: true, MaxLevels: DefaultMaxLevels}
}

// FillOnly collapses only completely set subtrees.
func FillOnly() *Options {
	return &Options{MaxLevels: DefaultMaxLevels}
}

func (o *Options) maxLevels() int {
	if o.MaxLevels <= 0 {
		return DefaultMaxLevels
	}
	return o.MaxLevels
}

// Encode compresses a packed 1-bit raster. A nil opts uses DefaultOptions.
func Encode(pix []byte, w, h uint16, opts *Options) ([]byte, error) {
	out, _, err := encode(pix, w, h, opts)
	return out, err
}

// Analyze encodes like Encode and returns the stream statistics.
func Analyze(pix []byte, w, h uint16, opts *Options) (*Stats, error) {
	_, st, err := encode(pix, w, h, opts)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func encode(pix []byte, w, h uint16, opts *Options) ([]byte, Stats, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	out, st, err := encodePolarity(pix, w, h, false, opts)
	if err != nil {
		return nil, Stats{}, err
	}
	if opts.Invert {
		inv, ist, err := encodePolarity(pix, w, h, true, opts)
		if err != nil {
			return nil, Stats{}, err
		}
		if len(inv) < len(out) {
			out, st = inv, ist
		}
	}
	slog.Debug("qtc: encoded",
		slog.Int("width", int(w)),
		slog.Int("height", int(h)),
		slog.Int("levels", st.Levels),
		slog.Int("size", st.Size),
		slog.Bool("inverted", st.Inverted))
	return out, st, nil
}

func encodePolarity(pix []byte, w, h uint16, invert bool, opts *Options) ([]byte, Stats, error) {
	t, err := build(pix, w, h, invert, opts.maxLevels())
	if err != nil {
		return nil, Stats{}, err
	}
	out, st := Linearize(Compress(t, opts.Patterns, opts.Runs), invert)
	return out, st, nil
}
