package qtc

import (
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/qtc.go/pkg/raster"
)

var variants = []struct {
	name string
	opts *Options
}{
	{"FillOnly", FillOnly()},
	{"Patterns", &Options{Patterns: true}},
	{"Runs", &Options{Runs: true}},
	{"PatternsRuns", &Options{Patterns: true, Runs: true}},
	{"Default", DefaultOptions()},
}

func roundTrip(t *testing.T, pix []byte, w, h uint16, opts *Options) []byte {
	t.Helper()
	enc, err := Encode(pix, w, h, opts)
	require.NoError(t, err)
	dec, consumed, err := Decode(enc, w, h)
	require.NoError(t, err)
	require.Equal(t, len(enc), consumed, "consumed")
	require.Equal(t, cleared(pix, w, h), dec, "%dx%d", w, h)
	return enc
}

// cleared drops row padding bits, which never survive a round trip.
func cleared(pix []byte, w, h uint16) []byte {
	stride := Stride(w)
	out := append([]byte(nil), pix[:stride*int(h)]...)
	if rem := w % 8; rem != 0 {
		for y := 0; y < int(h); y++ {
			out[(y+1)*stride-1] &= 1<<rem - 1
		}
	}
	return out
}

func filled(w, h uint16, v byte) []byte {
	pix := make([]byte, Stride(w)*int(h))
	for i := range pix {
		pix[i] = v
	}
	return pix
}

func checkerboard(w, h uint16) []byte {
	stride := Stride(w)
	pix := make([]byte, stride*int(h))
	for y := 0; y < int(h); y++ {
		v := byte(0xAA)
		if y%2 == 1 {
			v = 0x55
		}
		for i := 0; i < stride; i++ {
			pix[y*stride+i] = v
		}
	}
	return pix
}

func TestEncode_Scenarios(t *testing.T) {
	t.Run("FullBlock", func(t *testing.T) {
		enc := roundTrip(t, []byte{0x03, 0x03}, 2, 2, nil)
		assert.Equal(t, []byte{0xF0}, enc, "a single leaf, ties keep the plain polarity")
	})
	t.Run("SinglePixel", func(t *testing.T) {
		pix := make([]byte, 4)
		pix[0] = 0x01
		enc := roundTrip(t, pix, 4, 4, nil)
		assert.Equal(t, []byte{0x10, 0x01}, enc, "header, root 0x1, leaf 0x1")
	})
	t.Run("Fill32", func(t *testing.T) {
		pix := filled(32, 32, 0xFF)
		assert.Equal(t, []byte{0x03}, roundTrip(t, pix, 32, 32, nil), "inverted and empty")
		assert.Equal(t, []byte{0x00, 0x00}, roundTrip(t, pix, 32, 32, FillOnly()), "header, escape, fill")
	})
	t.Run("Checkerboard", func(t *testing.T) {
		pix := checkerboard(16, 16)
		fillOnly := roundTrip(t, pix, 16, 16, FillOnly())
		assert.GreaterOrEqual(t, len(fillOnly), len(pix), "nothing uniform to collapse")
		assert.Len(t, fillOnly, 43)

		patterns := roundTrip(t, pix, 16, 16, &Options{Patterns: true})
		assert.Len(t, patterns, 26)

		// a three level run ending in leaves of 0x6
		assert.Equal(t, []byte{0x00, 0xAD, 0x06}, roundTrip(t, pix, 16, 16, nil))
	})
}

func TestEncode_UniformExtremes(t *testing.T) {
	dims := [][2]uint16{{1, 1}, {2, 2}, {3, 5}, {64, 64}, {320, 144}, {1000, 3}}
	for _, d := range dims {
		w, h := d[0], d[1]
		empty := roundTrip(t, filled(w, h, 0x00), w, h, nil)
		assert.Equal(t, []byte{0x02}, empty, "%dx%d empty", w, h)
		full := roundTrip(t, filled(w, h, 0xFF), w, h, nil)
		assert.Len(t, full, 1, "%dx%d full", w, h)
	}
}

func TestEncode_DeepRuns(t *testing.T) {
	// 1024 squared puts a nine level run at the root, one more than a
	// run entry holds
	pix := checkerboard(1024, 1024)
	enc := roundTrip(t, pix, 1024, 1024, nil)
	assert.Len(t, enc, 9)

	st, err := Analyze(pix, 1024, 1024, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Plain)
	assert.Equal(t, 4, st.Runs)
}

func TestEncode_Random(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	gens := []struct {
		name string
		gen  func() byte
	}{
		{"Noise", func() byte { return byte(rng.Uint32()) }},
		{"Sparse", func() byte { return []byte{0, 0, 0, 0, 0xFF, byte(rng.Uint32())}[rng.IntN(6)] }},
		{"Dense", func() byte { return []byte{0xFF, 0xFF, 0xFF, 0xFE}[rng.IntN(4)] }},
		{"Dither", func() byte { return []byte{0xAA, 0x55, 0xAA, 0x55, 0x00}[rng.IntN(5)] }},
	}
	for _, g := range gens {
		t.Run(g.name, func(t *testing.T) {
			for trial := 0; trial < 40; trial++ {
				w, h := uint16(1+rng.IntN(90)), uint16(1+rng.IntN(90))
				pix := make([]byte, Stride(w)*int(h))
				for i := range pix {
					pix[i] = g.gen()
				}
				for _, v := range variants {
					roundTrip(t, pix, w, h, v.opts)
				}
			}
		})
	}
}

func TestEncode_Fixtures(t *testing.T) {
	files, err := filepath.Glob("testdata/*.pbm")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			r, err := raster.Load(file, 128)
			require.NoError(t, err)
			sizes := map[string]int{}
			for _, v := range variants {
				sizes[v.name] = len(roundTrip(t, r.Pix, r.Width, r.Height, v.opts))
			}
			t.Logf("%s %dx%d raw %d: %v", file, r.Width, r.Height, len(r.Pix), sizes)
			assert.Less(t, sizes["FillOnly"], len(r.Pix))
			assert.LessOrEqual(t, sizes["Patterns"], sizes["FillOnly"])
			assert.LessOrEqual(t, sizes["Default"], sizes["PatternsRuns"])
		})
	}
}

func TestEncode_NonPowerOfTwo(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	pix := make([]byte, Stride(320)*144)
	for i := range pix {
		pix[i] = byte(rng.Uint32())
	}
	enc, err := Encode(pix, 320, 144, nil)
	require.NoError(t, err)
	dec, _, err := Decode(enc, 320, 144)
	require.NoError(t, err)
	assert.Len(t, dec, 40*144)
	assert.Equal(t, pix, dec)

	// odd width: padding bits in the input are dropped
	odd := filled(13, 7, 0xFF)
	dec, _, err = Decode(roundTrip(t, odd, 13, 7, FillOnly()), 13, 7)
	require.NoError(t, err)
	for y := 0; y < 7; y++ {
		assert.Equal(t, []byte{0xFF, 0x1F}, dec[y*2:y*2+2])
	}
}

func TestEncode_Deterministic(t *testing.T) {
	pix := checkerboard(40, 40)
	pix[17] = 0
	a, err := Encode(pix, 40, 40, nil)
	require.NoError(t, err)
	b, err := Encode(pix, 40, 40, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncode_InversionSymmetry(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for trial := 0; trial < 20; trial++ {
		// large enough that the two polarities never tie
		w, h := uint16(20+rng.IntN(41)), uint16(20+rng.IntN(41))
		r := raster.New(w, h)
		for y := 0; y < int(h); y++ {
			for x := 0; x < int(w); x++ {
				r.Set(x, y, rng.IntN(10) < 2)
			}
		}
		inv := r.Clone()
		inv.Invert()

		a := roundTrip(t, r.Pix, w, h, nil)
		b := roundTrip(t, inv.Pix, w, h, nil)
		assert.Equal(t, len(a), len(b), "%dx%d", w, h)
		assert.Zero(t, a[0]&flagInverted, "sparse side encodes as is")
		assert.NotZero(t, b[0]&flagInverted, "dense side encodes inverted")
	}
}

func TestDecode_Concatenated(t *testing.T) {
	a := checkerboard(24, 9)
	b := filled(24, 9, 0x0F)
	ea, err := Encode(a, 24, 9, nil)
	require.NoError(t, err)
	eb, err := Encode(b, 24, 9, nil)
	require.NoError(t, err)

	stream := append(append([]byte{}, ea...), eb...)
	da, n, err := Decode(stream, 24, 9)
	require.NoError(t, err)
	assert.Equal(t, a, da)
	require.Equal(t, len(ea), n)

	db, m, err := Decode(stream[n:], 24, 9)
	require.NoError(t, err)
	assert.Equal(t, b, db)
	assert.Equal(t, len(eb), m)
}

func TestAnalyze(t *testing.T) {
	st, err := Analyze(checkerboard(16, 16), 16, 16, nil)
	require.NoError(t, err)
	assert.Equal(t, Stats{Levels: 4, Nodes: 85, Runs: 1, Nibbles: 5, Size: 3}, *st)

	_, err = Analyze(nil, 0, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = Encode(make([]byte, 512), 64, 64, &Options{MaxLevels: 4})
	assert.ErrorIs(t, err, ErrAllocation)
}
