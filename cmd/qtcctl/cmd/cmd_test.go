package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/qtc.go/pkg/raster"
)

const (
	globe = "../../../pkg/compress/qtc/testdata/globe.pbm"
	ramp  = "../../../pkg/raster/testdata/ramp.pgm"
)

func TestAnalyzeFile(t *testing.T) {
	rep, err := analyzeFile(globe, 128)
	require.NoError(t, err)
	assert.Equal(t, uint16(128), rep.Width)
	assert.Equal(t, 2048, rep.Raw)
	assert.Equal(t, 930, rep.Fill)
	assert.Equal(t, 917, rep.Patterns)
	assert.Equal(t, 930, rep.Runs)
	assert.Equal(t, 917, rep.Default)
	assert.True(t, rep.RoundTrip)
	assert.Equal(t, 7, rep.Levels)
	assert.InDelta(t, 2048.0/917.0, rep.Ratio, 1e-9)
	assert.Positive(t, rep.PackBits)
	assert.Positive(t, rep.Zstd)
	assert.Len(t, rep.ID, 36)
}

func TestRunAnalyze(t *testing.T) {
	ctx := context.Background()
	t.Run("CSV", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runAnalyze(ctx, &buf, []string{globe}, 128, true))
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "file,width,height,raw,fill"))
		assert.Contains(t, lines[1], "globe.pbm,128,128,2048,930,917,930,917")
	})
	t.Run("Table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runAnalyze(ctx, &buf, []string{globe}, 128, false))
		out := buf.String()
		assert.Contains(t, out, "ROUND TRIP")
		assert.Contains(t, out, globe)
		assert.Contains(t, out, " 917 |")
		assert.Contains(t, out, " 2.23 |")
		assert.Contains(t, out, "128x128")
	})
	t.Run("PartialFailure", func(t *testing.T) {
		var buf bytes.Buffer
		missing := filepath.Join(t.TempDir(), "missing.pbm")
		err := runAnalyze(ctx, &buf, []string{missing, globe}, 128, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing.pbm")
		assert.Contains(t, buf.String(), "globe.pbm")
	})
	t.Run("Gray", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runAnalyzeGray(ctx, &buf, []string{ramp}))
		out := buf.String()
		assert.Contains(t, out, "5x4")
		assert.Contains(t, out, "paeth")
		assert.Contains(t, out, "zstd=")
	})
}

func TestEncodeDecode(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("Bitmap", func(t *testing.T) {
		stream, pbm := filepath.Join(dir, "globe.qtc"), filepath.Join(dir, "globe.pbm")
		require.NoError(t, runEncode(ctx, encodeConfig{
			In: globe, Out: stream, Level: 128, Patterns: true, Runs: true, Invert: true,
		}))
		fi, err := os.Stat(stream)
		require.NoError(t, err)
		assert.Equal(t, int64(917), fi.Size())

		require.NoError(t, runDecode(ctx, decodeConfig{In: stream, Out: pbm, Width: 128, Height: 128}))
		want, err := raster.Load(globe, 128)
		require.NoError(t, err)
		got, err := raster.Load(pbm, 128)
		require.NoError(t, err)
		assert.True(t, got.Equal(want))
	})

	for _, codec := range []string{"qtc", "quadtree", "packbits", "zstd"} {
		t.Run("Gray_"+codec, func(t *testing.T) {
			stream, pgm := filepath.Join(dir, codec+".pln"), filepath.Join(dir, codec+".pgm")
			require.NoError(t, runEncode(ctx, encodeConfig{
				In: ramp, Out: stream, Gray: true, Codec: codec, Filter: "up", Patterns: true,
			}))
			require.NoError(t, runDecode(ctx, decodeConfig{In: stream, Out: pgm, Width: 5, Height: 4, Gray: true}))
			want, err := raster.LoadGray(ramp)
			require.NoError(t, err)
			got, err := raster.LoadGray(pgm)
			require.NoError(t, err)
			assert.Equal(t, want.Pix, got.Pix)
		})
	}

	t.Run("Errors", func(t *testing.T) {
		assert.Error(t, runEncode(ctx, encodeConfig{In: globe, Out: filepath.Join(dir, "x"), Level: 300}))
		assert.Error(t, runEncode(ctx, encodeConfig{In: ramp, Out: filepath.Join(dir, "x"), Gray: true, Codec: "lzw", Filter: "none"}))
		assert.Error(t, runEncode(ctx, encodeConfig{In: ramp, Out: filepath.Join(dir, "x"), Gray: true, Codec: "zstd", Filter: "sub"}))
		assert.Error(t, runDecode(ctx, decodeConfig{In: globe, Out: filepath.Join(dir, "y")}))
	})
}

func TestRoot_Version(t *testing.T) {
	root := NewRoot(context.Background(), "abc123")
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "abc123\n", buf.String())
}
