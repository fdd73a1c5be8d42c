package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jpfielding/qtc.go/pkg/compress/qtc"
	"github.com/jpfielding/qtc.go/pkg/filter"
	"github.com/jpfielding/qtc.go/pkg/planar"
	"github.com/jpfielding/qtc.go/pkg/raster"
	"github.com/jpfielding/qtc.go/pkg/util"
)

type encodeConfig struct {
	In       string
	Out      string
	Level    int
	Gray     bool
	Codec    string
	Filter   string
	Patterns bool
	Runs     bool
	Invert   bool
}

func (c encodeConfig) qtcOptions() *qtc.Options {
	opts := qtc.DefaultOptions()
	opts.Patterns, opts.Runs, opts.Invert = c.Patterns, c.Runs, c.Invert
	return opts
}

// NewEncodeCmd compresses a raster file to a bare stream
func NewEncodeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "compress an image to a quadtree or planar stream",
		Long:  "Reads a PBM, PGM or any supported image. 1-bit output thresholds the image at --level; --gray keeps 8 bits and encodes eight planes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg encodeConfig
			cfg.In, _ = cmd.Flags().GetString("in")
			cfg.Out, _ = cmd.Flags().GetString("out")
			cfg.Level, _ = cmd.Flags().GetInt("level")
			cfg.Gray, _ = cmd.Flags().GetBool("gray")
			cfg.Codec, _ = cmd.Flags().GetString("codec")
			cfg.Filter, _ = cmd.Flags().GetString("filter")
			noPatterns, _ := cmd.Flags().GetBool("no-patterns")
			noRuns, _ := cmd.Flags().GetBool("no-runs")
			noInvert, _ := cmd.Flags().GetBool("no-invert")
			cfg.Patterns, cfg.Runs, cfg.Invert = !noPatterns, !noRuns, !noInvert
			if cfg.In == "" && len(args) > 0 {
				cfg.In = args[0]
			}
			return runEncode(ctx, cfg)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("in", "i", "-", "input image path, - for stdin")
	pf.StringP("out", "o", "-", "output stream path, - for stdout")
	pf.Int("level", 128, "threshold for non-PBM input, darker pixels are set")
	pf.Bool("gray", false, "encode 8-bit gray as bit planes")
	pf.String("codec", "qtc", "plane codec for --gray (qtc|packbits|zstd)")
	pf.String("filter", "paeth", "predictor for --gray (none|up|left|paeth)")
	pf.Bool("no-patterns", false, "disable sibling patterns")
	pf.Bool("no-runs", false, "disable fill runs")
	pf.Bool("no-invert", false, "do not try the inverted raster")
	return cmd
}

func runEncode(ctx context.Context, cfg encodeConfig) error {
	if cfg.Level < 0 || cfg.Level > 255 {
		return fmt.Errorf("level %d out of range 0-255", cfg.Level)
	}
	in, err := openInput(cfg.In)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer in.Close()

	var (
		data []byte
		w, h uint16
		raw  int
	)
	if cfg.Gray {
		g, err := raster.DecodeGray(in)
		if err != nil {
			return err
		}
		opts, err := cfg.planarOptions()
		if err != nil {
			return err
		}
		w, h, raw = g.Width, g.Height, len(g.Pix)
		if data, err = planar.Encode(g.Pix, w, h, opts); err != nil {
			return err
		}
	} else {
		r, err := raster.Decode(in, byte(cfg.Level))
		if err != nil {
			return err
		}
		w, h, raw = r.Width, r.Height, len(r.Pix)
		if data, err = qtc.Encode(r.Pix, w, h, cfg.qtcOptions()); err != nil {
			return err
		}
	}

	out, err := openOutput(cfg.Out)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	slog.InfoContext(ctx, "encoded",
		slog.String("in", cfg.In),
		slog.Int("width", int(w)),
		slog.Int("height", int(h)),
		slog.Int("raw", raw),
		slog.Int("size", len(data)),
		slog.String("id", util.StreamID(data)))
	return out.Close()
}

func (c encodeConfig) planarOptions() (*planar.Options, error) {
	kind, err := filter.ParseKind(c.Filter)
	if err != nil {
		return nil, err
	}
	codec := planar.CodecByName(c.Codec)
	if codec == nil {
		return nil, fmt.Errorf("%w: %q", planar.ErrUnknownCodec, c.Codec)
	}
	if codec.ID() == planar.CodecQuadtree.ID() {
		codec = planar.QuadtreeCodec(c.qtcOptions())
	}
	return &planar.Options{Filter: kind, Codec: codec}, nil
}
