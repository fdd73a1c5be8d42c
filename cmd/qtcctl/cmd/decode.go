package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jpfielding/qtc.go/pkg/compress/qtc"
	"github.com/jpfielding/qtc.go/pkg/planar"
	"github.com/jpfielding/qtc.go/pkg/raster"
)

type decodeConfig struct {
	In     string
	Out    string
	Width  uint16
	Height uint16
	Gray   bool
}

// NewDecodeCmd expands a bare stream back to netpbm
func NewDecodeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "decode a stream to PBM, or PGM with --gray",
		Long:  "Streams carry no dimensions, so --width and --height must match the encoded image.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg decodeConfig
			cfg.In, _ = cmd.Flags().GetString("in")
			cfg.Out, _ = cmd.Flags().GetString("out")
			cfg.Width, _ = cmd.Flags().GetUint16("width")
			cfg.Height, _ = cmd.Flags().GetUint16("height")
			cfg.Gray, _ = cmd.Flags().GetBool("gray")
			if cfg.In == "" && len(args) > 0 {
				cfg.In = args[0]
			}
			return runDecode(ctx, cfg)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("in", "i", "-", "stream path, - for stdin")
	pf.StringP("out", "o", "-", "output path, - for stdout")
	pf.Uint16P("width", "W", 0, "image width in pixels")
	pf.Uint16P("height", "H", 0, "image height in pixels")
	pf.Bool("gray", false, "the stream holds 8-bit bit planes")
	return cmd
}

func runDecode(ctx context.Context, cfg decodeConfig) error {
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("%w: %dx%d", qtc.ErrInvalidDimensions, cfg.Width, cfg.Height)
	}
	in, err := openInput(cfg.In)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	data, err := io.ReadAll(in)
	in.Close()
	if err != nil {
		return err
	}

	var (
		pix      []byte
		consumed int
		write    func(io.Writer) error
	)
	if cfg.Gray {
		pix, consumed, err = planar.Decode(data, cfg.Width, cfg.Height)
		write = func(w io.Writer) error {
			return raster.WritePGM(w, &raster.Gray{Pix: pix, Width: cfg.Width, Height: cfg.Height})
		}
	} else {
		pix, consumed, err = qtc.Decode(data, cfg.Width, cfg.Height)
		write = func(w io.Writer) error {
			return raster.WritePBM(w, &raster.Raster{Pix: pix, Width: cfg.Width, Height: cfg.Height})
		}
	}
	if err != nil {
		return err
	}
	if consumed < len(data) {
		slog.WarnContext(ctx, "trailing bytes after stream", slog.Int("consumed", consumed), slog.Int("size", len(data)))
	}

	out, err := openOutput(cfg.Out)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := write(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
