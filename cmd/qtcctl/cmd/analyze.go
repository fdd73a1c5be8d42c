package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/hashicorp/go-multierror"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/jpfielding/qtc.go/pkg/compress/qtc"
	"github.com/jpfielding/qtc.go/pkg/compress/rle"
	"github.com/jpfielding/qtc.go/pkg/filter"
	"github.com/jpfielding/qtc.go/pkg/planar"
	"github.com/jpfielding/qtc.go/pkg/raster"
	"github.com/jpfielding/qtc.go/pkg/util"
)

// Report compares encoder variants and baselines for one 1-bit image.
type Report struct {
	File      string  `csv:"file"`
	Width     uint16  `csv:"width"`
	Height    uint16  `csv:"height"`
	Raw       int     `csv:"raw"`
	Fill      int     `csv:"fill"`
	Patterns  int     `csv:"patterns"`
	Runs      int     `csv:"runs"`
	Default   int     `csv:"default"`
	PackBits  int     `csv:"packbits"`
	Zstd      int     `csv:"zstd"`
	Ratio     float64 `csv:"ratio"`
	Levels    int     `csv:"levels"`
	Inverted  bool    `csv:"inverted"`
	Entries   int     `csv:"entries"`
	Nibbles   int     `csv:"nibbles"`
	RoundTrip bool    `csv:"round_trip"`
	ID        string  `csv:"id"`
}

// NewAnalyzeCmd creates the analyze cobra command
func NewAnalyzeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "compare encoder variants and baselines",
		Long:  "Encodes each image with every quadtree variant, PackBits and zstd, verifies the round trip and prints the sizes.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetInt("level")
			asCSV, _ := cmd.Flags().GetBool("csv")
			gray, _ := cmd.Flags().GetBool("gray")
			if level < 0 || level > 255 {
				return fmt.Errorf("level %d out of range 0-255", level)
			}
			if gray {
				return runAnalyzeGray(ctx, cmd.OutOrStdout(), args)
			}
			return runAnalyze(ctx, cmd.OutOrStdout(), args, byte(level), asCSV)
		},
	}
	pf := cmd.PersistentFlags()
	pf.Int("level", 128, "threshold for non-PBM input, darker pixels are set")
	pf.Bool("csv", false, "print csv instead of a table")
	pf.Bool("gray", false, "compare planar codecs on 8-bit gray instead")
	return cmd
}

// runAnalyze reports every file it can read and returns the failures together
func runAnalyze(ctx context.Context, w io.Writer, paths []string, level byte, asCSV bool) error {
	var (
		reports []*Report
		errs    error
	)
	for _, path := range paths {
		rep, err := analyzeFile(path, level)
		if err != nil {
			slog.ErrorContext(ctx, "analyze failed", slog.String("file", path), slog.Any("error", err))
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		reports = append(reports, rep)
	}
	if len(reports) > 0 {
		if !asCSV {
			printReports(w, reports)
		} else if err := gocsv.Marshal(reports, w); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs
}

func analyzeFile(path string, level byte) (*Report, error) {
	r, err := raster.Load(path, level)
	if err != nil {
		return nil, err
	}
	w, h := r.Width, r.Height
	rep := &Report{File: path, Width: w, Height: h, Raw: len(r.Pix)}

	variants := []struct {
		size *int
		opts *qtc.Options
	}{
		{&rep.Fill, qtc.FillOnly()},
		{&rep.Patterns, &qtc.Options{Patterns: true}},
		{&rep.Runs, &qtc.Options{Runs: true}},
	}
	for _, v := range variants {
		out, err := qtc.Encode(r.Pix, w, h, v.opts)
		if err != nil {
			return nil, err
		}
		*v.size = len(out)
	}

	out, err := qtc.Encode(r.Pix, w, h, nil)
	if err != nil {
		return nil, err
	}
	st, err := qtc.Analyze(r.Pix, w, h, nil)
	if err != nil {
		return nil, err
	}
	rep.Default = len(out)
	rep.Ratio = float64(rep.Raw) / float64(rep.Default)
	rep.Levels, rep.Inverted, rep.Nibbles = st.Levels, st.Inverted, st.Nibbles
	rep.Entries = st.Plain + st.Fills + st.Patterns + st.Runs
	rep.ID = util.StreamID(out)

	pix, consumed, err := qtc.Decode(out, w, h)
	if err != nil {
		return nil, fmt.Errorf("round trip: %w", err)
	}
	rep.RoundTrip = consumed == len(out) && r.Equal(&raster.Raster{Pix: pix, Width: w, Height: h})

	rep.PackBits = len(rle.Encode(r.Pix))
	z, err := planar.CodecZstd.Encode(r.Pix, w, h)
	if err != nil {
		return nil, err
	}
	rep.Zstd = len(z)
	return rep, nil
}

func printReports(w io.Writer, reports []*Report) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"file", "size", "raw", "fill", "patterns", "runs", "default", "packbits", "zstd", "ratio", "inverted", "round trip"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, r := range reports {
		table.Append([]string{
			r.File,
			fmt.Sprintf("%dx%d", r.Width, r.Height),
			strconv.Itoa(r.Raw),
			strconv.Itoa(r.Fill),
			strconv.Itoa(r.Patterns),
			strconv.Itoa(r.Runs),
			strconv.Itoa(r.Default),
			strconv.Itoa(r.PackBits),
			strconv.Itoa(r.Zstd),
			strconv.FormatFloat(r.Ratio, 'f', 2, 64),
			strconv.FormatBool(r.Inverted),
			strconv.FormatBool(r.RoundTrip),
		})
	}
	table.Render()
}

// runAnalyzeGray prints the planar compression ratio of every codec and filter
func runAnalyzeGray(ctx context.Context, w io.Writer, paths []string) error {
	var errs error
	codecs := []planar.Codec{planar.CodecQuadtree, planar.CodecPackBits, planar.CodecZstd}
	for _, path := range paths {
		g, err := raster.LoadGray(path)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		fmt.Fprintf(w, "%s %dx%d\n", path, g.Width, g.Height)
		for _, kind := range []filter.Kind{filter.None, filter.Up, filter.Left, filter.Paeth} {
			ratios, err := planar.CompareCompressionRatio(g.Pix, g.Width, g.Height, kind, codecs...)
			if err != nil {
				slog.ErrorContext(ctx, "compare failed", slog.String("file", path), slog.String("filter", kind.String()), slog.Any("error", err))
				errs = multierror.Append(errs, fmt.Errorf("%s %s: %w", path, kind, err))
				continue
			}
			names := make([]string, 0, len(ratios))
			for name := range ratios {
				names = append(names, name)
			}
			sort.Strings(names)
			fmt.Fprintf(w, "  %-6s", kind)
			for _, name := range names {
				fmt.Fprintf(w, " %s=%.2f", name, ratios[name])
			}
			fmt.Fprintln(w)
		}
	}
	return errs
}
