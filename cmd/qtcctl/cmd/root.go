package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpfielding/qtc.go/pkg/logging"
)

func NewRoot(ctx context.Context, gitsha string) *cobra.Command {
	var logFile io.WriteCloser
	cmd := &cobra.Command{
		Use:          "qtcctl",
		Short:        "a CLI to compress and inspect 1-bit and grayscale rasters",
		Long:         "qtcctl encodes rasters with the quadtree codec, decodes streams back to netpbm and compares codecs",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logLevel, _ := cmd.Flags().GetString("log-level")
			logPath, _ := cmd.Flags().GetString("log-file")
			logJSON, _ := cmd.Flags().GetBool("log-json")

			var out io.Writer = os.Stderr
			if logPath != "" {
				logFile = logging.RotatingFile(logPath)
				out = logFile
			}

			// Parse log level
			var level slog.Level
			err := level.UnmarshalText([]byte(strings.ToUpper(logLevel)))
			if err != nil {
				level = slog.LevelInfo
			}
			slog.SetDefault(logging.Logger(out, logJSON, level))
			if err != nil {
				slog.WarnContext(ctx, "Invalid log level, defaulting to INFO", "level", logLevel, "error", err)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logFile != nil {
				logFile.Close()
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			printCommandTree(cmd.OutOrStdout(), cmd, 0)
		},
	}
	cmd.AddCommand(
		NewVersionCmd(ctx, gitsha),
		NewEncodeCmd(ctx),
		NewDecodeCmd(ctx),
		NewAnalyzeCmd(ctx),
	)
	pf := cmd.PersistentFlags()
	pf.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	pf.String("log-file", "", "write logs to a rotated file instead of stderr")
	pf.Bool("log-json", false, "log as json")
	return cmd
}

func printCommandTree(w io.Writer, cmd *cobra.Command, indent int) {
	fmt.Fprintln(w, strings.Repeat("\t", indent), cmd.Use+":", cmd.Short)
	for _, subCmd := range cmd.Commands() {
		printCommandTree(w, subCmd, indent+1)
	}
}

func NewVersionCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "git sha for this build",
		Long:  "git sha for this build",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), gitsha)
		},
	}
	return cmd
}
