package cmd

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/hupe1980/logfilter"
	"github.com/hupe1980/logfilter/internal/config"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// filterFlags holds the command line flags of the root command
type filterFlags struct {
	configPath    string
	pipelined     bool
	count         bool
	maxLineLength int
	ioRate        int64
	logLevel      string
	color         string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to a YAML configuration file")
	cmd.Flags().BoolVar(&f.pipelined, "pipelined", false, "Read and match on separate goroutines")
	cmd.Flags().BoolVarP(&f.count, "count", "c", false, "Print only the number of matching lines")
	cmd.Flags().IntVar(&f.maxLineLength, "max-line-length", 0, "Fail on lines longer than this many bytes (0 = unlimited)")
	cmd.Flags().Int64Var(&f.ioRate, "io-rate", 0, "Throttle reads to this many bytes per second (0 = unlimited)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.Flags().StringVar(&f.color, "color", "", "Colored output: auto, always, never")
}

// loadConfig reads the configuration file and applies explicitly set flags
func (f *filterFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return nil, err
	}

	var (
		pipelined     *bool
		maxLineLength *int
		ioRate        *int64
		logLevel      *string
		colorMode     *string
	)
	if cmd.Flags().Changed("pipelined") {
		pipelined = &f.pipelined
	}
	if cmd.Flags().Changed("max-line-length") {
		maxLineLength = &f.maxLineLength
	}
	if cmd.Flags().Changed("io-rate") {
		ioRate = &f.ioRate
	}
	if cmd.Flags().Changed("log-level") {
		logLevel = &f.logLevel
	}
	if cmd.Flags().Changed("color") {
		colorMode = &f.color
	}
	cfg.MergeWithFlags(pipelined, maxLineLength, ioRate, logLevel, colorMode)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// runFilter opens path, applies pattern and writes matching lines to the
// command's output
func runFilter(cmd *cobra.Command, path, pattern string, flags *filterFlags) error {
	cfg, err := flags.loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	logger, err := newLogger(cfg, errOut)
	if err != nil {
		return err
	}

	metrics := &logfilter.BasicMetricsCollector{}
	lf := logfilter.New(
		logfilter.WithLogger(logger),
		logfilter.WithMetricsCollector(metrics),
		logfilter.WithMaxLineLength(cfg.MaxLineLength),
		logfilter.WithMemoryLimit(cfg.MemoryLimit),
		logfilter.WithIORateLimit(cfg.IORate),
		logfilter.WithChunkSize(cfg.ChunkSize),
		logfilter.WithQueueCapacity(cfg.QueueCapacity),
		logfilter.WithDecompression(cfg.Decompress),
	)
	defer lf.Close()

	if err := lf.SetFilter(pattern); err != nil {
		return err
	}

	ctx := cmd.Context()
	if path == "-" {
		err = lf.OpenReader(ctx, cmd.InOrStdin())
	} else {
		err = lf.OpenContext(ctx, path)
	}
	if err != nil {
		return err
	}

	w := bufio.NewWriter(out)
	var matched int64
	emit := func(line []byte) {
		matched++
		if !flags.count {
			_, _ = w.Write(line)
			_ = w.WriteByte('\n')
		}
	}

	if cfg.Pipelined {
		err = lf.ForEachMatchingLinePipelined(ctx, emit)
	} else {
		err = lf.ForEachMatchingLine(emit)
	}
	if ferr := w.Flush(); err == nil {
		err = ferr
	}

	if flags.count {
		highlight := newColor(cfg.Color, out, color.FgGreen, color.Bold)
		_, _ = highlight.Fprintf(out, "%d\n", matched)
	}

	stats := metrics.GetStats()
	logger.Info("scan finished",
		"lines", stats.LinesRead,
		"matched", stats.LinesMatched,
		"pipelined", cfg.Pipelined,
		"max_queue_depth", stats.MaxQueueDepth,
	)

	return err
}

func newLogger(cfg *config.Config, w io.Writer) (*logfilter.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return logfilter.NewLogger(slog.NewJSONHandler(w, opts)), nil
	}
	return logfilter.NewLogger(slog.NewTextHandler(w, opts)), nil
}

// newColor returns a color that is enabled according to mode and whether w
// is a terminal
func newColor(mode string, w io.Writer, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	switch mode {
	case "always":
		c.EnableColor()
	case "never":
		c.DisableColor()
	default:
		if isTerminal(w) {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return c
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PrintError writes err to w, in red when w is a terminal
func PrintError(w io.Writer, err error) {
	red := newColor("auto", w, color.FgRed)
	_, _ = red.Fprintf(w, "Error: %v\n", err)
}
