package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/checkmate"
)

// CLIConfig holds the parsed command line.
type CLIConfig struct {
	input    string
	output   string
	thr      int
	tmax     int
	tthr2    int
	workers  int
	logLevel string
	logFile  string
	stats    bool
	help     bool
}

// parseCLIFlags parses args (without the program name) into a CLIConfig.
func parseCLIFlags(args []string) (*CLIConfig, *flag.FlagSet, error) {
	config := &CLIConfig{}
	fs := flag.NewFlagSet("checkmate", flag.ContinueOnError)

	// Input and output
	fs.StringVar(&config.input, "in", "-", "Input YUV4MPEG2 file (\"-\" for stdin, .zst for compressed)")
	fs.StringVar(&config.output, "out", "-", "Output YUV4MPEG2 file (\"-\" for stdout, .zst for compressed)")

	// Filter parameters
	fs.IntVar(&config.thr, "thr", checkmate.DefaultThr, "Temporal deviation tolerated before neighbour weights decay")
	fs.IntVar(&config.tmax, "tmax", checkmate.DefaultTmax, "Weight decay range, 1-255")
	fs.IntVar(&config.tthr2, "tthr2", checkmate.DefaultTthr2, "Stability threshold over ±2 frames (0 disables)")

	// Execution
	fs.IntVar(&config.workers, "workers", runtime.NumCPU(), "Number of frames filtered concurrently")

	// Logging configuration
	fs.StringVar(&config.logLevel, "log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	fs.StringVar(&config.logFile, "log-file", "", "Log file path (default: stderr)")
	fs.BoolVar(&config.stats, "stats", false, "Print filter statistics when done")

	// Help
	fs.BoolVar(&config.help, "help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	return config, fs, nil
}

// printUsage prints the usage information.
func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Checkmate dot crawl reducer")
	fmt.Fprintln(w, "===========================")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Filters an 8-bit planar YUV4MPEG2 clip with an adaptive")
	fmt.Fprintln(w, "spatial/temporal blend that removes dot crawl.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s [options]\n", fs.Name())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintf(w, "  # Filter with default settings\n")
	fmt.Fprintf(w, "  %s -in capture.y4m -out clean.y4m\n", fs.Name())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  # Enable the two-frame stability test and compress the output\n")
	fmt.Fprintf(w, "  %s -in capture.y4m -out clean.y4m.zst -tthr2 4\n", fs.Name())
}

// validateCLIConfig validates the CLI configuration. Filter parameters are
// validated by checkmate itself.
func validateCLIConfig(config *CLIConfig) error {
	if config.input == "" {
		return fmt.Errorf("input path cannot be empty")
	}
	if config.output == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	if config.workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if _, err := logrus.ParseLevel(config.logLevel); err != nil {
		return fmt.Errorf("invalid log level %q", config.logLevel)
	}
	if err := checkmate.ValidateOptions(filterOptions(config)); err != nil {
		return err
	}
	return nil
}

// filterOptions converts the CLI configuration to filter options.
func filterOptions(config *CLIConfig) *checkmate.Options {
	return &checkmate.Options{
		Thr:   config.thr,
		Tmax:  config.tmax,
		Tthr2: config.tthr2,
	}
}

// setupLogging configures the global logger. The returned closer, if any,
// closes the log file.
func setupLogging(config *CLIConfig) (io.Closer, error) {
	level, err := logrus.ParseLevel(config.logLevel)
	if err != nil {
		return nil, err
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if config.logFile == "" {
		logrus.SetOutput(os.Stderr)
		return nil, nil
	}

	f, err := os.OpenFile(config.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	logrus.SetOutput(f)
	return f, nil
}

// setupSignalHandling cancels ctx on interrupt.
func setupSignalHandling(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	go func() {
		sig := <-sigChan
		logrus.WithFields(logrus.Fields{
			"function": "setupSignalHandling",
			"signal":   sig.String(),
		}).Warn("Received signal, cancelling")
		cancel()
	}()
}

func main() {
	cliConfig, fs, err := parseCLIFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		printUsage(os.Stdout, fs)
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}

	if cliConfig.help {
		printUsage(os.Stdout, fs)
		os.Exit(0)
	}

	if err := validateCLIConfig(cliConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Use -help for usage information.\n")
		os.Exit(1)
	}

	logCloser, err := setupLogging(cliConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging setup failed: %v\n", err)
		os.Exit(1)
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	stats, err := run(ctx, cliConfig)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "main",
			"error":    err.Error(),
		}).Error("Filtering failed")
		fmt.Fprintf(os.Stderr, "checkmate: %v\n", err)
		cancel()
		if logCloser != nil {
			logCloser.Close()
		}
		os.Exit(1)
	}

	if cliConfig.stats {
		printStats(os.Stderr, stats)
	}
}
