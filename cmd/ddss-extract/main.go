// Command ddss-extract extracts Splunk DDSS journal files to NDJSON,
// CSV, or Parquet, the Go-native replacement for
// original_source/.../main.py's splunk-extract entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ponquersohn/splunk-ddss-extractor/extractor"
)

const (
	exitOK          = 0
	exitNotFound    = 2
	exitInterrupted = 130
	exitError       = 1
)

const version = `0.1.0`

var log = logrus.New()

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	root := newRootCommand()
	err := root.ExecuteContext(ctx)

	switch {
	case err == nil:
		return exitOK
	case errors.Is(ctx.Err(), context.Canceled):
		log.Info(`interrupted by user`)
		return exitInterrupted
	case errors.Is(err, os.ErrNotExist):
		log.WithError(err).Error(`file not found`)
		return exitNotFound
	default:
		log.WithError(err).Error(`extraction failed`)
		return exitError
	}
}

type rootFlags struct {
	inputFile    string
	outputFile   string
	outputFormat formatFlag
	logLevel     string
	verbose      bool
	quiet        bool
}

func newRootCommand() *cobra.Command {
	flags := rootFlags{outputFormat: `ndjson`}

	cmd := &cobra.Command{
		Use:   `ddss-extract`,
		Short: `Extract Splunk DDSS journal files to NDJSON, CSV, or Parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configureLogging(flags)
			return runExtract(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.inputFile, `input`, `i`, `-`, `Input journal file (local path, or "-" for stdin)`)
	cmd.Flags().StringVarP(&flags.outputFile, `output`, `o`, `-`, `Output file (local path, or "-" for stdout)`)
	cmd.Flags().VarP(&flags.outputFormat, `format`, `f`, `Output format: ndjson, csv, or parquet`)
	cmd.PersistentFlags().StringVarP(&flags.logLevel, `log-level`, `l`, `info`, `Logging level: debug, info, warn, error`)
	cmd.PersistentFlags().BoolVarP(&flags.verbose, `verbose`, `v`, false, `Enable verbose output (equivalent to --log-level debug)`)
	cmd.PersistentFlags().BoolVarP(&flags.quiet, `quiet`, `q`, false, `Suppress informational output (equivalent to --log-level warn)`)

	cmd.AddCommand(newBatchCommand(), newVersionCommand())
	return cmd
}

func newBatchCommand() *cobra.Command {
	var outputDir, outputFormat string

	cmd := &cobra.Command{
		Use:   `batch <journal>...`,
		Short: `Extract multiple journal files into a directory`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := extractor.ExtractBatch(args, outputDir, outputFormat)
			if err != nil {
				return err
			}
			for path, count := range results {
				if count < 0 {
					log.WithField(`input`, path).Warn(`failed to extract`)
					continue
				}
				log.WithFields(logrus.Fields{`input`: path, `events`: count}).Info(`extracted`)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputDir, `output-dir`, `o`, `.`, `Directory to write one output file per input into`)
	cmd.Flags().StringVarP(&outputFormat, `format`, `f`, `ndjson`, `Output format: ndjson, csv, or parquet`)
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   `version`,
		Short: `Print the ddss-extract version`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}
}

func configureLogging(flags rootFlags) {
	level := flags.logLevel
	switch {
	case flags.verbose:
		level = `debug`
	case flags.quiet:
		level = `warn`
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
}

// openOutput returns a writer for path, which is either "-" (stdout) or
// a local file path, and a close function the caller should always
// invoke.
func openOutput(path string) (io.Writer, func() error, error) {
	if path == `-` {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf(`ddss-extract: create %s: %w`, path, err)
	}
	return f, f.Close, nil
}

func runExtract(ctx context.Context, flags rootFlags) error {
	out, closeOut, err := openOutput(flags.outputFile)
	if err != nil {
		return err
	}
	defer closeOut()

	writer, err := extractor.NewWriter(string(flags.outputFormat), out)
	if err != nil {
		return err
	}
	defer writer.Close()

	count, err := extractor.ExtractToWriterContext(ctx, flags.inputFile, writer)
	if err != nil {
		return err
	}
	log.WithField(`events`, count).Info(`successfully extracted`)
	return nil
}
