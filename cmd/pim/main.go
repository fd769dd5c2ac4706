// Command pim converts target group definitions into Prometheus file_sd
// target files, one file per job.
//
// Usage:
//
//	pim [flags] <source|-> [target]
//	pim serve [flags]
//
// source is a YAML (or JSON) file, a directory of such files, or "-" for
// standard input. target is omitted for standard output, or names a file or
// a directory. Writing to a directory produces <target>/<job>_targets.json
// for every job.
package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"pim/internal/config"
	"pim/internal/logging"
	"pim/internal/output"
	"pim/internal/pipeline"
	"pim/internal/server"
	"pim/internal/source"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Exit codes.
const (
	exitRuntimeError = 1
	exitOptionsError = 3
)

func main() {
	cmd := rootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
		level.Error(logger).Log("msg", "pim failed", "err", err)
		if isUsageError(err) {
			_ = cmd.Usage()
		}
		os.Exit(exitCode(err))
	}
}

func rootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cfg := config.DefaultConfig

	cmd := &cobra.Command{
		Use:   "pim [flags] <source|-> [target]",
		Short: "Convert target group definitions to Prometheus file_sd target files",
		Long: `pim reads groups of jobs, labels and targets and writes one file_sd
target list per job.

The source is a file, a directory (every file directly inside it, in name
order) or "-" for standard input. Without a target the result is written to
standard output as compact JSON. A target file receives the same document
pretty-printed. A target directory receives one <job>_targets.json file per
job.`,
		Version:       version,
		Args:          usageArgs(cobra.RangeArgs(1, 2)),
		SilenceErrors: true,
		SilenceUsage:  true,

		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := setup(&cfg, stderr)
			if err != nil {
				return err
			}

			src := source.ParseSelector(args[0])
			if src.IsStdin() && isTerminal(stdin) {
				return usageError{errors.New("refusing to read source from an interactive terminal")}
			}

			var target string
			if len(args) > 1 {
				target = args[1]
			}
			dest, err := output.ParseDestination(target)
			if err != nil {
				return err
			}

			runner := pipeline.NewRunner(logger,
				&source.Aggregator{Logger: logger, Stdin: stdin, ExpandEnv: cfg.ExpandEnv},
				&output.Router{Logger: logger, Stdout: stdout, Format: cfg.Format()},
			)
			return runner.Run(cmd.Context(), src, dest)
		},
	}
	cmd.SetVersionTemplate("{{ .Version }}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})
	cfg.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(serveCommand(&cfg, stderr))
	return cmd
}

func serveCommand(cfg *config.Config, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion over HTTP",
		Long: `serve exposes POST /api/v1/convert. The request body is one source
document, the response holds the converted targets of every job, or of a
single job with ?job=<name>.`,
		Args: usageArgs(cobra.NoArgs),

		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := setup(cfg, stderr)
			if err != nil {
				return err
			}
			return server.New(logger).Run(cmd.Context(), cfg.Server.ListenAddr)
		},
	}
	cfg.RegisterServerFlags(cmd.Flags())
	return cmd
}

// setup validates cfg and builds the logger described by it.
func setup(cfg *config.Config, stderr io.Writer) (log.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, usageError{err}
	}
	return logging.New(stderr, cfg.LogLevel, cfg.LogFormat)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// usageError marks errors caused by invalid command line usage.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func isUsageError(err error) bool {
	var ue usageError
	return errors.As(err, &ue)
}

func exitCode(err error) int {
	if isUsageError(err) {
		return exitOptionsError
	}
	return exitRuntimeError
}
