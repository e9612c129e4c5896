// Command fpo checks deprecation manifests and benchmarks wrapped calls.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	fpo "github.com/neutrinoceros/future-positional-only"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// envConfig holds defaults read from the environment. Flags override them.
type envConfig struct {
	LogLevel      string        `env:"FPO_LOG_LEVEL,default=info"`
	Strategy      string        `env:"FPO_STRATEGY,default=scan"`
	BenchDuration time.Duration `env:"FPO_BENCH_DURATION,default=1s"`
	BenchWarmup   time.Duration `env:"FPO_BENCH_WARMUP,default=200ms"`
}

func loadEnv() (envConfig, error) {
	var cfg envConfig
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return cfg, fmt.Errorf("environment: %w", err)
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := loadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := newRootCmd(env, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	logLevel string
	noColor  bool
	strategy string
}

func newRootCmd(env envConfig, stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "fpo",
		Short:        "Keyword-to-positional deprecation tooling",
		Long:         `fpo validates deprecation manifests, replays sample calls, and benchmarks the cost of wrapping functions.`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(stderr, opts.logLevel, opts.noColor)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", env.LogLevel, "log level (debug, info, warn, error)")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable coloured log output")
	flags.StringVar(&opts.strategy, "strategy", env.Strategy, "keyword detection strategy (scan, intersect)")

	cmd.AddCommand(newCheckCmd(opts))
	cmd.AddCommand(newBenchCmd(opts, env))
	return cmd
}

func newLogger(w io.Writer, level string, noColor bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	if f, ok := w.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		noColor = true
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
	})), nil
}

func (o *rootOptions) wrapOptions() ([]fpo.Option, error) {
	s, err := fpo.ParseStrategy(o.strategy)
	if err != nil {
		return nil, err
	}
	return []fpo.Option{fpo.WithStrategy(s)}, nil
}
