package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	fpo "github.com/neutrinoceros/future-positional-only"
	"github.com/neutrinoceros/future-positional-only/manifest"
	"github.com/neutrinoceros/future-positional-only/metrics"
)

var metricsShutdownTimeout = 5 * time.Second

type checkOptions struct {
	metricsAddr string
	once        bool
	lazy        bool
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check <manifest.yaml>",
		Short: "Validate a deprecation manifest and replay its calls",
		Example: `  # Validate and report every deprecated keyword use
  fpo check deprecations.yaml

  # Report each call site once and expose counters
  fpo check --once --metrics-addr :9091 deprecations.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve /metrics on this address after the replay until interrupted")
	cmd.Flags().BoolVar(&opts.once, "once", false, "report identical warnings from the same call site only once")
	cmd.Flags().BoolVar(&opts.lazy, "lazy", false, "accept deprecated names that are not declared parameters")
	return cmd
}

func runCheck(cmd *cobra.Command, root *rootOptions, opts *checkOptions, path string) error {
	m, err := manifest.LoadFile(path)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	var warner fpo.Warner = fpo.SlogWarner{Logger: slog.Default()}
	if opts.once {
		warner = fpo.Once(warner)
	}
	counter, err := metrics.NewWarner(reg, warner)
	if err != nil {
		return err
	}

	wrapOpts, err := root.wrapOptions()
	if err != nil {
		return err
	}
	wrapOpts = append(wrapOpts, fpo.WithWarner(counter))
	if opts.lazy {
		wrapOpts = append(wrapOpts, fpo.WithLazyResolution())
	}

	wrappers, err := m.Build(wrapOpts...)
	if err != nil {
		return err
	}
	slog.Info("Manifest valid", "path", path, "functions", len(wrappers))

	outcomes, err := m.Simulate(wrappers)
	if err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			slog.Error("Call failed", "function", o.Call.Function, "args", o.Call.Args, "kwargs", o.Call.Kwargs, "err", o.Err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d functions, %d calls, %d failed\n", len(wrappers), len(outcomes), failed)

	if opts.metricsAddr != "" {
		if err := serveMetrics(cmd.Context(), opts.metricsAddr, reg); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d calls failed", failed, len(outcomes))
	}
	return nil
}

// serveMetrics blocks until ctx is done.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("Metrics endpoint listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Failed to shut down metrics server cleanly", "err", err)
	}
	return nil
}
