package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	fpo "github.com/neutrinoceros/future-positional-only"
)

type benchOptions struct {
	duration time.Duration
	warmup   time.Duration
	levels   string
	filter   string
}

func newBenchCmd(root *rootOptions, env envConfig) *cobra.Command {
	opts := &benchOptions{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare undecorated, forwarded and wrapped calls",
		Example: `  # Quick single-threaded comparison
  fpo bench --duration 200ms

  # Scan vs reference strategy across concurrency levels
  fpo bench --strategy intersect --levels 1,2,4,8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, root, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.duration, "duration", env.BenchDuration, "measurement time per case and level")
	cmd.Flags().DurationVar(&opts.warmup, "warmup", env.BenchWarmup, "warmup time per case and level")
	cmd.Flags().StringVar(&opts.levels, "levels", "1", "comma separated concurrency levels")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "only run cases whose name contains this text")
	return cmd
}

func runBench(cmd *cobra.Command, root *rootOptions, opts *benchOptions) error {
	levels, err := parseLevels(opts.levels)
	if err != nil {
		return err
	}
	strategy, err := fpo.ParseStrategy(root.strategy)
	if err != nil {
		return err
	}

	cases, err := fpo.Cases(strategy)
	if err != nil {
		return err
	}
	if opts.filter != "" {
		kept := cases[:0]
		for _, c := range cases {
			if strings.Contains(c.Name, opts.filter) {
				kept = append(kept, c)
			}
		}
		cases = kept
	}
	if len(cases) == 0 {
		return fmt.Errorf("no cases match %q", opts.filter)
	}

	cfg := fpo.DefaultConfig()
	cfg.Duration = opts.duration
	cfg.Warmup = opts.warmup
	cfg.Levels = levels

	slog.Info("Running benchmark", "cases", len(cases), "levels", levels, "strategy", strategy, "duration", cfg.Duration)
	comparisons, err := fpo.Compare(cmd.Context(), cases, cfg)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CASE\tN\tNS/OP\tP99\tOPS/SEC")
	for _, c := range comparisons {
		for _, r := range c.Results {
			stats := fpo.CalculateStatistics(r)
			fmt.Fprintf(tw, "%s\t%d\t%.1f\t%v\t%.0f\n",
				c.Name, r.N, float64(stats.Mean.Nanoseconds()), stats.P99, r.Throughput)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(levels) >= 3 {
		for _, c := range comparisons {
			coeffs, err := fpo.FitUSL(c.Results)
			if err != nil {
				continue
			}
			slog.Info("Scalability", "case", c.Name,
				"alpha", fmt.Sprintf("%.4f", coeffs.Alpha),
				"beta", fmt.Sprintf("%.4f", coeffs.Beta),
				"r2", fmt.Sprintf("%.3f", coeffs.RSquared))
		}
	}
	return nil
}

func parseLevels(s string) ([]int, error) {
	var levels []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid concurrency level %q", part)
		}
		levels = append(levels, n)
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("no concurrency levels given")
	}
	return levels, nil
}
