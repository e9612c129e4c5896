package fpo

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Operation is one benchmarked call.
// Implementations must be safe for concurrent execution.
type Operation func(ctx context.Context) error

// Result contains measurements from a single concurrency level.
type Result struct {
	N          int             // Number of concurrent workers
	Duration   time.Duration   // Measured wall time
	Operations int64           // Successful operations
	Throughput float64         // Operations per second
	Latencies  []time.Duration // Per-operation latencies
	Errors     int64           // Failed operations
}

// Statistics contains latency summary data.
type Statistics struct {
	Mean   time.Duration
	Stddev time.Duration
	P50    time.Duration
	P95    time.Duration
	P99    time.Duration
}

// USLCoefficients are the Universal Scalability Law parameters
//
//	C(N) = λN / (1 + α(N-1) + βN(N-1))
//
// fitted to a set of Results. A wrapped function shares only read-only
// configuration between callers, so α and β should both stay near zero.
type USLCoefficients struct {
	Lambda   float64 // λ: throughput at N=1
	Alpha    float64 // α: contention
	Beta     float64 // β: coordination
	RSquared float64 // goodness of fit
}

// Config controls benchmark execution.
type Config struct {
	Duration time.Duration // Measurement time per concurrency level
	Warmup   time.Duration // Discarded run before each measurement
	Levels   []int         // Concurrency levels
	MaxProcs int           // GOMAXPROCS for the run, 0 keeps the current value
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Duration: time.Second,
		Warmup:   200 * time.Millisecond,
		Levels:   []int{1, 2, 4, 8},
	}
}

// Run executes op at every configured concurrency level.
func Run(ctx context.Context, op Operation, cfg Config) ([]Result, error) {
	if len(cfg.Levels) == 0 {
		return nil, fmt.Errorf("no concurrency levels configured")
	}
	if cfg.MaxProcs > 0 {
		old := runtime.GOMAXPROCS(cfg.MaxProcs)
		defer runtime.GOMAXPROCS(old)
	}

	results := make([]Result, 0, len(cfg.Levels))
	for _, n := range cfg.Levels {
		if n < 1 {
			return nil, fmt.Errorf("invalid concurrency level %d", n)
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("failed at N=%d: %w", n, err)
		}
		results = append(results, runAtLevel(ctx, op, n, cfg))
	}
	return results, nil
}

func runAtLevel(ctx context.Context, op Operation, n int, cfg Config) Result {
	if cfg.Warmup > 0 {
		warmupCtx, cancel := context.WithTimeout(ctx, cfg.Warmup)
		_ = runPhase(warmupCtx, op, n)
		cancel()
	}

	measureCtx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()
	return runPhase(measureCtx, op, n)
}

func runPhase(ctx context.Context, op Operation, n int) Result {
	var (
		g          errgroup.Group
		operations atomic.Int64
		failures   atomic.Int64
		latencies  = make([][]time.Duration, n)
	)

	start := time.Now()
	for i := 0; i < n; i++ {
		latencies[i] = make([]time.Duration, 0, 1024)
		g.Go(func() error {
			for ctx.Err() == nil {
				opStart := time.Now()
				err := op(ctx)
				took := time.Since(opStart)
				if err != nil {
					failures.Add(1)
					continue
				}
				operations.Add(1)
				latencies[i] = append(latencies[i], took)
			}
			return nil
		})
	}
	_ = g.Wait()
	elapsed := time.Since(start)

	all := make([]time.Duration, 0, operations.Load())
	for _, l := range latencies {
		all = append(all, l...)
	}

	return Result{
		N:          n,
		Duration:   elapsed,
		Operations: operations.Load(),
		Throughput: float64(operations.Load()) / elapsed.Seconds(),
		Latencies:  all,
		Errors:     failures.Load(),
	}
}

// CalculateStatistics computes mean, deviation and percentiles.
func CalculateStatistics(result Result) Statistics {
	if len(result.Latencies) == 0 {
		return Statistics{}
	}

	sorted := slices.Clone(result.Latencies)
	slices.Sort(sorted)

	var sum time.Duration
	for _, l := range sorted {
		sum += l
	}
	mean := sum / time.Duration(len(sorted))

	var variance float64
	for _, l := range sorted {
		d := float64(l - mean)
		variance += d * d
	}

	at := func(pct int) time.Duration { return sorted[len(sorted)*pct/100] }
	return Statistics{
		Mean:   mean,
		Stddev: time.Duration(math.Sqrt(variance / float64(len(sorted)))),
		P50:    at(50),
		P95:    at(95),
		P99:    at(99),
	}
}

// FitUSL fits λ, α, β by least squares on the linearised form
//
//	N/C(N) = 1/λ + (α/λ)(N-1) + (β/λ)N(N-1)
//
// A negative β with positive α is treated as noise and refitted with β = 0.
func FitUSL(results []Result) (USLCoefficients, error) {
	if len(results) < 3 {
		return USLCoefficients{}, fmt.Errorf("need at least 3 data points, got %d", len(results))
	}

	b, ok := leastSquares(results, true)
	if !ok {
		return USLCoefficients{Lambda: results[0].Throughput}, nil
	}
	c := USLCoefficients{Lambda: 1 / b[0], Alpha: b[1] / b[0], Beta: b[2] / b[0]}

	if c.Beta < 0 && c.Alpha > 0 {
		if b2, ok := leastSquares(results, false); ok {
			c = USLCoefficients{Lambda: 1 / b2[0], Alpha: b2[1] / b2[0]}
		}
	}

	var mean float64
	for _, r := range results {
		mean += r.Throughput
	}
	mean /= float64(len(results))

	var ssRes, ssTot float64
	for _, r := range results {
		res := r.Throughput - c.PredictThroughput(r.N)
		tot := r.Throughput - mean
		ssRes += res * res
		ssTot += tot * tot
	}
	if ssTot > 0 {
		c.RSquared = 1 - ssRes/ssTot
	} else if ssRes == 0 {
		c.RSquared = 1
	}
	return c, nil
}

// leastSquares solves the normal equations for Y = b0 + b1·X1 [+ b2·X2]
// with Y = N/C(N), X1 = N-1, X2 = N(N-1).
func leastSquares(results []Result, withBeta bool) ([3]float64, bool) {
	var m [3][3]float64
	var v [3]float64
	for _, r := range results {
		if r.Throughput == 0 {
			continue
		}
		n := float64(r.N)
		x := [3]float64{1, n - 1, n * (n - 1)}
		if !withBeta {
			x[2] = 0
		}
		y := n / r.Throughput
		for i := range x {
			v[i] += y * x[i]
			for j := range x {
				m[i][j] += x[i] * x[j]
			}
		}
	}
	if !withBeta {
		m[2][2] = 1
	}

	det := det3(m)
	if math.Abs(det) < 1e-10 {
		return [3]float64{}, false
	}
	var b [3]float64
	for col := range b {
		mc := m
		for row := range mc {
			mc[row][col] = v[row]
		}
		b[col] = det3(mc) / det
	}
	return b, b[0] != 0
}

func det3(m [3][3]float64) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

func uslModel(n, lambda, alpha, beta float64) float64 {
	return (lambda * n) / (1 + alpha*(n-1) + beta*n*(n-1))
}

// PredictThroughput estimates throughput at concurrency n.
func (c USLCoefficients) PredictThroughput(n int) float64 {
	return uslModel(float64(n), c.Lambda, c.Alpha, c.Beta)
}

// Efficiency is predicted throughput over ideal linear throughput at n.
func (c USLCoefficients) Efficiency(n int) float64 {
	ideal := c.Lambda * float64(n)
	if ideal == 0 {
		return 0
	}
	return c.PredictThroughput(n) / ideal
}
