// Package fpotest provides test helpers for code that uses fpo wrappers.
package fpotest

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	fpo "github.com/neutrinoceros/future-positional-only"
)

// Warns runs fn and asserts that it emitted exactly one deprecation warning
// into rec whose message matches pattern. It returns that warning.
//
//	rec := &fpo.Recorder{}
//	w := fpo.MustWrap(fn, sig, names, fpo.WithWarner(rec))
//	fpotest.Warns(t, rec, `Passing 'd' as keyword \(at position 3\)`, func() {
//	    w.Call([]any{1, 2, 3}, map[string]any{"d": 4})
//	})
func Warns(t testing.TB, rec *fpo.Recorder, pattern string, fn func()) fpo.Warning {
	t.Helper()

	re, err := regexp.Compile(pattern)
	if err != nil {
		t.Fatalf("invalid pattern %q: %v", pattern, err)
	}

	before := rec.Len()
	fn()
	emitted := rec.Warnings()[before:]

	if len(emitted) != 1 {
		t.Fatalf("expected exactly 1 warning, got %d:\n%s", len(emitted), messages(emitted))
	}
	w := emitted[0]
	if w.Category != fpo.CategoryDeprecation {
		t.Errorf("expected category %q, got %q", fpo.CategoryDeprecation, w.Category)
	}
	if !re.MatchString(w.Message) {
		t.Errorf("warning does not match %q:\n  %s", pattern, w.Message)
	}
	return w
}

// NoWarnings runs fn and asserts that it emitted nothing into rec.
func NoWarnings(t testing.TB, rec *fpo.Recorder, fn func()) {
	t.Helper()

	before := rec.Len()
	fn()
	if emitted := rec.Warnings()[before:]; len(emitted) > 0 {
		t.Errorf("expected no warnings, got %d:\n%s", len(emitted), messages(emitted))
	}
}

func messages(ws []fpo.Warning) string {
	var s string
	for _, w := range ws {
		s += fmt.Sprintf("  %s (%s)\n", w.Message, w.Caller)
	}
	return s
}

// AssertionConfig contains thresholds for scalability properties.
type AssertionConfig struct {
	// Contention threshold (α < this value passes)
	MaxContention float64

	// Minimum R² for the fit to be trusted
	MinRSquared float64

	// Highest concurrency level checked for retrograde scaling
	MaxN int
}

// DefaultAssertionConfig returns thresholds suited to noisy CI machines.
func DefaultAssertionConfig() AssertionConfig {
	return AssertionConfig{
		MaxContention: 0.05,
		MinRSquared:   0.90,
		MaxN:          8,
	}
}

// AssertZeroContention verifies α is near zero for results measured on a
// wrapped function. The wrapped configuration is read-only, so concurrent
// callers should never wait on each other.
//
// A poor fit is logged and not failed on; timing data from shared machines
// is rarely clean enough to fail a build on.
func AssertZeroContention(t testing.TB, results []fpo.Result, cfg AssertionConfig) {
	t.Helper()

	coeffs, err := fpo.FitUSL(results)
	if err != nil {
		t.Fatalf("Failed to fit USL model: %v", err)
	}

	if coeffs.RSquared < cfg.MinRSquared {
		t.Logf("Poor model fit: R² = %.4f (min: %.4f), skipping contention check",
			coeffs.RSquared, cfg.MinRSquared)
		return
	}
	if coeffs.Alpha > cfg.MaxContention {
		t.Errorf("Contention too high: α = %.6f (max: %.6f)", coeffs.Alpha, cfg.MaxContention)
	}

	t.Logf("✓ Zero contention: α = %.6f (threshold: %.6f), R² = %.4f",
		coeffs.Alpha, cfg.MaxContention, coeffs.RSquared)
}

// AssertNoRetrograde verifies predicted throughput never decreases as N
// grows, up to cfg.MaxN.
func AssertNoRetrograde(t testing.TB, results []fpo.Result, cfg AssertionConfig) {
	t.Helper()

	coeffs, err := fpo.FitUSL(results)
	if err != nil {
		t.Fatalf("Failed to fit USL model: %v", err)
	}

	var failures []string
	for i := 1; i < len(results); i++ {
		if results[i].N > cfg.MaxN {
			break
		}
		prev := coeffs.PredictThroughput(results[i-1].N)
		curr := coeffs.PredictThroughput(results[i].N)
		if curr < prev {
			failures = append(failures, fmt.Sprintf("  N=%d→%d: %.2f → %.2f ops/sec",
				results[i-1].N, results[i].N, prev, curr))
		}
	}

	if len(failures) > 0 {
		t.Errorf("Retrograde scaling detected:\n%s\nα=%.6f, β=%.6f", strings.Join(failures, "\n"), coeffs.Alpha, coeffs.Beta)
	}
}
