// Package fpo warns callers that pass soon-to-be positional-only
// parameters by keyword.
//
// # Overview
//
// A runtime or library that wants to turn keyword-or-positional parameters
// into positional-only parameters cannot do so in one step without breaking
// callers. fpo wraps a function so that every call still succeeds exactly as
// before, but a call that supplies one of the listed parameters by keyword
// first emits a single deprecation warning naming each such parameter and
// the position it has to move to.
//
// # Calling convention
//
// Go has no keyword arguments, so wrapped functions use the convention an
// embedded interpreter uses for its builtins:
//
//	type Func[V any] func(args []V, kwargs map[string]V) (V, error)
//
// Parameter order is declared explicitly with a Signature:
//
//	sig := fpo.MustSignature("a", "b", "c", "d")
//
//	noop := func(args []any, kwargs map[string]any) (any, error) {
//	    return nil, nil
//	}
//
//	w, err := fpo.Wrap(noop, sig, []string{"a", "b", "c", "d"}, fpo.WithName("noop"))
//	if err != nil {
//	    log.Fatal(err) // malformed configuration, reported before any call
//	}
//
//	w.Call([]any{1, 2, 3, 4}, nil)                  // no warning
//	w.Call([]any{1, 2, 3}, map[string]any{"d": 4}) // one warning, singular
//
// The second call produces:
//
//	Passing 'd' as keyword (at position 3) is deprecated and will stop
//	working in a future release. Pass it positionally to suppress this
//	warning.
//
// With several names the plural form is used, listed by ascending declared
// position regardless of the order of the keywords at the call site:
//
//	Passing ['b', 'd'] arguments as keywords (at positions [1, 3],
//	respectively) is deprecated and will stop working in a future
//	release. Pass them positionally to suppress this warning.
//
// Ordinary Go functions can be adapted with Bind, which binds positional
// and keyword arguments to the Go parameters and reports binding failures
// as *ArgumentError:
//
//	fn, sig, err := fpo.Bind(strings.Repeat, "s", "count")
//	w, err := fpo.Wrap(fn, sig, []string{"s"})
//
// # Warnings
//
// Warnings go to a Warner. The default is SlogWarner over slog.Default().
// Recorder collects warnings for tests, Once suppresses repeats from the
// same call site, and Multi fans out. The warning's Caller is the frame
// that invoked the wrapped function, not the wrapper.
//
// # Errors
//
//   - *ConfigError (ErrTypeMismatch, ErrUnknownName): returned by Wrap and
//     ParseNames. Never deferred to call time.
//   - *LookupError (ErrLookup): returned by a call when a name accepted
//     under WithLazyResolution is passed as keyword.
//   - Anything returned by the wrapped function is returned unchanged.
//
// Deprecation itself is never an error.
//
// # Concurrency
//
// The configuration is built once by Wrap and never mutated. A Wrapper may
// be called from any number of goroutines; the benchmark harness (Run,
// Compare, FitUSL) can be used to confirm that throughput scales without
// contention.
package fpo
