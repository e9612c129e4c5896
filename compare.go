package fpo

import (
	"context"
	"fmt"
	"strconv"
)

// Case is a named benchmark operation.
type Case struct {
	Name string
	Op   Operation
}

// Comparison is the outcome of running one Case.
type Comparison struct {
	Name    string
	Results []Result
	Stats   Statistics // Of the N=1 level, or the first level
}

// NsPerOp is the mean latency of the first level in nanoseconds.
func (c Comparison) NsPerOp() float64 {
	return float64(c.Stats.Mean.Nanoseconds())
}

// Cases returns the standard comparison set: functions of arity 0, 1 and 5
// called directly, through a plain forwarding wrapper, and through Wrap.
// For arity 5 a keyword call that triggers the warning is included as well.
// Warnings from the keyword case go to Discard.
func Cases(strategy Strategy) ([]Case, error) {
	var cases []Case
	for _, arity := range []int{0, 1, 5} {
		params := make([]string, arity)
		args := make([]any, arity)
		for i := range params {
			params[i] = "a" + strconv.Itoa(i+1)
			args[i] = i
		}
		sig, err := NewSignature(params...)
		if err != nil {
			return nil, err
		}

		var fn Func[any] = func([]any, map[string]any) (any, error) { return nil, nil }
		forward := forwarding(fn)
		wrapped, err := Wrap(fn, sig, params, WithWarner(Discard), WithStrategy(strategy))
		if err != nil {
			return nil, err
		}
		call := wrapped.Func()

		name := "func" + strconv.Itoa(arity)
		cases = append(cases,
			Case{name, callOp(fn, args, nil)},
			Case{name + "_decorated", callOp(forward, args, nil)},
			Case{name + "_fpo", callOp(call, args, nil)},
		)

		if arity > 0 {
			kwargs := map[string]any{params[arity-1]: arity - 1}
			cases = append(cases, Case{name + "_fpo_keyword", callOp(call, args[:arity-1], kwargs)})
		}
	}
	return cases, nil
}

// forwarding is the baseline decorator: it only passes the call through.
func forwarding[V any](fn Func[V]) Func[V] {
	return func(args []V, kwargs map[string]V) (V, error) {
		return fn(args, kwargs)
	}
}

func callOp(fn Func[any], args []any, kwargs map[string]any) Operation {
	return func(context.Context) error {
		_, err := fn(args, kwargs)
		return err
	}
}

// Compare runs every case with cfg, in order.
func Compare(ctx context.Context, cases []Case, cfg Config) ([]Comparison, error) {
	out := make([]Comparison, 0, len(cases))
	for _, c := range cases {
		results, err := Run(ctx, c.Op, cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
		out = append(out, Comparison{
			Name:    c.Name,
			Results: results,
			Stats:   CalculateStatistics(results[0]),
		})
	}
	return out, nil
}
