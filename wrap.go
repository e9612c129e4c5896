package fpo

import (
	"fmt"
	"strings"
)

// Func is the calling convention of a wrappable function: positional
// arguments in order, keyword arguments by parameter name.
type Func[V any] func(args []V, kwargs map[string]V) (V, error)

// Strategy selects how a Wrapper detects deprecated keywords.
// Both strategies produce identical warnings.
type Strategy int

const (
	// StrategyScan walks the configured names in position order and checks
	// the keyword map. Output needs no sorting.
	StrategyScan Strategy = iota
	// StrategyIntersect intersects the supplied keywords with the name set
	// and sorts the result. This is the reference behaviour.
	StrategyIntersect
)

func (s Strategy) String() string {
	switch s {
	case StrategyScan:
		return "scan"
	case StrategyIntersect:
		return "intersect"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy parses the String form of a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "scan":
		return StrategyScan, nil
	case "intersect", "reference":
		return StrategyIntersect, nil
	}
	return 0, fmt.Errorf("unknown strategy %q (want scan or intersect)", s)
}

type options struct {
	name     string
	warner   Warner
	strategy Strategy
	lazy     bool
}

// Option configures Wrap.
type Option func(*options)

// WithName sets the function name reported in warnings.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithWarner sets the destination of warnings. The default logs through
// slog.Default().
func WithWarner(w Warner) Option {
	return func(o *options) { o.warner = w }
}

// WithStrategy selects the keyword detection strategy.
func WithStrategy(s Strategy) Option {
	return func(o *options) { o.strategy = s }
}

// WithLazyResolution accepts configured names that are not declared in the
// signature. Such a name fails with *LookupError on the first call that
// passes it as keyword, instead of failing Wrap.
func WithLazyResolution() Option {
	return func(o *options) { o.lazy = true }
}

// Wrapper forwards calls to a function and warns when parameters that are
// becoming positional-only are passed by keyword.
//
// The configuration is frozen by Wrap; a Wrapper is safe for concurrent
// calls as long as its Warner is.
type Wrapper[V any] struct {
	fn       Func[V]
	sig      Signature
	names    []Param         // unique, sorted by position
	set      map[string]bool // names as a set
	name     string
	warner   Warner
	strategy Strategy
}

// Wrap validates names against sig and returns fn wrapped with the
// deprecation check. Errors are *ConfigError and are never deferred to call
// time, except for unknown names under WithLazyResolution.
func Wrap[V any](fn Func[V], sig Signature, names []string, opts ...Option) (*Wrapper[V], error) {
	if fn == nil {
		return nil, typeMismatch(-1, "not a callable")
	}

	o := options{warner: SlogWarner{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.warner == nil {
		o.warner = Discard
	}

	resolved, err := resolve(sig, names, o.lazy)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(resolved))
	for _, p := range resolved {
		set[p.Name] = true
	}

	return &Wrapper[V]{
		fn:       fn,
		sig:      sig,
		names:    resolved,
		set:      set,
		name:     o.name,
		warner:   o.warner,
		strategy: o.strategy,
	}, nil
}

// MustWrap is like Wrap but panics on error.
func MustWrap[V any](fn Func[V], sig Signature, names []string, opts ...Option) *Wrapper[V] {
	w, err := Wrap(fn, sig, names, opts...)
	if err != nil {
		panic(err)
	}
	return w
}

// Call invokes the wrapped function with args and kwargs unchanged, after
// emitting one warning if any configured name is present in kwargs.
func (w *Wrapper[V]) Call(args []V, kwargs map[string]V) (V, error) {
	return w.call(args, kwargs)
}

// Func returns the wrapped function with the original calling convention.
func (w *Wrapper[V]) Func() Func[V] {
	return func(args []V, kwargs map[string]V) (V, error) {
		return w.call(args, kwargs)
	}
}

// Names returns the configured names, deduplicated and sorted by position.
func (w *Wrapper[V]) Names() []Param {
	out := make([]Param, len(w.names))
	copy(out, w.names)
	return out
}

// Signature returns the declared signature of the wrapped function.
func (w *Wrapper[V]) Signature() Signature { return w.sig }

// call must be invoked directly from Call or the Func closure so that the
// user frame sits exactly two levels above it.
func (w *Wrapper[V]) call(args []V, kwargs map[string]V) (V, error) {
	if len(kwargs) > 0 && len(w.names) > 0 {
		affected, err := w.affected(kwargs)
		if err != nil {
			var zero V
			return zero, err
		}
		if len(affected) > 0 {
			w.warner.Warn(Warning{
				Category: CategoryDeprecation,
				Message:  FormatMessage(affected),
				Function: w.name,
				Affected: affected,
				Caller:   callerAt(2),
			})
		}
	}
	return w.fn(args, kwargs)
}

// affected returns the configured names present in kwargs, sorted by
// position. It allocates only when at least one name matches.
func (w *Wrapper[V]) affected(kwargs map[string]V) ([]Param, error) {
	switch w.strategy {
	case StrategyIntersect:
		return w.intersect(kwargs)
	default:
		return w.scan(kwargs)
	}
}

func (w *Wrapper[V]) scan(kwargs map[string]V) ([]Param, error) {
	var out []Param
	for _, p := range w.names {
		if _, ok := kwargs[p.Name]; !ok {
			continue
		}
		if p.Position < 0 {
			return nil, &LookupError{Name: p.Name}
		}
		if out == nil {
			out = make([]Param, 0, len(w.names))
		}
		out = append(out, p)
	}
	return out, nil
}

func (w *Wrapper[V]) intersect(kwargs map[string]V) ([]Param, error) {
	var out []Param
	for name := range kwargs {
		if !w.set[name] {
			continue
		}
		pos, ok := w.sig.Position(name)
		if !ok {
			return nil, &LookupError{Name: name}
		}
		out = append(out, Param{Name: name, Position: pos})
	}
	sortParams(out)
	return out, nil
}
