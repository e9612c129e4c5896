package fpo

import (
	"context"
	"log/slog"
	"runtime"
	"strconv"
	"sync"
)

// Category classifies an emitted warning.
type Category string

// CategoryDeprecation is the category of every warning emitted by Wrapper.
const CategoryDeprecation Category = "deprecation"

// Caller identifies the frame that invoked a wrapped function.
type Caller struct {
	File     string
	Line     int
	Function string
}

func (c Caller) String() string {
	if c.File == "" {
		return "unknown"
	}
	return c.File + ":" + strconv.Itoa(c.Line)
}

// callerAt resolves the frame skip levels above its own caller.
func callerAt(skip int) Caller {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Caller{}
	}
	c := Caller{File: file, Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		c.Function = fn.Name()
	}
	return c
}

// Warning is a single deprecation notice for one call.
type Warning struct {
	Category Category
	Message  string
	Function string  // Name given with WithName, may be empty
	Affected []Param // Sorted by position, no duplicates
	Caller   Caller  // Call site of the wrapped function
}

// Warner receives warnings. Implementations must be safe for concurrent use
// when the wrapped function is called concurrently.
type Warner interface {
	Warn(Warning)
}

// WarnerFunc adapts a function to Warner.
type WarnerFunc func(Warning)

func (f WarnerFunc) Warn(w Warning) { f(w) }

// Discard drops every warning.
var Discard Warner = WarnerFunc(func(Warning) {})

// SlogWarner logs warnings at slog.LevelWarn.
// A nil Logger means slog.Default() at the time of the warning.
type SlogWarner struct {
	Logger *slog.Logger
}

func (s SlogWarner) Warn(w Warning) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if !logger.Enabled(context.Background(), slog.LevelWarn) {
		return
	}

	names := make([]string, len(w.Affected))
	positions := make([]int, len(w.Affected))
	for i, p := range w.Affected {
		names[i] = p.Name
		positions[i] = p.Position
	}

	attrs := []slog.Attr{
		slog.String("category", string(w.Category)),
		slog.Any("names", names),
		slog.Any("positions", positions),
		slog.String("source", w.Caller.String()),
	}
	if w.Function != "" {
		attrs = append(attrs, slog.String("function", w.Function))
	}
	logger.LogAttrs(context.Background(), slog.LevelWarn, w.Message, attrs...)
}

// Recorder keeps every warning it receives.
type Recorder struct {
	mu       sync.Mutex
	warnings []Warning
}

func (r *Recorder) Warn(w Warning) {
	r.mu.Lock()
	r.warnings = append(r.warnings, w)
	r.mu.Unlock()
}

// Warnings returns a copy of the recorded warnings in arrival order.
func (r *Recorder) Warnings() []Warning {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Warning, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// Len returns the number of recorded warnings.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.warnings)
}

// Reset forgets all recorded warnings.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.warnings = nil
	r.mu.Unlock()
}

type onceKey struct {
	category Category
	message  string
	file     string
	line     int
}

type onceWarner struct {
	next Warner
	seen sync.Map // onceKey -> struct{}
}

// Once returns a Warner that forwards a warning to next only the first time
// its category, message and call site are seen.
func Once(next Warner) Warner {
	return &onceWarner{next: next}
}

func (o *onceWarner) Warn(w Warning) {
	key := onceKey{w.Category, w.Message, w.Caller.File, w.Caller.Line}
	if _, loaded := o.seen.LoadOrStore(key, struct{}{}); loaded {
		return
	}
	o.next.Warn(w)
}

// Multi forwards each warning to every warner in order.
func Multi(warners ...Warner) Warner {
	ws := make([]Warner, 0, len(warners))
	for _, w := range warners {
		if w != nil {
			ws = append(ws, w)
		}
	}
	return WarnerFunc(func(w Warning) {
		for _, next := range ws {
			next.Warn(w)
		}
	})
}
