// Package metrics counts deprecated keyword usage with Prometheus.
package metrics

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"

	fpo "github.com/neutrinoceros/future-positional-only"
)

// maxLabelLen is the maximum length for a metric label value
const maxLabelLen = 64

func sanitizeLabel(s string) string {
	if s == "" {
		return "unknown"
	}
	s = strings.ToValidUTF8(strings.ReplaceAll(s, " ", "_"), "_")
	if len(s) > maxLabelLen {
		// Cut on a rune boundary; label values must stay valid UTF-8.
		n := maxLabelLen
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
		s = s[:n]
	}
	return s
}

// Warner is an fpo.Warner that counts every affected name of every warning
// and then forwards the warning to Next, if set.
type Warner struct {
	Next fpo.Warner

	uses     *prometheus.CounterVec
	warnings *prometheus.CounterVec
}

// NewWarner creates the collectors and registers them on reg.
// A collector that is already registered is reused.
func NewWarner(reg prometheus.Registerer, next fpo.Warner) (*Warner, error) {
	w := &Warner{
		Next: next,
		uses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fpo",
				Name:      "deprecated_keyword_total",
				Help:      "Parameters passed by keyword that are becoming positional-only, by function and name",
			},
			[]string{"function", "name"},
		),
		warnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fpo",
				Name:      "warnings_total",
				Help:      "Deprecation warnings emitted, by function",
			},
			[]string{"function"},
		),
	}

	var err error
	if w.uses, err = register(reg, w.uses); err != nil {
		return nil, err
	}
	if w.warnings, err = register(reg, w.warnings); err != nil {
		return nil, err
	}
	return w, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

func (w *Warner) Warn(warning fpo.Warning) {
	fn := sanitizeLabel(warning.Function)
	w.warnings.WithLabelValues(fn).Inc()
	for _, p := range warning.Affected {
		w.uses.WithLabelValues(fn, sanitizeLabel(p.Name)).Inc()
	}
	if w.Next != nil {
		w.Next.Warn(warning)
	}
}
