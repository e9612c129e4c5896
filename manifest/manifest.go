// Package manifest loads deprecation plans from YAML and replays sample
// calls against them.
//
// A manifest declares functions with their parameter order and the
// parameters that are becoming positional-only, and optionally a list of
// calls to check:
//
//	functions:
//	  - name: noop
//	    params: [a, b, c, d]
//	    deprecated: [a, b, c, d]
//	calls:
//	  - function: noop
//	    args: 3
//	    kwargs: [d]
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	fpo "github.com/neutrinoceros/future-positional-only"
)

// Manifest is a decoded deprecation plan.
type Manifest struct {
	Functions []Function `yaml:"functions"`
	Calls     []Call     `yaml:"calls"`
}

// Function declares one function. Deprecated is kept untyped so that it is
// validated by fpo.ParseNames exactly like any other untyped configuration.
type Function struct {
	Name       string   `yaml:"name"`
	Params     []string `yaml:"params"`
	Deprecated any      `yaml:"deprecated"`
}

// Call describes a sample call: the first Args parameters are passed
// positionally, Kwargs by name.
type Call struct {
	Function string   `yaml:"function"`
	Args     int      `yaml:"args"`
	Kwargs   []string `yaml:"kwargs"`
}

// Load decodes a manifest. Unknown fields are rejected.
func Load(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return &m, nil
		}
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// LoadFile reads and decodes the manifest at path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Build validates every function and wraps a no-op implementation of each.
// opts are applied after WithName, so a caller may still override it.
func (m *Manifest) Build(opts ...fpo.Option) (map[string]*fpo.Wrapper[any], error) {
	wrappers := make(map[string]*fpo.Wrapper[any], len(m.Functions))
	for i, f := range m.Functions {
		if f.Name == "" {
			return nil, fmt.Errorf("functions[%d]: missing name", i)
		}
		if _, dup := wrappers[f.Name]; dup {
			return nil, fmt.Errorf("functions[%d]: duplicate function %q", i, f.Name)
		}

		sig, err := fpo.NewSignature(f.Params...)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", f.Name, err)
		}
		var names []string
		if f.Deprecated != nil {
			if names, err = fpo.ParseNames(f.Deprecated); err != nil {
				return nil, fmt.Errorf("function %s: %w", f.Name, err)
			}
		}

		w, err := fpo.Wrap(stub(sig), sig, names, append([]fpo.Option{fpo.WithName(f.Name)}, opts...)...)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", f.Name, err)
		}
		wrappers[f.Name] = w
	}
	return wrappers, nil
}

// stub stands in for the real implementation; it only checks that the call
// binds to the declared parameters.
func stub(sig fpo.Signature) fpo.Func[any] {
	return func(args []any, kwargs map[string]any) (any, error) {
		params := sig.Params()
		if len(args) > len(params) {
			return nil, &fpo.ArgumentError{Reason: fmt.Sprintf("takes %d positional arguments but %d were given", len(params), len(args))}
		}
		for kw := range kwargs {
			if _, ok := sig.Position(kw); !ok {
				return nil, &fpo.ArgumentError{Reason: fmt.Sprintf("got an unexpected keyword argument %q", kw)}
			}
		}

		var missing []string
		for i, p := range params {
			_, byKeyword := kwargs[p]
			switch {
			case i < len(args) && byKeyword:
				return nil, &fpo.ArgumentError{Reason: fmt.Sprintf("got multiple values for argument %q", p)}
			case i >= len(args) && !byKeyword:
				missing = append(missing, strconv.Quote(p))
			}
		}
		if len(missing) > 0 {
			return nil, &fpo.ArgumentError{Reason: "missing required arguments: " + strings.Join(missing, ", ")}
		}
		return nil, nil
	}
}

// Outcome is the result of replaying one Call.
type Outcome struct {
	Call Call
	Err  error
}

// Simulate replays m.Calls against wrappers built by Build. Deprecation
// warnings go to the warner configured at Build time; Simulate reports
// only call errors.
func (m *Manifest) Simulate(wrappers map[string]*fpo.Wrapper[any]) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(m.Calls))
	for i, c := range m.Calls {
		w, ok := wrappers[c.Function]
		if !ok {
			return nil, fmt.Errorf("calls[%d]: unknown function %q", i, c.Function)
		}
		params := w.Signature().Params()
		if c.Args < 0 || c.Args > len(params) {
			return nil, fmt.Errorf("calls[%d]: %s takes %d arguments, %d positional given", i, c.Function, len(params), c.Args)
		}

		args := make([]any, c.Args)
		for j := range args {
			args[j] = j
		}
		var kwargs map[string]any
		if len(c.Kwargs) > 0 {
			kwargs = make(map[string]any, len(c.Kwargs))
			for _, name := range c.Kwargs {
				kwargs[name] = name
			}
		}
		if len(kwargs) != len(c.Kwargs) {
			// A keyword map cannot hold a repeated name; the call is invalid as written.
			outcomes = append(outcomes, Outcome{Call: c, Err: &fpo.ArgumentError{
				Function: c.Function,
				Reason:   fmt.Sprintf("keyword argument repeated in %v", c.Kwargs),
			}})
			continue
		}

		_, err := w.Call(args, kwargs)
		outcomes = append(outcomes, Outcome{Call: c, Err: err})
	}
	return outcomes, nil
}
