package fpo

import (
	"fmt"
	"reflect"
	"slices"
)

// Signature is the declared, ordered parameter list of a wrapped function.
//
// Positions are zero-based and follow declaration order. A Signature is
// immutable once built and safe for concurrent reads.
type Signature struct {
	params    []string
	positions map[string]int
}

// Param is a parameter name together with its declared position.
type Param struct {
	Name     string
	Position int
}

// NewSignature builds the name→position table for params.
// Names must be non-empty and unique.
func NewSignature(params ...string) (Signature, error) {
	positions := make(map[string]int, len(params))
	for i, p := range params {
		if p == "" {
			return Signature{}, &SignatureError{Index: i, Reason: "empty parameter name"}
		}
		if j, dup := positions[p]; dup {
			return Signature{}, &SignatureError{Index: i, Reason: fmt.Sprintf("duplicate parameter %s (first at %d)", quote(p), j)}
		}
		positions[p] = i
	}
	return Signature{params: slices.Clone(params), positions: positions}, nil
}

// MustSignature is like NewSignature but panics on error.
// Intended for package-level declarations.
func MustSignature(params ...string) Signature {
	sig, err := NewSignature(params...)
	if err != nil {
		panic(err)
	}
	return sig
}

// Position returns the declared position of name.
func (s Signature) Position(name string) (int, bool) {
	p, ok := s.positions[name]
	return p, ok
}

// Params returns a copy of the declared parameter names.
func (s Signature) Params() []string { return slices.Clone(s.params) }

// Len returns the number of declared parameters.
func (s Signature) Len() int { return len(s.params) }

// ParseNames validates an untyped deprecated-name configuration, such as a
// decoded YAML document or an interpreter value.
//
// v must be an ordered sequence (slice or array) and every element must be
// a string. Errors are *ConfigError matching ErrTypeMismatch.
func ParseNames(v any) ([]string, error) {
	switch names := v.(type) {
	case []string:
		return slices.Clone(names), nil
	case []any:
		out := make([]string, len(names))
		for i, elem := range names {
			s, ok := elem.(string)
			if !ok {
				return nil, typeMismatch(i, "names[%d] must be a string", i)
			}
			out[i] = s
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, typeMismatch(-1, "names must be an ordered sequence, got %T", v)
	}
	out := make([]string, rv.Len())
	for i := range out {
		elem := rv.Index(i)
		if elem.Kind() == reflect.Interface {
			elem = elem.Elem()
		}
		if !elem.IsValid() || elem.Kind() != reflect.String {
			return nil, typeMismatch(i, "names[%d] must be a string", i)
		}
		out[i] = elem.String()
	}
	return out, nil
}

// resolve validates names against sig and returns the unique configured
// names as params sorted by position. With lazy set, names missing from
// sig are kept with Position -1 instead of failing.
func resolve(sig Signature, names []string, lazy bool) ([]Param, error) {
	seen := make(map[string]bool, len(names))
	out := make([]Param, 0, len(names))
	for i, name := range names {
		if name == "" {
			return nil, typeMismatch(i, "names[%d] must be a non-empty string", i)
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		pos, ok := sig.Position(name)
		if !ok {
			if !lazy {
				return nil, &ConfigError{
					Kind:   ErrUnknownName,
					Index:  i,
					Reason: fmt.Sprintf("names[%d]: %s is not a declared parameter", i, quote(name)),
				}
			}
			pos = -1
		}
		out = append(out, Param{Name: name, Position: pos})
	}
	sortParams(out)
	return out, nil
}

// sortParams orders by position; unresolved entries (-1) go last in
// configuration order.
func sortParams(ps []Param) {
	slices.SortStableFunc(ps, func(a, b Param) int {
		switch {
		case a.Position == b.Position:
			return 0
		case a.Position < 0:
			return 1
		case b.Position < 0:
			return -1
		}
		return a.Position - b.Position
	})
}
