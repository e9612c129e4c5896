package fpo

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Typed errors in this package match them with errors.Is.
var (
	ErrTypeMismatch = errors.New("type mismatch")
	ErrUnknownName  = errors.New("unknown parameter name")
	ErrLookup       = errors.New("lookup failed")
	ErrArgument     = errors.New("invalid arguments")
	ErrSignature    = errors.New("invalid signature")
)

// ConfigError reports a malformed deprecated-name configuration.
// It is returned at decoration time, before any call is made.
type ConfigError struct {
	Kind   error  // ErrTypeMismatch or ErrUnknownName
	Index  int    // Offending element, -1 when the container itself is wrong
	Reason string // Human readable description
}

func (e *ConfigError) Error() string {
	return e.Reason
}

func (e *ConfigError) Is(target error) bool {
	return target == e.Kind
}

func typeMismatch(index int, format string, args ...any) *ConfigError {
	return &ConfigError{Kind: ErrTypeMismatch, Index: index, Reason: fmt.Sprintf(format, args...)}
}

// LookupError is returned by a call when a name supplied as keyword has no
// declared position. Only reachable with WithLazyResolution.
type LookupError struct {
	Name string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s is not in the parameter list", quote(e.Name))
}

func (e *LookupError) Is(target error) bool {
	return target == ErrLookup
}

// SignatureError reports an invalid parameter list passed to NewSignature.
type SignatureError struct {
	Index  int
	Reason string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("params[%d]: %s", e.Index, e.Reason)
}

func (e *SignatureError) Is(target error) bool {
	return target == ErrSignature
}

// ArgumentError is returned by functions adapted with Bind when the
// arguments of a call cannot be bound to the Go parameters.
type ArgumentError struct {
	Function string
	Reason   string
}

func (e *ArgumentError) Error() string {
	if e.Function == "" {
		return e.Reason
	}
	return e.Function + "(): " + e.Reason
}

func (e *ArgumentError) Is(target error) bool {
	return target == ErrArgument
}
