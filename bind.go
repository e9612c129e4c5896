package fpo

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Bind adapts an ordinary Go function to the Func calling convention.
//
// params names the Go parameters in declaration order, one per parameter;
// reflection is used only to pass values, never to discover names.
// Variadic functions are not supported. fn may return nothing, one value,
// an error, or a value and an error.
//
// Arguments bind positionally first, then by keyword. Binding failures are
// returned as *ArgumentError without calling fn.
//
// PERFORMANCE: every call goes through reflect.Value.Call. Prefer a
// hand-written Func on hot paths.
func Bind(fn any, params ...string) (Func[any], Signature, error) {
	fnVal := reflect.ValueOf(fn)
	if !fnVal.IsValid() || fnVal.Kind() != reflect.Func || fnVal.IsNil() {
		return nil, Signature{}, typeMismatch(-1, "not a callable: %T", fn)
	}
	fnType := fnVal.Type()

	if fnType.IsVariadic() {
		return nil, Signature{}, fmt.Errorf("variadic function %s: %w", fnType, ErrSignature)
	}
	if fnType.NumIn() != len(params) {
		return nil, Signature{}, fmt.Errorf("%s takes %d parameters, %d names given: %w",
			fnType, fnType.NumIn(), len(params), ErrSignature)
	}

	hasErr := fnType.NumOut() > 0 && fnType.Out(fnType.NumOut()-1) == errorType
	values := fnType.NumOut()
	if hasErr {
		values--
	}
	if values > 1 {
		return nil, Signature{}, fmt.Errorf("%s returns %d values, at most 1 plus error supported: %w",
			fnType, values, ErrSignature)
	}

	sig, err := NewSignature(params...)
	if err != nil {
		return nil, Signature{}, err
	}

	name := funcName(fnVal)
	b := &binder{fn: fnVal, typ: fnType, sig: sig, name: name, hasValue: values == 1, hasErr: hasErr}
	return b.call, sig, nil
}

type binder struct {
	fn       reflect.Value
	typ      reflect.Type
	sig      Signature
	name     string
	hasValue bool
	hasErr   bool
}

func (b *binder) call(args []any, kwargs map[string]any) (any, error) {
	n := b.sig.Len()
	if len(args) > n {
		return nil, b.argErr("takes %d positional arguments but %d were given", n, len(args))
	}

	in := make([]reflect.Value, n)
	var missing []string
	for i, param := range b.sig.params {
		var (
			val any
			ok  bool
		)
		if i < len(args) {
			val, ok = args[i], true
			if _, dup := kwargs[param]; dup {
				return nil, b.argErr("got multiple values for argument %s", quote(param))
			}
		} else {
			val, ok = kwargs[param]
		}
		if !ok {
			missing = append(missing, quote(param))
			continue
		}

		rv, err := b.convert(param, b.typ.In(i), val)
		if err != nil {
			return nil, err
		}
		in[i] = rv
	}
	if len(missing) > 0 {
		return nil, b.argErr("missing %d required arguments: %s", len(missing), strings.Join(missing, ", "))
	}
	for kw := range kwargs {
		if _, ok := b.sig.Position(kw); !ok {
			return nil, b.argErr("got an unexpected keyword argument %s", quote(kw))
		}
	}

	out := b.fn.Call(in)

	var (
		result any
		err    error
	)
	if b.hasValue {
		result = out[0].Interface()
	}
	if b.hasErr {
		if e := out[len(out)-1]; !e.IsNil() {
			err = e.Interface().(error)
		}
	}
	return result, err
}

func (b *binder) convert(param string, want reflect.Type, val any) (reflect.Value, error) {
	if val == nil {
		switch want.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(want), nil
		}
		return reflect.Value{}, b.argErr("argument %s: cannot use nil as %s", quote(param), want)
	}
	rv := reflect.ValueOf(val)
	if !rv.Type().AssignableTo(want) {
		return reflect.Value{}, b.argErr("argument %s: cannot use %s as %s", quote(param), rv.Type(), want)
	}
	return rv, nil
}

func (b *binder) argErr(format string, args ...any) error {
	return &ArgumentError{Function: b.name, Reason: fmt.Sprintf(format, args...)}
}

func funcName(v reflect.Value) string {
	fn := runtime.FuncForPC(v.Pointer())
	if fn == nil {
		return ""
	}
	name := fn.Name()
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
