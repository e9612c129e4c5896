package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fpo "github.com/neutrinoceros/future-positional-only"
)

const sample = `
functions:
  - name: noop
    params: [a, b, c, d]
    deprecated: [a, a, c, d]
  - name: open
    params: [file, mode]
    deprecated: [mode]
calls:
  - function: noop
    args: 4
  - function: noop
    args: 1
    kwargs: [d, b, c]
  - function: open
    args: 1
    kwargs: [mode]
  - function: open
    args: 2
    kwargs: [mode]
`

func TestLoad_BuildSimulate(t *testing.T) {
	m, err := Load(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, m.Functions, 2)
	require.Len(t, m.Calls, 4)

	rec := &fpo.Recorder{}
	wrappers, err := m.Build(fpo.WithWarner(rec))
	require.NoError(t, err)
	assert.Equal(t, []fpo.Param{{Name: "a", Position: 0}, {Name: "c", Position: 2}, {Name: "d", Position: 3}},
		wrappers["noop"].Names())

	outcomes, err := m.Simulate(wrappers)
	require.NoError(t, err)
	require.Len(t, outcomes, 4)
	for _, o := range outcomes[:3] {
		assert.NoError(t, o.Err)
	}
	assert.ErrorIs(t, outcomes[3].Err, fpo.ErrArgument)

	warnings := rec.Warnings()
	require.Len(t, warnings, 3)
	assert.Equal(t, "noop", warnings[0].Function)
	assert.Contains(t, warnings[0].Message, "Passing ['c', 'd'] arguments as keywords (at positions [2, 3], respectively)")
	assert.Equal(t, "open", warnings[1].Function)
	assert.Contains(t, warnings[1].Message, "Passing 'mode' as keyword (at position 1)")
}

func TestBuild_InvalidDeprecated(t *testing.T) {
	tests := map[string]string{
		"mapping": `
functions:
  - name: f
    params: [a]
    deprecated: {a: 1}
`,
		"scalar": `
functions:
  - name: f
    params: [a]
    deprecated: a
`,
		"number element": `
functions:
  - name: f
    params: [a]
    deprecated: [a, 3]
`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			m, err := Load(strings.NewReader(doc))
			require.NoError(t, err)
			_, err = m.Build()
			assert.ErrorIs(t, err, fpo.ErrTypeMismatch)
			assert.Contains(t, err.Error(), "function f:")
		})
	}
}

func TestBuild_UnknownName(t *testing.T) {
	m, err := Load(strings.NewReader(`
functions:
  - name: f
    params: [a]
    deprecated: [b]
`))
	require.NoError(t, err)

	_, err = m.Build()
	assert.ErrorIs(t, err, fpo.ErrUnknownName)

	_, err = m.Build(fpo.WithLazyResolution())
	assert.NoError(t, err)
}

func TestBuild_Duplicates(t *testing.T) {
	m := &Manifest{Functions: []Function{{Name: "f"}, {Name: "f"}}}
	_, err := m.Build()
	assert.ErrorContains(t, err, "duplicate function")

	m = &Manifest{Functions: []Function{{Name: "f", Params: []string{"a", "a"}}}}
	_, err = m.Build()
	assert.ErrorIs(t, err, fpo.ErrSignature)
}

func TestSimulate_Errors(t *testing.T) {
	m := &Manifest{
		Functions: []Function{{Name: "f", Params: []string{"a"}}},
		Calls:     []Call{{Function: "g"}},
	}
	wrappers, err := m.Build()
	require.NoError(t, err)
	_, err = m.Simulate(wrappers)
	assert.ErrorContains(t, err, `unknown function "g"`)

	m.Calls = []Call{{Function: "f", Args: 2}}
	_, err = m.Simulate(wrappers)
	assert.ErrorContains(t, err, "takes 1 arguments")
}

func TestSimulate_BindingErrors(t *testing.T) {
	m := &Manifest{
		Functions: []Function{{Name: "f", Params: []string{"a", "b"}, Deprecated: []any{"b"}}},
		Calls: []Call{
			{Function: "f", Args: 1, Kwargs: []string{"b"}},
			{Function: "f", Kwargs: []string{"a", "zz"}},
			{Function: "f", Args: 1},
			{Function: "f", Args: 1, Kwargs: []string{"b", "b"}},
		},
	}
	rec := &fpo.Recorder{}
	wrappers, err := m.Build(fpo.WithWarner(rec))
	require.NoError(t, err)

	outcomes, err := m.Simulate(wrappers)
	require.NoError(t, err)
	require.Len(t, outcomes, 4)
	assert.NoError(t, outcomes[0].Err)
	assert.ErrorIs(t, outcomes[1].Err, fpo.ErrArgument)
	assert.ErrorContains(t, outcomes[1].Err, `unexpected keyword argument "zz"`)
	assert.ErrorIs(t, outcomes[2].Err, fpo.ErrArgument)
	assert.ErrorContains(t, outcomes[2].Err, `missing required arguments: "b"`)
	assert.ErrorIs(t, outcomes[3].Err, fpo.ErrArgument)
	assert.ErrorContains(t, outcomes[3].Err, "keyword argument repeated")

	// The repeated-keyword call never reaches the wrapper.
	assert.Equal(t, 1, rec.Len())
}

func TestStub(t *testing.T) {
	call := stub(fpo.MustSignature("a", "b"))
	tests := map[string]struct {
		args   []any
		kwargs map[string]any
		reason string
	}{
		"positional":      {args: []any{0, 1}},
		"keyword":         {kwargs: map[string]any{"b": 1, "a": 0}},
		"unknown keyword": {kwargs: map[string]any{"a": 0, "zz": 1}, reason: "unexpected keyword argument"},
		"missing":         {args: []any{0}, reason: "missing required arguments"},
		"too many":        {args: []any{0, 1, 2}, reason: "takes 2 positional arguments but 3 were given"},
		"multiple values": {args: []any{0}, kwargs: map[string]any{"a": 0, "b": 1}, reason: `multiple values for argument "a"`},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := call(tt.args, tt.kwargs)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, fpo.ErrArgument)
			assert.ErrorContains(t, err, tt.reason)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(strings.NewReader("functions:\n  - name: f\n    bogus: 1\n"))
	assert.Error(t, err)

	m, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, m.Functions)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fpo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	m, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, m.Functions, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
