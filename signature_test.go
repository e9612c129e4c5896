package fpo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSignature(t *testing.T) {
	sig, err := NewSignature("a", "b", "c")
	require.NoError(t, err)

	assert.Equal(t, 3, sig.Len())
	assert.Equal(t, []string{"a", "b", "c"}, sig.Params())
	pos, ok := sig.Position("c")
	assert.True(t, ok)
	assert.Equal(t, 2, pos)
	_, ok = sig.Position("z")
	assert.False(t, ok)

	_, err = NewSignature("a", "")
	assert.ErrorIs(t, err, ErrSignature)

	_, err = NewSignature("a", "b", "a")
	var sigErr *SignatureError
	require.True(t, errors.As(err, &sigErr))
	assert.Equal(t, 2, sigErr.Index)
}

func TestNewSignature_Empty(t *testing.T) {
	sig, err := NewSignature()
	require.NoError(t, err)
	assert.Zero(t, sig.Len())
}

func TestParseNames(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    []string
		wantErr string
		index   int
	}{
		{name: "string slice", in: []string{"a", "b"}, want: []string{"a", "b"}},
		{name: "any slice", in: []any{"a", "a", "c"}, want: []string{"a", "a", "c"}},
		{name: "array", in: [2]string{"x", "y"}, want: []string{"x", "y"}},
		{name: "empty", in: []any{}, want: []string{}},
		{name: "nil", in: nil, wantErr: "names must be an ordered sequence, got <nil>", index: -1},
		{name: "string", in: "abc", wantErr: "names must be an ordered sequence, got string", index: -1},
		{name: "map", in: map[string]any{"a": 1}, wantErr: "names must be an ordered sequence, got map[string]interface {}", index: -1},
		{name: "int element", in: []any{"a", 1}, wantErr: "names[1] must be a string", index: 1},
		{name: "nil element", in: []any{nil}, wantErr: "names[0] must be a string", index: 0},
		{name: "int slice", in: []int{1}, wantErr: "names[0] must be a string", index: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNames(tt.in)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.ErrorIs(t, err, ErrTypeMismatch)
			assert.EqualError(t, err, tt.wantErr)
			assert.Equal(t, tt.index, cfgErr.Index)
		})
	}
}
