package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypes(t *testing.T) {
	tests := []struct {
		name    string
		typ     Type
		value   any
		wantErr bool
	}{
		{"string ok", String(), "x", false},
		{"string rejects int", String(), 1, true},
		{"int ok", Int(), 42, false},
		{"int accepts whole float", Int(), float64(3), false},
		{"int rejects fraction", Int(), 3.5, true},
		{"int rejects string", Int(), "3", true},
		{"float accepts int", Float(), 2, false},
		{"float ok", Float(), 2.5, false},
		{"bool ok", Bool(), true, false},
		{"bool rejects string", Bool(), "true", true},
		{"object map", Object(), map[string]any{"a": 1}, false},
		{"object struct", Object(), struct{ A int }{1}, false},
		{"object rejects slice", Object(), []any{1}, true},
		{"slice ok", Slice(String()), []any{"a", "b"}, false},
		{"slice typed", Slice(Int()), []int{1, 2}, false},
		{"slice bad element", Slice(String()), []any{"a", 1}, true},
		{"slice rejects scalar", Slice(String()), "a", true},
		{"any accepts nil", Any(), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.typ.Validate(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseType(t *testing.T) {
	for _, name := range []string{"string", "int", "float", "bool", "object", "any", "[string]", "[[int]]"} {
		typ, err := ParseType(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, typ.Name())
	}

	_, err := ParseType("date")
	assert.Error(t, err)
	_, err = ParseType("[date]")
	assert.Error(t, err)
}

func TestSchema_Validate(t *testing.T) {
	s, err := Parse(map[string]string{"Size": "int", "Tags": "[string]"})
	require.NoError(t, err)

	assert.NoError(t, s.Validate("Size", 3))
	assert.NoError(t, s.Validate("Tags", []any{"a"}))
	assert.NoError(t, s.Validate("Unknown", struct{}{}))

	err = s.Validate("Size", "big")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Size", ve.Type)
	assert.Equal(t, "big", ve.Value)
	assert.Equal(t, `attribute "Size": expected int, got string`, err.Error())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse(map[string]string{"Size": "integer"})
	assert.ErrorContains(t, err, "attribute Size")
}

func TestSchema_Describe(t *testing.T) {
	s := Schema{"Size": Int(), "Tags": Slice(String())}
	assert.Equal(t, map[string]string{"Size": "int", "Tags": "[string]"}, s.Describe())
}
