package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{
		"b": int64(2),
		"a": int64(1),
		"c": "x",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2,"c":"x"}`, string(data))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{"q": "a < b & c > d"})
	require.NoError(t, err)
	assert.Equal(t, `{"q":"a < b & c > d"}`, string(data))
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	// "e" + combining acute normalizes to the precomposed form.
	decomposed := "e\u0301"
	data, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(data))
}

func TestMarshalCanonical_RejectsFloats(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"x": 1.5})
	assert.Error(t, err)
}

func TestMarshalCanonical_RejectsNull(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err)
}

func TestMarshalCanonical_NestedArrays(t *testing.T) {
	data, err := MarshalCanonical([]any{int64(1), []any{"a", true}, map[string]any{}})
	require.NoError(t, err)
	assert.Equal(t, `[1,["a",true],{}]`, string(data))
}
