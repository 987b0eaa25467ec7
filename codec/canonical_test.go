package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	t.Run("is independent of key insertion order", func(t *testing.T) {
		a, err := Canonicalize(json.RawMessage(`{"a":1,"b":2}`))
		require.NoError(t, err)
		b, err := Canonicalize(json.RawMessage(`{"b":2,"a":1}`))
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Equal(t, `{"a":1,"b":2}`, string(a))
	})

	t.Run("sorts keys at every nesting level", func(t *testing.T) {
		a, err := Canonicalize(json.RawMessage(`{"outer":{"z":1,"a":{"y":2,"b":3}},"first":true}`))
		require.NoError(t, err)
		b, err := Canonicalize(json.RawMessage(`{"first":true,"outer":{"a":{"b":3,"y":2},"z":1}}`))
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b))
	})

	t.Run("preserves array order", func(t *testing.T) {
		out, err := Canonicalize(json.RawMessage(`{"list":[3,1,2]}`))
		require.NoError(t, err)
		assert.Equal(t, `{"list":[3,1,2]}`, string(out))
	})

	t.Run("serializes null as the literal", func(t *testing.T) {
		out, err := Canonicalize(json.RawMessage(`{"x":null}`))
		require.NoError(t, err)
		assert.Equal(t, `{"x":null}`, string(out))
	})

	t.Run("keeps numeric literals intact", func(t *testing.T) {
		out, err := Canonicalize(json.RawMessage(`{"big":12345678901234567890,"dec":0.1}`))
		require.NoError(t, err)
		assert.Equal(t, `{"big":12345678901234567890,"dec":0.1}`, string(out))
	})

	t.Run("does not escape html characters", func(t *testing.T) {
		out, err := Canonicalize(json.RawMessage(`{"s":"a<b>&c"}`))
		require.NoError(t, err)
		assert.Equal(t, `{"s":"a<b>&c"}`, string(out))
	})

	t.Run("accepts maps", func(t *testing.T) {
		out, err := Canonicalize(map[string]any{"b": 2, "a": 1})
		require.NoError(t, err)
		assert.Equal(t, `{"a":1,"b":2}`, string(out))
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		_, err := Canonicalize(json.RawMessage(`{"a":`))
		require.Error(t, err)
	})

	t.Run("rejects trailing data", func(t *testing.T) {
		_, err := Canonicalize(json.RawMessage(`{"a":1}{"b":2}`))
		require.Error(t, err)
	})
}
