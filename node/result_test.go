package node

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractHash(t *testing.T) {
	cases := []struct {
		name   string
		result string
		want   string
		found  bool
	}{
		{"direct hash", `{"hash":"ABC"}`, "ABC", true},
		{"txhash", `{"txhash":"DEF"}`, "DEF", true},
		{"nested deliver_tx", `{"deliver_tx":{"hash":"GHI"}}`, "GHI", true},
		{"nested tx_response", `{"tx_response":{"txhash":"JKL"}}`, "JKL", true},
		{"direct hash wins over nested", `{"hash":"ABC","deliver_tx":{"hash":"GHI"}}`, "ABC", true},
		{"txhash wins over nested", `{"txhash":"DEF","tx_response":{"txhash":"JKL"}}`, "DEF", true},
		{"absent", `{"code":0}`, "", false},
		{"empty string", `{"hash":""}`, "", false},
		{"non-string", `{"hash":7}`, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := decodeResult(json.RawMessage(tc.result))
			require.NoError(t, err)
			hash, ok := ExtractHash(parsed)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.want, hash)
		})
	}
}

func TestExtractHeight(t *testing.T) {
	cases := []struct {
		name   string
		result string
		want   uint64
		found  bool
	}{
		{"numeric height", `{"height":42}`, 42, true},
		{"string height", `{"height":"42"}`, 42, true},
		{"nested deliver_tx", `{"deliver_tx":{"height":"7"}}`, 7, true},
		{"nested tx_response", `{"tx_response":{"height":9}}`, 9, true},
		{"absent", `{"hash":"ABC"}`, 0, false},
		{"non-numeric", `{"height":"soon"}`, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := decodeResult(json.RawMessage(tc.result))
			require.NoError(t, err)
			height, ok := ExtractHeight(parsed)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.want, height)
		})
	}
}

func TestParseBroadcastResult(t *testing.T) {
	t.Run("hash and height", func(t *testing.T) {
		hash, height, err := ParseBroadcastResult(json.RawMessage(`{"hash":"ABC123","height":42}`))
		require.NoError(t, err)
		assert.Equal(t, "ABC123", hash)
		require.NotNil(t, height)
		assert.Equal(t, uint64(42), *height)
	})

	t.Run("missing hash is not an error", func(t *testing.T) {
		hash, height, err := ParseBroadcastResult(json.RawMessage(`{"code":0}`))
		require.NoError(t, err)
		assert.Empty(t, hash)
		assert.Nil(t, height)
	})

	t.Run("non-object result is an error", func(t *testing.T) {
		_, _, err := ParseBroadcastResult(json.RawMessage(`"nope"`))
		require.Error(t, err)
	})
}
