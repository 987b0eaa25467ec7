package gwerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Code]int{
		CodeMalformedInput:      http.StatusBadRequest,
		CodeInvalidEnvelope:     http.StatusBadRequest,
		CodeUnsupportedFormat:   http.StatusBadRequest,
		CodeUpstreamUnavailable: http.StatusInternalServerError,
		CodePersistence:         http.StatusInternalServerError,
	}
	for code, want := range cases {
		t.Run(string(code), func(t *testing.T) {
			assert.Equal(t, want, New(code, "x").HTTPStatus())
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, New(CodeUpstreamUnavailable, "x").IsRetryable())
	assert.False(t, New(CodeInvalidEnvelope, "x").IsRetryable())
	assert.False(t, New(CodePersistence, "x").IsRetryable())
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeUpstreamUnavailable, "node rpc unreachable", cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "UPSTREAM_UNAVAILABLE")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCodeOf(t *testing.T) {
	t.Run("extracts code through wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", New(CodeMalformedInput, "bad input"))
		assert.Equal(t, CodeMalformedInput, CodeOf(err))
	})

	t.Run("returns empty for foreign errors", func(t *testing.T) {
		assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
	})
}

func TestHTTPStatusHelper(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(New(CodeInvalidEnvelope, "x")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}
