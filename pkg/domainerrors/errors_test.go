package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOfAndMessageOf(t *testing.T) {
	err := New(CodeForbidden, "Only approved users can upload documents")

	assert.Equal(t, CodeForbidden, CodeOf(err))
	assert.Equal(t, "Only approved users can upload documents", MessageOf(err))
}

func TestWrapKeepsCauseServerSide(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Internal(cause)

	assert.Equal(t, "Internal server error", MessageOf(err))
	assert.ErrorIs(t, err, cause)
	// the cause is visible in the full error string for logs
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsMatchesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handling request: %w", New(CodeNotFound, "User not found"))

	require.True(t, Is(err, CodeNotFound))
	assert.False(t, Is(err, CodeConflict))
}

func TestUnclassifiedErrorsAreInternal(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.Equal(t, "Internal server error", MessageOf(err))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:   http.StatusBadRequest,
		CodeConflict:     http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeNotFound:     http.StatusNotFound,
		CodeInternal:     http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}
