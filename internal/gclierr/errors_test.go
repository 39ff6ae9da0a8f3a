package gclierr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorExitCode(t *testing.T) {
	require.Equal(t, 1, Usagef("missing action").ExitCode())
	require.Equal(t, 2, Dataf("github", "not found").ExitCode())
	require.Equal(t, 2, Transportf("gitlab", true, "timeout").ExitCode())
	require.Equal(t, 2, Unsupportedf("gitea", "pull_create_review").ExitCode())
	require.Equal(t, 2, Parsef("bad hunk header").ExitCode())
}

func TestErrorIsByKind(t *testing.T) {
	a := Usagef("x")
	b := Usagef("y")
	c := Dataf("github", "z")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestNewTransportErrorRetryable(t *testing.T) {
	assert.True(t, NewTransportError("github", 503, "unavailable").Retryable)
	assert.True(t, NewTransportError("github", 429, "rate limited").Retryable)
	assert.False(t, NewTransportError("github", 404, "not found").Retryable)
	assert.True(t, NewTransportError("github", 0, "dial failed").Retryable)
}

func TestErrorMessageIncludesBackend(t *testing.T) {
	err := Dataf("gitea", "label %q not found", "bug")
	assert.Contains(t, err.Error(), "gitea")
	assert.Contains(t, err.Error(), "bug")
}
