package main

import (
	"errors"
	"log/slog"
	"testing"

	"gotest.tools/v3/assert"
)

func TestNewExitError(t *testing.T) {
	assert.Assert(t, newExitError(0) == nil)

	err := newExitError(1)
	assert.ErrorContains(t, err, "build command exited non-zero")

	var ee *exitError
	assert.Assert(t, errors.As(err, &ee))
	assert.Equal(t, ee.code, 1)
}

func TestExitCodeFor(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	assert.Equal(t, exitCodeFor(nil, logger), 0)
	assert.Equal(t, exitCodeFor(newExitError(7), logger), 7)
	assert.Equal(t, exitCodeFor(errors.New("boom"), logger), exitFailure)
}
