package main

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestEnvToMap(t *testing.T) {
	got := envToMap([]string{"PATH=/usr/bin", "EMPTY=", "MALFORMED", "A=b=c"})
	assert.Equal(t, got["PATH"], "/usr/bin")
	assert.Equal(t, got["EMPTY"], "")
	assert.Equal(t, got["A"], "b=c")
	_, hasMalformed := got["MALFORMED"]
	assert.Equal(t, hasMalformed, false)
}
