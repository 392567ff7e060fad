package hhscan

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntimeError(t *testing.T) {
	base := errors.New("config missing")
	err := NewRuntimeError(base)

	assert.True(t, IsRuntimeError(err))
	assert.True(t, IsRuntimeError(fmt.Errorf("wrapped: %w", err)))
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "runtime error")

	assert.False(t, IsRuntimeError(nil))
	assert.False(t, IsRuntimeError(base))
}

func TestTestFailureError(t *testing.T) {
	err := NewTestFailureError("3 packages failed")

	assert.True(t, IsTestFailureError(err))
	assert.True(t, IsTestFailureError(fmt.Errorf("wrapped: %w", err)))
	assert.Contains(t, err.Error(), "3 packages failed")

	assert.False(t, IsTestFailureError(nil))
	assert.False(t, IsTestFailureError(errors.New("plain")))
	assert.False(t, IsRuntimeError(err))
}
