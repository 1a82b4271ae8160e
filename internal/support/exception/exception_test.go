package exception_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tigerroll/riptide/internal/support/exception"
)

func TestNewETLError(t *testing.T) {
	originalErr := errors.New("db connection refused")
	e := exception.NewETLError("lineage", "failed to connect", originalErr)

	assert.Equal(t, "lineage", e.Module)
	assert.Equal(t, "failed to connect", e.Message)
	assert.Equal(t, originalErr, e.Unwrap())
	assert.False(t, e.IsSkippable())
	assert.Contains(t, e.Error(), "[lineage] failed to connect: db connection refused")
	assert.NotEmpty(t, e.StackTrace)
}

func TestNewETLErrorWithoutOriginal(t *testing.T) {
	e := exception.NewETLError("zone", "unknown zone", nil)

	assert.Nil(t, e.Unwrap())
	assert.Equal(t, "[zone] unknown zone", e.Error())
}

func TestNewETLErrorf(t *testing.T) {
	e := exception.NewETLErrorf("source", "row %d is malformed", 7)

	assert.Nil(t, e.Unwrap())
	assert.Contains(t, e.Error(), "[source] row 7 is malformed")
}

func TestNewSkippableETLError(t *testing.T) {
	e := exception.NewSkippableETLError("extract", "source file missing", nil)
	assert.True(t, e.IsSkippable())
}

func TestErrorsIsFindsWrappedError(t *testing.T) {
	sentinel := errors.New("sentinel")
	e := exception.NewETLError("pipeline", "stage failed", sentinel)

	assert.True(t, errors.Is(e, sentinel))
}

func TestIsETLError(t *testing.T) {
	assert.True(t, exception.IsETLError(exception.NewETLErrorf("config", "bad value")))
	assert.False(t, exception.IsETLError(errors.New("plain")))
	assert.False(t, exception.IsETLError(nil))
}
