package oai

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf_ClassifiedError(t *testing.T) {
	err := NewError(CodeBadArgument, "unknown argument %q", "foo")

	code, ok := CodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, CodeBadArgument, code)
	assert.Equal(t, `badArgument: unknown argument "foo"`, err.Error())
}

func TestCodeOf_WrappedError(t *testing.T) {
	err := fmt.Errorf("handling request: %w", NewError(CodeNoRecordsMatch, ""))

	code, ok := CodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, CodeNoRecordsMatch, code)
}

func TestCodeOf_UnclassifiedError(t *testing.T) {
	code, ok := CodeOf(errors.New("disk on fire"))

	assert.False(t, ok)
	assert.Equal(t, CodeInternal, code)
}
