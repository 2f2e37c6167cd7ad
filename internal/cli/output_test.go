package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitError_MessageFormatting(t *testing.T) {
	bare := &ExitError{Code: ExitCommandError, Message: "failed to load configuration"}
	assert.Equal(t, "failed to load configuration", bare.Error())

	wrapped := WrapExitError(ExitFailure, "server error", errors.New("port in use"))
	assert.Equal(t, "server error: port in use", wrapped.Error())
	assert.Equal(t, "port in use", wrapped.Unwrap().Error())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError,
		GetExitCode(WrapExitError(ExitCommandError, "bad config", nil)))

	// Wrapped ExitErrors still surface their code.
	err := fmt.Errorf("running command: %w", WrapExitError(ExitFailure, "boom", nil))
	assert.Equal(t, ExitFailure, GetExitCode(err))

	// Anything else maps to the generic failure code.
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("unknown")))
}

func TestNewRootCommand_RegistersSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["load"])
	assert.True(t, names["ask"])
}
