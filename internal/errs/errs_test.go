package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	plain := NewValidation("bad-name", "the name is invalid")
	assert.Equal(t, "bad-name: the name is invalid", plain.Error())

	wrapped := NewIO("config-read", "could not read config", errors.New("permission denied"))
	assert.Equal(t, "config-read: could not read config: permission denied", wrapped.Error())
	assert.Equal(t, "permission denied", errors.Unwrap(wrapped).Error())
}

func TestIsMatchesOnKindAndCode(t *testing.T) {
	err := NewValidation("project-exists", "a project with that name already exists")
	target := NewValidation("project-exists", "different message")

	assert.True(t, errors.Is(err, target))
	assert.False(t, errors.Is(err, NewValidation("other-code", "different message")))
	assert.False(t, errors.Is(err, errors.New("project-exists")))
}

func TestWithContextChains(t *testing.T) {
	err := NewCommand("poetry-install", "install failed", nil).
		WithContext("argv", "poetry install").
		WithContext("exit_code", 1)

	require.NotNil(t, err.Context)
	assert.Equal(t, "poetry install", err.Context["argv"])
	assert.Equal(t, 1, err.Context["exit_code"])
}

func TestUserMessage(t *testing.T) {
	t.Run("plain error falls back to Error", func(t *testing.T) {
		assert.Equal(t, "boom", UserMessage(errors.New("boom")))
	})

	t.Run("structured error shows the message only", func(t *testing.T) {
		err := NewValidation("bad-name", "Please choose a valid name.")
		assert.Equal(t, "Please choose a valid name.", UserMessage(err))
	})

	t.Run("log file path is appended", func(t *testing.T) {
		err := NewCommand("poetry-install", "Install failed.", nil).
			WithLogFile("/tmp/poetry-install-error-1.txt")
		assert.Equal(t,
			"Install failed.\nDetailed error information saved to /tmp/poetry-install-error-1.txt",
			UserMessage(err))
	})

	t.Run("wrapped structured error is still unwrapped", func(t *testing.T) {
		inner := NewValidation("bad-name", "Please choose a valid name.")
		err := fmt.Errorf("running create: %w", inner)
		assert.Equal(t, "Please choose a valid name.", UserMessage(err))
	})
}
