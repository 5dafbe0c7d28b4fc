package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordstat/prosjekt/internal/errs"
)

func TestRunSuccess(t *testing.T) {
	out := &bytes.Buffer{}
	e := New(out, t.TempDir())

	result, err := e.Run(context.Background(), Command{
		Argv:           []string{"sh", "-c", "echo hello; echo oops >&2"},
		Label:          "echo",
		SuccessMessage: "✓ Echoed",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "hello\n", result.Stdout)
	assert.Equal(t, "oops\n", result.Stderr)
	assert.Contains(t, out.String(), "✓ Echoed")
}

func TestRunFailureWritesLogFile(t *testing.T) {
	logDir := t.TempDir()
	out := &bytes.Buffer{}
	e := New(out, logDir)

	_, err := e.Run(context.Background(), Command{
		Argv:           []string{"sh", "-c", "echo broken >&2; exit 3"},
		Label:          "failing-step",
		FailureMessage: "Something went wrong.",
	})
	require.Error(t, err)

	var structured *errs.Error
	require.True(t, errors.As(err, &structured))
	assert.Equal(t, "failing-step", structured.Code)
	assert.Equal(t, 3, structured.Context["exit_code"])
	require.NotEmpty(t, structured.LogFile)

	data, readErr := os.ReadFile(structured.LogFile)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), "exit code: 3")
	assert.Contains(t, string(data), "broken")
	assert.Contains(t, filepath.Base(structured.LogFile), "failing-step-error-")

	assert.Contains(t, out.String(), "Something went wrong.")
	assert.Contains(t, out.String(), "Detailed error information saved to")
}

func TestRunFailureDefaultMessage(t *testing.T) {
	out := &bytes.Buffer{}
	e := New(out, t.TempDir())

	_, err := e.Run(context.Background(), Command{
		Argv:  []string{"sh", "-c", "exit 1"},
		Label: "quiet-step",
	})
	require.Error(t, err)
	assert.Contains(t, out.String(), "Error while running: sh -c exit 1")
}

func TestRunTolerateReturnsResult(t *testing.T) {
	out := &bytes.Buffer{}
	e := New(out, t.TempDir())

	result, err := e.Run(context.Background(), Command{
		Argv:     []string{"sh", "-c", "exit 7"},
		Label:    "probe",
		Tolerate: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, result.ExitCode)
	assert.Empty(t, out.String())
}

func TestRunMissingBinary(t *testing.T) {
	e := New(&bytes.Buffer{}, t.TempDir())

	result, err := e.Run(context.Background(), Command{
		Argv:  []string{"definitely-not-a-real-binary-0b5bf0"},
		Label: "missing",
	})
	require.Error(t, err)
	assert.Equal(t, -1, result.ExitCode)
}

func TestRunEmptyCommand(t *testing.T) {
	e := New(&bytes.Buffer{}, t.TempDir())

	_, err := e.Run(context.Background(), Command{})
	require.Error(t, err)
}

func TestRunHonorsWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	e := New(&bytes.Buffer{}, t.TempDir())

	result, err := e.Run(context.Background(), Command{
		Argv:  []string{"pwd"},
		Label: "pwd",
		Dir:   dir,
	})
	require.NoError(t, err)

	// Resolve symlinks: on some systems the temp dir is behind one.
	resolved, _ := filepath.EvalSymlinks(dir)
	assert.Contains(t, []string{dir + "\n", resolved + "\n"}, result.Stdout)
}
