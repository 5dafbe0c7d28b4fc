// Package executor runs external commands on behalf of the pipelines.
//
// Every pipeline step that shells out goes through a Runner so tests can
// substitute a fake. A failed command produces a diagnostic log file under
// the error-log directory and a structured error pointing at it; the caller
// decides whether that is fatal.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/nordstat/prosjekt/internal/errs"
	"github.com/nordstat/prosjekt/internal/logging"
)

// Result is the captured outcome of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Command describes one external invocation.
type Command struct {
	// Argv is the full argument vector, program first.
	Argv []string
	// Label names the step for the diagnostic log file, e.g. "poetry-install".
	Label string
	// SuccessMessage is printed when the command succeeds, if non-empty.
	SuccessMessage string
	// FailureMessage is printed when the command fails. Empty means a
	// generic "error while running <command>" message.
	FailureMessage string
	// Dir is the working directory. Empty means the caller's directory.
	Dir string
	// Tolerate makes a non-zero exit a normal result instead of an error.
	// Callers use it when they need to inspect the exit code themselves.
	Tolerate bool
}

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Executor is the production Runner backed by os/exec.
type Executor struct {
	out    io.Writer
	logDir string
}

// New returns an Executor that prints progress to out and writes diagnostic
// logs under logDir.
func New(out io.Writer, logDir string) *Executor {
	return &Executor{out: out, logDir: logDir}
}

// Run executes cmd and captures its output. On non-zero exit it prints the
// failure message, writes a timestamped diagnostic file with the full
// captured result, and returns an error carrying the log path.
func (e *Executor) Run(ctx context.Context, cmd Command) (Result, error) {
	if len(cmd.Argv) == 0 {
		return Result{}, errs.NewInternal("empty-command", "no command given", nil)
	}

	proc := exec.CommandContext(ctx, cmd.Argv[0], cmd.Argv[1:]...)
	proc.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	runErr := proc.Run()

	if runErr != nil {
		if _, isExit := runErr.(*exec.ExitError); !isExit {
			// The process never started (missing binary, bad dir).
			return Result{ExitCode: -1}, errs.NewCommand(cmd.Label,
				fmt.Sprintf("Could not start %q.", strings.Join(cmd.Argv, " ")), runErr)
		}
	}

	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: proc.ProcessState.ExitCode(),
	}

	if result.ExitCode != 0 {
		if cmd.Tolerate {
			return result, nil
		}
		return result, e.fail(cmd, result)
	}

	if cmd.SuccessMessage != "" {
		fmt.Fprintln(e.out, cmd.SuccessMessage)
	}

	return result, nil
}

func (e *Executor) fail(cmd Command, result Result) error {
	message := cmd.FailureMessage
	if message == "" {
		message = "Error while running: " + strings.Join(cmd.Argv, " ")
	}
	fmt.Fprintln(e.out, message)

	err := errs.NewCommand(cmd.Label, message, nil).
		WithContext("argv", strings.Join(cmd.Argv, " ")).
		WithContext("exit_code", result.ExitCode)

	dump := fmt.Sprintf("command: %s\nexit code: %d\n\nstdout:\n%s\nstderr:\n%s\n",
		strings.Join(cmd.Argv, " "), result.ExitCode, result.Stdout, result.Stderr)

	logPath, logErr := logging.WriteErrorLog(e.logDir, cmd.Label, dump)
	if logErr != nil {
		fmt.Fprintf(e.out, "Error while attempting to write the log file: %v\n", logErr)
		return err
	}

	fmt.Fprintf(e.out, "Detailed error information saved to %s\n", logPath)
	return err.WithLogFile(logPath)
}
