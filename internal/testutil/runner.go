// Package testutil provides shared fakes for pipeline and component tests.
package testutil

import (
	"context"
	"strings"

	"github.com/nordstat/prosjekt/internal/executor"
)

// FakeRunner records every command it is asked to run and answers with
// scripted results. The zero value answers every command with success and
// empty output.
type FakeRunner struct {
	Calls []executor.Command

	// Respond, when set, decides the outcome of each command.
	Respond func(cmd executor.Command) (executor.Result, error)
}

// Run implements executor.Runner.
func (f *FakeRunner) Run(_ context.Context, cmd executor.Command) (executor.Result, error) {
	f.Calls = append(f.Calls, cmd)

	if f.Respond != nil {
		return f.Respond(cmd)
	}

	return executor.Result{ExitCode: 0}, nil
}

// CommandLines renders the recorded argv vectors as space-joined strings,
// convenient for assertions.
func (f *FakeRunner) CommandLines() []string {
	lines := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		lines = append(lines, strings.Join(c.Argv, " "))
	}
	return lines
}
