// Package poetry wraps the package manager: dependency installation, the
// private-source toggle, and kernel registration.
package poetry

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"

	"github.com/nordstat/prosjekt/internal/executor"
)

// LockFileName is the package manager's lockfile in the project directory.
const LockFileName = "poetry.lock"

// Client runs poetry commands for one project workflow.
type Client struct {
	runner executor.Runner
	out    io.Writer

	// SourceName and SourceURL identify the on-premises package proxy.
	SourceName string
	SourceURL  string
}

// NewClient returns a Client. sourceURL is the on-premises index URL,
// usually from PIP_INDEX_URL.
func NewClient(runner executor.Runner, out io.Writer, sourceName, sourceURL string) *Client {
	return &Client{runner: runner, out: out, SourceName: sourceName, SourceURL: sourceURL}
}

// Install runs `poetry install` in projectDir. Installation can take
// minutes, so it is wrapped in an indeterminate progress indicator.
func (c *Client) Install(ctx context.Context, projectDir string) error {
	stop := c.spin("Installing dependencies... This may take a few minutes")
	defer stop()

	_, err := c.runner.Run(ctx, executor.Command{
		Argv:           []string{"poetry", "install"},
		Label:          "poetry-install",
		SuccessMessage: "✓ Installed dependencies in the virtual environment",
		FailureMessage: "Error: Something went wrong when installing packages with Poetry.",
		Dir:            projectDir,
	})
	return err
}

// InstallKernel registers a Jupyter kernel bound to the project's virtual
// environment under the project name.
func (c *Client) InstallKernel(ctx context.Context, projectDir, projectName string) error {
	stop := c.spin("Installing Jupyter kernel...")
	defer stop()

	_, err := c.runner.Run(ctx, executor.Command{
		Argv: []string{
			"poetry", "run", "python3", "-m", "ipykernel", "install",
			"--user", "--name", projectName,
		},
		Label:          "install-ipykernel",
		SuccessMessage: fmt.Sprintf("✓ Installed Jupyter kernel (%s)", projectName),
		FailureMessage: "Something went wrong while installing ipykernel.",
		Dir:            projectDir,
	})
	return err
}

// SourceRegistered reports whether the named source is registered for the
// project.
func (c *Client) SourceRegistered(ctx context.Context, projectDir, sourceName string) (bool, error) {
	result, err := c.runner.Run(ctx, executor.Command{
		Argv:           []string{"poetry", "source", "show"},
		Label:          "poetry-source-show",
		FailureMessage: "Error showing Poetry source.",
		Dir:            projectDir,
	})
	if err != nil {
		return false, err
	}

	return strings.Contains(result.Stdout, sourceName), nil
}

// AddSource registers a package installation source for the project.
// Poetry replaces an existing source with the same name in place, so no
// separate removal is needed to refresh the URL.
func (c *Client) AddSource(ctx context.Context, sourceURL, projectDir, sourceName string) error {
	fmt.Fprintln(c.out, "Adding package installation source for poetry...")

	_, err := c.runner.Run(ctx, executor.Command{
		Argv:           []string{"poetry", "source", "add", "--default", sourceName, sourceURL},
		Label:          "poetry-source-add",
		SuccessMessage: "Poetry source successfully added!",
		FailureMessage: "Failed to add poetry source.",
		Dir:            projectDir,
	})
	return err
}

// RemoveSource removes the named source, refreshing the lockfile afterwards
// when refreshLock is set.
func (c *Client) RemoveSource(ctx context.Context, projectDir, sourceName string, refreshLock bool) error {
	fmt.Fprintln(c.out, "Removing Poetry source...")

	if _, err := c.runner.Run(ctx, executor.Command{
		Argv:           []string{"poetry", "source", "remove", sourceName},
		Label:          "poetry-source-remove",
		SuccessMessage: "Poetry source successfully removed!",
		FailureMessage: "Failed to remove Poetry source.",
		Dir:            projectDir,
	}); err != nil {
		return err
	}

	if !refreshLock {
		return nil
	}

	return c.RefreshLock(ctx, projectDir)
}

// RefreshLock refreshes the lockfile without upgrading pinned versions.
func (c *Client) RefreshLock(ctx context.Context, projectDir string) error {
	fmt.Fprintln(c.out, "Refreshing lock file...")

	_, err := c.runner.Run(ctx, executor.Command{
		Argv:           []string{"poetry", "lock", "--no-update"},
		Label:          "poetry-lock",
		SuccessMessage: "Poetry successfully refreshed lock file!",
		FailureMessage: "Poetry failed to refresh lock file.",
		Dir:            projectDir,
	})
	return err
}

func (c *Client) spin(message string) func() {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
		spinner.WithWriter(c.out), spinner.WithSuffix(" "+message))
	s.Start()
	return s.Stop
}
