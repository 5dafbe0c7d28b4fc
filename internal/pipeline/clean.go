package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nordstat/prosjekt/internal/errs"
	"github.com/nordstat/prosjekt/internal/kernel"
	"github.com/nordstat/prosjekt/internal/prompt"
)

// kernelRegistry is what the clean pipeline needs from the kernel registry.
type kernelRegistry interface {
	All() (map[string]kernel.Spec, error)
	Remove(ctx context.Context, name string) error
}

// Cleaner removes the kernel and optionally the virtual environment of a
// project.
type Cleaner struct {
	Out        io.Writer
	Registry   kernelRegistry
	Prompter   prompt.Prompter
	WorkingDir string
}

// Run executes the clean pipeline for the named project.
func (c *Cleaner) Run(ctx context.Context, projectName string) error {
	if err := c.cleanVenv(); err != nil {
		return err
	}

	kernels, err := c.Registry.All()
	if err != nil {
		return err
	}

	if _, ok := kernels[projectName]; !ok {
		return errs.NewValidation("kernel-missing",
			fmt.Sprintf("Could not find kernel %q. Is the project name spelled correctly?", projectName))
	}

	confirmed, err := c.Prompter.Confirm(fmt.Sprintf(
		"Are you sure you want to delete the kernel %q? This action will delete the kernel associated with the virtual environment and leave all other files untouched.",
		projectName))
	if err != nil {
		return fmt.Errorf("requesting deletion confirmation: %w", err)
	}
	if !confirmed {
		return errs.NewValidation("clean-aborted", "Aborted.")
	}

	fmt.Fprintf(c.Out, "Deleting kernel %s... If you wish to also delete the project files, you can do so manually.\n", projectName)

	return c.Registry.Remove(ctx, projectName)
}

// cleanVenv offers to remove the project's virtual environment, looking in
// the working directory first and asking for a path when nothing is found
// there.
func (c *Cleaner) cleanVenv() error {
	confirmed, err := c.Prompter.Confirm("Do you also wish to delete the virtual environment for this project?")
	if err != nil {
		return fmt.Errorf("requesting venv confirmation: %w", err)
	}
	if !confirmed {
		fmt.Fprintln(c.Out, "Skipping removal of virtual environment. It can also be removed manually by deleting the .venv folder in your project directory.")
		return nil
	}

	venv := filepath.Join(c.WorkingDir, ".venv")
	if info, err := os.Stat(venv); err == nil && info.IsDir() {
		return c.removeVenv(venv)
	}

	fmt.Fprintln(c.Out, "No virtual environment found in current directory...")
	path, err := c.Prompter.Input("Please provide the path to the project you wish to delete the virtual environment for:")
	if err != nil {
		return fmt.Errorf("requesting project path: %w", err)
	}

	venv = filepath.Join(path, ".venv")
	if info, err := os.Stat(venv); err == nil && info.IsDir() {
		return c.removeVenv(venv)
	}

	fmt.Fprintln(c.Out, "No virtual environment found at that path. Skipping...")
	return nil
}

func (c *Cleaner) removeVenv(venv string) error {
	if err := os.RemoveAll(venv); err != nil {
		return errs.NewIO("clean-virtualenv",
			"Something went wrong while removing the virtual environment.", err)
	}
	fmt.Fprintln(c.Out, "Virtual environment successfully removed!")
	return nil
}
