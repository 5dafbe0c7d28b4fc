// Package pipeline sequences the create, build and clean workflows over the
// external collaborators.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/nordstat/prosjekt/internal/config"
	"github.com/nordstat/prosjekt/internal/errs"
	"github.com/nordstat/prosjekt/internal/project"
	"github.com/nordstat/prosjekt/internal/prompt"
)

// packageManager is what the build pipeline needs from the package manager.
type packageManager interface {
	Install(ctx context.Context, projectDir string) error
	InstallKernel(ctx context.Context, projectDir, projectName string) error
	EnsureCorrectSource(ctx context.Context, projectDir string, onprem bool) error
}

// configReconciler is what the build pipeline needs from the git config
// reconciler.
type configReconciler interface {
	VerifyProjectFiles(ctx context.Context, templateURL, ref, projectDir string) (bool, error)
	VerifyGlobalConfig(ctx context.Context) bool
	RepairProjectFiles(ctx context.Context, projectName, templateURL, ref, projectDir string) error
	RepairGlobalConfig(ctx context.Context) error
}

// kernelPatcher rewrites a kernel registration to launch through the login
// shell wrapper.
type kernelPatcher interface {
	AttachLoginShell(projectName string, out io.Writer) error
}

// Builder runs the build pipeline: locate the project, reconcile its git
// configuration, fix the package source, install dependencies and register
// the kernel. It short-circuits on the first unrecoverable failure.
type Builder struct {
	Out        io.Writer
	Pkg        packageManager
	Reconciler configReconciler
	Kernel     kernelPatcher
	Prompter   prompt.Prompter
	Settings   *config.Settings
}

// BuildOptions parameterizes one build run.
type BuildOptions struct {
	// Path is the optional project path argument, relative to WorkingDir.
	Path       string
	WorkingDir string

	TemplateURL string
	Ref         string

	VerifyConfig bool
	NoKernel     bool
}

// Run executes the build pipeline.
func (b *Builder) Run(ctx context.Context, opts BuildOptions) error {
	dir := opts.WorkingDir
	if opts.Path != "" {
		dir = filepath.Join(opts.WorkingDir, opts.Path)
	}

	desc, err := project.Locate(dir)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			return errs.NewValidation("project-root-missing",
				"Could not find project root. Please run prosjekt within a project directory.")
		}
		return err
	}

	if opts.VerifyConfig {
		if err := b.verifyAndRepair(ctx, desc, opts); err != nil {
			return err
		}
	}

	onprem := config.RunningOnPrem(b.Settings.JupyterImageSpec)
	if err := b.Pkg.EnsureCorrectSource(ctx, desc.Root, onprem); err != nil {
		return err
	}

	if err := b.Pkg.Install(ctx, desc.Root); err != nil {
		return err
	}

	if opts.NoKernel {
		return nil
	}

	if err := b.Pkg.InstallKernel(ctx, desc.Root, desc.Name); err != nil {
		return err
	}

	return b.Kernel.AttachLoginShell(desc.Name, b.Out)
}

// verifyAndRepair reports the compliance state of the global and project git
// configuration and offers an opt-in repair of whatever failed. Declining
// the repair is not an error; the build proceeds with the project left
// non-compliant.
func (b *Builder) verifyAndRepair(ctx context.Context, desc project.Descriptor, opts BuildOptions) error {
	globalOK := b.Reconciler.VerifyGlobalConfig(ctx)
	projectOK, err := b.Reconciler.VerifyProjectFiles(ctx, opts.TemplateURL, opts.Ref, desc.Root)
	if err != nil {
		return err
	}

	if globalOK && projectOK {
		return nil
	}

	fmt.Fprintln(b.Out, "✗ Your project's Git configuration does not follow the recommendations,")
	fmt.Fprintln(b.Out, "  which may result in sensitive data being pushed to GitHub.")
	fmt.Fprintln(b.Out)
	fmt.Fprintln(b.Out, "  Git file validation status:")
	fmt.Fprintf(b.Out, "  %s - Global .gitconfig file\n", statusMark(globalOK))
	fmt.Fprintf(b.Out, "  %s - Project .gitignore and .gitattributes files\n", statusMark(projectOK))

	var changed []string
	if !globalOK {
		changed = append(changed, ".gitconfig")
	}
	if !projectOK {
		changed = append(changed, ".gitignore and .gitattributes")
	}

	confirmed, err := b.Prompter.Confirm(fmt.Sprintf(
		"Would you like to reset your Git configuration to the recommended defaults? This action will override changes you have made to: %s",
		strings.Join(changed, ", ")))
	if err != nil {
		return fmt.Errorf("requesting repair confirmation: %w", err)
	}
	if !confirmed {
		fmt.Fprintln(b.Out, "Skipping git configuration repair.")
		return nil
	}

	if !globalOK {
		if err := b.Reconciler.RepairGlobalConfig(ctx); err != nil {
			return err
		}
	}
	if !projectOK {
		if err := b.Reconciler.RepairProjectFiles(ctx, desc.Name, opts.TemplateURL, opts.Ref, desc.Root); err != nil {
			return err
		}
	}

	return nil
}

func statusMark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}
