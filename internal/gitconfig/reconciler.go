package gitconfig

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nordstat/prosjekt/internal/errs"
	"github.com/nordstat/prosjekt/internal/executor"
	"github.com/nordstat/prosjekt/internal/prompt"
	"github.com/nordstat/prosjekt/internal/templates"
)

// Reconciler verifies the project's git safety files against the template
// baseline and repairs them on request.
type Reconciler struct {
	runner   executor.Runner
	prompter prompt.Prompter
	out      io.Writer
}

// NewReconciler returns a Reconciler.
func NewReconciler(runner executor.Runner, prompter prompt.Prompter, out io.Writer) *Reconciler {
	return &Reconciler{runner: runner, prompter: prompter, out: out}
}

// VerifyProjectFiles clones the template at ref and checks that the
// project's ignore and attributes files each cover the template's lines.
// The result is the logical AND across both files; it is computed fresh on
// every call and never cached.
func (r *Reconciler) VerifyProjectFiles(ctx context.Context, templateURL, ref, projectDir string) (bool, error) {
	clone, err := cloneTemplate(ctx, templateURL, ref)
	if err != nil {
		return false, err
	}
	defer clone.Close()

	for _, name := range []string{IgnoreFileName, AttributesFileName} {
		ok, err := FileCompliant(filepath.Join(projectDir, name), clone.ProjectFilePath(name))
		if err != nil {
			return false, errs.NewIO("gitconfig-verify",
				fmt.Sprintf("Could not compare %s against the template.", name), err)
		}
		if !ok {
			return false, nil
		}
	}

	return true, nil
}

// VerifyGlobalConfig reports whether the global git identity configuration
// is complete: user.name and user.email are both set.
func (r *Reconciler) VerifyGlobalConfig(ctx context.Context) bool {
	for _, element := range []string{"user.name", "user.email"} {
		result, err := r.runner.Run(ctx, executor.Command{
			Argv:     []string{"git", "config", "--global", "--get", element},
			Label:    "git-config-global-get",
			Tolerate: true,
		})
		if err != nil || result.ExitCode != 0 || strings.TrimSpace(result.Stdout) == "" {
			return false
		}
	}
	return true
}

// RepairProjectFiles re-materializes the template into a throwaway directory
// and copies the two safety files over the project's copies, overwriting
// them unconditionally. The caller must have obtained user confirmation.
func (r *Reconciler) RepairProjectFiles(ctx context.Context, projectName, templateURL, ref, projectDir string) error {
	scratch, err := os.MkdirTemp("", "prosjekt-repair-")
	if err != nil {
		return errs.NewIO("gitconfig-repair-dir", "Could not create a temporary directory for the repair.", err)
	}
	defer os.RemoveAll(scratch)

	materializer := templates.NewMaterializer(r.runner, r.prompter)
	rendered, err := materializer.Materialize(ctx, templates.Options{
		ProjectName: projectName,
		TemplateURL: templateURL,
		Ref:         ref,
		WorkingDir:  scratch,
		NoInput:     true,
	})
	if err != nil {
		return err
	}

	for _, name := range []string{IgnoreFileName, AttributesFileName} {
		if err := copyFile(filepath.Join(rendered, name), filepath.Join(projectDir, name)); err != nil {
			return errs.NewIO("gitconfig-repair",
				fmt.Sprintf("Could not restore %s from the template.", name), err)
		}
	}

	fmt.Fprintln(r.out, "✓ Restored the project's .gitignore and .gitattributes from the template")
	return nil
}

// RepairGlobalConfig prompts for the user's identity and writes it to the
// global git configuration.
func (r *Reconciler) RepairGlobalConfig(ctx context.Context) error {
	name, email, err := prompt.RequestNameEmail(r.prompter)
	if err != nil {
		return fmt.Errorf("requesting identity: %w", err)
	}

	for element, value := range map[string]string{"user.name": name, "user.email": email} {
		if _, err := r.runner.Run(ctx, executor.Command{
			Argv:           []string{"git", "config", "--global", element, value},
			Label:          "git-config-global-set",
			FailureMessage: fmt.Sprintf("Could not set %s in the global git configuration.", element),
		}); err != nil {
			return err
		}
	}

	fmt.Fprintln(r.out, "✓ Updated the global git configuration")
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
