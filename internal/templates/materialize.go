// Package templates materializes projects from the cookiecutter-style
// template repository via the cruft engine.
package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nordstat/prosjekt/internal/errs"
	"github.com/nordstat/prosjekt/internal/executor"
	"github.com/nordstat/prosjekt/internal/prompt"
)

// Context is the substitution payload handed to the template engine. It is
// fully determined before materialization begins and immutable afterwards.
type Context struct {
	ProjectName string `json:"project_name"`
	Description string `json:"description"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	LicenseYear string `json:"license_year"`
}

// Options parameterizes a materialization.
type Options struct {
	ProjectName string
	Description string
	TemplateURL string
	// Ref is the git reference of the template to materialize. Branches,
	// tags and commit hashes are supported.
	Ref        string
	WorkingDir string
	// NoInput suppresses the engine's interactive prompts. It is set for
	// the organization's default template; custom templates keep them.
	NoInput bool

	// Optional overrides; resolved from git config or prompted when empty.
	LicenseYear string
	FullName    string
	Email       string
}

// Materializer drives the external template engine.
type Materializer struct {
	runner   executor.Runner
	prompter prompt.Prompter
}

// NewMaterializer returns a Materializer using the given runner and
// prompter.
func NewMaterializer(runner executor.Runner, prompter prompt.Prompter) *Materializer {
	return &Materializer{runner: runner, prompter: prompter}
}

// Materialize creates a project directory under opts.WorkingDir from the
// template. It fails without cleanup when the engine exits non-zero;
// compensating cleanup is the create pipeline's responsibility.
func (m *Materializer) Materialize(ctx context.Context, opts Options) (string, error) {
	projectDir := filepath.Join(opts.WorkingDir, opts.ProjectName)
	if _, err := os.Stat(projectDir); err == nil {
		return "", errs.NewValidation("project-exists",
			fmt.Sprintf("A project with name %q already exists. Please choose another name.", opts.ProjectName))
	}

	tmplCtx, err := m.resolveContext(ctx, opts)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(tmplCtx)
	if err != nil {
		return "", errs.NewInternal("template-context", "encoding template context", err)
	}

	argv := []string{"cruft", "create", opts.TemplateURL}
	if opts.NoInput {
		argv = append(argv, "--no-input")
	}
	argv = append(argv, "--checkout", opts.Ref, "--extra-context", string(payload))

	if _, err := m.runner.Run(ctx, executor.Command{
		Argv:           argv,
		Label:          "cruft-create",
		FailureMessage: "Error: Something went wrong when creating the project from the template.",
		Dir:            opts.WorkingDir,
	}); err != nil {
		return "", err
	}

	return projectDir, nil
}

// resolveContext fills in author identity and license year. Identity comes
// from git config; when that is empty the user is prompted.
func (m *Materializer) resolveContext(ctx context.Context, opts Options) (Context, error) {
	name, email := opts.FullName, opts.Email
	if name == "" || email == "" {
		gitName, gitEmail := m.identityFromGitConfig(ctx)
		if name == "" {
			name = gitName
		}
		if email == "" {
			email = gitEmail
		}
	}

	if name == "" || email == "" {
		var err error
		name, email, err = prompt.RequestNameEmail(m.prompter)
		if err != nil {
			return Context{}, fmt.Errorf("requesting author identity: %w", err)
		}
	}

	year := opts.LicenseYear
	if year == "" {
		year = strconv.Itoa(time.Now().Year())
	}

	return Context{
		ProjectName: opts.ProjectName,
		Description: opts.Description,
		FullName:    name,
		Email:       email,
		LicenseYear: year,
	}, nil
}

// identityFromGitConfig reads user.name and user.email. git config exits
// non-zero for unset keys, so the lookups are tolerated and absent values
// come back as empty strings.
func (m *Materializer) identityFromGitConfig(ctx context.Context) (string, string) {
	return IdentityFromGitConfig(ctx, m.runner)
}

// IdentityFromGitConfig reads the author identity from the local git
// configuration, returning empty strings for unset values.
func IdentityFromGitConfig(ctx context.Context, runner executor.Runner) (string, string) {
	return gitConfigElement(ctx, runner, "user.name"), gitConfigElement(ctx, runner, "user.email")
}

func gitConfigElement(ctx context.Context, runner executor.Runner, element string) string {
	result, err := runner.Run(ctx, executor.Command{
		Argv:     []string{"git", "config", "--get", element},
		Label:    "git-config-get",
		Tolerate: true,
	})
	if err != nil || result.ExitCode != 0 {
		return ""
	}
	return strings.TrimSpace(result.Stdout)
}
