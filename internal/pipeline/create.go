package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nordstat/prosjekt/internal/config"
	"github.com/nordstat/prosjekt/internal/errs"
	"github.com/nordstat/prosjekt/internal/executor"
	"github.com/nordstat/prosjekt/internal/githubapi"
	"github.com/nordstat/prosjekt/internal/gitrepo"
	"github.com/nordstat/prosjekt/internal/logging"
	"github.com/nordstat/prosjekt/internal/prompt"
	"github.com/nordstat/prosjekt/internal/templates"
)

// materializer is the template engine seam.
type materializer interface {
	Materialize(ctx context.Context, opts templates.Options) (string, error)
}

// GitHubClient is the remote-repository capability the create pipeline
// consumes as a black box.
type GitHubClient interface {
	RepoExists(ctx context.Context, name string) (bool, error)
	CreateRepo(ctx context.Context, name, visibility, description string) (string, error)
	SetBranchProtection(ctx context.Context, name string) error
	Login(ctx context.Context) (string, error)
}

// Creator runs the create pipeline. Any failure after the project directory
// has been materialized triggers a best-effort deletion of the partial
// project; the deletion never masks the original error.
type Creator struct {
	Out      io.Writer
	Builder  *Builder
	Engine   materializer
	Runner   executor.Runner
	Prompter prompt.Prompter
	Settings *config.Settings

	// Home is the directory searched for GitHub credential stores.
	Home string
	// LogDir receives the diagnostic log written on a failed creation.
	LogDir string

	// NewGitHub builds the GitHub client; swapped out in tests.
	NewGitHub func(ctx context.Context, token string) GitHubClient
	// CheckResources guards against exhausted memory/disk before any work.
	CheckResources func(onprem bool) error
}

// CreateOptions parameterizes one create run.
type CreateOptions struct {
	Name        string
	Description string
	// Privacy is the GitHub repository visibility: internal, private or
	// public.
	Privacy string

	AddGitHub bool
	Token     string

	WorkingDir  string
	TemplateURL string
	Ref         string

	VerifyConfig bool
	NoKernel     bool
}

// Run executes the create pipeline.
func (c *Creator) Run(ctx context.Context, opts CreateOptions) error {
	onprem := config.RunningOnPrem(c.Settings.JupyterImageSpec)
	if err := c.CheckResources(onprem); err != nil {
		return err
	}

	if !githubapi.ValidRepoName(opts.Name) {
		return errs.NewValidation("invalid-name",
			"Invalid repo name: Please choose a valid name. For example: 'my-fantastic-project'")
	}

	token := opts.Token
	var gh GitHubClient
	if opts.AddGitHub {
		if token == "" {
			var err error
			token, err = githubapi.ChooseToken(c.Prompter, c.Home)
			if err != nil {
				return err
			}
		}

		gh = c.NewGitHub(ctx, token)

		exists, err := gh.RepoExists(ctx, opts.Name)
		if err != nil {
			return err
		}
		if exists {
			return errs.NewValidation("github-repo-exists",
				fmt.Sprintf("A repo with the name %s already exists on GitHub. Please choose another name.", opts.Name))
		}

		if opts.Description == "" {
			opts.Description, err = prompt.RequestDescription(c.Prompter)
			if err != nil {
				return err
			}
		}
	}

	projectDir := filepath.Join(opts.WorkingDir, opts.Name)
	if _, err := os.Stat(projectDir); err == nil {
		return errs.NewValidation("project-exists",
			fmt.Sprintf("A project with name %q already exists. Please choose another name.", opts.Name))
	}

	if err := c.createAndBuild(ctx, opts, gh, token, projectDir); err != nil {
		c.compensate(projectDir, err)
		return err
	}

	fmt.Fprintf(c.Out, "✓ Created project (%s) in the folder %s\n", opts.Name, projectDir)
	fmt.Fprintln(c.Out, "🎉 All done!")

	return nil
}

// createAndBuild is the guarded section of the pipeline: everything in here
// may leave a partial project directory behind on failure.
func (c *Creator) createAndBuild(ctx context.Context, opts CreateOptions, gh GitHubClient, token, projectDir string) error {
	if _, err := c.Engine.Materialize(ctx, templates.Options{
		ProjectName: opts.Name,
		Description: opts.Description,
		TemplateURL: opts.TemplateURL,
		Ref:         opts.Ref,
		WorkingDir:  opts.WorkingDir,
		NoInput:     opts.TemplateURL == config.DefaultTemplateRepoURL,
	}); err != nil {
		return err
	}

	if err := c.Builder.Run(ctx, BuildOptions{
		Path:         opts.Name,
		WorkingDir:   opts.WorkingDir,
		TemplateURL:  opts.TemplateURL,
		Ref:          opts.Ref,
		VerifyConfig: opts.VerifyConfig,
		NoKernel:     opts.NoKernel,
	}); err != nil {
		return err
	}

	authorName, authorEmail := templates.IdentityFromGitConfig(ctx, c.Runner)
	if authorName == "" {
		authorName = "prosjekt"
	}

	repo, err := gitrepo.InitAndCommit(projectDir, authorName, authorEmail)
	if err != nil {
		return err
	}

	if gh == nil {
		return nil
	}

	fmt.Fprintln(c.Out, "Creating an empty repo on GitHub")
	repoURL, err := gh.CreateRepo(ctx, opts.Name, opts.Privacy, opts.Description)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.Out, "Creating a local repo, and pushing to GitHub")
	login, err := gh.Login(ctx)
	if err != nil {
		return err
	}
	if err := gitrepo.PushInitial(repo,
		gitrepo.MangleURL(repoURL, token),
		gitrepo.MangleURL(repoURL, login)); err != nil {
		return err
	}

	fmt.Fprintln(c.Out, "Setting branch protection rules")
	if err := gh.SetBranchProtection(ctx, opts.Name); err != nil {
		return err
	}

	fmt.Fprintf(c.Out, "✓ Created GitHub repo. View it here: %s\n", repoURL)

	return nil
}

// compensate logs the failure and removes the partially created project
// directory. It is best-effort: a deletion failure is reported but never
// retried, and the original error is what the caller sees.
func (c *Creator) compensate(projectDir string, cause error) {
	if _, err := logging.WriteErrorLog(c.LogDir, "create", cause.Error()); err != nil {
		fmt.Fprintf(c.Out, "Error while attempting to write the log file: %v\n", err)
	}

	if info, err := os.Stat(projectDir); err != nil || !info.IsDir() {
		return
	}

	if err := os.RemoveAll(projectDir); err != nil {
		fmt.Fprintf(c.Out, "Could not delete the partially created project directory %s: %v\n", projectDir, err)
	}
}
