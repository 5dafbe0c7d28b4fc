package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/nordstat/prosjekt/internal/config"
	"github.com/nordstat/prosjekt/internal/executor"
	"github.com/nordstat/prosjekt/internal/gitconfig"
	"github.com/nordstat/prosjekt/internal/githubapi"
	"github.com/nordstat/prosjekt/internal/kernel"
	"github.com/nordstat/prosjekt/internal/logging"
	"github.com/nordstat/prosjekt/internal/pipeline"
	"github.com/nordstat/prosjekt/internal/poetry"
	"github.com/nordstat/prosjekt/internal/prompt"
	"github.com/nordstat/prosjekt/internal/sysres"
	"github.com/nordstat/prosjekt/internal/templates"
)

// app wires the collaborators for one invocation. Shared handles (the kernel
// registry, the command executor) are constructed once here and passed to
// the components that need them.
type app struct {
	settings *config.Settings
	logger   logging.Logger
	runner   executor.Runner
	prompter prompt.Prompter
	registry *kernel.Registry
	logDir   string
	workDir  string
	home     string
}

func newApp() (*app, error) {
	logDir, err := logging.ErrorLogDir()
	if err != nil {
		return nil, err
	}

	settings, err := config.Load()
	if err != nil {
		return nil, err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}

	runner := executor.New(os.Stdout, logDir)

	registry, err := kernel.NewRegistry(runner)
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger(&logging.Config{
		Level:  logging.ParseLevel(viper.GetString("log-level")),
		Format: "text",
		Output: os.Stderr,
	})

	return &app{
		settings: settings,
		logger:   logger,
		runner:   runner,
		prompter: prompt.Survey{},
		registry: registry,
		logDir:   logDir,
		workDir:  workDir,
		home:     home,
	}, nil
}

func (a *app) builder() *pipeline.Builder {
	return &pipeline.Builder{
		Out:        os.Stdout,
		Pkg:        poetry.NewClient(a.runner, os.Stdout, a.settings.SourceName, a.settings.PipIndexURL),
		Reconciler: gitconfig.NewReconciler(a.runner, a.prompter, os.Stdout),
		Kernel:     a.registry,
		Prompter:   a.prompter,
		Settings:   a.settings,
	}
}

func (a *app) creator() *pipeline.Creator {
	return &pipeline.Creator{
		Out:      os.Stdout,
		Builder:  a.builder(),
		Engine:   templates.NewMaterializer(a.runner, a.prompter),
		Runner:   a.runner,
		Prompter: a.prompter,
		Settings: a.settings,
		Home:     a.home,
		LogDir:   a.logDir,
		NewGitHub: func(ctx context.Context, token string) pipeline.GitHubClient {
			return githubapi.NewClient(ctx, token, a.settings.GithubOrg)
		},
		CheckResources: sysres.CheckAvailable,
	}
}

func (a *app) cleaner() *pipeline.Cleaner {
	return &pipeline.Cleaner{
		Out:        os.Stdout,
		Registry:   a.registry,
		Prompter:   a.prompter,
		WorkingDir: a.workDir,
	}
}
