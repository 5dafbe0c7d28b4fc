// Package config holds the settings for prosjekt with support for multiple
// configuration sources.
//
// Configuration precedence (highest to lowest):
//  1. Command-line flags (--template-url, --checkout)
//  2. Environment variables (JUPYTER_IMAGE_SPEC, PIP_INDEX_URL,
//     STAT_TEMPLATE_DEFAULT_REFERENCE, NO_KERNEL)
//  3. The optional user config file ~/.prosjekt/config.yml
//  4. Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nordstat/prosjekt/internal/errs"
)

// Built-in policy: one template family, one source-control provider, one
// kernel runtime.
const (
	DefaultTemplateRepoURL = "https://github.com/nordstat/prosjekt-template-stat"
	DefaultTemplateRef     = "1.0.0"
	DefaultGithubOrg       = "nordstat"
	DefaultSourceName      = "nexus"
)

// Settings is the resolved configuration for one invocation.
type Settings struct {
	TemplateRepoURL string `yaml:"template_repo_url"`
	TemplateRef     string `yaml:"template_ref"`
	GithubOrg       string `yaml:"github_org"`
	SourceName      string `yaml:"source_name"`

	// Environment-provided values, never stored in the config file.
	JupyterImageSpec string `yaml:"-"`
	PipIndexURL      string `yaml:"-"`
}

// Load resolves settings from the user config file and the environment.
func Load() (*Settings, error) {
	v := viper.New()

	v.SetDefault("template_repo_url", DefaultTemplateRepoURL)
	v.SetDefault("template_ref", DefaultTemplateRef)
	v.SetDefault("github_org", DefaultGithubOrg)
	v.SetDefault("source_name", DefaultSourceName)

	// These environment variables are platform contracts and keep their
	// historical names rather than a PROSJEKT_ prefix.
	v.BindEnv("jupyter_image_spec", "JUPYTER_IMAGE_SPEC")
	v.BindEnv("pip_index_url", "PIP_INDEX_URL")
	v.BindEnv("template_ref", "STAT_TEMPLATE_DEFAULT_REFERENCE")

	if path, err := FilePath(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, errs.NewIO("config-read",
					fmt.Sprintf("Could not read the config file %s.", path), err)
			}
		}
	}

	return &Settings{
		TemplateRepoURL:  v.GetString("template_repo_url"),
		TemplateRef:      v.GetString("template_ref"),
		GithubOrg:        v.GetString("github_org"),
		SourceName:       v.GetString("source_name"),
		JupyterImageSpec: v.GetString("jupyter_image_spec"),
		PipIndexURL:      v.GetString("pip_index_url"),
	}, nil
}

// FilePath returns the location of the user config file.
func FilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".prosjekt", "config.yml"), nil
}

// WriteDefaultFile writes a config file populated with the built-in defaults
// to path, creating parent directories as needed. Existing files are left
// untouched.
func WriteDefaultFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaults := Settings{
		TemplateRepoURL: DefaultTemplateRepoURL,
		TemplateRef:     DefaultTemplateRef,
		GithubOrg:       DefaultGithubOrg,
		SourceName:      DefaultSourceName,
	}

	data, err := yaml.Marshal(&defaults)
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}

	return nil
}

// RunningOnPrem reports whether the tool runs in the on-premises Jupyter
// environment, detected by a marker token in the image identifier.
func RunningOnPrem(imageSpec string) bool {
	return strings.Contains(imageSpec, "onprem")
}

// ResolveNoKernel combines the --no-kernel flag with the NO_KERNEL
// environment variable. The flag always wins; otherwise the variable must be
// exactly "True" or "False".
func ResolveNoKernel(flag bool) (bool, error) {
	if flag {
		return true, nil
	}

	env, ok := os.LookupEnv("NO_KERNEL")
	if !ok {
		return false, nil
	}

	switch env {
	case "True":
		return true, nil
	case "False":
		return false, nil
	default:
		return false, errs.NewValidation("no-kernel-env",
			fmt.Sprintf("The value of the 'NO_KERNEL' environment variable is %q. The only valid values are True and False.", env))
	}
}
