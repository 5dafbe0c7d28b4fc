// Package cmd provides the command-line interface for prosjekt.
//
// Configuration sources, highest priority first:
//  1. Command-line flags (--template-url, --checkout, ...)
//  2. Environment variables (JUPYTER_IMAGE_SPEC, PIP_INDEX_URL,
//     STAT_TEMPLATE_DEFAULT_REFERENCE, NO_KERNEL)
//  3. The optional user config file ~/.prosjekt/config.yml
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nordstat/prosjekt/internal/errs"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "prosjekt",
	Short: "Scaffold, build and tear down data-science project workspaces",
	Long: `prosjekt bootstraps data-science projects for the Jupyter platform.

It creates projects from the organization's template, keeps the git safety
configuration aligned with the template's baseline, manages the on-premises
package source, and registers a Jupyter kernel for the project's virtual
environment.

Quick Start:
  prosjekt create my-project     Create a new project
  prosjekt build                 Build the project in the current folder
  prosjekt clean my-project      Delete the project's kernel`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Fatal errors are printed here, once, with their diagnostic
// log pointer; main turns a non-nil return into exit code 1.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ "+errs.UserMessage(err))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}
