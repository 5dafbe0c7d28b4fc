package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nordstat/prosjekt/internal/config"
	"github.com/nordstat/prosjekt/internal/pipeline"
)

var createCmd = &cobra.Command{
	Use:   "create <name> [description] [privacy]",
	Short: "Create a project locally, and optionally on GitHub",
	Long: `Create a project from the organization's template, following the
recommended practice for development.

The project gets a virtual environment, a Jupyter kernel, and git safety
files aligned with the template. With --github the project is also pushed to
a new repository in the organization, with branch protection on main.

Privacy is one of: internal (default), private, public.

Examples:
  prosjekt create my-project
  prosjekt create my-project "Quarterly statistics" private --github`,
	Args: cobra.RangeArgs(1, 3),
	RunE: runCreate,
}

var (
	createGithub      bool
	createGithubToken string
	createNoVerify    bool
	createNoKernel    bool
	createTemplateURL string
	createCheckout    string
)

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().BoolVar(&createGithub, "github", false, "Create the repo on GitHub as well")
	createCmd.Flags().StringVar(&createGithubToken, "github-token", "", "Your GitHub personal access token")
	createCmd.Flags().BoolVar(&createNoVerify, "no-verify", false, "Skip verification of the git configuration")
	createCmd.Flags().BoolVar(&createNoKernel, "no-kernel", false, "Skip the Jupyter kernel installation")
	createCmd.Flags().StringVar(&createTemplateURL, "template-url", "", "Template repository URL (default is the organization template)")
	createCmd.Flags().StringVar(&createCheckout, "checkout", "", "Git reference of the template (branch, tag or commit)")
}

func runCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	description := ""
	if len(args) > 1 {
		description = args[1]
	}

	privacy := string(PrivacyInternal)
	if len(args) > 2 {
		parsed, err := ParsePrivacy(args[2])
		if err != nil {
			return err
		}
		privacy = string(parsed)
	}

	noKernel, err := config.ResolveNoKernel(createNoKernel)
	if err != nil {
		return err
	}

	templateURL := createTemplateURL
	if templateURL == "" {
		templateURL = a.settings.TemplateRepoURL
	}
	ref := createCheckout
	if ref == "" {
		ref = a.settings.TemplateRef
	}

	a.logger.Debug(cmd.Context(), "starting create",
		"name", args[0], "template_url", templateURL, "ref", ref, "github", createGithub)

	return a.creator().Run(cmd.Context(), pipeline.CreateOptions{
		Name:         args[0],
		Description:  description,
		Privacy:      privacy,
		AddGitHub:    createGithub,
		Token:        createGithubToken,
		WorkingDir:   a.workDir,
		TemplateURL:  templateURL,
		Ref:          ref,
		VerifyConfig: !createNoVerify,
		NoKernel:     noKernel,
	})
}
