package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nordstat/prosjekt/internal/config"
	"github.com/nordstat/prosjekt/internal/pipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Create a virtual environment and corresponding Jupyter kernel",
	Long: `Build the project: verify the git configuration against the template,
adjust the package installation source for the current environment, install
dependencies and register the Jupyter kernel.

Runs in the current folder if no path is supplied.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

var (
	buildNoVerify    bool
	buildNoKernel    bool
	buildTemplateURL string
	buildCheckout    string
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().BoolVar(&buildNoVerify, "no-verify", false, "Skip verification of the git configuration")
	buildCmd.Flags().BoolVar(&buildNoKernel, "no-kernel", false, "Skip the Jupyter kernel installation")
	buildCmd.Flags().StringVar(&buildTemplateURL, "template-url", "", "Template repository URL (default is the organization template)")
	buildCmd.Flags().StringVar(&buildCheckout, "checkout", "", "Git reference of the template (branch, tag or commit)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	noKernel, err := config.ResolveNoKernel(buildNoKernel)
	if err != nil {
		return err
	}

	templateURL := buildTemplateURL
	if templateURL == "" {
		templateURL = a.settings.TemplateRepoURL
	}
	ref := buildCheckout
	if ref == "" {
		ref = a.settings.TemplateRef
	}

	a.logger.Debug(cmd.Context(), "starting build",
		"path", path, "template_url", templateURL, "ref", ref)

	return a.builder().Run(cmd.Context(), pipeline.BuildOptions{
		Path:         path,
		WorkingDir:   a.workDir,
		TemplateURL:  templateURL,
		Ref:          ref,
		VerifyConfig: !buildNoVerify,
		NoKernel:     noKernel,
	})
}
