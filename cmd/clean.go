package cmd

import (
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean <name>",
	Short: "Delete the kernel for the given project name",
	Long: `Delete the Jupyter kernel registered for a project, and optionally the
project's virtual environment. Project files are left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	a.logger.Debug(cmd.Context(), "starting clean", "name", args[0])

	return a.cleaner().Run(cmd.Context(), args[0])
}
