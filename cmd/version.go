package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, set via ldflags at release time.
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE:  runVersion,
}

var versionShort bool

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
}

func runVersion(cmd *cobra.Command, args []string) error {
	if versionShort {
		fmt.Println(version)
		return nil
	}

	fmt.Printf("prosjekt %s", version)
	if gitCommit != "unknown" && len(gitCommit) >= 7 {
		fmt.Printf(" (%s)", gitCommit[:7])
	}
	fmt.Println()

	if buildDate != "unknown" {
		fmt.Printf("Built: %s\n", buildDate)
	}
	fmt.Printf("Go: %s\n", runtime.Version())
	fmt.Printf("Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	return nil
}
