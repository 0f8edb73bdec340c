package cli

import (
	"fmt"

	"github.com/miportal/portal/internal/common"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	// version needs no configuration
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		version, gitCommit, ok := common.GetModuleBuildInfo()

		if !ok {
			fmt.Println("Failed to get version information")
			return
		}

		fmt.Printf("MiPortal %s", version)
		if gitCommit != "unknown" && len(gitCommit) > 0 {
			if len(gitCommit) > 8 {
				fmt.Printf(" (git: %s)", gitCommit[:8])
			} else {
				fmt.Printf(" (git: %s)", gitCommit)
			}
		}
		fmt.Println()
		fmt.Printf("User agent: %s\n", common.GetUserAgent())
	},
}

func init() {

	rootCmd.AddCommand(versionCmd)
}
