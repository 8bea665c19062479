package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spherical/pdf2cad/internal/cad"
)

var (
	appVersion = "dev"
	appCommit  = "unknown"
)

// SetVersion records build information for the version command.
func SetVersion(version, commit string) {
	appVersion, appCommit = version, commit
	rootCmd.Version = version
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pdf2cad version %s (%s)\n", appVersion, appCommit)
		fmt.Fprintf(cmd.OutOrStdout(), "output: DXF %s\n", cad.Release)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
