package gymtrack

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/corazon/gymtrack/internal/store"
)

// Set at build time with -ldflags "-X".
var (
	version = "dev"
	commit  = "none"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version/build metadata",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd)
	},
}

func printVersion(cmd *cobra.Command) {
	fmt.Fprintf(cmd.OutOrStdout(), "gymtrack %s (commit %s, %s, schema v%d)\n", version, commit, runtime.Version(), store.CurrentSchemaVersion)
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
