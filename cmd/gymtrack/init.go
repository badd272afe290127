package gymtrack

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corazon/gymtrack/internal/tracker"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the local gymtrack data directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}
		return withTrackerConfig(cmd, cfg, func(t *tracker.Tracker) error {
			written, err := t.Init(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized gymtrack data at %s (%s store)\n", cfg.DataDir, cfg.Store)
			if len(written) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", strings.Join(written, ", "))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
