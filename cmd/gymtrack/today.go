package gymtrack

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corazon/gymtrack/internal/tracker"
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's intake and goal progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(t *tracker.Tracker) error {
			s := t.Summary()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Meals eaten: %d\n", len(s.Consumed))
			for _, g := range s.Goals {
				line := fmt.Sprintf("%-9s %g/%g %s (%.0f%%)", g.Goal+":", g.Current, g.Target, g.Unit, g.Progress*100)
				if g.Surplus > 0 {
					line += fmt.Sprintf(" over by %g", g.Surplus)
				} else {
					line += fmt.Sprintf(" remaining %g", g.Remaining)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(todayCmd)
}
