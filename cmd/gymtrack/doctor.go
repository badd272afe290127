package gymtrack

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corazon/gymtrack/internal/tracker"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(t *tracker.Tracker) error {
			report, err := t.Check(cmd.Context(), doctorFix)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Dangling food references: %d\n", report.DanglingFoods)
			fmt.Fprintf(out, "Stale meal totals: %d\n", report.StaleTotals)
			fmt.Fprintf(out, "Empty meals: %d\n", report.EmptyMeals)
			fmt.Fprintf(out, "Consumed entries from deleted meals: %d\n", report.OrphanConsumed)
			if doctorFix {
				fmt.Fprintf(out, "Fixed meals: %d\n", report.FixedMeals)
				fmt.Fprintf(out, "Removed meals: %d\n", report.PrunedMeals)
				// Re-check after fixes so exit status reflects final state.
				report, err = t.Check(cmd.Context(), false)
				if err != nil {
					return err
				}
			}
			if !report.Clean() {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Remove dangling references and empty meals, recompute totals")
}
