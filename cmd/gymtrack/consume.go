package gymtrack

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/corazon/gymtrack/internal/tracker"
)

var consumeCmd = &cobra.Command{
	Use:   "consume <meal-id>",
	Short: "Record a meal as eaten and add it to today's totals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("meal id", args[0])
		if err != nil {
			return err
		}
		return withTracker(cmd, func(t *tracker.Tracker) error {
			c, err := t.ConsumeMeal(cmd.Context(), id)
			if err != nil {
				return err
			}
			g := t.Goals()
			fmt.Fprintf(cmd.OutOrStdout(), "Consumed %s (entry %d): %d kcal | P %dg | C %dg\n", c.Name, c.ID, c.TotalCalories, c.TotalProtein, c.TotalCarbs)
			fmt.Fprintf(cmd.OutOrStdout(), "Today: %.0f/%.0f kcal\n", g.Calories.Current, g.Calories.Target)
			return nil
		})
	},
}

var consumedCmd = &cobra.Command{
	Use:   "consumed",
	Short: "Manage consumed meal entries",
}

var consumedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List consumed meals since the last reset",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(t *tracker.Tracker) error {
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tMEAL_ID\tNAME\tKCAL\tP\tC\tCONSUMED_AT")
			for _, c := range t.ConsumedMeals() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%d\t%s\t%d\t%d\t%d\t%s\n", c.ID, c.SourceMealID, c.Name, c.TotalCalories, c.TotalProtein, c.TotalCarbs, c.ConsumedAt.Local().Format(time.RFC3339))
			}
			return nil
		})
	},
}

var consumedDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a consumed entry and subtract it from today's totals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("consumed id", args[0])
		if err != nil {
			return err
		}
		return withTracker(cmd, func(t *tracker.Tracker) error {
			if err := t.DeleteConsumedMeal(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted consumed entry %d\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(consumeCmd, consumedCmd)
	consumedCmd.AddCommand(consumedListCmd, consumedDeleteCmd)
}
