package gymtrack

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corazon/gymtrack/internal/model"
	"github.com/corazon/gymtrack/internal/tracker"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage daily calorie, protein, carb and hydration goals",
}

var (
	goalCalories  float64
	goalProtein   float64
	goalCarbs     float64
	goalHydration float64
)

var goalShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show goal targets and current values",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(t *tracker.Tracker) error {
			d := t.Goals()
			fmt.Fprintln(cmd.OutOrStdout(), "GOAL\tCURRENT\tTARGET\tUNIT")
			for _, g := range model.Goals {
				v, _ := d.Get(g)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%g\t%g\t%s\n", g, v.Current, v.Target, g.Unit())
			}
			return nil
		})
	},
}

var goalSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set goal targets; unset flags keep their value",
	RunE: func(cmd *cobra.Command, args []string) error {
		var in tracker.TargetsInput
		flags := cmd.Flags()
		if flags.Changed("calories") {
			in.Calories = &goalCalories
		}
		if flags.Changed("protein") {
			in.Protein = &goalProtein
		}
		if flags.Changed("carbs") {
			in.Carbs = &goalCarbs
		}
		if flags.Changed("hydration") {
			in.Hydration = &goalHydration
		}
		if in == (tracker.TargetsInput{}) {
			return fmt.Errorf("set at least one of --calories, --protein, --carbs, --hydration")
		}
		return withTracker(cmd, func(t *tracker.Tracker) error {
			d, err := t.UpdateTargets(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Targets: %g kcal | P %gg | C %gg | water %gL\n", d.Calories.Target, d.Protein.Target, d.Carbs.Target, d.Hydration.Target)
			return nil
		})
	},
}

var goalAddCmd = &cobra.Command{
	Use:   "add <goal> <amount>",
	Short: "Add a manual amount to a goal, e.g. hydration 0.5",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := tracker.ParseGoal(strings.ToLower(strings.TrimSpace(args[0])))
		if err != nil {
			return err
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[1])
		}
		return withTracker(cmd, func(t *tracker.Tracker) error {
			v, err := t.AddNutrientValue(cmd.Context(), g, amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %g/%g %s\n", g, v.Current, v.Target, g.Unit())
			return nil
		})
	},
}

var goalResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Start a new day: clear consumed meals and zero current values",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(t *tracker.Tracker) error {
			if err := t.ResetDailyValues(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Daily values reset")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(goalCmd)
	goalCmd.AddCommand(goalShowCmd, goalSetCmd, goalAddCmd, goalResetCmd)
	goalSetCmd.Flags().Float64Var(&goalCalories, "calories", 0, "Daily calories target (kcal)")
	goalSetCmd.Flags().Float64Var(&goalProtein, "protein", 0, "Daily protein target (g)")
	goalSetCmd.Flags().Float64Var(&goalCarbs, "carbs", 0, "Daily carbs target (g)")
	goalSetCmd.Flags().Float64Var(&goalHydration, "hydration", 0, "Daily hydration target (L)")
}
