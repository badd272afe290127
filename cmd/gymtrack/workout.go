package gymtrack

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corazon/gymtrack/internal/tracker"
)

var workoutCmd = &cobra.Command{
	Use:   "workout",
	Short: "Manage workout programs",
}

var (
	workoutName        string
	workoutDescription string
	workoutWeeks       int
)

var workoutAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a workout program",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(t *tracker.Tracker) error {
			w, err := t.AddWorkout(cmd.Context(), tracker.WorkoutInput{Name: workoutName, Description: workoutDescription, Weeks: workoutWeeks})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added workout %d (%s, %d weeks)\n", w.ID, w.Name, w.Weeks)
			return nil
		})
	},
}

var workoutListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workout programs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(t *tracker.Tracker) error {
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tWEEKS\tDESCRIPTION")
			for _, w := range t.Workouts() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%d\t%s\n", w.ID, w.Name, w.Weeks, w.Description)
			}
			return nil
		})
	},
}

var workoutUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a workout program; unset flags keep their value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("workout id", args[0])
		if err != nil {
			return err
		}
		return withTracker(cmd, func(t *tracker.Tracker) error {
			var current tracker.WorkoutInput
			for _, w := range t.Workouts() {
				if w.ID == id {
					current = tracker.WorkoutInput{Name: w.Name, Description: w.Description}
				}
			}
			if cmd.Flags().Changed("name") {
				current.Name = workoutName
			}
			if cmd.Flags().Changed("description") {
				current.Description = workoutDescription
			}
			if cmd.Flags().Changed("weeks") {
				if workoutWeeks == 0 {
					return fmt.Errorf("--weeks must be between %d and %d", tracker.MinWeeks, tracker.MaxWeeks)
				}
				current.Weeks = workoutWeeks
			}
			w, err := t.UpdateWorkout(cmd.Context(), id, current)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated workout %d (%s, %d weeks)\n", w.ID, w.Name, w.Weeks)
			return nil
		})
	},
}

var workoutDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a workout program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("workout id", args[0])
		if err != nil {
			return err
		}
		return withTracker(cmd, func(t *tracker.Tracker) error {
			if err := t.DeleteWorkout(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted workout %d\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(workoutCmd)
	workoutCmd.AddCommand(workoutAddCmd, workoutListCmd, workoutUpdateCmd, workoutDeleteCmd)
	for _, c := range []*cobra.Command{workoutAddCmd, workoutUpdateCmd} {
		c.Flags().StringVar(&workoutName, "name", "", "Program name")
		c.Flags().StringVar(&workoutDescription, "description", "", "Program description")
		c.Flags().IntVar(&workoutWeeks, "weeks", 0, fmt.Sprintf("Program length in weeks (%d-%d)", tracker.MinWeeks, tracker.MaxWeeks))
	}
	_ = workoutAddCmd.MarkFlagRequired("name")
	_ = workoutAddCmd.MarkFlagRequired("weeks")
}
