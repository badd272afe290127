package gymtrack

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corazon/gymtrack/internal/model"
	"github.com/corazon/gymtrack/internal/tracker"
)

var foodCmd = &cobra.Command{
	Use:   "food",
	Short: "Manage foods and their nutrient values",
}

var (
	foodName       string
	foodCalories   float64
	foodProtein    float64
	foodCarbs      float64
	foodPerUnit    bool
	foodUnitWeight float64
)

func foodInputFromFlags() tracker.FoodInput {
	in := tracker.FoodInput{
		Name:        foodName,
		Calories:    foodCalories,
		Protein:     foodProtein,
		Carbs:       foodCarbs,
		ServingType: model.ServingPer100g,
	}
	if foodPerUnit {
		in.ServingType = model.ServingPerUnit
		w := foodUnitWeight
		in.UnitWeight = &w
	}
	return in
}

var foodAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a food (values per 100 g, or per unit with --per-unit)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(t *tracker.Tracker) error {
			f, err := t.AddFood(cmd.Context(), foodInputFromFlags())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added food %d (%s)\n", f.ID, f.Name)
			return nil
		})
	},
}

var foodListCmd = &cobra.Command{
	Use:   "list",
	Short: "List foods",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(t *tracker.Tracker) error {
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tKCAL/100G\tP/100G\tC/100G\tSERVING\tUNIT_G")
			for _, f := range t.Foods() {
				unit := "-"
				if f.UnitWeight != nil {
					unit = fmt.Sprintf("%g", *f.UnitWeight)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%.1f\t%.1f\t%.1f\t%s\t%s\n", f.ID, f.Name, f.CaloriesPer100g, f.ProteinPer100g, f.CarbsPer100g, f.ServingType, unit)
			}
			return nil
		})
	},
}

var foodShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a food as entered",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("food id", args[0])
		if err != nil {
			return err
		}
		return withTracker(cmd, func(t *tracker.Tracker) error {
			form, err := t.FoodForm(id)
			if err != nil {
				return err
			}
			f := form.Food
			fmt.Fprintf(cmd.OutOrStdout(), "ID: %d\nName: %s\nServing: %s\n", f.ID, f.Name, f.ServingType)
			if f.ServingType == model.ServingPerUnit {
				fmt.Fprintf(cmd.OutOrStdout(), "Unit weight: %gg\nPer unit: %.1f kcal | P %.1fg | C %.1fg\n", f.UnitWeightOr(0), form.Calories, form.Protein, form.Carbs)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Per 100g: %.1f kcal | P %.1fg | C %.1fg\n", f.CaloriesPer100g, f.ProteinPer100g, f.CarbsPer100g)
			return nil
		})
	},
}

var foodUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a food; unset flags keep their value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("food id", args[0])
		if err != nil {
			return err
		}
		return withTracker(cmd, func(t *tracker.Tracker) error {
			form, err := t.FoodForm(id)
			if err != nil {
				return err
			}
			in := form.Input()
			flags := cmd.Flags()
			if flags.Changed("name") {
				in.Name = foodName
			}
			if flags.Changed("per-unit") {
				in.ServingType = model.ServingPer100g
				if foodPerUnit {
					in.ServingType = model.ServingPerUnit
				}
			}
			if flags.Changed("unit-weight") {
				w := foodUnitWeight
				in.UnitWeight = &w
			}
			if flags.Changed("calories") {
				in.Calories = foodCalories
			}
			if flags.Changed("protein") {
				in.Protein = foodProtein
			}
			if flags.Changed("carbs") {
				in.Carbs = foodCarbs
			}
			food, err := tracker.BuildFood(id, in)
			if err != nil {
				return err
			}
			if _, err := t.UpdateFood(cmd.Context(), food); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated food %d\n", id)
			return nil
		})
	},
}

var foodDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a food and remove it from every meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("food id", args[0])
		if err != nil {
			return err
		}
		return withTracker(cmd, func(t *tracker.Tracker) error {
			affected, err := t.DeleteFood(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted food %d (%d meal(s) updated)\n", id, affected)
			return nil
		})
	},
}

func addFoodValueFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&foodName, "name", "", "Food name")
	cmd.Flags().Float64Var(&foodCalories, "calories", 0, "Calories (kcal)")
	cmd.Flags().Float64Var(&foodProtein, "protein", 0, "Protein (g)")
	cmd.Flags().Float64Var(&foodCarbs, "carbs", 0, "Carbohydrates (g)")
	cmd.Flags().BoolVar(&foodPerUnit, "per-unit", false, "Values are per unit instead of per 100 g")
	cmd.Flags().Float64Var(&foodUnitWeight, "unit-weight", 0, "Weight of one unit in grams (with --per-unit)")
}

func init() {
	rootCmd.AddCommand(foodCmd)
	foodCmd.AddCommand(foodAddCmd, foodListCmd, foodShowCmd, foodUpdateCmd, foodDeleteCmd)
	addFoodValueFlags(foodAddCmd)
	addFoodValueFlags(foodUpdateCmd)
	_ = foodAddCmd.MarkFlagRequired("name")
}
