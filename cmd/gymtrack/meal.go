package gymtrack

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corazon/gymtrack/internal/model"
	"github.com/corazon/gymtrack/internal/nutrition"
	"github.com/corazon/gymtrack/internal/tracker"
)

var mealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Manage meal templates built from foods",
}

var (
	mealName     string
	mealCategory string
	mealFoods    []string
)

var mealAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a meal from --food <food-id>:<amount> entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		foods, err := parseMealFoods(mealFoods)
		if err != nil {
			return err
		}
		return withTracker(cmd, func(t *tracker.Tracker) error {
			m, err := t.AddMeal(cmd.Context(), tracker.MealInput{Name: mealName, Category: mealCategory, Foods: foods})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added meal %d (%s): %d kcal | P %dg | C %dg\n", m.ID, m.Name, m.TotalCalories, m.TotalProtein, m.TotalCarbs)
			return nil
		})
	},
}

var mealListCmd = &cobra.Command{
	Use:   "list",
	Short: "List meals",
	RunE: func(cmd *cobra.Command, args []string) error {
		category := ""
		if strings.TrimSpace(mealCategory) != "" {
			c, err := tracker.NormalizeCategory(mealCategory)
			if err != nil {
				return err
			}
			category = c
		}
		return withTracker(cmd, func(t *tracker.Tracker) error {
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tCATEGORY\tFOODS\tKCAL\tP\tC")
			for _, m := range t.Meals() {
				if category != "" && m.Category != category {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%d\t%d\t%d\t%d\n", m.ID, m.Name, m.Category, len(m.Foods), m.TotalCalories, m.TotalProtein, m.TotalCarbs)
			}
			return nil
		})
	},
}

var mealShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a meal and its foods",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("meal id", args[0])
		if err != nil {
			return err
		}
		return withTracker(cmd, func(t *tracker.Tracker) error {
			m, err := t.Meal(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ID: %d\nName: %s\nCategory: %s\n", m.ID, m.Name, m.Category)
			fmt.Fprintf(cmd.OutOrStdout(), "Totals: %d kcal | P %dg | C %dg\n", m.TotalCalories, m.TotalProtein, m.TotalCarbs)
			fmt.Fprintln(cmd.OutOrStdout(), "FOOD_ID\tNAME\tAMOUNT\tKCAL")
			index := nutrition.Index(t.Foods())
			for _, it := range m.Foods {
				f, ok := index[it.FoodItemID]
				if !ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t(missing)\t%g\t0\n", it.FoodItemID, it.Amount)
					continue
				}
				c := nutrition.Contribution(f, it.Amount)
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%.1f\n", f.ID, f.Name, formatAmount(f, it.Amount), c.Calories)
			}
			return nil
		})
	},
}

var mealUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a meal; --food entries replace the food list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("meal id", args[0])
		if err != nil {
			return err
		}
		var foods []model.MealFood
		if cmd.Flags().Changed("food") {
			if foods, err = parseMealFoods(mealFoods); err != nil {
				return err
			}
		}
		return withTracker(cmd, func(t *tracker.Tracker) error {
			current, err := t.Meal(id)
			if err != nil {
				return err
			}
			in := tracker.MealInput{Name: current.Name, Category: current.Category, Foods: current.Foods}
			if cmd.Flags().Changed("name") {
				in.Name = mealName
			}
			if cmd.Flags().Changed("category") {
				in.Category = mealCategory
			}
			if foods != nil {
				in.Foods = foods
			}
			m, err := t.UpdateMeal(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated meal %d: %d kcal | P %dg | C %dg\n", m.ID, m.TotalCalories, m.TotalProtein, m.TotalCarbs)
			return nil
		})
	},
}

var mealDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a meal template (consumed entries are kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("meal id", args[0])
		if err != nil {
			return err
		}
		return withTracker(cmd, func(t *tracker.Tracker) error {
			if err := t.DeleteMeal(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted meal %d\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(mealCmd)
	mealCmd.AddCommand(mealAddCmd, mealListCmd, mealShowCmd, mealUpdateCmd, mealDeleteCmd)

	categories := strings.Join(model.MealCategories, "|")
	for _, c := range []*cobra.Command{mealAddCmd, mealUpdateCmd} {
		c.Flags().StringVar(&mealName, "name", "", "Meal name")
		c.Flags().StringVar(&mealCategory, "category", "", "Category: "+categories)
		c.Flags().StringArrayVar(&mealFoods, "food", nil, "Food entry <food-id>:<amount> (grams, or units for per-unit foods); repeatable")
	}
	mealListCmd.Flags().StringVar(&mealCategory, "category", "", "Only list meals in this category")
	_ = mealAddCmd.MarkFlagRequired("name")
	_ = mealAddCmd.MarkFlagRequired("category")
}
