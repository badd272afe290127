package gymtrack

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corazon/gymtrack/internal/config"
	"github.com/corazon/gymtrack/internal/model"
	"github.com/corazon/gymtrack/internal/provider/openfoodfacts"
	"github.com/corazon/gymtrack/internal/tracker"
)

var (
	lookupAdd     bool
	lookupPerUnit bool
	searchLimit   int
)

func foodDBClient(cfg config.Config) *openfoodfacts.Client {
	return &openfoodfacts.Client{BaseURL: cfg.FoodDBURL}
}

// productFoodInput turns a looked-up product into tracker input. Per-unit
// foods use the labelled serving as the unit.
func productFoodInput(p openfoodfacts.Product, perUnit bool) (tracker.FoodInput, error) {
	name := p.Name
	if p.Brand != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(p.Brand)) {
		name = fmt.Sprintf("%s (%s)", name, p.Brand)
	}
	in := tracker.FoodInput{
		Name:        name,
		Calories:    p.CaloriesPer100g,
		Protein:     p.ProteinPer100g,
		Carbs:       p.CarbsPer100g,
		ServingType: model.ServingPer100g,
	}
	if !perUnit {
		return in, nil
	}
	if p.ServingGrams <= 0 {
		return tracker.FoodInput{}, fmt.Errorf("product %q has no serving weight in grams; add it per 100 g instead", p.Name)
	}
	w := p.ServingGrams
	in.ServingType = model.ServingPerUnit
	in.UnitWeight = &w
	in.Calories = p.CaloriesPer100g * w / 100
	in.Protein = p.ProteinPer100g * w / 100
	in.Carbs = p.CarbsPer100g * w / 100
	return in, nil
}

func printProduct(cmd *cobra.Command, p openfoodfacts.Product) {
	serving := "-"
	if p.ServingGrams > 0 {
		serving = fmt.Sprintf("%gg", p.ServingGrams)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%.1f kcal | P %.1fg | C %.1fg per 100g\tserving %s\n",
		p.Code, p.Name, p.CaloriesPer100g, p.ProteinPer100g, p.CarbsPer100g, serving)
}

var foodLookupCmd = &cobra.Command{
	Use:   "lookup <barcode>",
	Short: "Look up a barcode on Open Food Facts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}
		p, err := foodDBClient(cfg).LookupBarcode(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printProduct(cmd, p)
		if !lookupAdd {
			return nil
		}
		in, err := productFoodInput(p, lookupPerUnit)
		if err != nil {
			return err
		}
		return withTrackerConfig(cmd, cfg, func(t *tracker.Tracker) error {
			f, err := t.AddFood(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added food %d (%s)\n", f.ID, f.Name)
			return nil
		})
	},
}

var foodSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search Open Food Facts by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}
		items, err := foodDBClient(cfg).Search(cmd.Context(), strings.Join(args, " "), searchLimit)
		if err != nil {
			return err
		}
		for _, p := range items {
			printProduct(cmd, p)
		}
		return nil
	},
}

func init() {
	foodCmd.AddCommand(foodLookupCmd, foodSearchCmd)
	foodLookupCmd.Flags().BoolVar(&lookupAdd, "add", false, "Save the product as a food")
	foodLookupCmd.Flags().BoolVar(&lookupPerUnit, "per-unit", false, "Save per labelled serving instead of per 100 g")
	foodSearchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum results")
}
