package tracker

import (
	"context"

	"github.com/samber/lo"

	"github.com/corazon/gymtrack/internal/model"
	"github.com/corazon/gymtrack/internal/nutrition"
)

type CheckReport struct {
	DanglingFoods  int `json:"dangling_foods"`
	StaleTotals    int `json:"stale_totals"`
	EmptyMeals     int `json:"empty_meals"`
	OrphanConsumed int `json:"orphan_consumed"`
	FixedMeals     int `json:"fixed_meals,omitempty"`
	PrunedMeals    int `json:"pruned_meals,omitempty"`
}

// Clean reports whether the check found nothing to fix. Orphan consumed
// meals are expected once a meal is deleted and do not count.
func (r CheckReport) Clean() bool {
	return r.DanglingFoods == 0 && r.StaleTotals == 0 && r.EmptyMeals == 0
}

// Check scans meals for references to deleted foods, cached totals that
// disagree with a recomputation, and meals without foods. With fix set,
// dangling entries and empty meals are removed and totals recomputed.
func (t *Tracker) Check(ctx context.Context, fix bool) (CheckReport, error) {
	var report CheckReport
	index := nutrition.Index(t.foods)
	fixed := make([]model.Meal, 0, len(t.meals))
	for _, m := range cloneMeals(t.meals) {
		kept := make([]model.MealFood, 0, len(m.Foods))
		for _, it := range m.Foods {
			if _, ok := index[it.FoodItemID]; ok {
				kept = append(kept, it)
			} else {
				report.DanglingFoods++
			}
		}
		if len(m.Foods) == 0 {
			report.EmptyMeals++
		}
		// SkipMissing never returns an error; dangling entries count as zero.
		want, _ := nutrition.MealTotals(m, index, nutrition.SkipMissing)
		if want != m.Totals() {
			report.StaleTotals++
		}

		if len(kept) == 0 {
			report.PrunedMeals++
			continue
		}
		updated, _ := nutrition.Recalculate(m.WithFoods(kept), index, nutrition.SkipMissing)
		if len(kept) != len(m.Foods) || updated.Totals() != m.Totals() {
			report.FixedMeals++
		}
		fixed = append(fixed, updated)
	}
	report.OrphanConsumed = lo.CountBy(t.consumed, func(c model.ConsumedMeal) bool {
		return t.mealIndex(c.SourceMealID) < 0
	})

	if !fix {
		report.FixedMeals, report.PrunedMeals = 0, 0
		return report, nil
	}
	if report.FixedMeals == 0 && report.PrunedMeals == 0 {
		return report, nil
	}
	if err := t.saveMeals(ctx, fixed); err != nil {
		return report, err
	}
	return report, nil
}
