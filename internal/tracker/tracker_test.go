package tracker_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/corazon/gymtrack/internal/model"
	"github.com/corazon/gymtrack/internal/nutrition"
	"github.com/corazon/gymtrack/internal/store"
	"github.com/corazon/gymtrack/internal/tracker"
)

func TestMealTotalsFromNormalizedFoods(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr, _ := newTracker(t)
	egg, rice := seedEggAndRice(t, tr)

	if egg.CaloriesPer100g != 140 || egg.ProteinPer100g != 12 || egg.CarbsPer100g != 1 {
		t.Fatalf("expected egg normalized to 140/12/1 per 100g, got %+v", egg)
	}
	if rice.UnitWeight != nil || rice.ServingType != model.ServingPer100g {
		t.Fatalf("expected per-100g rice without unit weight, got %+v", rice)
	}
	if egg.ID == rice.ID || rice.ID <= egg.ID {
		t.Fatalf("expected increasing ids, got %d then %d", egg.ID, rice.ID)
	}

	meal, err := tr.AddMeal(ctx, tracker.MealInput{
		Name:     "Egg fried rice",
		Category: "Lunch",
		Foods:    []model.MealFood{{FoodItemID: egg.ID, Amount: 2}, {FoodItemID: rice.ID, Amount: 150}},
	})
	if err != nil {
		t.Fatalf("add meal: %v", err)
	}
	if meal.Category != "lunch" {
		t.Fatalf("expected normalized category, got %q", meal.Category)
	}
	if got := meal.Totals(); got != (model.Totals{Calories: 335, Protein: 15, Carbs: 43}) {
		t.Fatalf("unexpected meal totals %+v", got)
	}

	form, err := tr.FoodForm(egg.ID)
	if err != nil {
		t.Fatalf("food form: %v", err)
	}
	if form.Calories != 70 || form.Protein != 6 {
		t.Fatalf("expected per-unit form values 70/6, got %+v", form)
	}
}

func TestFoodValidation(t *testing.T) {
	t.Parallel()
	tr, _ := newTracker(t)
	tests := []struct {
		name string
		in   tracker.FoodInput
	}{
		{"blank name", tracker.FoodInput{Name: "  ", Calories: 10}},
		{"negative calories", tracker.FoodInput{Name: "Oil", Calories: -1}},
		{"unit without weight", tracker.FoodInput{Name: "Bar", Calories: 200, ServingType: model.ServingPerUnit}},
		{"unit with zero weight", tracker.FoodInput{Name: "Bar", Calories: 200, ServingType: model.ServingPerUnit, UnitWeight: ptr(0)}},
		{"unknown serving type", tracker.FoodInput{Name: "Bar", ServingType: "PER_CUP"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tr.AddFood(context.Background(), tt.in); !errors.Is(err, tracker.ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
	if len(tr.Foods()) != 0 {
		t.Fatalf("expected no foods after rejected input")
	}
}

func TestUpdateFoodRecomputesMeals(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr, _ := newTracker(t)
	egg, rice := seedEggAndRice(t, tr)
	meal, err := tr.AddMeal(ctx, tracker.MealInput{Name: "Rice bowl", Category: "dinner", Foods: []model.MealFood{{FoodItemID: rice.ID, Amount: 200}}})
	if err != nil {
		t.Fatalf("add meal: %v", err)
	}
	other, err := tr.AddMeal(ctx, tracker.MealInput{Name: "Eggs", Category: "breakfast", Foods: []model.MealFood{{FoodItemID: egg.ID, Amount: 1}}})
	if err != nil {
		t.Fatalf("add meal: %v", err)
	}

	rice.CaloriesPer100g = 100
	if _, err := tr.UpdateFood(ctx, rice); err != nil {
		t.Fatalf("update food: %v", err)
	}
	got, _ := tr.Meal(meal.ID)
	if got.TotalCalories != 200 {
		t.Fatalf("expected recomputed 200 kcal, got %d", got.TotalCalories)
	}
	untouched, _ := tr.Meal(other.ID)
	if untouched.TotalCalories != 70 {
		t.Fatalf("expected unrelated meal to stay 70 kcal, got %d", untouched.TotalCalories)
	}

	if _, err := tr.UpdateFood(ctx, model.FoodItem{ID: 42, Name: "Ghost", ServingType: model.ServingPer100g}); !errors.Is(err, tracker.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteFoodCascadesAndPrunesEmptyMeals(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr, _ := newTracker(t)
	egg, rice := seedEggAndRice(t, tr)

	onlyEgg, err := tr.AddMeal(ctx, tracker.MealInput{Name: "Boiled eggs", Category: "breakfast", Foods: []model.MealFood{{FoodItemID: egg.ID, Amount: 3}}})
	if err != nil {
		t.Fatalf("add meal: %v", err)
	}
	mixed, err := tr.AddMeal(ctx, tracker.MealInput{Name: "Fried rice", Category: "dinner", Foods: []model.MealFood{{FoodItemID: egg.ID, Amount: 2}, {FoodItemID: rice.ID, Amount: 150}}})
	if err != nil {
		t.Fatalf("add meal: %v", err)
	}

	affected, err := tr.DeleteFood(ctx, egg.ID)
	if err != nil {
		t.Fatalf("delete food: %v", err)
	}
	if affected != 2 {
		t.Fatalf("expected 2 affected meals, got %d", affected)
	}
	if _, err := tr.Meal(onlyEgg.ID); !errors.Is(err, tracker.ErrNotFound) {
		t.Fatalf("expected egg-only meal to be pruned, got %v", err)
	}
	got, err := tr.Meal(mixed.ID)
	if err != nil {
		t.Fatalf("mixed meal: %v", err)
	}
	if len(got.Foods) != 1 || got.Foods[0].FoodItemID != rice.ID || got.TotalCalories != 195 {
		t.Fatalf("expected rice-only meal at 195 kcal, got %+v", got)
	}
	if _, err := tr.Food(egg.ID); !errors.Is(err, tracker.ErrNotFound) {
		t.Fatalf("expected egg to be gone, got %v", err)
	}
}

func TestMealValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr, _ := newTracker(t)
	_, rice := seedEggAndRice(t, tr)
	valid := []model.MealFood{{FoodItemID: rice.ID, Amount: 100}}

	tests := []struct {
		name string
		in   tracker.MealInput
	}{
		{"blank name", tracker.MealInput{Name: "", Category: "lunch", Foods: valid}},
		{"unknown category", tracker.MealInput{Name: "Brunch", Category: "brunch", Foods: valid}},
		{"no foods", tracker.MealInput{Name: "Air", Category: "snack"}},
		{"zero amount", tracker.MealInput{Name: "Rice", Category: "lunch", Foods: []model.MealFood{{FoodItemID: rice.ID, Amount: 0}}}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tr.AddMeal(ctx, tt.in); !errors.Is(err, tracker.ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestUnknownFoodFollowsPolicy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	in := tracker.MealInput{Name: "Mystery", Category: "snack", Foods: []model.MealFood{{FoodItemID: 99, Amount: 1}}}

	b, _ := newBackend(t)
	lenient, err := tracker.Open(ctx, b, tracker.Options{Now: fixedClock()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	m, err := lenient.AddMeal(ctx, in)
	if err != nil {
		t.Fatalf("skip policy add meal: %v", err)
	}
	if m.TotalCalories != 0 {
		t.Fatalf("expected missing food to contribute zero, got %d", m.TotalCalories)
	}

	b2, _ := newBackend(t)
	strict, err := tracker.Open(ctx, b2, tracker.Options{Now: fixedClock(), Policy: nutrition.RejectMissing})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := strict.AddMeal(ctx, in); !errors.Is(err, tracker.ErrNotFound) {
		t.Fatalf("expected ErrNotFound under reject policy, got %v", err)
	}
}

func TestConsumeThenDeleteRestoresCurrents(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr, _ := newTracker(t)
	egg, rice := seedEggAndRice(t, tr)
	meal, err := tr.AddMeal(ctx, tracker.MealInput{Name: "Fried rice", Category: "dinner", Foods: []model.MealFood{{FoodItemID: egg.ID, Amount: 2}, {FoodItemID: rice.ID, Amount: 150}}})
	if err != nil {
		t.Fatalf("add meal: %v", err)
	}
	if _, err := tr.AddNutrientValue(ctx, model.GoalCalories, 100); err != nil {
		t.Fatalf("add nutrient value: %v", err)
	}
	before := tr.Goals()

	consumed, err := tr.ConsumeMeal(ctx, meal.ID)
	if err != nil {
		t.Fatalf("consume meal: %v", err)
	}
	if consumed.SourceMealID != meal.ID || consumed.TotalCalories != 335 || consumed.ConsumedAt.IsZero() {
		t.Fatalf("unexpected snapshot %+v", consumed)
	}
	if got := tr.Goals().Calories.Current; got != 435 {
		t.Fatalf("expected 435 kcal current, got %v", got)
	}

	// Snapshots survive edits to the source meal.
	if _, err := tr.UpdateMeal(ctx, meal.ID, tracker.MealInput{Name: "Plain rice", Category: "dinner", Foods: []model.MealFood{{FoodItemID: rice.ID, Amount: 100}}}); err != nil {
		t.Fatalf("update meal: %v", err)
	}
	if got := tr.ConsumedMeals()[0]; got.Name != "Fried rice" || got.TotalCalories != 335 {
		t.Fatalf("expected unchanged snapshot, got %+v", got)
	}

	if err := tr.DeleteConsumedMeal(ctx, consumed.ID); err != nil {
		t.Fatalf("delete consumed meal: %v", err)
	}
	if got := tr.Goals(); got != before {
		t.Fatalf("expected goals restored to %+v, got %+v", before, got)
	}
	if len(tr.ConsumedMeals()) != 0 {
		t.Fatalf("expected empty consumed list")
	}
	if err := tr.DeleteConsumedMeal(ctx, consumed.ID); !errors.Is(err, tracker.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDeleteConsumedMealClampsAtZero(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr, _ := newTracker(t)
	_, rice := seedEggAndRice(t, tr)
	meal, err := tr.AddMeal(ctx, tracker.MealInput{Name: "Rice", Category: "lunch", Foods: []model.MealFood{{FoodItemID: rice.ID, Amount: 100}}})
	if err != nil {
		t.Fatalf("add meal: %v", err)
	}
	consumed, err := tr.ConsumeMeal(ctx, meal.ID)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if _, err := tr.AddNutrientValue(ctx, model.GoalCalories, -1000); err != nil {
		t.Fatalf("add nutrient value: %v", err)
	}
	if err := tr.DeleteConsumedMeal(ctx, consumed.ID); err != nil {
		t.Fatalf("delete consumed: %v", err)
	}
	if got := tr.Goals().Calories.Current; got != 0 {
		t.Fatalf("expected calories clamped at 0, got %v", got)
	}
}

func TestResetDailyValuesIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr, _ := newTracker(t)
	_, rice := seedEggAndRice(t, tr)
	meal, err := tr.AddMeal(ctx, tracker.MealInput{Name: "Rice", Category: "lunch", Foods: []model.MealFood{{FoodItemID: rice.ID, Amount: 100}}})
	if err != nil {
		t.Fatalf("add meal: %v", err)
	}
	if _, err := tr.ConsumeMeal(ctx, meal.ID); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if _, err := tr.AddNutrientValue(ctx, model.GoalHydration, 1.5); err != nil {
		t.Fatalf("add hydration: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := tr.ResetDailyValues(ctx); err != nil {
			t.Fatalf("reset %d: %v", i, err)
		}
		goals := tr.Goals()
		want := model.DefaultNutritionData()
		if goals != want {
			t.Fatalf("reset %d: expected %+v, got %+v", i, want, goals)
		}
		if len(tr.ConsumedMeals()) != 0 {
			t.Fatalf("reset %d: expected no consumed meals", i)
		}
	}
}

func TestUpdateTargetsKeepsUnsetFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr, _ := newTracker(t)
	goals, err := tr.UpdateTargets(ctx, tracker.TargetsInput{Protein: ptr(150)})
	if err != nil {
		t.Fatalf("update targets: %v", err)
	}
	if goals.Protein.Target != 150 || goals.Calories.Target != 2200 || goals.Hydration.Target != 2 {
		t.Fatalf("unexpected targets %+v", goals)
	}
	if _, err := tr.UpdateTargets(ctx, tracker.TargetsInput{Carbs: ptr(-5)}); !errors.Is(err, tracker.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for negative target, got %v", err)
	}
	if tr.Goals().Carbs.Target != 250 {
		t.Fatalf("rejected update must not change carbs target")
	}
}

func TestSummaryReportsProgressAndSurplus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr, _ := newTracker(t)
	if _, err := tr.AddNutrientValue(ctx, model.GoalHydration, 3); err != nil {
		t.Fatalf("add hydration: %v", err)
	}
	if _, err := tr.AddNutrientValue(ctx, model.GoalCalories, 1100); err != nil {
		t.Fatalf("add calories: %v", err)
	}
	s := tr.Summary()
	if len(s.Goals) != 4 {
		t.Fatalf("expected 4 goals, got %d", len(s.Goals))
	}
	cal, water := s.Goals[0], s.Goals[3]
	if cal.Progress != 0.5 || cal.Remaining != 1100 || cal.Surplus != 0 {
		t.Fatalf("unexpected calories summary %+v", cal)
	}
	if water.Goal != model.GoalHydration || water.Progress != 1 || water.Remaining != -1 || water.Surplus != 1 || water.Unit != "L" {
		t.Fatalf("unexpected hydration summary %+v", water)
	}
}

func TestFailedSaveLeavesMemoryUnchanged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr, backend := newTracker(t)
	egg, rice := seedEggAndRice(t, tr)
	meal, err := tr.AddMeal(ctx, tracker.MealInput{Name: "Fried rice", Category: "dinner", Foods: []model.MealFood{{FoodItemID: egg.ID, Amount: 2}, {FoodItemID: rice.ID, Amount: 150}}})
	if err != nil {
		t.Fatalf("add meal: %v", err)
	}

	backend.failWrites = true
	if _, err := tr.AddFood(ctx, tracker.FoodInput{Name: "Oats", Calories: 380}); !errors.Is(err, errDiskFull) {
		t.Fatalf("expected disk full error, got %v", err)
	}
	var serr *store.Error
	if _, err := tr.DeleteFood(ctx, egg.ID); !errors.As(err, &serr) || serr.Kind != store.KindIO {
		t.Fatalf("expected io store error, got %v", err)
	}
	if _, err := tr.ConsumeMeal(ctx, meal.ID); err == nil {
		t.Fatalf("expected consume to fail")
	}
	if err := tr.ResetDailyValues(ctx); err == nil {
		t.Fatalf("expected reset to fail")
	}

	if len(tr.Foods()) != 2 {
		t.Fatalf("expected 2 foods in memory, got %d", len(tr.Foods()))
	}
	if got, _ := tr.Meal(meal.ID); len(got.Foods) != 2 {
		t.Fatalf("expected meal untouched, got %+v", got)
	}
	if len(tr.ConsumedMeals()) != 0 || tr.Goals() != model.DefaultNutritionData() {
		t.Fatalf("expected consumption state untouched")
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr, _ := newTracker(t)
	egg, rice := seedEggAndRice(t, tr)
	meal, err := tr.AddMeal(ctx, tracker.MealInput{Name: "Fried rice", Category: "dinner", Foods: []model.MealFood{{FoodItemID: egg.ID, Amount: 2}, {FoodItemID: rice.ID, Amount: 150}}})
	if err != nil {
		t.Fatalf("add meal: %v", err)
	}
	foods := tr.Foods()
	*foods[0].UnitWeight = 1
	meals := tr.Meals()
	meals[0].Foods[0].Amount = 99

	again, _ := tr.Food(egg.ID)
	if *again.UnitWeight != 50 {
		t.Fatalf("caller mutation leaked into tracker foods")
	}
	m, _ := tr.Meal(meal.ID)
	if m.Foods[0].Amount != 2 {
		t.Fatalf("caller mutation leaked into tracker meals")
	}
}

func TestReopenSeesPersistedState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b, dir := newBackend(t)
	tr, err := tracker.Open(ctx, b, tracker.Options{Now: fixedClock()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	egg, _ := seedEggAndRice(t, tr)
	w, err := tr.AddWorkout(ctx, tracker.WorkoutInput{Name: "Push pull legs", Weeks: 12})
	if err != nil {
		t.Fatalf("add workout: %v", err)
	}

	reopened, err := tracker.Open(ctx, b, tracker.Options{Now: fixedClock()})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if len(reopened.Foods()) != 2 || len(reopened.Workouts()) != 1 {
		t.Fatalf("expected persisted foods and workouts after reopen")
	}
	// A new id must not collide with ids loaded from disk even with a frozen clock.
	next, err := reopened.AddFood(ctx, tracker.FoodInput{Name: "Oats", Calories: 380})
	if err != nil {
		t.Fatalf("add food: %v", err)
	}
	if next.ID <= w.ID || next.ID == egg.ID {
		t.Fatalf("expected fresh id above %d, got %d", w.ID, next.ID)
	}
	if _, err := os.Stat(filepath.Join(dir, "foods.json")); err != nil {
		t.Fatalf("expected foods.json on disk: %v", err)
	}
}

func TestOpenStrictAndLenient(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b, dir := newBackend(t)
	if err := os.WriteFile(filepath.Join(dir, "nutrition_data.json"), []byte("{broken"), 0o600); err != nil {
		t.Fatalf("write corrupt goals: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "workouts.json"), []byte(`[{"id":1,"name":"Legs","weeks":6}]`), 0o600); err != nil {
		t.Fatalf("write legacy workouts: %v", err)
	}

	if _, err := tracker.Open(ctx, b, tracker.Options{}); !errors.Is(err, store.ErrCorrupt) {
		t.Fatalf("expected strict open to fail with ErrCorrupt, got %v", err)
	}

	tr, err := tracker.Open(ctx, b, tracker.Options{Lenient: true})
	if err != nil {
		t.Fatalf("lenient open: %v", err)
	}
	if tr.Goals() != model.DefaultNutritionData() {
		t.Fatalf("expected default goals after fallback, got %+v", tr.Goals())
	}
	if ws := tr.Workouts(); len(ws) != 1 || ws[0].Name != "Legs" {
		t.Fatalf("expected legacy workouts to load, got %+v", ws)
	}
}

func TestInitWritesMissingCollections(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr, _ := newTracker(t)
	written, err := tr.Init(ctx)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if len(written) != len(store.Names) {
		t.Fatalf("expected all collections written, got %v", written)
	}
	again, err := tr.Init(ctx)
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected nothing written on second init, got %v", again)
	}
}
