package tracker_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/corazon/gymtrack/internal/model"
	"github.com/corazon/gymtrack/internal/tracker"
)

func TestBundleRoundTripBetweenTrackers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	src, _ := newTracker(t)
	egg, rice := seedEggAndRice(t, src)
	meal, err := src.AddMeal(ctx, tracker.MealInput{Name: "Fried rice", Category: "dinner", Foods: []model.MealFood{{FoodItemID: egg.ID, Amount: 2}, {FoodItemID: rice.ID, Amount: 150}}})
	if err != nil {
		t.Fatalf("add meal: %v", err)
	}
	if _, err := src.ConsumeMeal(ctx, meal.ID); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if _, err := src.AddWorkout(ctx, tracker.WorkoutInput{Name: "PPL", Weeks: 10}); err != nil {
		t.Fatalf("add workout: %v", err)
	}

	path := filepath.Join(t.TempDir(), "exports", "gymtrack.json")
	info, err := tracker.WriteBundleFile(path, src.ExportBundle())
	if err != nil {
		t.Fatalf("write bundle: %v", err)
	}
	if info.Checksum == "" || info.Foods != 2 || info.Meals != 1 || info.Consumed != 1 || info.Workouts != 1 {
		t.Fatalf("unexpected bundle info %+v", info)
	}

	b, err := tracker.ReadBundleFile(path)
	if err != nil {
		t.Fatalf("read bundle: %v", err)
	}
	dst, _ := newTracker(t)
	if err := dst.ImportBundle(ctx, b); err != nil {
		t.Fatalf("import bundle: %v", err)
	}
	if len(dst.Foods()) != 2 || len(dst.Meals()) != 1 || len(dst.Workouts()) != 1 {
		t.Fatalf("expected imported collections")
	}
	if got := dst.Goals().Calories.Current; got != 335 {
		t.Fatalf("expected imported calories current 335, got %v", got)
	}
	if m, _ := dst.Meal(meal.ID); m.TotalCalories != 335 {
		t.Fatalf("expected imported meal totals, got %+v", m)
	}
}

func TestYAMLBundleRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	src, _ := newTracker(t)
	egg, _ := seedEggAndRice(t, src)
	if _, err := src.AddMeal(ctx, tracker.MealInput{Name: "Eggs", Category: "breakfast", Foods: []model.MealFood{{FoodItemID: egg.ID, Amount: 3}}}); err != nil {
		t.Fatalf("add meal: %v", err)
	}

	path := filepath.Join(t.TempDir(), "bundle.yaml")
	if _, err := tracker.WriteBundleFile(path, src.ExportBundle()); err != nil {
		t.Fatalf("write yaml bundle: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read yaml bundle: %v", err)
	}
	if !strings.Contains(string(raw), "unitWeight: 50") {
		t.Fatalf("expected yaml encoding with json field names, got:\n%s", raw)
	}

	b, err := tracker.ReadBundleFile(path)
	if err != nil {
		t.Fatalf("read bundle: %v", err)
	}
	if len(b.Foods) != 2 || len(b.Meals) != 1 || b.Meals[0].TotalCalories != 210 {
		t.Fatalf("unexpected decoded bundle %+v", b)
	}
	var got model.FoodItem
	for _, f := range b.Foods {
		if f.ID == egg.ID {
			got = f
		}
	}
	if got.UnitWeight == nil || *got.UnitWeight != 50 || got.ServingType != model.ServingPerUnit {
		t.Fatalf("expected egg to survive yaml round trip, got %+v", got)
	}
}

func TestReadBundleFileDetectsTampering(t *testing.T) {
	t.Parallel()
	src, _ := newTracker(t)
	seedEggAndRice(t, src)
	path := filepath.Join(t.TempDir(), "bundle.json")
	if _, err := tracker.WriteBundleFile(path, src.ExportBundle()); err != nil {
		t.Fatalf("write bundle: %v", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open bundle: %v", err)
	}
	if _, err := f.WriteString("\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	_ = f.Close()

	if _, err := tracker.ReadBundleFile(path); !errors.Is(err, tracker.ErrInvalid) {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}
}

func TestImportBundleRejectsInvalidRecords(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rice := []model.FoodItem{{ID: 1, Name: "Rice", CaloriesPer100g: 130, ServingType: model.ServingPer100g}}
	tests := []struct {
		name   string
		bundle tracker.Bundle
	}{
		{"newer schema", tracker.Bundle{SchemaVersion: 2}},
		{"food without unit weight", tracker.Bundle{SchemaVersion: 1, Foods: []model.FoodItem{{ID: 1, Name: "Bar", ServingType: model.ServingPerUnit}}}},
		{"duplicate food ids", tracker.Bundle{SchemaVersion: 1, Foods: []model.FoodItem{
			{ID: 1, Name: "A", ServingType: model.ServingPer100g},
			{ID: 1, Name: "B", ServingType: model.ServingPer100g},
		}}},
		{"unknown category", tracker.Bundle{SchemaVersion: 1, Meals: []model.Meal{{ID: 2, Name: "Brunch", Category: "brunch"}}}},
		{"workout weeks", tracker.Bundle{SchemaVersion: 1, Workouts: []model.Workout{{ID: 3, Name: "PPL", Weeks: 60}}}},
		{"blank meal name", tracker.Bundle{SchemaVersion: 1, Foods: rice, Meals: []model.Meal{
			{ID: 10, Name: " ", Category: "lunch", Foods: []model.MealFood{{FoodItemID: 1, Amount: 100}}},
		}}},
		{"negative amount", tracker.Bundle{SchemaVersion: 1, Foods: rice, Meals: []model.Meal{
			{ID: 10, Name: "Bowl", Category: "lunch", Foods: []model.MealFood{{FoodItemID: 1, Amount: -200}}},
		}}},
		{"meal without foods", tracker.Bundle{SchemaVersion: 1, Meals: []model.Meal{{ID: 11, Name: "Empty", Category: "snack"}}}},
		{"duplicate meal ids", tracker.Bundle{SchemaVersion: 1, Foods: rice, Meals: []model.Meal{
			{ID: 11, Name: "Bowl", Category: "lunch", Foods: []model.MealFood{{FoodItemID: 1, Amount: 100}}},
			{ID: 11, Name: "Dup", Category: "dinner", Foods: []model.MealFood{{FoodItemID: 1, Amount: 50}}},
		}}},
		{"duplicate consumed ids", tracker.Bundle{SchemaVersion: 1, ConsumedMeals: []model.ConsumedMeal{
			{ID: 5, Name: "Bowl", TotalCalories: 130},
			{ID: 5, Name: "Bowl", TotalCalories: 130},
		}}},
		{"negative consumed totals", tracker.Bundle{SchemaVersion: 1, ConsumedMeals: []model.ConsumedMeal{{ID: 5, Name: "Bowl", TotalCalories: -260}}}},
		{"duplicate workout ids", tracker.Bundle{SchemaVersion: 1, Workouts: []model.Workout{
			{ID: 3, Name: "PPL", Weeks: 8},
			{ID: 3, Name: "Full body", Weeks: 4},
		}}},
		{"negative goal current", tracker.Bundle{SchemaVersion: 1, NutritionData: &model.NutritionData{
			Calories: model.NutrientValues{Current: -40, Target: 2200},
		}}},
		{"negative goal target", tracker.Bundle{SchemaVersion: 1, NutritionData: &model.NutritionData{
			Hydration: model.NutrientValues{Target: -2},
		}}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr, _ := newTracker(t)
			seedEggAndRice(t, tr)
			if err := tr.ImportBundle(ctx, tt.bundle); !errors.Is(err, tracker.ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
			if len(tr.Foods()) != 2 {
				t.Fatalf("rejected import must not replace data")
			}
		})
	}
}

func TestImportBundleMealsAreRebuilt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr, _ := newTracker(t)
	b := tracker.Bundle{
		SchemaVersion: 1,
		Foods:         []model.FoodItem{{ID: 1, Name: "Rice", CaloriesPer100g: 130, ProteinPer100g: 2.4, CarbsPer100g: 28, ServingType: model.ServingPer100g}},
		Meals: []model.Meal{
			{ID: 10, Name: "  Rice bowl ", Category: "Lunch", Foods: []model.MealFood{{FoodItemID: 1, Amount: 200}}, TotalCalories: -1},
		},
	}
	if err := tr.ImportBundle(ctx, b); err != nil {
		t.Fatalf("import: %v", err)
	}
	m, err := tr.Meal(10)
	if err != nil {
		t.Fatalf("meal 10: %v", err)
	}
	if m.Name != "Rice bowl" || m.Category != "lunch" || m.TotalCalories != 260 {
		t.Fatalf("expected normalized meal with recomputed totals, got %+v", m)
	}
	c, err := tr.ConsumeMeal(ctx, 10)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if c.TotalCalories != 260 || tr.Goals().Calories.Current != 260 {
		t.Fatalf("unexpected consume result %+v, goals %+v", c, tr.Goals())
	}
}

func TestImportBundleReportsPartialWrite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr, backend := newTracker(t)
	seedEggAndRice(t, tr)
	backend.failAfter = backend.writes + 1

	b := tracker.Bundle{
		SchemaVersion: 1,
		Foods:         []model.FoodItem{{ID: 1, Name: "Oats", CaloriesPer100g: 370, ServingType: model.ServingPer100g}},
		Meals:         []model.Meal{{ID: 2, Name: "Porridge", Category: "breakfast", Foods: []model.MealFood{{FoodItemID: 1, Amount: 60}}}},
	}
	err := tr.ImportBundle(ctx, b)
	if !errors.Is(err, errDiskFull) || !strings.Contains(err.Error(), "partially applied") {
		t.Fatalf("expected partial import error, got %v", err)
	}
	if foods := tr.Foods(); len(foods) != 1 || foods[0].Name != "Oats" {
		t.Fatalf("expected saved foods to be committed, got %+v", foods)
	}
	if len(tr.Meals()) != 0 {
		t.Fatalf("expected meals to keep their pre-import state")
	}
}
