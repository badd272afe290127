package tracker

import (
	"context"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/corazon/gymtrack/internal/model"
	"github.com/corazon/gymtrack/internal/nutrition"
)

type MealInput struct {
	Name     string
	Category string
	Foods    []model.MealFood
}

func (t *Tracker) Meals() []model.Meal {
	return cloneMeals(t.meals)
}

func (t *Tracker) Meal(id int64) (model.Meal, error) {
	i := t.mealIndex(id)
	if i < 0 {
		return model.Meal{}, notFound("meal", id)
	}
	return t.meals[i].WithFoods(t.meals[i].Foods), nil
}

func (t *Tracker) mealIndex(id int64) int {
	for i, m := range t.meals {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// NormalizeCategory lower-cases c and checks it against the fixed label set.
func NormalizeCategory(c string) (string, error) {
	c = strings.ToLower(strings.TrimSpace(c))
	if !slices.Contains(model.MealCategories, c) {
		return "", invalidf("category must be one of %s", strings.Join(model.MealCategories, ", "))
	}
	return c, nil
}

func (t *Tracker) buildMeal(id int64, in MealInput) (model.Meal, error) {
	return newMeal(id, in, nutrition.Index(t.foods), t.opts.Policy)
}

// newMeal validates in against foods and returns the meal with fresh
// totals. Imports use it directly with the bundled foods.
func newMeal(id int64, in MealInput, foods map[int64]model.FoodItem, policy nutrition.Policy) (model.Meal, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Meal{}, invalidf("meal name is required")
	}
	category, err := NormalizeCategory(in.Category)
	if err != nil {
		return model.Meal{}, err
	}
	if len(in.Foods) == 0 {
		return model.Meal{}, invalidf("meal needs at least one food")
	}
	for _, it := range in.Foods {
		if it.Amount <= 0 {
			return model.Meal{}, invalidf("amount for food %d must be > 0", it.FoodItemID)
		}
		if _, ok := foods[it.FoodItemID]; !ok && policy == nutrition.RejectMissing {
			return model.Meal{}, notFound("food", it.FoodItemID)
		}
	}
	m := model.Meal{ID: id, Name: name, Category: category}.WithFoods(in.Foods)
	m, err = nutrition.Recalculate(m, foods, policy)
	if err != nil {
		return model.Meal{}, invalid(err)
	}
	return m, nil
}

func (t *Tracker) AddMeal(ctx context.Context, in MealInput) (model.Meal, error) {
	m, err := t.buildMeal(t.nextID(), in)
	if err != nil {
		return model.Meal{}, err
	}
	next := append(cloneMeals(t.meals), m)
	if err := t.saveMeals(ctx, next); err != nil {
		return model.Meal{}, err
	}
	return m.WithFoods(m.Foods), nil
}

// UpdateMeal replaces name, category and foods of meal id and recomputes its
// totals. Consumed snapshots of the meal are not touched.
func (t *Tracker) UpdateMeal(ctx context.Context, id int64, in MealInput) (model.Meal, error) {
	i := t.mealIndex(id)
	if i < 0 {
		return model.Meal{}, notFound("meal", id)
	}
	m, err := t.buildMeal(id, in)
	if err != nil {
		return model.Meal{}, err
	}
	next := cloneMeals(t.meals)
	next[i] = m
	if err := t.saveMeals(ctx, next); err != nil {
		return model.Meal{}, err
	}
	return m.WithFoods(m.Foods), nil
}

func (t *Tracker) DeleteMeal(ctx context.Context, id int64) error {
	if t.mealIndex(id) < 0 {
		return notFound("meal", id)
	}
	next := lo.Reject(cloneMeals(t.meals), func(m model.Meal, _ int) bool { return m.ID == id })
	return t.saveMeals(ctx, next)
}

// RecalculateMeals recomputes the cached totals of every meal and returns
// how many changed. Nothing is written when no totals changed.
func (t *Tracker) RecalculateMeals(ctx context.Context) (int, error) {
	index := nutrition.Index(t.foods)
	next := cloneMeals(t.meals)
	changed := 0
	for i, m := range next {
		updated, err := nutrition.Recalculate(m, index, t.opts.Policy)
		if err != nil {
			return 0, invalid(err)
		}
		if updated.Totals() != m.Totals() {
			changed++
		}
		next[i] = updated
	}
	if changed == 0 {
		return 0, nil
	}
	if err := t.saveMeals(ctx, next); err != nil {
		return 0, err
	}
	return changed, nil
}
