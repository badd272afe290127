package tracker

import (
	"context"
	"strings"

	"github.com/corazon/gymtrack/internal/model"
	"github.com/corazon/gymtrack/internal/nutrition"
)

// FoodInput holds values as the user entered them: per 100 g, or per unit
// when ServingType is PER_UNIT.
type FoodInput struct {
	Name        string
	Calories    float64
	Protein     float64
	Carbs       float64
	ServingType model.ServingType
	UnitWeight  *float64
}

// FoodForm is a food shown the way it is edited: per-unit values for
// PER_UNIT foods, per-100g values otherwise.
type FoodForm struct {
	Food     model.FoodItem
	Calories float64
	Protein  float64
	Carbs    float64
}

// BuildFood validates in and returns the normalized food with the given id.
func BuildFood(id int64, in FoodInput) (model.FoodItem, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.FoodItem{}, invalidf("food name is required")
	}
	st := in.ServingType
	if st == "" {
		st = model.ServingPer100g
	}
	if !st.Valid() {
		return model.FoodItem{}, invalidf("serving type must be %s or %s", model.ServingPer100g, model.ServingPerUnit)
	}
	for _, v := range []struct {
		label string
		value float64
	}{{"calories", in.Calories}, {"protein", in.Protein}, {"carbs", in.Carbs}} {
		if v.value < 0 {
			return model.FoodItem{}, invalidf("%s must be >= 0", v.label)
		}
	}
	var unitWeight *float64
	if st == model.ServingPerUnit {
		if in.UnitWeight == nil || *in.UnitWeight <= 0 {
			return model.FoodItem{}, invalidf("unit weight must be > 0 for %s foods", model.ServingPerUnit)
		}
		w := *in.UnitWeight
		unitWeight = &w
	}
	m := nutrition.NormalizeMacros(nutrition.Macros{Calories: in.Calories, Protein: in.Protein, Carbs: in.Carbs}, st, unitWeight)
	return model.FoodItem{
		ID:              id,
		Name:            name,
		CaloriesPer100g: m.Calories,
		ProteinPer100g:  m.Protein,
		CarbsPer100g:    m.Carbs,
		ServingType:     st,
		UnitWeight:      unitWeight,
	}, nil
}

func validateFood(f model.FoodItem) error {
	if strings.TrimSpace(f.Name) == "" {
		return invalidf("food name is required")
	}
	if !f.ServingType.Valid() {
		return invalidf("food %d: unknown serving type %q", f.ID, f.ServingType)
	}
	if f.CaloriesPer100g < 0 || f.ProteinPer100g < 0 || f.CarbsPer100g < 0 {
		return invalidf("food %d: nutrient values must be >= 0", f.ID)
	}
	if f.ServingType == model.ServingPerUnit && (f.UnitWeight == nil || *f.UnitWeight <= 0) {
		return invalidf("food %d: unit weight must be > 0 for %s foods", f.ID, model.ServingPerUnit)
	}
	return nil
}

func (t *Tracker) Foods() []model.FoodItem {
	return cloneFoods(t.foods)
}

func (t *Tracker) Food(id int64) (model.FoodItem, error) {
	i := t.foodIndex(id)
	if i < 0 {
		return model.FoodItem{}, notFound("food", id)
	}
	return cloneFood(t.foods[i]), nil
}

func (t *Tracker) foodIndex(id int64) int {
	for i, f := range t.foods {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (t *Tracker) AddFood(ctx context.Context, in FoodInput) (model.FoodItem, error) {
	food, err := BuildFood(t.nextID(), in)
	if err != nil {
		return model.FoodItem{}, err
	}
	next := append(cloneFoods(t.foods), food)
	if err := t.saveFoods(ctx, next); err != nil {
		return model.FoodItem{}, err
	}
	return cloneFood(food), nil
}

// UpdateFood replaces the stored food with the same id and recomputes every
// meal that uses it.
func (t *Tracker) UpdateFood(ctx context.Context, food model.FoodItem) (model.FoodItem, error) {
	i := t.foodIndex(food.ID)
	if i < 0 {
		return model.FoodItem{}, notFound("food", food.ID)
	}
	food.Name = strings.TrimSpace(food.Name)
	if food.ServingType == model.ServingPer100g {
		food.UnitWeight = nil
	}
	if err := validateFood(food); err != nil {
		return model.FoodItem{}, err
	}
	food = cloneFood(food)

	foods := cloneFoods(t.foods)
	foods[i] = food
	index := nutrition.Index(foods)
	meals := cloneMeals(t.meals)
	changed := false
	for j, m := range meals {
		if !nutrition.References(m, food.ID) {
			continue
		}
		updated, err := nutrition.Recalculate(m, index, t.opts.Policy)
		if err != nil {
			return model.FoodItem{}, invalid(err)
		}
		meals[j] = updated
		changed = true
	}

	if err := t.saveFoods(ctx, foods); err != nil {
		return model.FoodItem{}, err
	}
	if changed {
		if err := t.saveMeals(ctx, meals); err != nil {
			return model.FoodItem{}, err
		}
	}
	return cloneFood(food), nil
}

// DeleteFood removes the food and its entries in every meal. Meals left with
// no foods are deleted. It returns the number of meals changed or removed.
func (t *Tracker) DeleteFood(ctx context.Context, id int64) (int, error) {
	i := t.foodIndex(id)
	if i < 0 {
		return 0, notFound("food", id)
	}
	foods := make([]model.FoodItem, 0, len(t.foods)-1)
	foods = append(foods, cloneFoods(t.foods[:i])...)
	foods = append(foods, cloneFoods(t.foods[i+1:])...)
	index := nutrition.Index(foods)

	meals := make([]model.Meal, 0, len(t.meals))
	affected := 0
	for _, m := range cloneMeals(t.meals) {
		if !nutrition.References(m, id) {
			meals = append(meals, m)
			continue
		}
		affected++
		m.Foods = nutrition.Without(m.Foods, id)
		if len(m.Foods) == 0 {
			continue
		}
		updated, err := nutrition.Recalculate(m, index, t.opts.Policy)
		if err != nil {
			return 0, invalid(err)
		}
		meals = append(meals, updated)
	}

	// Meals go first: if the food save then fails, nothing references a
	// food that is still stored.
	if affected > 0 {
		if err := t.saveMeals(ctx, meals); err != nil {
			return 0, err
		}
	}
	if err := t.saveFoods(ctx, foods); err != nil {
		return affected, err
	}
	return affected, nil
}

// FoodForm returns the food with its values denormalized for editing.
func (t *Tracker) FoodForm(id int64) (FoodForm, error) {
	food, err := t.Food(id)
	if err != nil {
		return FoodForm{}, err
	}
	form := FoodForm{Food: food, Calories: food.CaloriesPer100g, Protein: food.ProteinPer100g, Carbs: food.CarbsPer100g}
	if food.ServingType == model.ServingPerUnit {
		per := nutrition.PerUnit(food)
		form.Calories, form.Protein, form.Carbs = per.Calories, per.Protein, per.Carbs
	}
	return form, nil
}

// Input returns the form as a FoodInput, ready to be edited and rebuilt.
func (f FoodForm) Input() FoodInput {
	return FoodInput{
		Name:        f.Food.Name,
		Calories:    f.Calories,
		Protein:     f.Protein,
		Carbs:       f.Carbs,
		ServingType: f.Food.ServingType,
		UnitWeight:  f.Food.UnitWeight,
	}
}
