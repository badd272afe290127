package nutrition

import (
	"fmt"

	"github.com/corazon/gymtrack/internal/model"
)

// Policy decides what happens when a MealFood references a food that no
// longer exists.
type Policy int

const (
	// SkipMissing treats a dangling reference as contributing zero.
	SkipMissing Policy = iota
	// RejectMissing fails the computation on the first dangling reference.
	RejectMissing
)

// MissingFoodError reports a MealFood whose food id could not be resolved.
type MissingFoodError struct {
	FoodItemID int64
}

func (e *MissingFoodError) Error() string {
	return fmt.Sprintf("food %d not found", e.FoodItemID)
}

// Macros holds unrounded macro amounts.
type Macros struct {
	Calories float64
	Protein  float64
	Carbs    float64
}

func (m Macros) Add(o Macros) Macros {
	return Macros{Calories: m.Calories + o.Calories, Protein: m.Protein + o.Protein, Carbs: m.Carbs + o.Carbs}
}

// Truncate converts to integer totals, dropping the fractional part.
func (m Macros) Truncate() model.Totals {
	return model.Totals{Calories: int(m.Calories), Protein: int(m.Protein), Carbs: int(m.Carbs)}
}

// Normalize converts a raw entered value to its per-100g density. Unit mode
// with a missing or non-positive unit weight yields 0.
func Normalize(raw float64, servingType model.ServingType, unitWeight *float64) float64 {
	if servingType != model.ServingPerUnit {
		return raw
	}
	if unitWeight == nil || *unitWeight <= 0 {
		return 0
	}
	return raw / *unitWeight * 100
}

// Denormalize converts a per-100g density back to a per-unit value for edit forms.
func Denormalize(per100g, unitWeight float64) float64 {
	return per100g / 100 * unitWeight
}

// NormalizeMacros applies Normalize to all three macros.
func NormalizeMacros(raw Macros, servingType model.ServingType, unitWeight *float64) Macros {
	return Macros{
		Calories: Normalize(raw.Calories, servingType, unitWeight),
		Protein:  Normalize(raw.Protein, servingType, unitWeight),
		Carbs:    Normalize(raw.Carbs, servingType, unitWeight),
	}
}

// PerUnit returns the per-unit macros of a food. Foods without a unit weight
// report zeros.
func PerUnit(f model.FoodItem) Macros {
	w := f.UnitWeightOr(0)
	return Macros{
		Calories: Denormalize(f.CaloriesPer100g, w),
		Protein:  Denormalize(f.ProteinPer100g, w),
		Carbs:    Denormalize(f.CarbsPer100g, w),
	}
}

// Grams returns the weight in grams represented by amount of food f.
func Grams(f model.FoodItem, amount float64) float64 {
	if f.ServingType == model.ServingPerUnit {
		return f.UnitWeightOr(1) * amount
	}
	return amount
}

// Contribution returns the macros contributed by amount of food f.
func Contribution(f model.FoodItem, amount float64) Macros {
	grams := Grams(f, amount)
	return Macros{
		Calories: f.CaloriesPer100g / 100 * grams,
		Protein:  f.ProteinPer100g / 100 * grams,
		Carbs:    f.CarbsPer100g / 100 * grams,
	}
}

// Index maps food ids to foods.
func Index(foods []model.FoodItem) map[int64]model.FoodItem {
	out := make(map[int64]model.FoodItem, len(foods))
	for _, f := range foods {
		out[f.ID] = f
	}
	return out
}

// Sum adds up the contributions of items. Truncation to integers is left to
// the caller so it happens once.
func Sum(items []model.MealFood, foods map[int64]model.FoodItem, policy Policy) (Macros, error) {
	var total Macros
	for _, it := range items {
		f, ok := foods[it.FoodItemID]
		if !ok {
			if policy == RejectMissing {
				return Macros{}, &MissingFoodError{FoodItemID: it.FoodItemID}
			}
			continue
		}
		total = total.Add(Contribution(f, it.Amount))
	}
	return total, nil
}

// MealTotals computes the integer totals of meal m.
func MealTotals(m model.Meal, foods map[int64]model.FoodItem, policy Policy) (model.Totals, error) {
	sum, err := Sum(m.Foods, foods, policy)
	if err != nil {
		return model.Totals{}, fmt.Errorf("meal %d: %w", m.ID, err)
	}
	return sum.Truncate(), nil
}

// Recalculate returns a copy of m with its cached totals recomputed.
func Recalculate(m model.Meal, foods map[int64]model.FoodItem, policy Policy) (model.Meal, error) {
	t, err := MealTotals(m, foods, policy)
	if err != nil {
		return m, err
	}
	m.TotalCalories = t.Calories
	m.TotalProtein = t.Protein
	m.TotalCarbs = t.Carbs
	return m, nil
}

// References reports whether m contains food id.
func References(m model.Meal, foodID int64) bool {
	for _, it := range m.Foods {
		if it.FoodItemID == foodID {
			return true
		}
	}
	return false
}

// Without returns the items of m that do not reference food id.
func Without(items []model.MealFood, foodID int64) []model.MealFood {
	out := make([]model.MealFood, 0, len(items))
	for _, it := range items {
		if it.FoodItemID != foodID {
			out = append(out, it)
		}
	}
	return out
}
