package nutrition

import (
	"math"

	"github.com/corazon/gymtrack/internal/model"
)

// Apply adds consumed totals to the calories, protein and carbs currents.
func Apply(d model.NutritionData, t model.Totals) model.NutritionData {
	d.Calories.Current += float64(t.Calories)
	d.Protein.Current += float64(t.Protein)
	d.Carbs.Current += float64(t.Carbs)
	return d
}

// Revert subtracts consumed totals, never letting a current go below zero.
func Revert(d model.NutritionData, t model.Totals) model.NutritionData {
	d.Calories.Current = clampZero(d.Calories.Current - float64(t.Calories))
	d.Protein.Current = clampZero(d.Protein.Current - float64(t.Protein))
	d.Carbs.Current = clampZero(d.Carbs.Current - float64(t.Carbs))
	return d
}

// AddValue adds amount (possibly negative) to one goal's current, clamped at zero.
func AddValue(d model.NutritionData, g model.Goal, amount float64) model.NutritionData {
	v, ok := d.Get(g)
	if !ok {
		return d
	}
	v.Current = clampZero(v.Current + amount)
	return d.With(g, v)
}

// ResetCurrents zeroes every current and keeps the targets.
func ResetCurrents(d model.NutritionData) model.NutritionData {
	d.Calories.Current = 0
	d.Protein.Current = 0
	d.Carbs.Current = 0
	d.Hydration.Current = 0
	return d
}

// Progress is current/target clamped to [0,1]. A non-positive target reports 0.
func Progress(v model.NutrientValues) float64 {
	if v.Target <= 0 {
		return 0
	}
	return math.Min(1, math.Max(0, v.Current/v.Target))
}

// Remaining is target - current and goes negative once the target is exceeded.
func Remaining(v model.NutrientValues) float64 {
	return v.Target - v.Current
}

// Surplus is how far current exceeds target, or 0.
func Surplus(v model.NutrientValues) float64 {
	return math.Max(0, v.Current-v.Target)
}

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
