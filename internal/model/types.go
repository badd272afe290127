package model

import "time"

type ServingType string

const (
	ServingPer100g ServingType = "PER_100G"
	ServingPerUnit ServingType = "PER_UNIT"
)

func (s ServingType) Valid() bool {
	return s == ServingPer100g || s == ServingPerUnit
}

// FoodItem stores nutrient density normalized to 100 g regardless of how
// the values were entered.
type FoodItem struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	CaloriesPer100g float64     `json:"caloriesPer100g"`
	ProteinPer100g  float64     `json:"proteinPer100g"`
	CarbsPer100g    float64     `json:"carbsPer100g"`
	ServingType     ServingType `json:"servingType"`
	UnitWeight      *float64    `json:"unitWeight,omitempty"`
}

// UnitWeightOr returns the unit weight in grams, or def when it is unset.
func (f FoodItem) UnitWeightOr(def float64) float64 {
	if f.UnitWeight == nil {
		return def
	}
	return *f.UnitWeight
}

// MealFood references a FoodItem by id; it does not own it. Amount is grams
// for PER_100G foods and a unit count for PER_UNIT foods.
type MealFood struct {
	FoodItemID int64   `json:"foodItemId"`
	Amount     float64 `json:"amount"`
}

type Meal struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Category      string     `json:"category"`
	Foods         []MealFood `json:"foods"`
	TotalCalories int        `json:"totalCalories"`
	TotalProtein  int        `json:"totalProtein"`
	TotalCarbs    int        `json:"totalCarbs"`
}

// Totals returns the cached integer totals of the meal.
func (m Meal) Totals() Totals {
	return Totals{Calories: m.TotalCalories, Protein: m.TotalProtein, Carbs: m.TotalCarbs}
}

// WithFoods returns a copy of m holding its own copy of foods.
func (m Meal) WithFoods(foods []MealFood) Meal {
	m.Foods = append([]MealFood(nil), foods...)
	return m
}

// ConsumedMeal is a snapshot of a meal's totals at consumption time. Later
// edits or deletes of the source meal do not affect it.
type ConsumedMeal struct {
	ID            int64     `json:"id"`
	SourceMealID  int64     `json:"sourceMealId"`
	Name          string    `json:"name"`
	TotalCalories int       `json:"totalCalories"`
	TotalProtein  int       `json:"totalProtein"`
	TotalCarbs    int       `json:"totalCarbs"`
	ConsumedAt    time.Time `json:"consumedAt"`
}

func (c ConsumedMeal) Totals() Totals {
	return Totals{Calories: c.TotalCalories, Protein: c.TotalProtein, Carbs: c.TotalCarbs}
}

type Totals struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
}

type NutrientValues struct {
	Current float64 `json:"current"`
	Target  float64 `json:"target"`
}

// NutritionData is the singleton document holding the four daily goals.
type NutritionData struct {
	Calories  NutrientValues `json:"calories"`
	Protein   NutrientValues `json:"protein"`
	Carbs     NutrientValues `json:"carbs"`
	Hydration NutrientValues `json:"hydration"`
}

type Goal string

const (
	GoalCalories  Goal = "calories"
	GoalProtein   Goal = "protein"
	GoalCarbs     Goal = "carbs"
	GoalHydration Goal = "hydration"
)

// Goals lists the tracked goals in display order.
var Goals = []Goal{GoalCalories, GoalProtein, GoalCarbs, GoalHydration}

func (g Goal) Unit() string {
	switch g {
	case GoalCalories:
		return "kcal"
	case GoalHydration:
		return "L"
	default:
		return "g"
	}
}

// Get returns the values for goal g and whether g is known.
func (d NutritionData) Get(g Goal) (NutrientValues, bool) {
	switch g {
	case GoalCalories:
		return d.Calories, true
	case GoalProtein:
		return d.Protein, true
	case GoalCarbs:
		return d.Carbs, true
	case GoalHydration:
		return d.Hydration, true
	}
	return NutrientValues{}, false
}

// With returns a copy of d with goal g replaced by v. Unknown goals leave d unchanged.
func (d NutritionData) With(g Goal, v NutrientValues) NutritionData {
	switch g {
	case GoalCalories:
		d.Calories = v
	case GoalProtein:
		d.Protein = v
	case GoalCarbs:
		d.Carbs = v
	case GoalHydration:
		d.Hydration = v
	}
	return d
}

func DefaultNutritionData() NutritionData {
	return NutritionData{
		Calories:  NutrientValues{Target: 2200},
		Protein:   NutrientValues{Target: 120},
		Carbs:     NutrientValues{Target: 250},
		Hydration: NutrientValues{Target: 2},
	}
}

type Workout struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Weeks       int    `json:"weeks"`
}

// MealCategories is the fixed label set a Meal's category must belong to.
var MealCategories = []string{"breakfast", "lunch", "snack", "dinner"}
