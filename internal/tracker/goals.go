package tracker

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/corazon/gymtrack/internal/model"
	"github.com/corazon/gymtrack/internal/nutrition"
)

// TargetsInput carries optional new targets. Nil fields keep their value.
type TargetsInput struct {
	Calories  *float64
	Protein   *float64
	Carbs     *float64
	Hydration *float64
}

type GoalSummary struct {
	Goal      model.Goal `json:"goal"`
	Unit      string     `json:"unit"`
	Current   float64    `json:"current"`
	Target    float64    `json:"target"`
	Remaining float64    `json:"remaining"`
	Progress  float64    `json:"progress"`
	Surplus   float64    `json:"surplus"`
}

type Summary struct {
	Goals    []GoalSummary        `json:"goals"`
	Consumed []model.ConsumedMeal `json:"consumed"`
	Totals   model.Totals         `json:"totals"`
}

func (t *Tracker) Goals() model.NutritionData {
	return t.goals
}

func (t *Tracker) ConsumedMeals() []model.ConsumedMeal {
	return append([]model.ConsumedMeal(nil), t.consumed...)
}

// ConsumeMeal records a snapshot of meal id and adds its totals to the
// calories, protein and carbs currents.
func (t *Tracker) ConsumeMeal(ctx context.Context, mealID int64) (model.ConsumedMeal, error) {
	i := t.mealIndex(mealID)
	if i < 0 {
		return model.ConsumedMeal{}, notFound("meal", mealID)
	}
	m := t.meals[i]
	now := t.opts.Now()
	c := model.ConsumedMeal{
		ID:            t.nextID(),
		SourceMealID:  m.ID,
		Name:          m.Name,
		TotalCalories: m.TotalCalories,
		TotalProtein:  m.TotalProtein,
		TotalCarbs:    m.TotalCarbs,
		ConsumedAt:    now,
	}
	next := append(t.ConsumedMeals(), c)
	if err := t.saveConsumed(ctx, next); err != nil {
		return model.ConsumedMeal{}, err
	}
	if err := t.saveGoals(ctx, nutrition.Apply(t.goals, c.Totals())); err != nil {
		return c, fmt.Errorf("meal recorded but goals not updated: %w", err)
	}
	return c, nil
}

// DeleteConsumedMeal removes a consumed snapshot and subtracts its totals
// from the currents, clamping at zero.
func (t *Tracker) DeleteConsumedMeal(ctx context.Context, id int64) error {
	c, ok := lo.Find(t.consumed, func(c model.ConsumedMeal) bool { return c.ID == id })
	if !ok {
		return notFound("consumed meal", id)
	}
	if err := t.saveGoals(ctx, nutrition.Revert(t.goals, c.Totals())); err != nil {
		return err
	}
	next := lo.Reject(t.consumed, func(c model.ConsumedMeal, _ int) bool { return c.ID == id })
	if err := t.saveConsumed(ctx, next); err != nil {
		return fmt.Errorf("goals updated but consumed meal not removed: %w", err)
	}
	return nil
}

func (t *Tracker) UpdateTargets(ctx context.Context, in TargetsInput) (model.NutritionData, error) {
	goals := t.goals
	for _, u := range []struct {
		goal  model.Goal
		value *float64
	}{
		{model.GoalCalories, in.Calories},
		{model.GoalProtein, in.Protein},
		{model.GoalCarbs, in.Carbs},
		{model.GoalHydration, in.Hydration},
	} {
		if u.value == nil {
			continue
		}
		if *u.value < 0 {
			return t.goals, invalidf("%s target must be >= 0", u.goal)
		}
		v, _ := goals.Get(u.goal)
		v.Target = *u.value
		goals = goals.With(u.goal, v)
	}
	if err := t.saveGoals(ctx, goals); err != nil {
		return t.goals, err
	}
	return goals, nil
}

// ParseGoal maps a goal name to its Goal.
func ParseGoal(name string) (model.Goal, error) {
	g := model.Goal(name)
	if _, ok := (model.NutritionData{}).Get(g); !ok {
		return "", invalidf("unknown goal %q", name)
	}
	return g, nil
}

// AddNutrientValue adds a manual amount, which may be negative, to one goal.
func (t *Tracker) AddNutrientValue(ctx context.Context, g model.Goal, amount float64) (model.NutrientValues, error) {
	if _, ok := t.goals.Get(g); !ok {
		return model.NutrientValues{}, invalidf("unknown goal %q", g)
	}
	goals := nutrition.AddValue(t.goals, g, amount)
	if err := t.saveGoals(ctx, goals); err != nil {
		return model.NutrientValues{}, err
	}
	v, _ := goals.Get(g)
	return v, nil
}

// ResetDailyValues clears the consumed list and zeroes every current.
func (t *Tracker) ResetDailyValues(ctx context.Context) error {
	if err := t.saveConsumed(ctx, nil); err != nil {
		return err
	}
	return t.saveGoals(ctx, nutrition.ResetCurrents(t.goals))
}

func (t *Tracker) Summary() Summary {
	s := Summary{Consumed: t.ConsumedMeals()}
	for _, g := range model.Goals {
		v, _ := t.goals.Get(g)
		s.Goals = append(s.Goals, GoalSummary{
			Goal:      g,
			Unit:      g.Unit(),
			Current:   v.Current,
			Target:    v.Target,
			Remaining: nutrition.Remaining(v),
			Progress:  nutrition.Progress(v),
			Surplus:   nutrition.Surplus(v),
		})
	}
	s.Totals = lo.Reduce(s.Consumed, func(acc model.Totals, c model.ConsumedMeal, _ int) model.Totals {
		acc.Calories += c.TotalCalories
		acc.Protein += c.TotalProtein
		acc.Carbs += c.TotalCarbs
		return acc
	}, model.Totals{})
	return s
}
