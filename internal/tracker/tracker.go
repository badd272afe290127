// Package tracker owns the in-memory state of every collection and
// coordinates mutations across them.
//
// Every mutation builds the new collection, saves it, and only then swaps it
// into memory, so a failed save leaves the tracker matching what is on disk.
// A Tracker is not safe for concurrent use; callers serialize access.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/corazon/gymtrack/internal/log"
	"github.com/corazon/gymtrack/internal/model"
	"github.com/corazon/gymtrack/internal/nutrition"
	"github.com/corazon/gymtrack/internal/store"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid input")
)

type Options struct {
	// Lenient replaces collections that fail to load with their empty or
	// default value instead of failing Open.
	Lenient bool
	// Policy decides how meal foods that reference a missing food are
	// treated when totals are computed and when meals are created.
	Policy nutrition.Policy
	// Now is the clock used for ids and consumption times.
	Now func() time.Time
}

type Tracker struct {
	opts Options

	foodsRepo    *store.Repository[[]model.FoodItem]
	mealsRepo    *store.Repository[[]model.Meal]
	consumedRepo *store.Repository[[]model.ConsumedMeal]
	goalsRepo    *store.Repository[*model.NutritionData]
	workoutsRepo *store.Repository[[]model.Workout]

	foods    []model.FoodItem
	meals    []model.Meal
	consumed []model.ConsumedMeal
	goals    model.NutritionData
	workouts []model.Workout

	// missing lists collections that had no stored document at open time.
	missing map[string]bool
	lastID  int64
}

// Open loads every collection from backend.
func Open(ctx context.Context, backend store.Backend, opts Options) (*Tracker, error) {
	if backend == nil {
		return nil, fmt.Errorf("store backend is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	t := &Tracker{
		opts:         opts,
		foodsRepo:    store.NewRepository[[]model.FoodItem](backend, store.Foods),
		mealsRepo:    store.NewRepository[[]model.Meal](backend, store.Meals),
		consumedRepo: store.NewRepository[[]model.ConsumedMeal](backend, store.ConsumedMeals),
		goalsRepo:    store.NewRepository[*model.NutritionData](backend, store.NutritionData),
		workoutsRepo: store.NewRepository[[]model.Workout](backend, store.Workouts),
		missing:      map[string]bool{},
	}

	var err error
	if t.foods, err = load(ctx, t, t.foodsRepo); err != nil {
		return nil, err
	}
	if t.meals, err = load(ctx, t, t.mealsRepo); err != nil {
		return nil, err
	}
	if t.consumed, err = load(ctx, t, t.consumedRepo); err != nil {
		return nil, err
	}
	if t.workouts, err = load(ctx, t, t.workoutsRepo); err != nil {
		return nil, err
	}
	goals, err := load(ctx, t, t.goalsRepo)
	if err != nil {
		return nil, err
	}
	t.goals = model.DefaultNutritionData()
	if goals != nil {
		t.goals = *goals
	}
	t.lastID = t.maxID()
	return t, nil
}

func load[T any](ctx context.Context, t *Tracker, repo *store.Repository[T]) (T, error) {
	v, found, err := repo.Load(ctx)
	if err != nil {
		if !t.opts.Lenient {
			return v, err
		}
		log.Warn(ctx, "collection unreadable, using empty value", "collection", repo.Name(), "err", err)
		var zero T
		return zero, nil
	}
	if !found {
		t.missing[repo.Name()] = true
		log.Debug(ctx, "collection not stored yet", "collection", repo.Name())
	}
	return v, nil
}

// Init writes every collection that has no stored document yet, so the data
// directory holds the full default state. It reports the names written.
func (t *Tracker) Init(ctx context.Context) ([]string, error) {
	written := make([]string, 0, len(t.missing))
	for _, name := range store.Names {
		if !t.missing[name] {
			continue
		}
		var err error
		switch name {
		case store.Foods:
			err = t.foodsRepo.Save(ctx, nonNil(t.foods))
		case store.Meals:
			err = t.mealsRepo.Save(ctx, nonNil(t.meals))
		case store.ConsumedMeals:
			err = t.consumedRepo.Save(ctx, nonNil(t.consumed))
		case store.NutritionData:
			goals := t.goals
			err = t.goalsRepo.Save(ctx, &goals)
		case store.Workouts:
			err = t.workoutsRepo.Save(ctx, nonNil(t.workouts))
		}
		if err != nil {
			return written, err
		}
		delete(t.missing, name)
		written = append(written, name)
	}
	return written, nil
}

// Empty reports whether the tracker holds no user data. Goal targets are
// not considered user data.
func (t *Tracker) Empty() bool {
	return len(t.foods) == 0 && len(t.meals) == 0 && len(t.consumed) == 0 && len(t.workouts) == 0
}

// nextID returns a millisecond timestamp, bumped past the last issued id so
// ids stay unique and increasing within a process.
func (t *Tracker) nextID() int64 {
	id := t.opts.Now().UnixMilli()
	if id <= t.lastID {
		id = t.lastID + 1
	}
	t.lastID = id
	return id
}

func (t *Tracker) maxID() int64 {
	var hi int64
	for _, f := range t.foods {
		hi = maxInt64(hi, f.ID)
	}
	for _, m := range t.meals {
		hi = maxInt64(hi, m.ID)
	}
	for _, c := range t.consumed {
		hi = maxInt64(hi, c.ID)
	}
	for _, w := range t.workouts {
		hi = maxInt64(hi, w.ID)
	}
	return hi
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (t *Tracker) saveFoods(ctx context.Context, foods []model.FoodItem) error {
	foods = nonNil(foods)
	if err := t.foodsRepo.Save(ctx, foods); err != nil {
		log.Warn(ctx, "save failed", "collection", store.Foods, "err", err)
		return err
	}
	t.foods = foods
	delete(t.missing, store.Foods)
	return nil
}

func (t *Tracker) saveMeals(ctx context.Context, meals []model.Meal) error {
	meals = nonNil(meals)
	if err := t.mealsRepo.Save(ctx, meals); err != nil {
		log.Warn(ctx, "save failed", "collection", store.Meals, "err", err)
		return err
	}
	t.meals = meals
	delete(t.missing, store.Meals)
	return nil
}

func (t *Tracker) saveConsumed(ctx context.Context, consumed []model.ConsumedMeal) error {
	consumed = nonNil(consumed)
	if err := t.consumedRepo.Save(ctx, consumed); err != nil {
		log.Warn(ctx, "save failed", "collection", store.ConsumedMeals, "err", err)
		return err
	}
	t.consumed = consumed
	delete(t.missing, store.ConsumedMeals)
	return nil
}

func (t *Tracker) saveGoals(ctx context.Context, goals model.NutritionData) error {
	if err := t.goalsRepo.Save(ctx, &goals); err != nil {
		log.Warn(ctx, "save failed", "collection", store.NutritionData, "err", err)
		return err
	}
	t.goals = goals
	delete(t.missing, store.NutritionData)
	return nil
}

func (t *Tracker) saveWorkouts(ctx context.Context, workouts []model.Workout) error {
	workouts = nonNil(workouts)
	if err := t.workoutsRepo.Save(ctx, workouts); err != nil {
		log.Warn(ctx, "save failed", "collection", store.Workouts, "err", err)
		return err
	}
	t.workouts = workouts
	delete(t.missing, store.Workouts)
	return nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalid, err)
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}

func cloneFood(f model.FoodItem) model.FoodItem {
	if f.UnitWeight != nil {
		w := *f.UnitWeight
		f.UnitWeight = &w
	}
	return f
}

func cloneFoods(foods []model.FoodItem) []model.FoodItem {
	out := make([]model.FoodItem, len(foods))
	for i, f := range foods {
		out[i] = cloneFood(f)
	}
	return out
}

func cloneMeals(meals []model.Meal) []model.Meal {
	out := make([]model.Meal, len(meals))
	for i, m := range meals {
		out[i] = m.WithFoods(m.Foods)
	}
	return out
}
