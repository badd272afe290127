package tracker

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"github.com/corazon/gymtrack/internal/model"
)

const (
	MinWeeks = 1
	MaxWeeks = 52
)

type WorkoutInput struct {
	Name        string
	Description string
	// Weeks of 0 on update keeps the current value.
	Weeks int
}

func (t *Tracker) Workouts() []model.Workout {
	return append([]model.Workout(nil), t.workouts...)
}

func (t *Tracker) workoutIndex(id int64) int {
	_, i, _ := lo.FindIndexOf(t.workouts, func(w model.Workout) bool { return w.ID == id })
	return i
}

func validateWorkout(w model.Workout) error {
	if strings.TrimSpace(w.Name) == "" {
		return invalidf("workout name is required")
	}
	if w.Weeks < MinWeeks || w.Weeks > MaxWeeks {
		return invalidf("weeks must be between %d and %d", MinWeeks, MaxWeeks)
	}
	return nil
}

func (t *Tracker) AddWorkout(ctx context.Context, in WorkoutInput) (model.Workout, error) {
	w := model.Workout{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Weeks:       in.Weeks,
	}
	if err := validateWorkout(w); err != nil {
		return model.Workout{}, err
	}
	w.ID = t.nextID()
	if err := t.saveWorkouts(ctx, append(t.Workouts(), w)); err != nil {
		return model.Workout{}, err
	}
	return w, nil
}

func (t *Tracker) UpdateWorkout(ctx context.Context, id int64, in WorkoutInput) (model.Workout, error) {
	i := t.workoutIndex(id)
	if i < 0 {
		return model.Workout{}, notFound("workout", id)
	}
	w := t.workouts[i]
	w.Name = strings.TrimSpace(in.Name)
	w.Description = strings.TrimSpace(in.Description)
	if in.Weeks != 0 {
		w.Weeks = in.Weeks
	}
	if err := validateWorkout(w); err != nil {
		return model.Workout{}, err
	}
	next := t.Workouts()
	next[i] = w
	if err := t.saveWorkouts(ctx, next); err != nil {
		return model.Workout{}, err
	}
	return w, nil
}

func (t *Tracker) DeleteWorkout(ctx context.Context, id int64) error {
	if t.workoutIndex(id) < 0 {
		return notFound("workout", id)
	}
	next := lo.Reject(t.workouts, func(w model.Workout, _ int) bool { return w.ID == id })
	return t.saveWorkouts(ctx, next)
}
