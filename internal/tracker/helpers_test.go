package tracker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corazon/gymtrack/internal/model"
	"github.com/corazon/gymtrack/internal/store"
	"github.com/corazon/gymtrack/internal/tracker"
)

var errDiskFull = errors.New("disk full")

// flakyBackend wraps a real backend and fails writes on demand. With
// failAfter set, writes fail once that many have succeeded.
type flakyBackend struct {
	store.Backend
	failWrites bool
	failAfter  int
	writes     int
}

func (f *flakyBackend) Write(ctx context.Context, name string, doc store.Document) error {
	if f.failWrites || (f.failAfter > 0 && f.writes >= f.failAfter) {
		return errDiskFull
	}
	f.writes++
	return f.Backend.Write(ctx, name, doc)
}

func newBackend(t *testing.T) (*flakyBackend, string) {
	t.Helper()
	dir := t.TempDir()
	b, err := store.NewJSONFile(dir)
	if err != nil {
		t.Fatalf("open json backend: %v", err)
	}
	return &flakyBackend{Backend: b}, dir
}

func fixedClock() func() time.Time {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func newTracker(t *testing.T) (*tracker.Tracker, *flakyBackend) {
	t.Helper()
	b, _ := newBackend(t)
	tr, err := tracker.Open(context.Background(), b, tracker.Options{Now: fixedClock()})
	if err != nil {
		t.Fatalf("open tracker: %v", err)
	}
	return tr, b
}

func ptr(v float64) *float64 { return &v }

// seedEggAndRice adds an egg (70 kcal per 50 g unit) and rice (130 kcal per 100 g).
func seedEggAndRice(t *testing.T, tr *tracker.Tracker) (model.FoodItem, model.FoodItem) {
	t.Helper()
	ctx := context.Background()
	egg, err := tr.AddFood(ctx, tracker.FoodInput{
		Name: "Egg", Calories: 70, Protein: 6, Carbs: 0.5,
		ServingType: model.ServingPerUnit, UnitWeight: ptr(50),
	})
	if err != nil {
		t.Fatalf("add egg: %v", err)
	}
	rice, err := tr.AddFood(ctx, tracker.FoodInput{Name: "Rice", Calories: 130, Protein: 2.4, Carbs: 28})
	if err != nil {
		t.Fatalf("add rice: %v", err)
	}
	return egg, rice
}
