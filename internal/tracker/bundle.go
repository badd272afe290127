package tracker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/corazon/gymtrack/internal/model"
	"github.com/corazon/gymtrack/internal/nutrition"
	"github.com/corazon/gymtrack/internal/store"
)

// Bundle is a portable copy of every collection.
type Bundle struct {
	SchemaVersion int                  `json:"schemaVersion"`
	ExportedAt    time.Time            `json:"exportedAt"`
	Foods         []model.FoodItem     `json:"foods"`
	Meals         []model.Meal         `json:"meals"`
	ConsumedMeals []model.ConsumedMeal `json:"consumedMeals"`
	NutritionData *model.NutritionData `json:"nutritionData"`
	Workouts      []model.Workout      `json:"workouts"`
}

type BundleInfo struct {
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
	Foods    int    `json:"foods"`
	Meals    int    `json:"meals"`
	Consumed int    `json:"consumed"`
	Workouts int    `json:"workouts"`
}

func (t *Tracker) ExportBundle() Bundle {
	goals := t.goals
	return Bundle{
		SchemaVersion: store.CurrentSchemaVersion,
		ExportedAt:    t.opts.Now().UTC(),
		Foods:         nonNil(t.Foods()),
		Meals:         nonNil(t.Meals()),
		ConsumedMeals: nonNil(t.ConsumedMeals()),
		NutritionData: &goals,
		Workouts:      nonNil(t.Workouts()),
	}
}

// ImportBundle validates b and replaces every collection with its contents.
// Meal totals are recomputed from the bundled foods.
func (t *Tracker) ImportBundle(ctx context.Context, b Bundle) error {
	if b.SchemaVersion > store.CurrentSchemaVersion {
		return invalidf("bundle schema version %d is newer than supported version %d", b.SchemaVersion, store.CurrentSchemaVersion)
	}
	if err := checkUniqueIDs("food", b.Foods, func(f model.FoodItem) int64 { return f.ID }); err != nil {
		return err
	}
	for _, f := range b.Foods {
		if err := validateFood(f); err != nil {
			return err
		}
	}

	if err := checkUniqueIDs("meal", b.Meals, func(m model.Meal) int64 { return m.ID }); err != nil {
		return err
	}
	index := nutrition.Index(b.Foods)
	meals := make([]model.Meal, 0, len(b.Meals))
	for _, m := range b.Meals {
		built, err := newMeal(m.ID, MealInput{Name: m.Name, Category: m.Category, Foods: m.Foods}, index, t.opts.Policy)
		if err != nil {
			return fmt.Errorf("meal %d: %w", m.ID, err)
		}
		meals = append(meals, built)
	}

	if err := checkUniqueIDs("consumed meal", b.ConsumedMeals, func(c model.ConsumedMeal) int64 { return c.ID }); err != nil {
		return err
	}
	for _, c := range b.ConsumedMeals {
		if c.TotalCalories < 0 || c.TotalProtein < 0 || c.TotalCarbs < 0 {
			return invalidf("consumed meal %d: totals must be >= 0", c.ID)
		}
	}

	if err := checkUniqueIDs("workout", b.Workouts, func(w model.Workout) int64 { return w.ID }); err != nil {
		return err
	}
	for _, w := range b.Workouts {
		if err := validateWorkout(w); err != nil {
			return fmt.Errorf("workout %d: %w", w.ID, err)
		}
	}

	goals := model.DefaultNutritionData()
	if b.NutritionData != nil {
		goals = *b.NutritionData
	}
	for _, g := range model.Goals {
		v, _ := goals.Get(g)
		if v.Current < 0 || v.Target < 0 {
			return invalidf("%s current and target must be >= 0", g)
		}
	}

	// Foods are written first and workouts last. A failure after the first
	// save leaves a mix of old and new collections; the error says so and a
	// forced re-import or doctor --fix repairs it.
	if err := t.saveFoods(ctx, cloneFoods(b.Foods)); err != nil {
		return err
	}
	if err := t.saveMeals(ctx, meals); err != nil {
		return partialImport(store.Meals, err)
	}
	if err := t.saveConsumed(ctx, append([]model.ConsumedMeal(nil), b.ConsumedMeals...)); err != nil {
		return partialImport(store.ConsumedMeals, err)
	}
	if err := t.saveGoals(ctx, goals); err != nil {
		return partialImport(store.NutritionData, err)
	}
	if err := t.saveWorkouts(ctx, append([]model.Workout(nil), b.Workouts...)); err != nil {
		return partialImport(store.Workouts, err)
	}
	t.lastID = maxInt64(t.lastID, t.maxID())
	return nil
}

func checkUniqueIDs[T any](kind string, items []T, id func(T) int64) error {
	seen := make(map[int64]bool, len(items))
	for _, it := range items {
		if seen[id(it)] {
			return invalidf("duplicate %s id %d", kind, id(it))
		}
		seen[id(it)] = true
	}
	return nil
}

func partialImport(name string, err error) error {
	return fmt.Errorf("import partially applied, %s not saved (re-run import --force or doctor --fix): %w", name, err)
}

func isYAMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// encodeBundle writes JSON, or YAML for .yaml/.yml paths. YAML goes through
// the JSON form so both encodings share one set of field names.
func encodeBundle(path string, b Bundle) ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil || !isYAMLPath(path) {
		return data, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

func decodeBundle(path string, data []byte) (Bundle, error) {
	var b Bundle
	if isYAMLPath(path) {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Bundle{}, err
		}
		var err error
		if data, err = json.Marshal(doc); err != nil {
			return Bundle{}, err
		}
	}
	if err := json.Unmarshal(data, &b); err != nil {
		return Bundle{}, err
	}
	return b, nil
}

// WriteBundleFile writes b to path with a .sha256 checksum next to it.
func WriteBundleFile(path string, b Bundle) (BundleInfo, error) {
	if strings.TrimSpace(path) == "" {
		return BundleInfo{}, fmt.Errorf("bundle output path is required")
	}
	data, err := encodeBundle(path, b)
	if err != nil {
		return BundleInfo{}, fmt.Errorf("encode bundle: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return BundleInfo{}, fmt.Errorf("create bundle directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return BundleInfo{}, fmt.Errorf("write bundle: %w", err)
	}
	checksum := sha256Hex(data)
	if err := os.WriteFile(path+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BundleInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	return BundleInfo{
		Path:     path,
		Checksum: checksum,
		Foods:    len(b.Foods),
		Meals:    len(b.Meals),
		Consumed: len(b.ConsumedMeals),
		Workouts: len(b.Workouts),
	}, nil
}

// ReadBundleFile reads a bundle, verifying the .sha256 sidecar when present.
func ReadBundleFile(path string) (Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bundle{}, fmt.Errorf("read bundle: %w", err)
	}
	if expected, err := os.ReadFile(path + ".sha256"); err == nil {
		if strings.TrimSpace(string(expected)) != sha256Hex(data) {
			return Bundle{}, invalidf("bundle checksum mismatch")
		}
	}
	b, err := decodeBundle(path, data)
	if err != nil {
		return Bundle{}, invalidf("decode bundle: %v", err)
	}
	return b, nil
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
