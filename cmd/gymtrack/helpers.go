package gymtrack

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corazon/gymtrack/internal/app"
	"github.com/corazon/gymtrack/internal/config"
	"github.com/corazon/gymtrack/internal/log"
	"github.com/corazon/gymtrack/internal/model"
	"github.com/corazon/gymtrack/internal/nutrition"
	"github.com/corazon/gymtrack/internal/store"
	"github.com/corazon/gymtrack/internal/tracker"
)

// resolveConfig layers root flags over the environment.
func resolveConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if strings.TrimSpace(dataDir) != "" {
		cfg.DataDir = dataDir
	}
	if strings.TrimSpace(storeKind) != "" {
		cfg.Store = strings.ToLower(strings.TrimSpace(storeKind))
	}
	if strings.TrimSpace(logLevel) != "" {
		cfg.LogLevel = logLevel
	}
	cfg.Strict = cfg.Strict || strict
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func withTracker(cmd *cobra.Command, run func(*tracker.Tracker) error) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	return withTrackerConfig(cmd, cfg, run)
}

func withTrackerConfig(cmd *cobra.Command, cfg config.Config, run func(*tracker.Tracker) error) error {
	if err := app.EnsureDataDir(cfg.DataDir); err != nil {
		return err
	}
	backend, err := store.Open(cmd.Context(), cfg.Store, cfg.DataDir)
	if err != nil {
		return err
	}
	defer backend.Close()

	opts := tracker.Options{Lenient: !cfg.Strict}
	if cfg.Strict {
		opts.Policy = nutrition.RejectMissing
	}
	t, err := tracker.Open(cmd.Context(), backend, opts)
	if err != nil {
		return err
	}
	return run(t)
}

func parseInt64Arg(name, value string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

// parseMealFoods parses repeated --food <food-id>:<amount> values.
func parseMealFoods(values []string) ([]model.MealFood, error) {
	out := make([]model.MealFood, 0, len(values))
	for _, v := range values {
		idPart, amountPart, ok := strings.Cut(v, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --food %q (expected <food-id>:<amount>)", v)
		}
		id, err := parseInt64Arg("food id", idPart)
		if err != nil {
			return nil, err
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(amountPart), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid amount in --food %q", v)
		}
		out = append(out, model.MealFood{FoodItemID: id, Amount: amount})
	}
	return out, nil
}

func formatAmount(f model.FoodItem, amount float64) string {
	if f.ServingType == model.ServingPerUnit {
		return fmt.Sprintf("%g unit(s)", amount)
	}
	return fmt.Sprintf("%gg", amount)
}
