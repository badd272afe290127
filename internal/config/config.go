package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/corazon/gymtrack/internal/app"
)

// DefaultAddr keeps the API on the loopback interface.
const DefaultAddr = "127.0.0.1:7420"

// Config captures the runtime configuration for the application.
type Config struct {
	DataDir  string
	Store    string
	LogLevel string
	Addr     string
	// FoodDBURL overrides the Open Food Facts base URL used by food lookups.
	FoodDBURL string
	// Strict makes load failures fatal instead of falling back to defaults.
	Strict bool
}

// Load reads an optional .env file from the working directory, then the
// environment. CLI flags are applied on top by the caller.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		DataDir:   strings.TrimSpace(os.Getenv("GYMTRACK_DATA_DIR")),
		Store:     firstNonEmpty(os.Getenv("GYMTRACK_STORE"), "json"),
		LogLevel:  firstNonEmpty(os.Getenv("GYMTRACK_LOG_LEVEL"), "warn"),
		Addr:      firstNonEmpty(os.Getenv("GYMTRACK_ADDR"), DefaultAddr),
		FoodDBURL: strings.TrimSpace(os.Getenv("GYMTRACK_FOOD_DB_URL")),
		Strict:    parseBoolWithDefault(os.Getenv("GYMTRACK_STRICT"), false),
	}
	if cfg.DataDir == "" {
		dir, err := app.DefaultDataDir()
		if err != nil {
			return Config{}, err
		}
		cfg.DataDir = dir
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func parseBoolWithDefault(value string, def bool) bool {
	if strings.TrimSpace(value) == "" {
		return def
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}
