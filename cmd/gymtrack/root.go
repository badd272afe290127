package gymtrack

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dataDir   string
	storeKind string
	logLevel  string
	strict    bool
)

var rootCmd = &cobra.Command{
	Use:           "gymtrack",
	Short:         "gymtrack tracks workouts, meals and daily nutrition goals",
	Long:          "gymtrack is a local-first fitness tracker: workout programs, foods, meal templates, consumed meals and daily calorie, protein, carb and hydration goals.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory holding gymtrack data (env GYMTRACK_DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "", "Storage backend: json or sqlite (env GYMTRACK_STORE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (env GYMTRACK_LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Fail on unreadable data and unknown food references instead of falling back")
}
