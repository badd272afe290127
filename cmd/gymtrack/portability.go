package gymtrack

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/corazon/gymtrack/internal/tracker"
)

var (
	exportOut   string
	importIn    string
	importForce bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all data to a JSON or YAML bundle with a .sha256 checksum",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}
		out := exportOut
		if strings.TrimSpace(out) == "" {
			out = filepath.Join(cfg.DataDir, "exports", fmt.Sprintf("gymtrack-%s.json", time.Now().Format("20060102-150405")))
		}
		return withTrackerConfig(cmd, cfg, func(t *tracker.Tracker) error {
			info, err := tracker.WriteBundleFile(out, t.ExportBundle())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d foods, %d meals, %d consumed, %d workouts to %s\n", info.Foods, info.Meals, info.Consumed, info.Workouts, info.Path)
			fmt.Fprintf(cmd.OutOrStdout(), "Checksum: %s\n", info.Checksum)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace all data with the contents of a JSON bundle",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(importIn) == "" {
			return fmt.Errorf("--in is required")
		}
		b, err := tracker.ReadBundleFile(importIn)
		if err != nil {
			return err
		}
		return withTracker(cmd, func(t *tracker.Tracker) error {
			if !importForce && !t.Empty() {
				return fmt.Errorf("existing data found; use --force to replace it")
			}
			if err := t.ImportBundle(cmd.Context(), b); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d foods, %d meals, %d consumed, %d workouts from %s\n", len(b.Foods), len(b.Meals), len(b.ConsumedMeals), len(b.Workouts), importIn)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Bundle output path; .yaml or .yml writes YAML (default: <data-dir>/exports/gymtrack-<timestamp>.json)")
	importCmd.Flags().StringVar(&importIn, "in", "", "Bundle file to import")
	importCmd.Flags().BoolVar(&importForce, "force", false, "Replace existing data")
}
