package gymtrack

import (
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/corazon/gymtrack/internal/server"
	"github.com/corazon/gymtrack/internal/tracker"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API for a UI on localhost",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}
		if strings.TrimSpace(serveAddr) != "" {
			cfg.Addr = serveAddr
		}
		if cfg.LogLevel != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}
		return withTrackerConfig(cmd, cfg, func(t *tracker.Tracker) error {
			srv, err := server.New(server.Config{Addr: cfg.Addr, Tracker: t})
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default 127.0.0.1:7420, env GYMTRACK_ADDR)")
}
