package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cortex/internal/server"
)

var (
	serverPort     int
	serverAllowAll bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP query API",
	Long:  `Serves the fact store as a JSON API, with a websocket at /ws/refresh that streams refresh progress.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = serverPort
		}
		if cmd.Flags().Changed("allow-all") {
			cfg.Server.AllowAll = serverAllowAll
		}

		logger := newLogger()
		e, err := newEngine(cfg, logger, true)
		if err != nil {
			return err
		}
		defer e.Close()

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		startRefresh(ctx, e)

		srv := server.New(server.Config{
			Port:        cfg.Server.Port,
			AllowAll:    cfg.Server.AllowAll,
			SearchLimit: cfg.SearchLimit,
		}, e.refresher, e.vectorStore(), logger)

		go func() {
			<-ctx.Done()
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		logger.Info("cortex server starting",
			"version", Version,
			"port", cfg.Server.Port,
			"workspace", cfg.WorkspaceRoot,
			"cache", e.refresher.CachePath())

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "port to listen on (default server.port)")
	serverCmd.Flags().BoolVar(&serverAllowAll, "allow-all", false, "allow all CORS origins")
	rootCmd.AddCommand(serverCmd)
}
