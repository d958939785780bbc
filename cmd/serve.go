package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sjsage522/eventscraper/config"
	"sjsage522/eventscraper/handlers"
	"sjsage522/eventscraper/internal"
	"sjsage522/eventscraper/logger"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "5000", "Port the HTTP API listens on")
	lo.Must0(viper.BindPFlag(config.KeyPort, serveCmd.Flags().Lookup("port")))
}

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scraper over HTTP",
	Long:  "Start the HTTP API. GET /scrape runs a full aggregation and returns the merged events as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		deps := internal.NewDependencies(ctx, cfg)
		defer deps.Cleanup()

		if cfg.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handlers.NewRouter(deps.Aggregator(), deps.Registry),
			ReadHeaderTimeout: 10 * time.Second,
		}
		return serve(ctx, srv)
	},
}

// serve runs srv until it fails or ctx is cancelled, then shuts it down gracefully
func serve(ctx context.Context, srv *http.Server) error {
	log := logger.ForComponent("http")

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
