package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/yukikurage/agency-hub/internal/database"
	"github.com/yukikurage/agency-hub/internal/jobs"
	"github.com/yukikurage/agency-hub/internal/realtime"
	"github.com/yukikurage/agency-hub/internal/server"
	"github.com/yukikurage/agency-hub/internal/services"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the websocket endpoint and the scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Set Gin mode
			gin.SetMode(cfg.GinMode)

			// Connect to database
			if err := database.Connect(cfg); err != nil {
				return err
			}
			defer database.Close()

			// Run migrations
			if !skipMigrate {
				if err := database.Migrate(); err != nil {
					return err
				}
			}

			hub := realtime.NewHub()
			var emitter realtime.Emitter = hub
			if cfg.NATSURL != "" {
				natsEmitter, err := realtime.NewNatsEmitter(cfg.NATSURL, hub)
				if err != nil {
					return err
				}
				defer natsEmitter.Close()
				emitter = natsEmitter
				log.Info().Str("url", cfg.NATSURL).Msg("Realtime events fan out through NATS")
			}

			// Initialize AI service
			var aiService *services.AIService
			if cfg.OpenAIAPIKey != "" {
				aiService = services.NewAIService(cfg.OpenAIAPIKey)
			}

			srv, err := server.New(server.Options{
				Config:  cfg,
				DB:      database.GetDB(),
				Hub:     hub,
				Emitter: emitter,
				AI:      aiService,
			})
			if err != nil {
				return err
			}

			scheduler, err := jobs.NewScheduler(cfg.OverdueCron, srv.Invoices)
			if err != nil {
				return err
			}
			scheduler.Start()

			httpServer := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           srv.Engine,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", httpServer.Addr).Msg("Server starting")
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
				log.Info().Msg("Shutting down")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			scheduler.Stop(shutdownCtx)
			return httpServer.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run migrations on startup")
	return cmd
}
