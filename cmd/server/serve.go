package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/library-api/internal/api"
	"github.com/library-api/internal/idgen"
	"github.com/library-api/internal/metrics"
	"github.com/library-api/internal/repository"
	"github.com/library-api/internal/service"
)

func newServeCmd() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer db.Close()

			log.Info().Msg("Starting library API server...")

			if !skipMigrations {
				if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
					return err
				}
			}

			ids, err := idgen.New(cfg.Snowflake.NodeID, log)
			if err != nil {
				return err
			}

			// Initialize repositories
			repos := repository.New(db)

			// Initialize services
			services, err := service.NewServices(repos, cfg, ids, nil, log)
			if err != nil {
				return err
			}

			router := api.NewRouter(services, db, cfg, metrics.New(), log)

			srv := &http.Server{
				Addr:         ":" + cfg.Server.Port,
				Handler:      router,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				IdleTimeout:  cfg.Server.ReadTimeout,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				log.Info().Msg("Shutting down server...")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			if err := g.Wait(); err != nil {
				log.Error().Err(err).Msg("Server stopped with error")
				return err
			}

			log.Info().Msg("Server exited gracefully")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on startup")
	return cmd
}
