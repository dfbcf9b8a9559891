package main

import (
	"codenames-stats/internal/bot"
	"codenames-stats/internal/config"
	"codenames-stats/internal/constants"
	fxmodules "codenames-stats/internal/fx"
	"codenames-stats/internal/middleware"
	"codenames-stats/internal/server"
	"codenames-stats/internal/service"
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
		fx.Invoke(runBot),
		fx.Invoke(checkLedger),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	statsServer *server.StatsServer,
	gameSvc *service.GameService,
	statsSvc *service.StatsService,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	mux := http.NewServeMux()

	path, handler := statsServer.Handler()
	mux.Handle(path, handler)
	mux.Handle("/", server.SetupRoutes(gameSvc, statsSvc, db, logger))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:     c.Handler(middleware.RequestID(logger)(mux)),
		ReadTimeout: cfg.ReadTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Str("rpc_path", path).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}

func runBot(lc fx.Lifecycle, b *bot.Bot, logger zerolog.Logger) {
	if b == nil {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			b.Start()
			if err := b.RefreshStats(ctx); err != nil {
				logger.Warn().Err(err).Msg("initial stats message failed")
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return b.Stop(ctx)
		},
	})
}

// checkLedger replays stored games once at startup and reports drift.
func checkLedger(lc fx.Lifecycle, gameSvc *service.GameService, logger zerolog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			drift, err := gameSvc.VerifyLedger(ctx)
			if err != nil {
				return err
			}
			for _, d := range drift {
				logger.Warn().
					Str("player_names", d.PlayerNames).
					Int("expected_wins", d.Expected.Wins).
					Int("expected_losses", d.Expected.Losses).
					Int("wins", d.Actual.Wins).
					Int("losses", d.Actual.Losses).
					Msg("combination ledger drift")
			}
			return nil
		},
	})
}
