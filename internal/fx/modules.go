package fx

import (
	"codenames-stats/internal/api"
	"codenames-stats/internal/bot"
	"codenames-stats/internal/config"
	"codenames-stats/internal/database"
	"codenames-stats/internal/db"
	"codenames-stats/internal/logger"
	"codenames-stats/internal/repository"
	"codenames-stats/internal/server"
	"codenames-stats/internal/service"
	"database/sql"

	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB, cfg *config.Config) *db.Queries {
	return db.New(sqlDB, database.Dialect(cfg))
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewParticipationIndex),
	fx.Provide(repository.NewCombinationLedger),
	fx.Provide(repository.NewGameRepository),
	fx.Provide(repository.NewStatsRepository),
	// api client
	fx.Provide(api.NewVisionClient),
	// svc
	fx.Provide(service.NewGameService),
	fx.Provide(service.NewStatsService),
	// server
	fx.Provide(server.NewStatsServer),
	// chat
	fx.Provide(bot.NewBot),
)
