package database

import (
	"codenames-stats/internal/config"
	"codenames-stats/internal/constants"
	"codenames-stats/internal/db"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var embedMigrations embed.FS

func New(cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	dialect := Dialect(cfg)
	logger.Info().Str("driver", string(dialect)).Msg("connecting to database")

	var (
		sqlDB *sql.DB
		err   error
	)
	switch dialect {
	case db.Postgres:
		sqlDB, err = sql.Open("pgx", cfg.DatabaseURL)
	default:
		sqlDB, err = sql.Open("sqlite3", sqliteDSN(cfg.DBPath))
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB.SetMaxOpenConns(constants.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(constants.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(constants.DBConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(constants.DBMaxIdleTime)

	if dialect == db.SQLite {
		if err := optimizeSQLite(sqlDB, logger); err != nil {
			logger.Error().Err(err).Msg("failed to optimize SQLite")
			sqlDB.Close()
			return nil, fmt.Errorf("failed to optimize SQLite: %w", err)
		}
	}
	if err := runMigrations(sqlDB, dialect, logger); err != nil {
		logger.Error().Err(err).Msg("failed to run migrations")
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info().Msg("database connection established")
	return sqlDB, nil
}

func Dialect(cfg *config.Config) db.Dialect {
	if cfg.DBDriver == string(db.Postgres) {
		return db.Postgres
	}
	return db.SQLite
}

// sqliteDSN makes every transaction BEGIN IMMEDIATE so concurrent game writes
// serialize on the write lock instead of racing on ledger counters.
// foreign_keys and busy_timeout are per connection, so they go in the DSN too.
func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=%d&_foreign_keys=on", path, constants.DBBusyTimeoutMS)
}

func runMigrations(sqlDB *sql.DB, dialect db.Dialect, logger zerolog.Logger) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	dir := "migrations/sqlite"
	if dialect == db.Postgres {
		dir = "migrations/postgres"
	}

	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(sqlDB, dir); err != nil {
		return fmt.Errorf("failed to run goose migrations: %w", err)
	}

	logger.Info().Str("dir", dir).Msg("migrations completed successfully")
	return nil
}

func optimizeSQLite(sqlDB *sql.DB, logger zerolog.Logger) error {
	pragmas := []struct {
		name  string
		value string
	}{
		{"journal_mode", "WAL"},
		{"synchronous", "NORMAL"},
		{"cache_size", "-64000"},
		{"temp_store", "MEMORY"},
	}

	for _, pragma := range pragmas {
		query := fmt.Sprintf("PRAGMA %s = %s", pragma.name, pragma.value)
		if _, err := sqlDB.Exec(query); err != nil {
			logger.Warn().
				Err(err).
				Str("pragma", pragma.name).
				Str("value", pragma.value).
				Msg("failed to set pragma")
			return fmt.Errorf("failed to set PRAGMA %s: %w", pragma.name, err)
		}
		logger.Debug().
			Str("pragma", pragma.name).
			Str("value", pragma.value).
			Msg("SQLite pragma set")
	}

	return nil
}
