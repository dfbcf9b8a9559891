package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBDriver    string
	DBPath      string
	DatabaseURL string
	ServerPort  string
	LogLevel    string

	AnthropicAPIKey  string
	AnthropicBaseURL string
	AnthropicModel   string

	TelegramToken  string
	TelegramChatID int64

	StatsMinGames int
	ReadTimeout   time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBDriver:         getEnv("DB_DRIVER", "sqlite3"),
		DBPath:           getEnv("DB_PATH", "codenames.db"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		ServerPort:       getEnv("SERVER_PORT", "8000"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicBaseURL: getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		TelegramToken:    getEnv("TELEGRAM_TOKEN", ""),
		StatsMinGames:    1,
		ReadTimeout:      15 * time.Second,
	}

	switch cfg.DBDriver {
	case "sqlite3":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if v := getEnv("TELEGRAM_CHAT_ID", ""); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", v, err)
		}
		cfg.TelegramChatID = id
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	if v := getEnv("STATS_MIN_GAMES", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid STATS_MIN_GAMES %q", v)
		}
		cfg.StatsMinGames = n
	}

	logger.Info().
		Str("db_driver", cfg.DBDriver).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Bool("extraction_enabled", cfg.AnthropicAPIKey != "").
		Bool("telegram_enabled", cfg.TelegramToken != "").
		Int("stats_min_games", cfg.StatsMinGames).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
