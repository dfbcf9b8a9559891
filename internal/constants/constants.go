package constants

import "time"

const (
	ExternalAPITimeout = 30 * time.Second
	DatabaseTimeout    = 5 * time.Second
	WriteTimeout       = 10 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBusyTimeoutMS   = 5000
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// CombinationStatsLimit caps both combination leaderboards.
	CombinationStatsLimit = 20
	DefaultMinGames       = 2
	LeaderboardSize       = 10
)

const (
	ExtractionMaxTokens = 1024
	MaxImageBytes       = 10 << 20
)
