package server

import (
	"codenames-stats/internal/constants"
	"codenames-stats/internal/domain"
	"codenames-stats/internal/service"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// SetupRoutes builds the REST surface used by the web frontend.
func SetupRoutes(gameSvc *service.GameService, statsSvc *service.StatsService, db Pinger, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/", root)
	r.Get("/health", health(db))

	r.Route("/api/stats", func(r chi.Router) {
		r.Get("/players", playerStats(statsSvc))
		r.Get("/players/by-role", playerStatsByRole(statsSvc))
		r.Get("/team-combinations", combinationStats(statsSvc))
		r.Get("/team-combinations-with-roles", combinationStatsWithRoles(statsSvc))
		r.Get("/total-games", totalGames(statsSvc))
	})

	r.Route("/api/games", func(r chi.Router) {
		r.Get("/", listGames(gameSvc))
		r.Post("/", createGame(gameSvc))
		r.Get("/{id}", getGame(gameSvc))
		r.Put("/{id}", replaceGame(gameSvc))
		r.Delete("/{id}", deleteGame(gameSvc))
	})

	logger.Debug().Msg("rest routes registered")
	return r
}

func root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Codenames Stats API"})
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), constants.DatabaseTimeout)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Detail: fmt.Sprintf("Database connection failed: %v", err)})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "connected"})
	}
}

func playerStats(svc *service.StatsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.PlayerStats(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toPlayerStats(stats))
	}
}

func playerStatsByRole(svc *service.StatsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.PlayerStatsByRole(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toPlayerRoleStats(stats))
	}
}

func combinationStats(svc *service.StatsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		minGames, err := minGamesParam(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		stats, err := svc.CombinationStats(r.Context(), minGames)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toCombinationStats(stats))
	}
}

func combinationStatsWithRoles(svc *service.StatsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		minGames, err := minGamesParam(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		stats, err := svc.CombinationStatsWithRoles(r.Context(), minGames)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toCombinationsWithRoles(stats))
	}
}

func totalGames(svc *service.StatsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		total, err := svc.TotalGames(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, TotalGamesResponse{TotalGames: total})
	}
}

func listGames(svc *service.GameService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := svc.List(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toGames(games))
	}
}

func getGame(svc *service.GameService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := gameIDParam(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		game, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toGame(*game))
	}
}

func createGame(svc *service.GameService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := decodeGame(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		id, err := svc.Create(r.Context(), payload)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, GameResponse{GameID: id, Message: fmt.Sprintf("Game #%d created successfully", id)})
	}
}

func replaceGame(svc *service.GameService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := gameIDParam(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		payload, err := decodeGame(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := svc.Replace(r.Context(), id, payload); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, GameResponse{GameID: id, Message: fmt.Sprintf("Game #%d updated successfully", id)})
	}
}

func deleteGame(svc *service.GameService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := gameIDParam(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, GameResponse{GameID: id, Message: fmt.Sprintf("Game #%d deleted successfully", id)})
	}
}

func decodeGame(r *http.Request) (domain.GamePayload, error) {
	var data GameData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		return domain.GamePayload{}, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	return data.toPayload()
}

func gameIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: game id must be an integer", domain.ErrInvalidPayload)
	}
	return id, nil
}

func minGamesParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("min_games")
	if raw == "" {
		return constants.DefaultMinGames, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: min_games must be an integer", domain.ErrInvalidPayload)
	}
	return n, nil
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case domain.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrGameNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Detail: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
