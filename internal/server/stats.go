package server

import (
	"codenames-stats/internal/constants"
	"codenames-stats/internal/domain"
	"codenames-stats/internal/service"
	"context"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

const StatsServicePath = "/codenames.v1.StatsService/"

const (
	CreateGameProcedure                   = StatsServicePath + "CreateGame"
	ReplaceGameProcedure                  = StatsServicePath + "ReplaceGame"
	DeleteGameProcedure                   = StatsServicePath + "DeleteGame"
	GetGameProcedure                      = StatsServicePath + "GetGame"
	ListGamesProcedure                    = StatsServicePath + "ListGames"
	GetPlayerStatsProcedure               = StatsServicePath + "GetPlayerStats"
	GetPlayerStatsByRoleProcedure         = StatsServicePath + "GetPlayerStatsByRole"
	GetCombinationStatsProcedure          = StatsServicePath + "GetCombinationStats"
	GetCombinationStatsWithRolesProcedure = StatsServicePath + "GetCombinationStatsWithRoles"
	GetTotalGamesProcedure                = StatsServicePath + "GetTotalGames"
	GetOverviewProcedure                  = StatsServicePath + "GetOverview"
)

type StatsServer struct {
	gameSvc  *service.GameService
	statsSvc *service.StatsService
	logger   zerolog.Logger
}

func NewStatsServer(gameSvc *service.GameService, statsSvc *service.StatsService, logger zerolog.Logger) *StatsServer {
	return &StatsServer{gameSvc: gameSvc, statsSvc: statsSvc, logger: logger}
}

// Handler returns the mount path and the handler serving every procedure.
func (s *StatsServer) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSONCodec()}, opts...)

	mux := http.NewServeMux()
	mux.Handle(CreateGameProcedure, connect.NewUnaryHandler(CreateGameProcedure, s.CreateGame, opts...))
	mux.Handle(ReplaceGameProcedure, connect.NewUnaryHandler(ReplaceGameProcedure, s.ReplaceGame, opts...))
	mux.Handle(DeleteGameProcedure, connect.NewUnaryHandler(DeleteGameProcedure, s.DeleteGame, opts...))
	mux.Handle(GetGameProcedure, connect.NewUnaryHandler(GetGameProcedure, s.GetGame, opts...))
	mux.Handle(ListGamesProcedure, connect.NewUnaryHandler(ListGamesProcedure, s.ListGames, opts...))
	mux.Handle(GetPlayerStatsProcedure, connect.NewUnaryHandler(GetPlayerStatsProcedure, s.GetPlayerStats, opts...))
	mux.Handle(GetPlayerStatsByRoleProcedure, connect.NewUnaryHandler(GetPlayerStatsByRoleProcedure, s.GetPlayerStatsByRole, opts...))
	mux.Handle(GetCombinationStatsProcedure, connect.NewUnaryHandler(GetCombinationStatsProcedure, s.GetCombinationStats, opts...))
	mux.Handle(GetCombinationStatsWithRolesProcedure, connect.NewUnaryHandler(GetCombinationStatsWithRolesProcedure, s.GetCombinationStatsWithRoles, opts...))
	mux.Handle(GetTotalGamesProcedure, connect.NewUnaryHandler(GetTotalGamesProcedure, s.GetTotalGames, opts...))
	mux.Handle(GetOverviewProcedure, connect.NewUnaryHandler(GetOverviewProcedure, s.GetOverview, opts...))
	return StatsServicePath, mux
}

func (s *StatsServer) CreateGame(ctx context.Context, req *connect.Request[GameData]) (*connect.Response[GameResponse], error) {
	payload, err := req.Msg.toPayload()
	if err != nil {
		return nil, connectError(err)
	}

	id, err := s.gameSvc.Create(ctx, payload)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&GameResponse{GameID: id, Message: fmt.Sprintf("Game #%d created successfully", id)}), nil
}

func (s *StatsServer) ReplaceGame(ctx context.Context, req *connect.Request[ReplaceGameRequest]) (*connect.Response[GameResponse], error) {
	payload, err := req.Msg.Game.toPayload()
	if err != nil {
		return nil, connectError(err)
	}

	if err := s.gameSvc.Replace(ctx, req.Msg.GameID, payload); err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&GameResponse{GameID: req.Msg.GameID, Message: fmt.Sprintf("Game #%d updated successfully", req.Msg.GameID)}), nil
}

func (s *StatsServer) DeleteGame(ctx context.Context, req *connect.Request[GameIDRequest]) (*connect.Response[GameResponse], error) {
	if err := s.gameSvc.Delete(ctx, req.Msg.GameID); err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&GameResponse{GameID: req.Msg.GameID, Message: fmt.Sprintf("Game #%d deleted successfully", req.Msg.GameID)}), nil
}

func (s *StatsServer) GetGame(ctx context.Context, req *connect.Request[GameIDRequest]) (*connect.Response[Game], error) {
	game, err := s.gameSvc.Get(ctx, req.Msg.GameID)
	if err != nil {
		return nil, connectError(err)
	}

	resp := toGame(*game)
	return connect.NewResponse(&resp), nil
}

func (s *StatsServer) ListGames(ctx context.Context, _ *connect.Request[Empty]) (*connect.Response[GamesResponse], error) {
	games, err := s.gameSvc.List(ctx)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&GamesResponse{Games: toGames(games)}), nil
}

func (s *StatsServer) GetPlayerStats(ctx context.Context, _ *connect.Request[Empty]) (*connect.Response[PlayerStatsResponse], error) {
	stats, err := s.statsSvc.PlayerStats(ctx)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&PlayerStatsResponse{Players: toPlayerStats(stats)}), nil
}

func (s *StatsServer) GetPlayerStatsByRole(ctx context.Context, _ *connect.Request[Empty]) (*connect.Response[PlayerRoleStatsResponse], error) {
	stats, err := s.statsSvc.PlayerStatsByRole(ctx)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&PlayerRoleStatsResponse{Players: toPlayerRoleStats(stats)}), nil
}

func (s *StatsServer) GetCombinationStats(ctx context.Context, req *connect.Request[MinGamesRequest]) (*connect.Response[CombinationStatsResponse], error) {
	stats, err := s.statsSvc.CombinationStats(ctx, req.Msg.value(constants.DefaultMinGames))
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&CombinationStatsResponse{Combinations: toCombinationStats(stats)}), nil
}

func (s *StatsServer) GetCombinationStatsWithRoles(ctx context.Context, req *connect.Request[MinGamesRequest]) (*connect.Response[CombinationWithRolesResponse], error) {
	stats, err := s.statsSvc.CombinationStatsWithRoles(ctx, req.Msg.value(constants.DefaultMinGames))
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&CombinationWithRolesResponse{Combinations: toCombinationsWithRoles(stats)}), nil
}

func (s *StatsServer) GetTotalGames(ctx context.Context, _ *connect.Request[Empty]) (*connect.Response[TotalGamesResponse], error) {
	total, err := s.statsSvc.TotalGames(ctx)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&TotalGamesResponse{TotalGames: total}), nil
}

func (s *StatsServer) GetOverview(ctx context.Context, req *connect.Request[MinGamesRequest]) (*connect.Response[OverviewResponse], error) {
	overview, err := s.statsSvc.Overview(ctx, req.Msg.value(constants.DefaultMinGames))
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&OverviewResponse{
		TotalGames:       overview.TotalGames,
		Players:          toPlayerStats(overview.Players),
		PlayersByRole:    toPlayerRoleStats(overview.PlayersByRole),
		Combinations:     toCombinationStats(overview.Combinations),
		CombinationRoles: toCombinationsWithRoles(overview.CombinationRoles),
	}), nil
}

func connectError(err error) *connect.Error {
	switch {
	case domain.IsValidation(err):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, domain.ErrGameNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
