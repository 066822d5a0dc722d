// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gamekeep/gamekeep/internal/adapters/store"
	"github.com/gamekeep/gamekeep/internal/domain/model"
	"github.com/gamekeep/gamekeep/internal/domain/resetwin"
	"github.com/gamekeep/gamekeep/internal/engine/leaderboard"
)

// Dependencies required by the player-facing HTTP handlers. Using an
// interface bundle keeps the handler layer loosely coupled to the service
// implementation behind it.
type Dependencies interface {
	SubmitScore(ctx context.Context, appID, key, playerID string, value int64) (int64, error)
	QueryTopRank(ctx context.Context, appID, key string, startRank, count int, override *model.SortDirection) ([]leaderboard.RankedEntry, error)
	IncrementCounter(ctx context.Context, appID, key string, delta int64) (int64, error)
	CounterValue(ctx context.Context, appID, key string) (int64, error)
}

// AdminDependencies covers definition management. These routes sit behind
// the admin guard middleware.
type AdminDependencies interface {
	PutLeaderboardConfig(ctx context.Context, cfg model.LeaderboardConfig) (model.LeaderboardConfig, error)
	GetLeaderboardConfig(ctx context.Context, appID, key string) (model.LeaderboardConfig, error)
	DeleteLeaderboard(ctx context.Context, appID, key string) error
	PutCounterConfig(ctx context.Context, cfg model.CounterConfig) (model.CounterConfig, error)
	GetCounterConfig(ctx context.Context, appID, key string) (model.CounterConfig, error)
	DeleteCounter(ctx context.Context, appID, key string) error
	ReconfigureCounter(ctx context.Context, appID, key string, policy model.ResetPolicy) error
}

// Middleware wraps a handler, typically for auth or metrics.
type Middleware func(next http.HandlerFunc) http.HandlerFunc

// Server wires HTTP routes for the business API.
type Server struct {
	scoresHandler   *ScoresHandler
	countersHandler *CountersHandler
	adminHandler    *AdminHandler
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, admin AdminDependencies, statsProvider StatsProvider) *Server {
	return &Server{
		scoresHandler:   NewScoresHandler(deps),
		countersHandler: NewCountersHandler(deps),
		adminHandler:    NewAdminHandler(admin),
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
	}
}

// Register attaches all HTTP routes to mux. The admin guard wraps every
// definition-management route; pass nil to leave them open.
func (s *Server) Register(mux *http.ServeMux, adminGuard Middleware) {
	if adminGuard == nil {
		adminGuard = func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /v1/apps/{app}/leaderboards/{key}/scores",
		MetricsMiddleware(s.scoresHandler.HandleSubmitScore, "submit_score"))
	mux.HandleFunc("GET /v1/apps/{app}/leaderboards/{key}/top",
		MetricsMiddleware(s.scoresHandler.HandleTop, "top"))

	mux.HandleFunc("POST /v1/apps/{app}/counters/{key}/increment",
		MetricsMiddleware(s.countersHandler.HandleIncrement, "counter_increment"))
	mux.HandleFunc("GET /v1/apps/{app}/counters/{key}",
		MetricsMiddleware(s.countersHandler.HandleGet, "counter_get"))

	mux.HandleFunc("PUT /v1/admin/apps/{app}/leaderboards/{key}",
		MetricsMiddleware(adminGuard(s.adminHandler.HandlePutLeaderboard), "admin_put_leaderboard"))
	mux.HandleFunc("GET /v1/admin/apps/{app}/leaderboards/{key}",
		MetricsMiddleware(adminGuard(s.adminHandler.HandleGetLeaderboard), "admin_get_leaderboard"))
	mux.HandleFunc("DELETE /v1/admin/apps/{app}/leaderboards/{key}",
		MetricsMiddleware(adminGuard(s.adminHandler.HandleDeleteLeaderboard), "admin_delete_leaderboard"))
	mux.HandleFunc("PUT /v1/admin/apps/{app}/counters/{key}",
		MetricsMiddleware(adminGuard(s.adminHandler.HandlePutCounter), "admin_put_counter"))
	mux.HandleFunc("GET /v1/admin/apps/{app}/counters/{key}",
		MetricsMiddleware(adminGuard(s.adminHandler.HandleGetCounter), "admin_get_counter"))
	mux.HandleFunc("DELETE /v1/admin/apps/{app}/counters/{key}",
		MetricsMiddleware(adminGuard(s.adminHandler.HandleDeleteCounter), "admin_delete_counter"))
	mux.HandleFunc("POST /v1/admin/apps/{app}/counters/{key}/reconfigure",
		MetricsMiddleware(adminGuard(s.adminHandler.HandleReconfigureCounter), "admin_reconfigure_counter"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// translateError maps domain sentinels onto HTTP responses. Anything the
// taxonomy does not cover becomes a plain 500.
func translateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, resetwin.ErrInvalidPolicy):
		writeError(w, http.StatusBadRequest, "invalid_policy", err)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, store.ErrStorage):
		writeError(w, http.StatusBadGateway, "storage_error", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
