// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gamekeep/gamekeep/internal/domain/model"
	"github.com/gamekeep/gamekeep/internal/engine/leaderboard"
)

// ScoresHandler handles score submission and ranked reads.
type ScoresHandler struct {
	deps Dependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps Dependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

type submitScoreRequest struct {
	PlayerID string `json:"playerId"`
	Value    int64  `json:"value"`
}

type submitScoreResponse struct {
	PlayerID string `json:"playerId"`
	Value    int64  `json:"value"`
}

type topResponse struct {
	Entries []leaderboard.RankedEntry `json:"entries"`
}

// HandleSubmitScore handles POST /v1/apps/{app}/leaderboards/{key}/scores.
func (h *ScoresHandler) HandleSubmitScore(w http.ResponseWriter, r *http.Request) {
	appID := r.PathValue("app")
	key := r.PathValue("key")

	var req submitScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if strings.TrimSpace(req.PlayerID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingPlayer)
		return
	}

	merged, err := h.deps.SubmitScore(r.Context(), appID, key, req.PlayerID, req.Value)
	if err != nil {
		translateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitScoreResponse{PlayerID: req.PlayerID, Value: merged})
}

// HandleTop handles GET /v1/apps/{app}/leaderboards/{key}/top.
// Query parameters: start (zero-based offset, default 0), count (default 10)
// and direction (optional override of the configured sort order).
func (h *ScoresHandler) HandleTop(w http.ResponseWriter, r *http.Request) {
	appID := r.PathValue("app")
	key := r.PathValue("key")
	q := r.URL.Query()

	start := 0
	if raw := q.Get("start"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		start = v
	}

	count := 10
	if raw := q.Get("count"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		count = v
	}

	var override *model.SortDirection
	if raw := q.Get("direction"); raw != "" {
		dir, err := model.ParseSortDirection(raw)
		if err != nil {
			translateError(w, err)
			return
		}
		override = &dir
	}

	entries, err := h.deps.QueryTopRank(r.Context(), appID, key, start, count, override)
	if err != nil {
		translateError(w, err)
		return
	}
	if entries == nil {
		entries = []leaderboard.RankedEntry{}
	}
	writeJSON(w, http.StatusOK, topResponse{Entries: entries})
}
