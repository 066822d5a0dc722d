// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gamekeep/gamekeep/internal/domain/model"
)

// AdminHandler handles leaderboard and counter definition management.
type AdminHandler struct {
	deps AdminDependencies
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(deps AdminDependencies) *AdminHandler {
	return &AdminHandler{deps: deps}
}

type putLeaderboardRequest struct {
	SortDirection model.SortDirection `json:"sortDirection"`
	Strategy      model.MergeStrategy `json:"updateStrategy"`
	Policy        model.ResetPolicy   `json:"resetPolicy"`
	MaxRank       int                 `json:"maxRank,omitempty"`
}

type putCounterRequest struct {
	Description string            `json:"description,omitempty"`
	Policy      model.ResetPolicy `json:"resetPolicy"`
}

type reconfigureRequest struct {
	Policy model.ResetPolicy `json:"resetPolicy"`
}

// HandlePutLeaderboard handles PUT /v1/admin/apps/{app}/leaderboards/{key}.
func (h *AdminHandler) HandlePutLeaderboard(w http.ResponseWriter, r *http.Request) {
	var req putLeaderboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	cfg, err := h.deps.PutLeaderboardConfig(r.Context(), model.LeaderboardConfig{
		ApplicationID: r.PathValue("app"),
		Key:           r.PathValue("key"),
		SortDirection: req.SortDirection,
		Strategy:      req.Strategy,
		Policy:        req.Policy,
		MaxRank:       req.MaxRank,
	})
	if err != nil {
		translateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// HandleGetLeaderboard handles GET /v1/admin/apps/{app}/leaderboards/{key}.
func (h *AdminHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.deps.GetLeaderboardConfig(r.Context(), r.PathValue("app"), r.PathValue("key"))
	if err != nil {
		translateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// HandleDeleteLeaderboard handles DELETE /v1/admin/apps/{app}/leaderboards/{key}.
// Score records go with the definition.
func (h *AdminHandler) HandleDeleteLeaderboard(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteLeaderboard(r.Context(), r.PathValue("app"), r.PathValue("key")); err != nil {
		translateError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandlePutCounter handles PUT /v1/admin/apps/{app}/counters/{key}.
func (h *AdminHandler) HandlePutCounter(w http.ResponseWriter, r *http.Request) {
	var req putCounterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	cfg, err := h.deps.PutCounterConfig(r.Context(), model.CounterConfig{
		ApplicationID: r.PathValue("app"),
		Key:           r.PathValue("key"),
		Description:   req.Description,
		Policy:        req.Policy,
	})
	if err != nil {
		translateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// HandleGetCounter handles GET /v1/admin/apps/{app}/counters/{key}.
func (h *AdminHandler) HandleGetCounter(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.deps.GetCounterConfig(r.Context(), r.PathValue("app"), r.PathValue("key"))
	if err != nil {
		translateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// HandleDeleteCounter handles DELETE /v1/admin/apps/{app}/counters/{key}.
func (h *AdminHandler) HandleDeleteCounter(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteCounter(r.Context(), r.PathValue("app"), r.PathValue("key")); err != nil {
		translateError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleReconfigureCounter handles POST /v1/admin/apps/{app}/counters/{key}/reconfigure.
// The accumulated value survives the policy swap.
func (h *AdminHandler) HandleReconfigureCounter(w http.ResponseWriter, r *http.Request) {
	var req reconfigureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	if err := h.deps.ReconfigureCounter(r.Context(), r.PathValue("app"), r.PathValue("key"), req.Policy); err != nil {
		translateError(w, err)
		return
	}
	cfg, err := h.deps.GetCounterConfig(r.Context(), r.PathValue("app"), r.PathValue("key"))
	if err != nil {
		translateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}
