// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
)

// CountersHandler handles counter increments and reads.
type CountersHandler struct {
	deps Dependencies
}

// NewCountersHandler creates a new counters handler.
func NewCountersHandler(deps Dependencies) *CountersHandler {
	return &CountersHandler{deps: deps}
}

type incrementRequest struct {
	Delta int64 `json:"delta"`
}

type counterValueResponse struct {
	Value int64 `json:"value"`
}

// HandleIncrement handles POST /v1/apps/{app}/counters/{key}/increment.
func (h *CountersHandler) HandleIncrement(w http.ResponseWriter, r *http.Request) {
	appID := r.PathValue("app")
	key := r.PathValue("key")

	var req incrementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	value, err := h.deps.IncrementCounter(r.Context(), appID, key, req.Delta)
	if err != nil {
		translateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counterValueResponse{Value: value})
}

// HandleGet handles GET /v1/apps/{app}/counters/{key}.
func (h *CountersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	appID := r.PathValue("app")
	key := r.PathValue("key")

	value, err := h.deps.CounterValue(r.Context(), appID, key)
	if err != nil {
		translateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counterValueResponse{Value: value})
}
