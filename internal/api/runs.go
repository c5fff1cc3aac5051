package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"walksim/pkg/model"
	"walksim/pkg/store"
)

const defaultRunLimit = 20

// RunsHandler serves the run history.
type RunsHandler struct {
	store store.RunStore
}

func NewRunsHandler(s store.RunStore) *RunsHandler {
	return &RunsHandler{store: s}
}

// RunDTO is the API shape of a stored run.
type RunDTO struct {
	*model.RunRecord
	DurationSec float64 `json:"duration_sec"`
}

func toDTO(r *model.RunRecord) RunDTO {
	return RunDTO{RunRecord: r, DurationSec: r.Duration().Seconds()}
}

// HandleList returns the newest runs. ?limit=N overrides the default page size.
func (h *RunsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := h.store.ListRuns(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list runs", "error", err)
		http.Error(w, "failed to list runs", http.StatusInternalServerError)
		return
	}

	out := make([]RunDTO, 0, len(runs))
	for _, run := range runs {
		out = append(out, toDTO(run))
	}
	writeJSON(w, out)
}

// HandleGet returns a single run by id.
func (h *RunsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	run, err := h.store.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("Failed to get run", "id", id, "error", err)
		http.Error(w, "failed to get run", http.StatusInternalServerError)
		return
	}
	writeJSON(w, toDTO(run))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
