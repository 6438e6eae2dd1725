package engine

import (
	"net/http"
	"strconv"
)

// DashboardHandlers serves the aggregate count endpoint.
type DashboardHandlers struct {
	engine *Engine
}

// NewDashboardHandlers creates dashboard handlers for the engine.
func NewDashboardHandlers(engine *Engine) *DashboardHandlers {
	return &DashboardHandlers{engine: engine}
}

// Stats handles GET /api/v1/dashboard/stats. An optional project_id
// query parameter scopes every count except the project total.
func (h *DashboardHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	h.engine.TrackOperation()
	defer h.engine.UntrackOperation()

	var projectID *int64
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.engine.writeErrorResponse(w, http.StatusBadRequest, "Invalid project_id: "+raw, "")
			return
		}
		projectID = &id
	}

	stats, err := h.engine.dashboard.Stats(r.Context(), projectID)
	if err != nil {
		h.engine.writeServiceError(w, err)
		return
	}
	h.engine.writeJSONResponse(w, http.StatusOK, stats)
}
