package engine

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/projektcopilot/backend/internal/model"
	"github.com/projektcopilot/backend/internal/store"
)

// filterSpec maps a query parameter onto an entity column.
type filterSpec struct {
	param  string
	column string
}

// ResourceHandlers serves the five CRUD endpoints for one entity kind.
// Kinds nested under a session additionally expose parent-scoped list
// and create endpoints.
type ResourceHandlers struct {
	engine       *Engine
	kind         *model.Kind
	filters      []filterSpec
	parentParam  string
	parentColumn string
}

// NewResourceHandlers creates handlers for a top-level entity kind.
func NewResourceHandlers(engine *Engine, kind *model.Kind, filters []filterSpec) *ResourceHandlers {
	return &ResourceHandlers{
		engine:  engine,
		kind:    kind,
		filters: filters,
	}
}

// NewSessionResourceHandlers creates handlers for a session sub-entity
// kind, scoped by the session_id path parameter.
func NewSessionResourceHandlers(engine *Engine, kind *model.Kind) *ResourceHandlers {
	return &ResourceHandlers{
		engine:       engine,
		kind:         kind,
		parentParam:  "session_id",
		parentColumn: "session_id",
	}
}

// List handles GET /api/v1/{resource}.
func (h *ResourceHandlers) List(w http.ResponseWriter, r *http.Request) {
	h.engine.TrackOperation()
	defer h.engine.UntrackOperation()

	filters := map[string]any{}
	for _, spec := range h.filters {
		raw := r.URL.Query().Get(spec.param)
		if raw == "" {
			continue
		}
		val, err := h.parseFilterValue(spec.column, raw)
		if err != nil {
			h.engine.writeErrorResponse(w, http.StatusBadRequest,
				fmt.Sprintf("Invalid value for %s: %s", spec.param, raw), "")
			return
		}
		filters[spec.column] = val
	}

	records, err := h.engine.store.List(r.Context(), h.kind, filters)
	if err != nil {
		h.engine.writeServiceError(w, err)
		return
	}
	h.engine.writeJSONResponse(w, http.StatusOK, records)
}

// Create handles POST /api/v1/{resource}.
func (h *ResourceHandlers) Create(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, nil)
}

// GetByID handles GET /api/v1/{resource}/{item_id}.
func (h *ResourceHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	h.engine.TrackOperation()
	defer h.engine.UntrackOperation()

	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	record, err := h.engine.store.Get(r.Context(), h.kind, id)
	if err != nil {
		h.engine.writeServiceError(w, err)
		return
	}
	h.engine.writeJSONResponse(w, http.StatusOK, record)
}

// Update handles PUT /api/v1/{resource}/{item_id}. Only fields present
// in the body are applied.
func (h *ResourceHandlers) Update(w http.ResponseWriter, r *http.Request) {
	h.engine.TrackOperation()
	defer h.engine.UntrackOperation()

	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	fields, ok := h.decodeBody(w, r)
	if !ok {
		return
	}

	record, err := h.engine.store.Update(r.Context(), h.kind, id, fields)
	if err != nil {
		h.engine.writeServiceError(w, err)
		return
	}
	h.engine.writeJSONResponse(w, http.StatusOK, record)
}

// Delete handles DELETE /api/v1/{resource}/{item_id}.
func (h *ResourceHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	h.engine.TrackOperation()
	defer h.engine.UntrackOperation()

	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	if err := h.engine.store.Delete(r.Context(), h.kind, id); err != nil {
		h.engine.writeServiceError(w, err)
		return
	}
	h.engine.writeJSONResponse(w, http.StatusOK, DeleteResponse{
		Message: fmt.Sprintf("%s %d deleted", h.kind.Name, id),
	})
}

// ListByParent handles GET /api/v1/sessions/{session_id}/{resource}.
func (h *ResourceHandlers) ListByParent(w http.ResponseWriter, r *http.Request) {
	h.engine.TrackOperation()
	defer h.engine.UntrackOperation()

	parentID, ok := h.parentID(w, r)
	if !ok {
		return
	}

	records, err := h.engine.store.List(r.Context(), h.kind, map[string]any{h.parentColumn: parentID})
	if err != nil {
		h.engine.writeServiceError(w, err)
		return
	}
	h.engine.writeJSONResponse(w, http.StatusOK, records)
}

// CreateUnderParent handles POST /api/v1/sessions/{session_id}/{resource}.
// The parent id overrides any same-named body field.
func (h *ResourceHandlers) CreateUnderParent(w http.ResponseWriter, r *http.Request) {
	parentID, ok := h.parentID(w, r)
	if !ok {
		return
	}
	h.create(w, r, store.Record{h.parentColumn: parentID})
}

func (h *ResourceHandlers) create(w http.ResponseWriter, r *http.Request, extra store.Record) {
	h.engine.TrackOperation()
	defer h.engine.UntrackOperation()

	fields, ok := h.decodeBody(w, r)
	if !ok {
		return
	}

	for _, name := range h.kind.Required {
		val, present := fields[name]
		if !present || val == nil {
			h.engine.writeErrorResponse(w, http.StatusBadRequest, name+" is required", "")
			return
		}
		if s, isString := val.(string); isString && s == "" {
			h.engine.writeErrorResponse(w, http.StatusBadRequest, name+" is required", "")
			return
		}
	}

	record, err := h.engine.store.Create(r.Context(), h.kind, fields, extra)
	if err != nil {
		h.engine.writeServiceError(w, err)
		return
	}
	h.engine.writeJSONResponse(w, http.StatusCreated, record)
}

func (h *ResourceHandlers) decodeBody(w http.ResponseWriter, r *http.Request) (store.Record, bool) {
	var fields store.Record
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		h.engine.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return nil, false
	}
	return fields, true
}

func (h *ResourceHandlers) itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	return h.pathID(w, r, "item_id")
}

func (h *ResourceHandlers) parentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	return h.pathID(w, r, h.parentParam)
}

func (h *ResourceHandlers) pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	raw := mux.Vars(r)[param]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.engine.writeErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid %s: %s", param, raw), "")
		return 0, false
	}
	return id, true
}

func (h *ResourceHandlers) parseFilterValue(column, raw string) (any, error) {
	col, ok := h.kind.Column(column)
	if !ok && column == "id" {
		col = model.Column{Name: "id", Type: model.Integer}
		ok = true
	}
	if !ok {
		return raw, nil
	}
	switch col.Type {
	case model.Integer:
		return strconv.ParseInt(raw, 10, 64)
	case model.Real:
		return strconv.ParseFloat(raw, 64)
	default:
		return raw, nil
	}
}
