package engine

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// ConversionHandlers serves the requirement and test conversion actions.
type ConversionHandlers struct {
	engine *Engine
}

// NewConversionHandlers creates conversion handlers for the engine.
func NewConversionHandlers(engine *Engine) *ConversionHandlers {
	return &ConversionHandlers{engine: engine}
}

// ConvertRequirement handles POST /api/v1/requirements/{item_id}/convert.
func (h *ConversionHandlers) ConvertRequirement(w http.ResponseWriter, r *http.Request) {
	h.engine.TrackOperation()
	defer h.engine.UntrackOperation()

	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	result, err := h.engine.conversion.ConvertRequirement(r.Context(), id)
	if err != nil {
		h.engine.writeServiceError(w, err)
		return
	}
	h.engine.writeJSONResponse(w, http.StatusOK, ConvertRequirementResponse{
		Message:        "Converted successfully",
		ConversionType: result.ConversionType,
		CreatedItemID:  result.CreatedItemID,
	})
}

// ConvertConfigItemToTest handles POST /api/v1/config-items/{item_id}/convert-to-test.
func (h *ConversionHandlers) ConvertConfigItemToTest(w http.ResponseWriter, r *http.Request) {
	h.engine.TrackOperation()
	defer h.engine.UntrackOperation()

	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	testID, err := h.engine.conversion.ConvertConfigItemToTest(r.Context(), id)
	if err != nil {
		h.engine.writeServiceError(w, err)
		return
	}
	h.engine.writeJSONResponse(w, http.StatusOK, ConvertToTestResponse{
		Message: "Test case created",
		TestID:  testID,
	})
}

// ConvertWricefItemToTest handles POST /api/v1/wricef-items/{item_id}/convert-to-test.
func (h *ConversionHandlers) ConvertWricefItemToTest(w http.ResponseWriter, r *http.Request) {
	h.engine.TrackOperation()
	defer h.engine.UntrackOperation()

	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	testID, err := h.engine.conversion.ConvertWricefItemToTest(r.Context(), id)
	if err != nil {
		h.engine.writeServiceError(w, err)
		return
	}
	h.engine.writeJSONResponse(w, http.StatusOK, ConvertToTestResponse{
		Message: "Test case created",
		TestID:  testID,
	})
}

func (h *ConversionHandlers) itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["item_id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.engine.writeErrorResponse(w, http.StatusBadRequest, "Invalid item_id: "+raw, "")
		return 0, false
	}
	return id, true
}
