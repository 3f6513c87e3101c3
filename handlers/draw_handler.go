package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-draws/services"
)

type DrawHandler struct {
	drawService services.DrawService
}

func NewDrawHandler(ds services.DrawService) *DrawHandler {
	return &DrawHandler{drawService: ds}
}

// GenerateHandler обрабатывает POST /events/{eventID}/draws
func (h *DrawHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParam(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.GenerateDrawInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	out, err := h.drawService.GenerateDraw(r.Context(), eventID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, out, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler обрабатывает GET /draws/{drawID}
func (h *DrawHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	drawID, err := urlParam(r, "drawID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rec, err := h.drawService.GetDraw(r.Context(), drawID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"draw": rec}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListEventHandler обрабатывает GET /events/{eventID}/draws
func (h *DrawHandler) ListEventHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParam(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	draws, err := h.drawService.ListEventDraws(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"draws": draws}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MatchUpsHandler обрабатывает GET /draws/{drawID}/structures/{structureID}/matchups?rounds=1,2
func (h *DrawHandler) MatchUpsHandler(w http.ResponseWriter, r *http.Request) {
	drawID, err := urlParam(r, "drawID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	structureID, err := urlParam(r, "structureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	rounds, err := intListQuery(r, "rounds")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matchUps, err := h.drawService.GetStructureMatchUps(r.Context(), drawID, structureID, rounds)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matchUps": matchUps}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DrawHandler) HierarchyHandler(w http.ResponseWriter, r *http.Request) {
	drawID, err := urlParam(r, "drawID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	structureID, err := urlParam(r, "structureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	depth, err := intQuery(r, "depth", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.drawService.GetHierarchy(r.Context(), drawID, structureID, depth)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetOutcomeHandler обрабатывает PUT /draws/{drawID}/matchups/{matchUpID}/outcome
func (h *DrawHandler) SetOutcomeHandler(w http.ResponseWriter, r *http.Request) {
	drawID, err := urlParam(r, "drawID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchUpID, err := urlParam(r, "matchUpID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.OutcomeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.drawService.SetMatchUpOutcome(r.Context(), drawID, matchUpID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemoveOutcomeHandler обрабатывает DELETE /draws/{drawID}/matchups/{matchUpID}/outcome
func (h *DrawHandler) RemoveOutcomeHandler(w http.ResponseWriter, r *http.Request) {
	drawID, err := urlParam(r, "drawID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchUpID, err := urlParam(r, "matchUpID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.drawService.RemoveMatchUpOutcome(r.Context(), drawID, matchUpID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AddPlayoffsHandler обрабатывает POST /draws/{drawID}/playoffs
func (h *DrawHandler) AddPlayoffsHandler(w http.ResponseWriter, r *http.Request) {
	drawID, err := urlParam(r, "drawID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.PlayoffInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.drawService.AddPlayoffStructures(r.Context(), drawID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemoveStructureHandler обрабатывает DELETE /draws/{drawID}/structures/{structureID}?force=true
func (h *DrawHandler) RemoveStructureHandler(w http.ResponseWriter, r *http.Request) {
	drawID, err := urlParam(r, "drawID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	structureID, err := urlParam(r, "structureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	force := r.URL.Query().Get("force") == "true"

	removed, err := h.drawService.RemoveStructure(r.Context(), drawID, structureID, force)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"removedStructureIds": removed}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DrawHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	drawID, err := urlParam(r, "drawID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.drawService.ExportDraw(r.Context(), drawID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
