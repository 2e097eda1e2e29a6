package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ballotbox/api/internal/core/ports"
)

type ResultsHandler struct {
	tally     ports.TallyService
	quorum    ports.QuorumService
	observers ports.ObserverService
}

func NewResultsHandler(tally ports.TallyService, quorum ports.QuorumService, observers ports.ObserverService) *ResultsHandler {
	return &ResultsHandler{
		tally:     tally,
		quorum:    quorum,
		observers: observers,
	}
}

func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	electionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid election id", http.StatusBadRequest)
		return
	}

	results, err := h.tally.Tally(r.Context(), electionID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, results)
}

func (h *ResultsHandler) GetQuorum(w http.ResponseWriter, r *http.Request) {
	electionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid election id", http.StatusBadRequest)
		return
	}

	status, err := h.quorum.Status(r.Context(), electionID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, status)
}

func (h *ResultsHandler) GetTurnout(w http.ResponseWriter, r *http.Request) {
	electionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid election id", http.StatusBadRequest)
		return
	}

	turnout, err := h.tally.Turnout(r.Context(), electionID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, turnout)
}

type grantObserverRequest struct {
	CanSeeResults bool `json:"can_see_results"`
	CanSeeTurnout bool `json:"can_see_turnout"`
}

func (h *ResultsHandler) GrantObserver(w http.ResponseWriter, r *http.Request) {
	electionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid election id", http.StatusBadRequest)
		return
	}

	var req grantObserverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	observer, err := h.observers.Grant(r.Context(), ports.GrantObserverInput{
		ElectionID:    electionID,
		CanSeeResults: req.CanSeeResults,
		CanSeeTurnout: req.CanSeeTurnout,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"id":           observer.ID,
		"access_token": observer.AccessToken,
	})
}

// ObserverResults serves the read-only observer surface: the access token
// decides what the holder may see.
func (h *ResultsHandler) ObserverResults(w http.ResponseWriter, r *http.Request) {
	observer, err := h.observers.Resolve(r.Context(), r.Header.Get("X-Observer-Token"))
	if err != nil {
		respondError(w, err)
		return
	}

	response := map[string]any{}

	if observer.CanSeeResults {
		results, err := h.tally.Tally(r.Context(), observer.ElectionID)
		if err != nil {
			respondError(w, err)
			return
		}
		response["results"] = results
	}

	if observer.CanSeeTurnout {
		turnout, err := h.tally.Turnout(r.Context(), observer.ElectionID)
		if err != nil {
			respondError(w, err)
			return
		}
		response["turnout"] = turnout
	}

	respondJSON(w, http.StatusOK, response)
}
