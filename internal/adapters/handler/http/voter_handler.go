package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ballotbox/api/internal/core/ports"
)

type VoterHandler struct {
	service ports.VoterService
}

func NewVoterHandler(service ports.VoterService) *VoterHandler {
	return &VoterHandler{
		service: service,
	}
}

type addVoterRequest struct {
	Email  string  `json:"email"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

type addVoterResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Token string    `json:"token"`
}

func (h *VoterHandler) AddVoter(w http.ResponseWriter, r *http.Request) {
	electionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid election id", http.StatusBadRequest)
		return
	}

	var req addVoterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	voter, err := h.service.AddVoter(r.Context(), ports.AddVoterInput{
		ElectionID: electionID,
		Email:      req.Email,
		Name:       req.Name,
		Weight:     req.Weight,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	// The token is returned exactly once, to the organizer, for invitation
	// delivery. It is never readable again through the API.
	respondJSON(w, http.StatusCreated, addVoterResponse{
		ID:    voter.ID,
		Email: voter.Email,
		Token: voter.Token,
	})
}

func (h *VoterHandler) ListVoters(w http.ResponseWriter, r *http.Request) {
	electionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid election id", http.StatusBadRequest)
		return
	}

	voters, err := h.service.ListVoters(r.Context(), electionID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, voters)
}

type updateVoterRequest struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

func (h *VoterHandler) UpdateVoter(w http.ResponseWriter, r *http.Request) {
	voterID, err := uuid.Parse(chi.URLParam(r, "voterID"))
	if err != nil {
		http.Error(w, "invalid voter id", http.StatusBadRequest)
		return
	}

	var req updateVoterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	voter, err := h.service.UpdateVoter(r.Context(), voterID, ports.UpdateVoterInput{
		Name:   req.Name,
		Weight: req.Weight,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, voter)
}

func (h *VoterHandler) DeleteVoter(w http.ResponseWriter, r *http.Request) {
	voterID, err := uuid.Parse(chi.URLParam(r, "voterID"))
	if err != nil {
		http.Error(w, "invalid voter id", http.StatusBadRequest)
		return
	}

	if err := h.service.RemoveVoter(r.Context(), voterID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resetTokensResponse struct {
	Reissued int `json:"reissued"`
}

func (h *VoterHandler) ResetTokens(w http.ResponseWriter, r *http.Request) {
	electionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid election id", http.StatusBadRequest)
		return
	}

	count, err := h.service.ResetTokens(r.Context(), electionID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resetTokensResponse{Reissued: count})
}
