package http

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ballotbox/api/internal/core/domain"
	"github.com/ballotbox/api/internal/core/ports"
)

type VoteHandler struct {
	service ports.CastService
}

func NewVoteHandler(service ports.CastService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type castVoteRequest struct {
	OptionIDs []uuid.UUID `json:"option_ids"`
}

func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Voter-Token")
	if token == "" {
		http.Error(w, "X-Voter-Token header required", http.StatusUnauthorized)
		return
	}

	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	receipt, err := h.service.CastVote(r.Context(), ports.CastVoteInput{
		Token:     token,
		Selection: domain.Selection{OptionIDs: req.OptionIDs},
		IP:        ip,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, receipt)
}

type verifyReceiptResponse struct {
	Recorded bool `json:"recorded"`
}

func (h *VoteHandler) VerifyReceipt(w http.ResponseWriter, r *http.Request) {
	electionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid election id", http.StatusBadRequest)
		return
	}

	hash := chi.URLParam(r, "hash")
	if hash == "" {
		http.Error(w, "missing ballot hash", http.StatusBadRequest)
		return
	}

	recorded, err := h.service.VerifyReceipt(r.Context(), electionID, hash)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, verifyReceiptResponse{Recorded: recorded})
}
