package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ballotbox/api/internal/core/domain"
	"github.com/ballotbox/api/internal/core/ports"
)

type ElectionHandler struct {
	service ports.LifecycleService
}

func NewElectionHandler(service ports.LifecycleService) *ElectionHandler {
	return &ElectionHandler{
		service: service,
	}
}

type optionRequest struct {
	Text      string `json:"text"`
	Candidate string `json:"candidate,omitempty"`
}

type createElectionRequest struct {
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	VotingType       string          `json:"voting_type"`
	IsSecret         bool            `json:"is_secret"`
	IsWeighted       bool            `json:"is_weighted"`
	AllowAnonymity   bool            `json:"allow_anonymity"`
	DeferredCounting bool            `json:"deferred_counting"`
	QuorumType       string          `json:"quorum_type"`
	QuorumRequired   float64         `json:"quorum_required"`
	MaxVoters        int             `json:"max_voters"`
	ScheduledStart   *time.Time      `json:"scheduled_start"`
	ScheduledEnd     *time.Time      `json:"scheduled_end"`
	Options          []optionRequest `json:"options"`
}

func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req createElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.CreateElectionInput{
		Title:            req.Title,
		Description:      req.Description,
		VotingType:       domain.VotingType(req.VotingType),
		IsSecret:         req.IsSecret,
		IsWeighted:       req.IsWeighted,
		AllowAnonymity:   req.AllowAnonymity,
		DeferredCounting: req.DeferredCounting,
		QuorumType:       domain.QuorumType(req.QuorumType),
		QuorumRequired:   req.QuorumRequired,
		MaxVoters:        req.MaxVoters,
		ScheduledStart:   req.ScheduledStart,
		ScheduledEnd:     req.ScheduledEnd,
	}
	for _, opt := range req.Options {
		input.Options = append(input.Options, ports.CreateOptionInput{
			Text:      opt.Text,
			Candidate: opt.Candidate,
		})
	}

	election, err := h.service.Create(r.Context(), input)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, election)
}

func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid election id", http.StatusBadRequest)
		return
	}

	election, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, election)
}

type updateElectionRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Options     []optionRequest `json:"options"`
}

func (h *ElectionHandler) UpdateElection(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid election id", http.StatusBadRequest)
		return
	}

	var req updateElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.UpdateElectionInput{
		Title:       req.Title,
		Description: req.Description,
	}
	for _, opt := range req.Options {
		input.Options = append(input.Options, ports.CreateOptionInput{
			Text:      opt.Text,
			Candidate: opt.Candidate,
		})
	}

	election, err := h.service.UpdateDraft(r.Context(), id, input)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, election)
}

func (h *ElectionHandler) StartElection(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid election id", http.StatusBadRequest)
		return
	}

	if err := h.service.Start(r.Context(), id, domain.TriggerManual); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type closeElectionRequest struct {
	Force bool `json:"force"`
}

func (h *ElectionHandler) CloseElection(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid election id", http.StatusBadRequest)
		return
	}

	var req closeElectionRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	if err := h.service.Close(r.Context(), id, req.Force, domain.TriggerManual); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
