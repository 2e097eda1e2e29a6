package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ballotbox/api/internal/core/domain"
)

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// respondError maps the engine's error taxonomy onto HTTP statuses. Anything
// unrecognized is an internal error.
func respondError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusFor(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrElectionNotFound),
		errors.Is(err, domain.ErrObserverNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAlreadyVoted),
		errors.Is(err, domain.ErrAlreadyStarted),
		errors.Is(err, domain.ErrAlreadyClosed),
		errors.Is(err, domain.ErrDuplicateVoter),
		errors.Is(err, domain.ErrElectionLocked),
		errors.Is(err, domain.ErrCannotModifyStarted),
		errors.Is(err, domain.ErrQuorumNotMet),
		errors.Is(err, domain.ErrElectionNotActive),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrVoterLimitReached):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidVoteData),
		errors.Is(err, domain.ErrTooManyChoices),
		errors.Is(err, domain.ErrInsufficientChoices),
		errors.Is(err, domain.ErrDuplicateChoices):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrResultsWithheld):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
