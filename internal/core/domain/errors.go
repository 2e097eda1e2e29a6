package domain

import "errors"

var (
	ErrElectionNotFound    = errors.New("election not found")
	ErrInvalidTransition   = errors.New("invalid phase transition")
	ErrAlreadyStarted      = errors.New("election already started")
	ErrAlreadyClosed       = errors.New("election already closed")
	ErrElectionLocked      = errors.New("election can no longer be modified")
	ErrQuorumNotMet        = errors.New("quorum not met")
	ErrDuplicateVoter      = errors.New("voter email already registered for this election")
	ErrCannotModifyStarted = errors.New("voters cannot be modified after the election started")
	ErrVoterLimitReached   = errors.New("maximum number of voters reached")
	ErrInvalidToken        = errors.New("invalid voter token")
	ErrElectionNotActive   = errors.New("election is not active")
	ErrAlreadyVoted        = errors.New("voter has already voted")
	ErrInvalidVoteData     = errors.New("invalid vote data")
	ErrTooManyChoices      = errors.New("too many choices for this voting type")
	ErrInsufficientChoices = errors.New("at least one choice is required")
	ErrDuplicateChoices    = errors.New("duplicate choices are not allowed")
	ErrResultsWithheld     = errors.New("results are withheld until the election closes")
	ErrObserverNotFound    = errors.New("observer not found")
	ErrStorageUnavailable  = errors.New("storage unavailable")
)
