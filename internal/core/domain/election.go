package domain

import (
	"time"

	"github.com/google/uuid"
)

type Phase string

const (
	PhaseDraft  Phase = "draft"
	PhaseActive Phase = "active"
	PhaseClosed Phase = "closed"
)

type VotingType string

const (
	VotingSingleChoice   VotingType = "single_choice"
	VotingMultiChoice    VotingType = "multi_choice"
	VotingRankedApproval VotingType = "ranked_approval"
	VotingWeighted       VotingType = "weighted"
)

func (v VotingType) Valid() bool {
	switch v {
	case VotingSingleChoice, VotingMultiChoice, VotingRankedApproval, VotingWeighted:
		return true
	}
	return false
}

type QuorumType string

const (
	QuorumNone       QuorumType = "none"
	QuorumPercentage QuorumType = "percentage"
	QuorumAbsolute   QuorumType = "absolute"
	QuorumWeighted   QuorumType = "weighted"
)

func (q QuorumType) Valid() bool {
	switch q {
	case QuorumNone, QuorumPercentage, QuorumAbsolute, QuorumWeighted:
		return true
	}
	return false
}

type Election struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	VotingType       VotingType `json:"voting_type"`
	IsSecret         bool       `json:"is_secret"`
	IsWeighted       bool       `json:"is_weighted"`
	AllowAnonymity   bool       `json:"allow_anonymity"`
	Phase            Phase      `json:"phase"`
	DeferredCounting bool       `json:"deferred_counting"`
	QuorumType       QuorumType `json:"quorum_type"`
	QuorumRequired   float64    `json:"quorum_required,omitempty"`
	MaxVoters        int        `json:"max_voters,omitempty"`
	ScheduledStart   *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd     *time.Time `json:"scheduled_end,omitempty"`
	ActualStart      *time.Time `json:"actual_start,omitempty"`
	ActualEnd        *time.Time `json:"actual_end,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	Options          []Option   `json:"options"`
}

type Option struct {
	ID         uuid.UUID `json:"id"`
	ElectionID uuid.UUID `json:"election_id"`
	Text       string    `json:"text"`
	Position   int       `json:"position"`
	Candidate  string    `json:"candidate,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// HasOption reports whether id belongs to this election's option set.
func (e *Election) HasOption(id uuid.UUID) bool {
	for _, opt := range e.Options {
		if opt.ID == id {
			return true
		}
	}
	return false
}

type TransitionKind string

const (
	TransitionStart TransitionKind = "start"
	TransitionClose TransitionKind = "close"
)

type TransitionTrigger string

const (
	TriggerManual    TransitionTrigger = "manual"
	TriggerScheduled TransitionTrigger = "scheduled"
)

// TransitionAudit records who (manual vs scheduled) moved an election between
// phases, and whether a close was forced past an unmet quorum.
type TransitionAudit struct {
	ID         uuid.UUID         `json:"id"`
	ElectionID uuid.UUID         `json:"election_id"`
	Kind       TransitionKind    `json:"kind"`
	Trigger    TransitionTrigger `json:"trigger"`
	Forced     bool              `json:"forced"`
	OccurredAt time.Time         `json:"occurred_at"`
}
